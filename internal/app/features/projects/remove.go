// internal/app/features/projects/remove.go
package projects

import (
	"net/http"

	"github.com/dalemusser/showmate/internal/app/membership"
	"github.com/dalemusser/showmate/internal/app/system/auth"
	"github.com/dalemusser/showmate/internal/app/system/httpjson"
	"github.com/dalemusser/showmate/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleRemoveMember handles DELETE /project/member.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	var req membership.RemoveRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, "remove member", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "remove member")
	defer cancel()

	if err := h.Svc.RemoveMember(ctx, uid, req); err != nil {
		httpjson.Fail(w, h.Log, "remove member", err)
		return
	}
	httpjson.Write(w, http.StatusOK, httpjson.Success)
}

// HandleDeleteProject handles DELETE /project/delete?projectId=.
func (h *Handler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)
	projectID := r.URL.Query().Get("projectId")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete project")
	defer cancel()

	if err := h.Svc.DeleteProject(ctx, projectID, uid); err != nil {
		httpjson.Fail(w, h.Log, "delete project", err)
		return
	}
	h.Log.Info("project deleted", zap.String("project_id", projectID), zap.String("actor", uid))
	httpjson.Write(w, http.StatusOK, httpjson.Success)
}
