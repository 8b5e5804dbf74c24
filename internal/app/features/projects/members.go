// internal/app/features/projects/members.go
package projects

import (
	"net/http"

	"github.com/dalemusser/showmate/internal/app/system/auth"
	"github.com/dalemusser/showmate/internal/app/system/httpjson"
	"github.com/dalemusser/showmate/internal/app/system/timeouts"
	"github.com/dalemusser/showmate/internal/domain/models"
)

type membersResponse struct {
	Members []models.ProjectMembership `json:"members"`
}

// ServeMembers handles GET /project/members?projectId=.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "project members")
	defer cancel()

	members, err := h.Svc.ProjectMembers(ctx, r.URL.Query().Get("projectId"), uid)
	if err != nil {
		httpjson.Fail(w, h.Log, "project members", err)
		return
	}
	httpjson.Write(w, http.StatusOK, membersResponse{Members: members})
}

// ServeMyMemberships handles GET /project/memberships.
func (h *Handler) ServeMyMemberships(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user memberships")
	defer cancel()

	members, err := h.Svc.UserMemberships(ctx, uid)
	if err != nil {
		httpjson.Fail(w, h.Log, "user memberships", err)
		return
	}
	httpjson.Write(w, http.StatusOK, membersResponse{Members: members})
}
