// internal/app/features/projects/invite.go
package projects

import (
	"net/http"

	"github.com/dalemusser/showmate/internal/app/membership"
	"github.com/dalemusser/showmate/internal/app/system/auth"
	"github.com/dalemusser/showmate/internal/app/system/httpjson"
	"github.com/dalemusser/showmate/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleInvite handles POST /project/invite.
//
//	200 {"success":true}
//	400/401/403/404/409/500 {"error":"..."}
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	var req membership.InviteRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, "invite", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "project invite")
	defer cancel()

	m, err := h.Svc.InviteUserToProject(ctx, uid, req)
	if err != nil {
		httpjson.Fail(w, h.Log, "invite", err)
		return
	}

	h.Log.Info("member invited",
		zap.String("project_id", m.ProjectID),
		zap.String("user_id", m.UserID),
		zap.String("membership_id", m.ID),
		zap.String("status", string(m.Status)))
	httpjson.Write(w, http.StatusOK, httpjson.Success)
}

// HandleRefusedInvitation handles POST /project/refused-invitation. The
// decline is identified by the invite notification id in the body, so the
// endpoint is reachable from an email client without a bearer token.
func (h *Handler) HandleRefusedInvitation(w http.ResponseWriter, r *http.Request) {
	var req membership.RefuseRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, "refuse invitation", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "refuse invitation")
	defer cancel()

	if err := h.Svc.RefuseInvitation(ctx, req); err != nil {
		httpjson.Fail(w, h.Log, "refuse invitation", err)
		return
	}
	httpjson.Write(w, http.StatusOK, httpjson.Success)
}
