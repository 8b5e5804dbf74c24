// internal/app/features/projects/accept.go
package projects

import (
	"net/http"

	"github.com/dalemusser/showmate/internal/app/system/apperr"
	"github.com/dalemusser/showmate/internal/app/system/auth"
	"github.com/dalemusser/showmate/internal/app/system/httpjson"
	"github.com/dalemusser/showmate/internal/app/system/timeouts"
)

type acceptRequest struct {
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
	Token     string `json:"token,omitempty"`
}

type acceptedResponse struct {
	Accepted bool `json:"accepted"`
}

// ServeAcceptInvitation handles GET /project/accept-invitation and reports
// whether the caller's invitation is already accepted.
func (h *Handler) ServeAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)
	q := r.URL.Query()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "accept-invitation status")
	defer cancel()

	ok, err := h.Svc.InvitationAccepted(ctx, q.Get("projectId"), q.Get("userId"), uid)
	if err != nil {
		httpjson.Fail(w, h.Log, "accept-invitation status", err)
		return
	}
	httpjson.Write(w, http.StatusOK, acceptedResponse{Accepted: ok})
}

// HandleAcceptInvitation handles POST /project/accept-invitation. The body
// names the invitation either directly ({projectId,userId}) or through the
// signed token carried by the emailed link ({token}).
func (h *Handler) HandleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	var req acceptRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, "accept invitation", err)
		return
	}
	if req.Token != "" {
		if h.Links == nil {
			httpjson.Fail(w, h.Log, "accept invitation", apperr.BadRequest.New("Invitation links are not enabled"))
			return
		}
		t, err := h.Links.Parse(req.Token)
		if err != nil {
			httpjson.Fail(w, h.Log, "accept invitation", apperr.BadRequest.New("Invalid or expired invitation link"))
			return
		}
		req.ProjectID, req.UserID = t.ProjectID, t.UserID
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "accept invitation")
	defer cancel()

	if err := h.Svc.AcceptInvitation(ctx, req.ProjectID, req.UserID, uid); err != nil {
		httpjson.Fail(w, h.Log, "accept invitation", err)
		return
	}
	httpjson.Write(w, http.StatusOK, httpjson.Success)
}
