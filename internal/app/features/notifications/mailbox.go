// internal/app/features/notifications/mailbox.go
package notifications

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/showmate/internal/app/system/auth"
	"github.com/dalemusser/showmate/internal/app/system/httpjson"
	"github.com/dalemusser/showmate/internal/app/system/limits"
	"github.com/dalemusser/showmate/internal/app/system/timeouts"
	"github.com/dalemusser/showmate/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type listResponse struct {
	Notifications []models.Notification `json:"notifications"`
}

type respondRequest struct {
	Accepted *bool `json:"accepted"`
}

type respondResponse struct {
	Notification *models.Notification `json:"notification"`
}

// pageSize reads ?limit=, clamped to the mailbox page bounds.
func pageSize(r *http.Request) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if err != nil || n <= 0 {
		return limits.DefaultNotificationsPage
	}
	if n > limits.MaxNotificationsPage {
		return limits.MaxNotificationsPage
	}
	return n
}

// ServeList handles GET /notifications.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list notifications")
	defer cancel()

	list, err := h.Svc.Notifications(ctx, uid, pageSize(r))
	if err != nil {
		httpjson.Fail(w, h.Log, "list notifications", err)
		return
	}
	httpjson.Write(w, http.StatusOK, listResponse{Notifications: list})
}

// HandleRespond handles POST /notifications/{id}/respond and returns the
// updated notification.
func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	var req respondRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, "respond", err)
		return
	}
	if req.Accepted == nil {
		httpjson.Error(w, http.StatusBadRequest, "Missing required field: accepted")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "respond to notification")
	defer cancel()

	n, err := h.Svc.Respond(ctx, chi.URLParam(r, "id"), *req.Accepted, uid)
	if err != nil {
		httpjson.Fail(w, h.Log, "respond", err)
		return
	}
	httpjson.Write(w, http.StatusOK, respondResponse{Notification: n})
}

// HandleRead handles POST /notifications/{id}/read.
func (h *Handler) HandleRead(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark notification read")
	defer cancel()

	if err := h.Svc.MarkRead(ctx, chi.URLParam(r, "id"), uid); err != nil {
		httpjson.Fail(w, h.Log, "mark read", err)
		return
	}
	httpjson.Write(w, http.StatusOK, httpjson.Success)
}
