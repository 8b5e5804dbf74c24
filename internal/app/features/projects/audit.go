// internal/app/features/projects/audit.go
package projects

import (
	"net/http"
	"strconv"

	auditstore "github.com/dalemusser/showmate/internal/app/store/audit"
	"github.com/dalemusser/showmate/internal/app/system/auth"
	"github.com/dalemusser/showmate/internal/app/system/httpjson"
	"github.com/dalemusser/showmate/internal/app/system/limits"
	"github.com/dalemusser/showmate/internal/app/system/timeouts"
)

type auditResponse struct {
	Events []auditstore.Event `json:"events"`
}

func auditPageSize(r *http.Request) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if err != nil || n <= 0 {
		return limits.DefaultAuditPage
	}
	if n > limits.MaxAuditPage {
		return limits.MaxAuditPage
	}
	return n
}

// ServeAudit handles GET /project/audit?projectId=&limit=.
func (h *Handler) ServeAudit(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "project audit")
	defer cancel()

	events, err := h.Svc.ProjectAudit(ctx, r.URL.Query().Get("projectId"), uid, auditPageSize(r))
	if err != nil {
		httpjson.Fail(w, h.Log, "project audit", err)
		return
	}
	httpjson.Write(w, http.StatusOK, auditResponse{Events: events})
}
