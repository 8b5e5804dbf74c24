// internal/app/features/projects/handler.go
package projects

import (
	"github.com/dalemusser/showmate/internal/app/membership"
	"github.com/dalemusser/showmate/internal/app/system/invitelink"
	"go.uber.org/zap"
)

// Handler serves the /project JSON endpoints.
type Handler struct {
	Svc   *membership.Service
	Links *invitelink.Signer
	Log   *zap.Logger
}

// NewHandler constructs a projects Handler.
func NewHandler(svc *membership.Service, links *invitelink.Signer, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:   svc,
		Links: links,
		Log:   logger,
	}
}
