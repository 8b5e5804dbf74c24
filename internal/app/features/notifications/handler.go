// internal/app/features/notifications/handler.go
package notifications

import (
	"context"

	"github.com/dalemusser/showmate/internal/app/membership"
	"github.com/dalemusser/showmate/internal/domain/models"
	"go.uber.org/zap"
)

// Subscriber streams changes to one user's mailbox.
// *notificationstore.Store satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string, onChange func(models.Notification), onError func(error)) (func(), error)
}

// Handler serves the caller's notification mailbox.
type Handler struct {
	Svc    *membership.Service
	Stream Subscriber
	Log    *zap.Logger
}

// NewHandler constructs a notifications Handler. stream may be nil, in
// which case GET /notifications/stream answers 503.
func NewHandler(svc *membership.Service, stream Subscriber, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:    svc,
		Stream: stream,
		Log:    logger,
	}
}
