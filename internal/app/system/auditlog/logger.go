// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"strconv"

	"github.com/dalemusser/showmate/internal/app/store/audit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Membership controls logging for membership lifecycle events
	// (invites, accept/decline, removal, project deletion, sweeps).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Membership string
}

// Store is the persistence side of the audit trail. *audit.Store satisfies it.
type Store interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via Store) and structured logs (via zap).
type Logger struct {
	store  Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil when the
// configuration never writes to the database.
func New(store Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}

	if event.ProjectID != "" {
		fields = append(fields, zap.String("project_id", event.ProjectID))
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.config.Membership
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Membership Events ---

// MemberInvited logs an invitation (or a re-invitation after a decline).
func (l *Logger) MemberInvited(ctx context.Context, actorID, projectID, userID, role string, reused bool) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: audit.EventMemberInvited,
		ProjectID: projectID,
		UserID:    userID,
		ActorID:   actorID,
		Success:   true,
		Details: map[string]string{
			"role":   role,
			"reused": strconv.FormatBool(reused),
		},
	})
}

// InviteConflict logs an invitation rejected because the user already
// holds an active membership.
func (l *Logger) InviteConflict(ctx context.Context, actorID, projectID, userID, status string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryMembership,
		EventType:     audit.EventInviteConflict,
		ProjectID:     projectID,
		UserID:        userID,
		ActorID:       actorID,
		Success:       false,
		FailureReason: "already " + status,
	})
}

// InvitationAccepted logs an invitee accepting. via names the path
// ("notification" or "link").
func (l *Logger) InvitationAccepted(ctx context.Context, projectID, userID, via string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: audit.EventInvitationAccepted,
		ProjectID: projectID,
		UserID:    userID,
		ActorID:   userID,
		Success:   true,
		Details:   map[string]string{"via": via},
	})
}

// InvitationDeclined logs an invitee declining.
func (l *Logger) InvitationDeclined(ctx context.Context, projectID, userID, invitedBy string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: audit.EventInvitationDeclined,
		ProjectID: projectID,
		UserID:    userID,
		ActorID:   userID,
		Success:   true,
		Details:   map[string]string{"invited_by": invitedBy},
	})
}

// MemberRemoved logs a membership hard delete.
func (l *Logger) MemberRemoved(ctx context.Context, actorID, projectID, userID, membershipID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: audit.EventMemberRemoved,
		ProjectID: projectID,
		UserID:    userID,
		ActorID:   actorID,
		Success:   true,
		Details:   map[string]string{"membership_id": membershipID},
	})
}

// ProjectDeleted logs a project teardown.
func (l *Logger) ProjectDeleted(ctx context.Context, actorID, projectID, projectName string, members int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryProject,
		EventType: audit.EventProjectDeleted,
		ProjectID: projectID,
		ActorID:   actorID,
		Success:   true,
		Details: map[string]string{
			"project_name": projectName,
			"members":      strconv.Itoa(members),
		},
	})
}

// OrphansSwept logs records removed because their project no longer exists.
func (l *Logger) OrphansSwept(ctx context.Context, projectID string, memberships, notifications int64) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryProject,
		EventType: audit.EventOrphansSwept,
		ProjectID: projectID,
		Success:   true,
		Details: map[string]string{
			"memberships":   strconv.FormatInt(memberships, 10),
			"notifications": strconv.FormatInt(notifications, 10),
		},
	})
}

// EmailDeliveryFailed logs a transactional email that could not be sent.
func (l *Logger) EmailDeliveryFailed(ctx context.Context, projectID, userID, kind string, err error) {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryMembership,
		EventType:     audit.EventEmailDeliveryFailed,
		ProjectID:     projectID,
		UserID:        userID,
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"template": kind},
	})
}
