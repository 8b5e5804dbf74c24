// Package membership orchestrates the invitation and membership lifecycle:
// invites, accept/decline responses, member removal and project teardown.
//
// Each workflow is one method on Service. None of them run inside a
// transaction. Validation and authorization happen before the first write;
// once the membership write succeeds every later step is best-effort and its
// failure is logged, never returned.
package membership

import (
	"context"

	auditstore "github.com/dalemusser/showmate/internal/app/store/audit"
	notificationstore "github.com/dalemusser/showmate/internal/app/store/notifications"
	"github.com/dalemusser/showmate/internal/app/system/htmlsanitize"
	"github.com/dalemusser/showmate/internal/app/system/inputval"
	"github.com/dalemusser/showmate/internal/app/system/invitelink"
	"github.com/dalemusser/showmate/internal/app/system/mailer"
	"github.com/dalemusser/showmate/internal/domain/models"
	"go.uber.org/zap"
)

// MembershipStore is the subset of membershipstore.Store the workflows use.
type MembershipStore interface {
	FindByProjectAndUser(ctx context.Context, projectID, userID string) (*models.ProjectMembership, error)
	FindByID(ctx context.Context, id string) (*models.ProjectMembership, error)
	FindProjectMembers(ctx context.Context, projectID string) ([]models.ProjectMembership, error)
	FindUserMemberships(ctx context.Context, userID string) ([]models.ProjectMembership, error)
	Create(ctx context.Context, projectID, userID string, data models.ProjectMembership) (models.ProjectMembership, error)
	Update(ctx context.Context, projectID, userID string, u models.MembershipUpdate) (*models.ProjectMembership, error)
	SetStatus(ctx context.Context, id string, from, to models.MembershipStatus) (bool, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}

// NotificationStore is the subset of notificationstore.Store the workflows use.
type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	Get(ctx context.Context, id string) (*models.Notification, error)
	Find(ctx context.Context, f notificationstore.Filter) ([]models.Notification, error)
	ListForUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
	MarkAsReadAndResponded(ctx context.Context, id string, accepted bool) (bool, error)
	MarkAsRead(ctx context.Context, id string) (bool, error)
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}

// UserStore resolves profiles by uid.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ProjectStore reads and deletes projects.
type ProjectStore interface {
	GetByID(ctx context.Context, id string) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}

// EventStore attaches members to scheduled events.
type EventStore interface {
	AddMember(ctx context.Context, eventID, membershipID string) error
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}

// PostStore holds the role-assignment display records.
type PostStore interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}

// ProjectScoped is any collection that can be purged by project.
type ProjectScoped interface {
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}

// Mail sends a rendered template. *mailer.Gateway satisfies it.
type Mail interface {
	Send(ctx context.Context, kind mailer.Kind, to string, data mailer.Data) error
}

// LinkSigner produces accept links for invitation emails.
type LinkSigner interface {
	AcceptURL(t invitelink.Target) (string, error)
}

// Auditor records lifecycle events. *auditlog.Logger satisfies it.
type Auditor interface {
	MemberInvited(ctx context.Context, actorID, projectID, userID, role string, reused bool)
	InviteConflict(ctx context.Context, actorID, projectID, userID, status string)
	InvitationAccepted(ctx context.Context, projectID, userID, via string)
	InvitationDeclined(ctx context.Context, projectID, userID, invitedBy string)
	MemberRemoved(ctx context.Context, actorID, projectID, userID, membershipID string)
	ProjectDeleted(ctx context.Context, actorID, projectID, projectName string, members int)
	EmailDeliveryFailed(ctx context.Context, projectID, userID, kind string, err error)
}

// AuditTrail reads recorded lifecycle events. *auditstore.Store satisfies it.
type AuditTrail interface {
	Query(ctx context.Context, f auditstore.QueryFilter) ([]auditstore.Event, error)
}

// Deps wires a Service. Memberships, Notifications, Users, Projects and Mail
// are required; the rest may be nil.
type Deps struct {
	Memberships   MembershipStore
	Notifications NotificationStore
	Users         UserStore
	Projects      ProjectStore
	Events        EventStore
	Posts         PostStore
	Messages      ProjectScoped
	Mail          Mail
	Links         LinkSigner
	Audit         Auditor
	AuditTrail    AuditTrail
	Logger        *zap.Logger
}

// Service runs the membership workflows.
type Service struct {
	memberships   MembershipStore
	notifications NotificationStore
	users         UserStore
	projects      ProjectStore
	events        EventStore
	posts         PostStore
	messages      ProjectScoped
	mail          Mail
	links         LinkSigner
	audit         Auditor
	trail         AuditTrail
	log           *zap.Logger
}

// New builds a Service from d.
func New(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	audit := d.Audit
	if audit == nil {
		audit = nopAuditor{}
	}
	return &Service{
		memberships:   d.Memberships,
		notifications: d.Notifications,
		users:         d.Users,
		projects:      d.Projects,
		events:        d.Events,
		posts:         d.Posts,
		messages:      d.Messages,
		mail:          d.Mail,
		links:         d.Links,
		audit:         audit,
		trail:         d.AuditTrail,
		log:           log,
	}
}

// notify builds and stores a notification. Failures are logged and
// reported as false.
func (s *Service) notify(ctx context.Context, userID, message string, p models.Payload) bool {
	n, err := models.NewNotification(userID, message, p)
	if err != nil {
		s.log.Error("notification payload rejected",
			zap.String("type", string(p.Type())),
			zap.String("user_id", userID),
			zap.Error(err))
		return false
	}
	if _, err := s.notifications.Create(ctx, n); err != nil {
		s.log.Warn("notification create failed",
			zap.String("type", string(n.Type)),
			zap.String("user_id", userID),
			zap.Error(err))
		return false
	}
	return true
}

// email sends a template and logs a transport failure. It never returns an
// error. An empty address is skipped.
func (s *Service) email(ctx context.Context, kind mailer.Kind, to, projectID, userID string, data mailer.Data) bool {
	if to == "" {
		s.log.Info("email skipped: no address",
			zap.String("template", string(kind)),
			zap.String("user_id", userID))
		return false
	}
	if !inputval.IsValidEmail(to) {
		s.log.Warn("email skipped: invalid address",
			zap.String("template", string(kind)),
			zap.String("user_id", userID))
		return false
	}
	if err := s.mail.Send(ctx, kind, to, data); err != nil {
		s.log.Warn("email send failed",
			zap.String("template", string(kind)),
			zap.String("user_id", userID),
			zap.String("project_id", projectID),
			zap.Error(err))
		s.audit.EmailDeliveryFailed(ctx, projectID, userID, string(kind), err)
		return false
	}
	return true
}

// clean strips markup from user-supplied text before it is stored in a
// notification message.
func (s *Service) clean(v string) string {
	return htmlsanitize.PlainText(v)
}

// userEmail resolves uid to an address and display name. Lookup failures
// are logged and produce empty values.
func (s *Service) userEmail(ctx context.Context, uid string) (email, name string) {
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		s.log.Warn("user lookup failed", zap.String("user_id", uid), zap.Error(err))
		return "", ""
	}
	if u == nil {
		return "", ""
	}
	return u.Email, u.DisplayName()
}

type nopAuditor struct{}

func (nopAuditor) MemberInvited(context.Context, string, string, string, string, bool) {}
func (nopAuditor) InviteConflict(context.Context, string, string, string, string)      {}
func (nopAuditor) InvitationAccepted(context.Context, string, string, string)          {}
func (nopAuditor) InvitationDeclined(context.Context, string, string, string)          {}
func (nopAuditor) MemberRemoved(context.Context, string, string, string, string)       {}
func (nopAuditor) ProjectDeleted(context.Context, string, string, string, int)         {}
func (nopAuditor) EmailDeliveryFailed(context.Context, string, string, string, error)  {}
