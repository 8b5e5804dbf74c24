package membership

import (
	"context"

	auditstore "github.com/dalemusser/showmate/internal/app/store/audit"
	"github.com/dalemusser/showmate/internal/app/system/apperr"
	"github.com/dalemusser/showmate/internal/domain/models"
)

// ProjectMembers lists a project's team. The caller must own the project or
// hold an active membership of it.
func (s *Service) ProjectMembers(ctx context.Context, projectID, actingUID string) ([]models.ProjectMembership, error) {
	if projectID == "" {
		return nil, apperr.BadRequest.New("Missing projectId")
	}
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal.Wrap(err)
	}
	if p == nil {
		return nil, apperr.NotFound.New("Project not found")
	}

	members, err := s.memberships.FindProjectMembers(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal.Wrap(err)
	}
	if p.OwnerID == actingUID {
		return members, nil
	}
	for _, m := range members {
		if m.UserID == actingUID && m.Status.Active() {
			return members, nil
		}
	}
	return nil, apperr.Forbidden.New("You are not a member of this project")
}

// UserMemberships lists every membership held by uid.
func (s *Service) UserMemberships(ctx context.Context, uid string) ([]models.ProjectMembership, error) {
	out, err := s.memberships.FindUserMemberships(ctx, uid)
	if err != nil {
		return nil, apperr.Internal.Wrap(err)
	}
	return out, nil
}

// Notifications returns uid's mailbox, newest first.
func (s *Service) Notifications(ctx context.Context, uid string, limit int64) ([]models.Notification, error) {
	out, err := s.notifications.ListForUser(ctx, uid, limit)
	if err != nil {
		return nil, apperr.Internal.Wrap(err)
	}
	return out, nil
}

// MarkRead flags one of uid's notifications as seen.
func (s *Service) MarkRead(ctx context.Context, notificationID, uid string) error {
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		return apperr.Internal.Wrap(err)
	}
	if n == nil {
		return apperr.NotFound.New("Notification not found")
	}
	if n.UserID != uid {
		return apperr.Forbidden.New("Notification belongs to another user")
	}
	if _, err := s.notifications.MarkAsRead(ctx, notificationID); err != nil {
		return apperr.Internal.Wrap(err)
	}
	return nil
}

// ProjectAudit returns the project's recorded lifecycle events, newest
// first. Only the project owner may read them.
func (s *Service) ProjectAudit(ctx context.Context, projectID, actingUID string, limit int64) ([]auditstore.Event, error) {
	if projectID == "" {
		return nil, apperr.BadRequest.New("Missing projectId")
	}
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal.Wrap(err)
	}
	if p == nil {
		return nil, apperr.NotFound.New("Project not found")
	}
	if p.OwnerID != actingUID {
		return nil, apperr.Forbidden.New("Only the project owner can read its history")
	}
	if s.trail == nil {
		return []auditstore.Event{}, nil
	}
	out, err := s.trail.Query(ctx, auditstore.QueryFilter{ProjectID: projectID, Limit: limit})
	if err != nil {
		return nil, apperr.Internal.Wrap(err)
	}
	if out == nil {
		out = []auditstore.Event{}
	}
	return out, nil
}
