package membership

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/showmate/internal/app/system/apperr"
	"github.com/dalemusser/showmate/internal/app/system/inputval"
	"github.com/dalemusser/showmate/internal/app/system/invitelink"
	"github.com/dalemusser/showmate/internal/app/system/mailer"
	"github.com/dalemusser/showmate/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LinkTypeEvents attaches the new member to the selected events.
const LinkTypeEvents = "events"

// maxEventFanout bounds concurrent event updates for one invite.
const maxEventFanout = 8

// Role is the project role offered in an invitation.
type Role struct {
	ID       string `json:"id" validate:"notblank" label:"role.id"`
	Label    string `json:"label" validate:"notblank" label:"role.label"`
	Icon     string `json:"icon,omitempty"`
	Category string `json:"category,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// InviteRequest carries the fields of POST /project/invite.
type InviteRequest struct {
	ProjectID      string                  `json:"projectId" validate:"notblank" label:"projectId"`
	ProjectName    string                  `json:"projectName" validate:"notblank" label:"projectName"`
	Role           Role                    `json:"role"`
	LinkType       string                  `json:"linkType"`
	SelectedEvents []string                `json:"selectedEvents,omitempty"`
	Status         models.MembershipStatus `json:"status,omitempty" validate:"omitempty,oneof=pending approved" label:"status"`
	TechnicianUID  string                  `json:"technicianUid" validate:"notblank" label:"technicianUid"`
	InvitedByUID   string                  `json:"invitedByUid" validate:"notblank" label:"invitedByUid"`
}

func (r InviteRequest) validate() error {
	res := inputval.Validate(r)
	if !res.HasErrors() {
		return nil
	}
	if missing := res.Missing(); len(missing) > 0 {
		return apperr.BadRequest.New("Missing required fields: %s", strings.Join(missing, ", "))
	}
	return apperr.BadRequest.New("%s", res.First())
}

// InviteUserToProject invites r.TechnicianUID to r.ProjectID on behalf of
// actingUID and returns the resulting membership.
//
// A declined membership for the pair is reused for the new invite cycle.
// Event attachment, post creation, the invite notification and the email
// are best-effort and never undo the membership write.
func (s *Service) InviteUserToProject(ctx context.Context, actingUID string, r InviteRequest) (*models.ProjectMembership, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	if r.InvitedByUID != actingUID {
		return nil, apperr.Forbidden.New("You can only send invitations as yourself")
	}
	status := r.Status
	if status == "" {
		status = models.StatusPending
	}

	invitee, err := s.users.GetByID(ctx, r.TechnicianUID)
	if err != nil {
		return nil, apperr.Internal.Wrap(err)
	}
	if invitee == nil {
		return nil, apperr.NotFound.New("User not found")
	}

	existing, err := s.memberships.FindByProjectAndUser(ctx, r.ProjectID, r.TechnicianUID)
	if err != nil {
		return nil, apperr.Internal.Wrap(err)
	}
	if existing != nil && existing.Status.Active() {
		s.audit.InviteConflict(ctx, actingUID, r.ProjectID, r.TechnicianUID, string(existing.Status))
		return nil, apperr.Conflict.New("User is already invited to this project")
	}

	m, err := s.writeMembership(ctx, r, invitee, status, existing)
	if err != nil {
		return nil, apperr.Internal.Wrap(err)
	}
	s.audit.MemberInvited(ctx, actingUID, r.ProjectID, r.TechnicianUID, r.Role.Label, existing != nil)

	// Everything below is best-effort.
	if r.LinkType == LinkTypeEvents && len(r.SelectedEvents) > 0 {
		s.attachToEvents(ctx, m.ID, r.SelectedEvents)
	}
	s.createPost(ctx, r, m.ID)

	if status == models.StatusPending {
		msg := fmt.Sprintf("You have been invited to join %s as %s", s.clean(r.ProjectName), s.clean(r.Role.Label))
		s.notify(ctx, r.TechnicianUID, msg, models.ProjectInvite{
			ProjectID:   r.ProjectID,
			ProjectName: r.ProjectName,
			InvitedBy:   r.InvitedByUID,
			Role:        r.Role.Label,
		})
	}

	_, inviterName := s.userEmail(ctx, r.InvitedByUID)
	s.email(ctx, mailer.KindProjectInvite, invitee.Email, r.ProjectID, r.TechnicianUID, mailer.Data{
		ProjectName: r.ProjectName,
		RoleLabel:   r.Role.Label,
		ActorName:   inviterName,
		Link:        s.acceptLink(r.ProjectID, r.TechnicianUID),
	})

	return m, nil
}

func (s *Service) writeMembership(ctx context.Context, r InviteRequest, invitee *models.User, status models.MembershipStatus, existing *models.ProjectMembership) (*models.ProjectMembership, error) {
	if existing == nil {
		m, err := s.memberships.Create(ctx, r.ProjectID, r.TechnicianUID, models.ProjectMembership{
			Role:       r.Role.Label,
			RoleID:     r.Role.ID,
			Permission: models.PermissionViewer,
			Status:     status,
			InvitedBy:  r.InvitedByUID,
			Firstname:  invitee.Firstname,
			Lastname:   invitee.Lastname,
			Email:      invitee.Email,
			Phone:      invitee.Phone,
			PhotoURL:   invitee.PhotoURL,
		})
		if err != nil {
			return nil, err
		}
		return &m, nil
	}

	now := time.Now().UTC()
	perm := models.PermissionViewer
	m, err := s.memberships.Update(ctx, r.ProjectID, r.TechnicianUID, models.MembershipUpdate{
		Role:       &r.Role.Label,
		RoleID:     &r.Role.ID,
		Permission: &perm,
		Status:     &status,
		InvitedBy:  &r.InvitedByUID,
		JoinedAt:   &now,
		Firstname:  &invitee.Firstname,
		Lastname:   &invitee.Lastname,
		Email:      &invitee.Email,
		Phone:      &invitee.Phone,
		PhotoURL:   &invitee.PhotoURL,
	})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("membership %s/%s vanished during re-invite", r.ProjectID, r.TechnicianUID)
	}
	return m, nil
}

func (s *Service) attachToEvents(ctx context.Context, membershipID string, eventIDs []string) {
	if s.events == nil {
		return
	}
	var g errgroup.Group
	g.SetLimit(maxEventFanout)
	for _, id := range eventIDs {
		if id == "" {
			continue
		}
		g.Go(func() error {
			if err := s.events.AddMember(ctx, id, membershipID); err != nil {
				s.log.Warn("attach member to event failed",
					zap.String("event_id", id),
					zap.String("membership_id", membershipID),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) createPost(ctx context.Context, r InviteRequest, membershipID string) {
	if s.posts == nil {
		return
	}
	_, err := s.posts.Create(ctx, models.Post{
		ProjectID: r.ProjectID,
		RoleID:    r.Role.ID,
		Label:     r.Role.Label,
		Icon:      r.Role.Icon,
		Category:  r.Role.Category,
		Priority:  r.Role.Priority,
		Members:   []string{membershipID},
	})
	if err != nil {
		s.log.Warn("role post create failed",
			zap.String("project_id", r.ProjectID),
			zap.String("membership_id", membershipID),
			zap.Error(err))
	}
}

func (s *Service) acceptLink(projectID, userID string) string {
	if s.links == nil {
		return ""
	}
	link, err := s.links.AcceptURL(invitelink.Target{ProjectID: projectID, UserID: userID})
	if err != nil {
		s.log.Warn("accept link signing failed", zap.String("project_id", projectID), zap.Error(err))
		return ""
	}
	return link
}
