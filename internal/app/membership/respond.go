package membership

import (
	"context"
	"fmt"

	notificationstore "github.com/dalemusser/showmate/internal/app/store/notifications"
	"github.com/dalemusser/showmate/internal/app/system/apperr"
	"github.com/dalemusser/showmate/internal/app/system/mailer"
	"github.com/dalemusser/showmate/internal/domain/models"
	"go.uber.org/zap"
)

// Respond records actingUID's answer to an invite notification and moves
// the matching membership out of pending. A missing membership is skipped
// without error. Declining notifies and emails the inviter; accepting on
// this path does not.
//
// Responding twice is allowed and overwrites the stored answer, but a
// membership that already left pending keeps its status and the inviter is
// not told again.
func (s *Service) Respond(ctx context.Context, notificationID string, accepted bool, actingUID string) (*models.Notification, error) {
	if notificationID == "" {
		return nil, apperr.BadRequest.New("Missing notification id")
	}
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		return nil, apperr.Internal.Wrap(err)
	}
	if n == nil {
		return nil, apperr.NotFound.New("Notification not found")
	}
	if n.UserID != actingUID {
		return nil, apperr.Forbidden.New("Notification belongs to another user")
	}
	if !n.Type.Actionable() {
		return nil, apperr.BadRequest.New("Notification does not accept a response")
	}

	if _, err := s.notifications.MarkAsReadAndResponded(ctx, n.ID, accepted); err != nil {
		return nil, apperr.Internal.Wrap(err)
	}

	projectID := n.Context.ProjectID
	if accepted {
		if _, moved := s.transition(ctx, projectID, actingUID, models.StatusApproved); moved {
			s.audit.InvitationAccepted(ctx, projectID, actingUID, "notification")
		}
	} else {
		s.decline(ctx, decline{
			inviteID:    n.ID,
			projectID:   projectID,
			projectName: n.Context.ProjectName,
			userID:      actingUID,
			invitedBy:   n.Context.InvitedBy,
		})
	}

	return s.reload(ctx, *n, accepted), nil
}

// RefuseRequest carries the fields of POST /project/refused-invitation.
type RefuseRequest struct {
	InviteID        string `json:"inviteId"`
	UserID          string `json:"userId"`
	ProjectID       string `json:"projectId"`
	InvitedBy       string `json:"invitedBy"`
	InvitedUserName string `json:"invitedUserName"`
}

// RefuseInvitation declines the invite notification r.InviteID on behalf of
// r.UserID. The caller is anonymous, so the project and inviter always come
// from the stored invite; a body that disagrees with it is rejected.
func (s *Service) RefuseInvitation(ctx context.Context, r RefuseRequest) error {
	if r.InviteID == "" || r.UserID == "" || r.ProjectID == "" || r.InvitedBy == "" {
		return apperr.BadRequest.New("Missing required fields")
	}
	n, err := s.notifications.Get(ctx, r.InviteID)
	if err != nil {
		return apperr.Internal.Wrap(err)
	}
	if n == nil || n.UserID != r.UserID || !n.Type.Actionable() {
		return apperr.NotFound.New("Invitation not found")
	}
	if n.Context.ProjectID != r.ProjectID || n.Context.InvitedBy != r.InvitedBy {
		s.log.Warn("refusal does not match stored invite",
			zap.String("invite_id", n.ID),
			zap.String("project_id", r.ProjectID),
			zap.String("stored_project_id", n.Context.ProjectID))
		return apperr.BadRequest.New("Invitation does not match project or inviter")
	}

	if _, err := s.notifications.MarkAsReadAndResponded(ctx, n.ID, false); err != nil {
		return apperr.Internal.Wrap(err)
	}
	s.decline(ctx, decline{
		inviteID:    n.ID,
		projectID:   n.Context.ProjectID,
		projectName: n.Context.ProjectName,
		userID:      n.UserID,
		userName:    r.InvitedUserName,
		invitedBy:   n.Context.InvitedBy,
	})
	return nil
}

type decline struct {
	inviteID    string
	projectID   string
	projectName string
	userID      string
	userName    string
	invitedBy   string
}

// decline moves a pending membership to declined and tells the inviter.
// A membership that already left pending is left alone and nobody is told.
// Every step is best-effort.
func (s *Service) decline(ctx context.Context, d decline) {
	m, moved := s.transition(ctx, d.projectID, d.userID, models.StatusDeclined)
	if m != nil && !moved {
		return
	}
	if moved {
		s.audit.InvitationDeclined(ctx, d.projectID, d.userID, d.invitedBy)
	}
	if d.invitedBy == "" {
		s.log.Warn("decline without inviter; nobody to notify",
			zap.String("project_id", d.projectID),
			zap.String("user_id", d.userID))
		return
	}

	if d.userName == "" {
		_, d.userName = s.userEmail(ctx, d.userID)
	}
	projectName := s.projectName(ctx, d.projectID, d.projectName)

	msg := fmt.Sprintf("%s declined your invitation to join %s", s.clean(nonEmpty(d.userName, "A user")), s.clean(projectName))
	s.notify(ctx, d.invitedBy, msg, models.InvitationRefused{
		ProjectID: d.projectID,
		InviteID:  d.inviteID,
		UserID:    d.userID,
	})

	inviterEmail, _ := s.userEmail(ctx, d.invitedBy)
	s.email(ctx, mailer.KindInvitationRefused, inviterEmail, d.projectID, d.invitedBy, mailer.Data{
		ProjectName: projectName,
		ActorName:   nonEmpty(d.userName, "A user"),
	})
}

// AcceptInvitation is the accept-link flow. Unlike Respond, it notifies and
// emails the inviter. Accepting an approved membership again is a no-op;
// a declined or removed one is a Conflict until the user is invited again.
func (s *Service) AcceptInvitation(ctx context.Context, projectID, userID, actingUID string) error {
	m, err := s.invitedMembership(ctx, projectID, userID, actingUID)
	if err != nil {
		return err
	}
	switch m.Status {
	case models.StatusApproved:
		return nil
	case models.StatusPending:
	default:
		return apperr.Conflict.New("Invitation is no longer open")
	}

	ok, err := s.memberships.SetStatus(ctx, m.ID, models.StatusPending, models.StatusApproved)
	if err != nil {
		return apperr.Internal.Wrap(err)
	}
	if !ok {
		return apperr.Conflict.New("Invitation is no longer open")
	}
	s.audit.InvitationAccepted(ctx, projectID, userID, "link")

	// close out the live invite so the mailbox does not keep offering it
	no := false
	live, err := s.notifications.Find(ctx, notificationstore.Filter{
		UserID:    userID,
		ProjectID: projectID,
		Type:      models.NotifyProjectInvite,
		Responded: &no,
	})
	if err != nil {
		s.log.Warn("live invite lookup failed", zap.String("project_id", projectID), zap.Error(err))
	}
	projectName := ""
	for _, n := range live {
		if projectName == "" {
			projectName = n.Context.ProjectName
		}
		if _, err := s.notifications.MarkAsReadAndResponded(ctx, n.ID, true); err != nil {
			s.log.Warn("mark invite responded failed", zap.String("notification_id", n.ID), zap.Error(err))
		}
	}

	if m.InvitedBy == "" {
		return nil
	}
	projectName = s.projectName(ctx, projectID, projectName)
	accepter := nonEmpty(fullName(m.Firstname, m.Lastname), m.Email)

	msg := fmt.Sprintf("%s accepted your invitation to join %s", s.clean(nonEmpty(accepter, "A user")), s.clean(projectName))
	s.notify(ctx, m.InvitedBy, msg, models.InviteAccepted{ProjectID: projectID, UserID: userID})

	inviterEmail, _ := s.userEmail(ctx, m.InvitedBy)
	s.email(ctx, mailer.KindInvitationAccepted, inviterEmail, projectID, m.InvitedBy, mailer.Data{
		ProjectName: projectName,
		ActorName:   nonEmpty(accepter, "A user"),
	})
	return nil
}

// InvitationAccepted reports whether userID's membership of projectID is
// approved.
func (s *Service) InvitationAccepted(ctx context.Context, projectID, userID, actingUID string) (bool, error) {
	m, err := s.invitedMembership(ctx, projectID, userID, actingUID)
	if err != nil {
		return false, err
	}
	return m.Status == models.StatusApproved, nil
}

func (s *Service) invitedMembership(ctx context.Context, projectID, userID, actingUID string) (*models.ProjectMembership, error) {
	if projectID == "" || userID == "" {
		return nil, apperr.BadRequest.New("Missing projectId or userId")
	}
	if actingUID != userID {
		return nil, apperr.Forbidden.New("You can only answer your own invitation")
	}
	m, err := s.memberships.FindByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		return nil, apperr.Internal.Wrap(err)
	}
	if m == nil {
		return nil, apperr.NotFound.New("Invitation not found")
	}
	return m, nil
}

// transition moves the pair's membership from pending to status. It returns
// the membership it found (nil when there is none) and whether it moved.
// Failures are logged.
func (s *Service) transition(ctx context.Context, projectID, userID string, status models.MembershipStatus) (*models.ProjectMembership, bool) {
	if projectID == "" {
		return nil, false
	}
	m, err := s.memberships.FindByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		s.log.Warn("membership lookup failed",
			zap.String("project_id", projectID),
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, false
	}
	if m == nil {
		s.log.Info("no membership to transition",
			zap.String("project_id", projectID),
			zap.String("user_id", userID),
			zap.String("status", string(status)))
		return nil, false
	}
	if m.Status != models.StatusPending {
		s.log.Info("membership already answered",
			zap.String("membership_id", m.ID),
			zap.String("current", string(m.Status)),
			zap.String("requested", string(status)))
		return m, false
	}
	ok, err := s.memberships.SetStatus(ctx, m.ID, models.StatusPending, status)
	if err != nil {
		s.log.Warn("membership status update failed",
			zap.String("membership_id", m.ID),
			zap.String("status", string(status)),
			zap.Error(err))
		return m, false
	}
	return m, ok
}

// reload returns the stored notification, falling back to applying the
// answer to the copy already in hand.
func (s *Service) reload(ctx context.Context, n models.Notification, accepted bool) *models.Notification {
	fresh, err := s.notifications.Get(ctx, n.ID)
	if err == nil && fresh != nil {
		return fresh
	}
	n.Read = true
	n.Responded = true
	n.Accepted = &accepted
	return &n
}

// projectName prefers the stored project's name and falls back to known.
func (s *Service) projectName(ctx context.Context, projectID, known string) string {
	if s.projects == nil || projectID == "" {
		return known
	}
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil || p == nil {
		return known
	}
	return p.Name
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func fullName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}
