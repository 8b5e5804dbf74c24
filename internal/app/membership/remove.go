package membership

import (
	"context"
	"fmt"

	"github.com/dalemusser/showmate/internal/app/system/apperr"
	"github.com/dalemusser/showmate/internal/app/system/mailer"
	"github.com/dalemusser/showmate/internal/domain/models"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RemoveRequest carries the fields of DELETE /project/member.
type RemoveRequest struct {
	MembershipID string `json:"membershipId"`
	UserID       string `json:"userId"`
	ProjectID    string `json:"projectId"`
	ProjectName  string `json:"projectName"`
}

// RemoveMember hard-deletes a membership and tells the removed user.
// Removing a membership that no longer exists succeeds without notifying
// anyone.
func (s *Service) RemoveMember(ctx context.Context, actingUID string, r RemoveRequest) error {
	if r.MembershipID == "" || r.UserID == "" || r.ProjectID == "" {
		return apperr.BadRequest.New("Missing required fields")
	}

	m, err := s.memberships.FindByID(ctx, r.MembershipID)
	if err != nil {
		return apperr.Internal.Wrap(err)
	}
	if m == nil {
		s.log.Info("membership already removed",
			zap.String("membership_id", r.MembershipID),
			zap.String("project_id", r.ProjectID))
		return nil
	}
	if m.ProjectID != r.ProjectID || m.UserID != r.UserID {
		return apperr.BadRequest.New("Membership does not match project and user")
	}

	if err := s.memberships.DeleteByID(ctx, r.MembershipID); err != nil {
		return apperr.Internal.Wrap(err)
	}
	s.audit.MemberRemoved(ctx, actingUID, r.ProjectID, r.UserID, r.MembershipID)

	projectName := s.projectName(ctx, r.ProjectID, r.ProjectName)
	s.notify(ctx, r.UserID, fmt.Sprintf("You have been removed from %s", s.clean(projectName)), models.ProjectRemoved{
		ProjectID:   r.ProjectID,
		ProjectName: projectName,
	})
	s.email(ctx, mailer.KindProjectRemoved, m.Email, r.ProjectID, r.UserID, mailer.Data{ProjectName: projectName})
	return nil
}

// DeleteProject tears down a project and everything scoped to it, then
// tells every former member. Sub-resources, memberships and notifications
// go before the project document so an interrupted teardown never leaves
// records pointing at a project that is already gone. Per-user notification
// and email failures are logged and do not stop the loop.
func (s *Service) DeleteProject(ctx context.Context, projectID, actingUID string) error {
	if projectID == "" {
		return apperr.BadRequest.New("Missing projectId")
	}
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return apperr.Internal.Wrap(err)
	}
	if p == nil {
		return apperr.NotFound.New("Project not found")
	}
	if p.OwnerID != "" && p.OwnerID != actingUID {
		return apperr.Forbidden.New("Only the project owner can delete it")
	}

	members, err := s.memberships.FindProjectMembers(ctx, projectID)
	if err != nil {
		return apperr.Internal.Wrap(err)
	}
	affected := affectedUsers(members)

	for _, step := range []struct {
		name string
		coll ProjectScoped
	}{
		{"events", s.events},
		{"posts", s.posts},
		{"messages", s.messages},
		{"memberships", s.memberships},
		{"notifications", s.notifications},
	} {
		if step.coll == nil {
			continue
		}
		n, err := step.coll.DeleteByProject(ctx, projectID)
		if err != nil {
			return apperr.Internal.Wrap(fmt.Errorf("delete %s: %w", step.name, err))
		}
		s.log.Debug("project teardown step",
			zap.String("project_id", projectID),
			zap.String("collection", step.name),
			zap.Int64("deleted", n))
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return apperr.Internal.Wrap(err)
	}
	s.audit.ProjectDeleted(ctx, actingUID, projectID, p.Name, len(affected))

	var failures error
	msg := fmt.Sprintf("The project %s has been deleted", s.clean(p.Name))
	for _, u := range affected {
		if !s.notify(ctx, u.userID, msg, models.ProjectDeleted{ProjectName: p.Name}) {
			failures = multierr.Append(failures, fmt.Errorf("notify %s", u.userID))
		}
		if u.email != "" && !s.email(ctx, mailer.KindProjectDeleted, u.email, projectID, u.userID, mailer.Data{ProjectName: p.Name}) {
			failures = multierr.Append(failures, fmt.Errorf("email %s", u.userID))
		}
	}
	if failures != nil {
		s.log.Warn("project deleted with notification failures",
			zap.String("project_id", projectID),
			zap.Int("failed", len(multierr.Errors(failures))),
			zap.Error(failures))
	}
	return nil
}

type affectedUser struct {
	userID string
	email  string
}

// affectedUsers returns one entry per distinct member, in membership order.
func affectedUsers(members []models.ProjectMembership) []affectedUser {
	seen := make(map[string]int, len(members))
	out := make([]affectedUser, 0, len(members))
	for _, m := range members {
		if m.UserID == "" {
			continue
		}
		if i, ok := seen[m.UserID]; ok {
			if out[i].email == "" {
				out[i].email = m.Email
			}
			continue
		}
		seen[m.UserID] = len(out)
		out = append(out, affectedUser{userID: m.UserID, email: m.Email})
	}
	return out
}
