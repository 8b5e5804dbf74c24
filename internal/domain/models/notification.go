package models

import (
	"errors"
	"fmt"
	"time"
)

// NotificationType identifies what a mailbox entry is about.
type NotificationType string

const (
	NotifyProjectInvite         NotificationType = "project_invite"
	NotifyProjectInviteAccepted NotificationType = "project_invite_accepted"
	NotifyInvitationRefused     NotificationType = "invitation_refused"
	NotifyProjectRemoved        NotificationType = "project_removed"
	NotifyProjectDeleted        NotificationType = "project_deleted"
)

// Actionable reports whether the recipient is expected to respond.
func (t NotificationType) Actionable() bool {
	return t == NotifyProjectInvite
}

// NotificationContext is the stored form of a notification payload. Only the
// fields of the payload that produced it are set.
type NotificationContext struct {
	ProjectID   string `bson:"projectId,omitempty" json:"projectId,omitempty"`
	ProjectName string `bson:"projectName,omitempty" json:"projectName,omitempty"`
	InvitedBy   string `bson:"invitedBy,omitempty" json:"invitedBy,omitempty"`
	Role        string `bson:"role,omitempty" json:"role,omitempty"`
	InviteID    string `bson:"inviteId,omitempty" json:"inviteId,omitempty"`
	UserID      string `bson:"userId,omitempty" json:"userId,omitempty"`
}

// Notification is a mailbox entry addressed to one user.
type Notification struct {
	ID          string              `bson:"_id" json:"id"`
	UserID      string              `bson:"userId" json:"userId"`
	Type        NotificationType    `bson:"type" json:"type"`
	Message     string              `bson:"message" json:"message"`
	Context     NotificationContext `bson:"context" json:"context"`
	Read        bool                `bson:"read" json:"read"`
	Responded   bool                `bson:"responded" json:"responded"`
	Accepted    *bool               `bson:"accepted" json:"accepted"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	RespondedAt *time.Time          `bson:"respondedAt" json:"respondedAt"`
}

// Payload is implemented by the per-type context variants. A payload knows
// its notification type and which of its fields are mandatory.
type Payload interface {
	Type() NotificationType
	Validate() error
	Context() NotificationContext
}

// ProjectInvite is sent to the invitee.
type ProjectInvite struct {
	ProjectID   string
	ProjectName string
	InvitedBy   string
	Role        string
}

func (ProjectInvite) Type() NotificationType { return NotifyProjectInvite }

func (p ProjectInvite) Validate() error {
	return require("project_invite", map[string]string{
		"projectId": p.ProjectID, "invitedBy": p.InvitedBy, "role": p.Role,
	})
}

func (p ProjectInvite) Context() NotificationContext {
	return NotificationContext{ProjectID: p.ProjectID, ProjectName: p.ProjectName, InvitedBy: p.InvitedBy, Role: p.Role}
}

// InviteAccepted is sent to the inviter from the accept-link flow.
type InviteAccepted struct {
	ProjectID string
	UserID    string
}

func (InviteAccepted) Type() NotificationType { return NotifyProjectInviteAccepted }

func (p InviteAccepted) Validate() error {
	return require("project_invite_accepted", map[string]string{"projectId": p.ProjectID, "userId": p.UserID})
}

func (p InviteAccepted) Context() NotificationContext {
	return NotificationContext{ProjectID: p.ProjectID, UserID: p.UserID}
}

// InvitationRefused is sent to the inviter when the invitee declines.
type InvitationRefused struct {
	ProjectID string
	InviteID  string
	UserID    string
}

func (InvitationRefused) Type() NotificationType { return NotifyInvitationRefused }

func (p InvitationRefused) Validate() error {
	return require("invitation_refused", map[string]string{"projectId": p.ProjectID, "inviteId": p.InviteID})
}

func (p InvitationRefused) Context() NotificationContext {
	return NotificationContext{ProjectID: p.ProjectID, InviteID: p.InviteID, UserID: p.UserID}
}

// ProjectRemoved is sent to a member removed from a project.
type ProjectRemoved struct {
	ProjectID   string
	ProjectName string
}

func (ProjectRemoved) Type() NotificationType { return NotifyProjectRemoved }

func (p ProjectRemoved) Validate() error {
	return require("project_removed", map[string]string{"projectId": p.ProjectID})
}

func (p ProjectRemoved) Context() NotificationContext {
	return NotificationContext{ProjectID: p.ProjectID, ProjectName: p.ProjectName}
}

// ProjectDeleted is sent to every former member of a deleted project. It
// carries the name only; the project id no longer resolves to anything.
type ProjectDeleted struct {
	ProjectName string
}

func (ProjectDeleted) Type() NotificationType { return NotifyProjectDeleted }

func (p ProjectDeleted) Validate() error {
	return require("project_deleted", map[string]string{"projectName": p.ProjectName})
}

func (p ProjectDeleted) Context() NotificationContext {
	return NotificationContext{ProjectName: p.ProjectName}
}

// ErrInvalidPayload wraps every payload validation failure.
var ErrInvalidPayload = errors.New("invalid notification payload")

func require(kind string, fields map[string]string) error {
	for name, v := range fields {
		if v == "" {
			return fmt.Errorf("%w: %s requires %s", ErrInvalidPayload, kind, name)
		}
	}
	return nil
}

// NewNotification validates p and builds an unread notification for userID.
// ID and CreatedAt are assigned by the store.
func NewNotification(userID, message string, p Payload) (Notification, error) {
	if userID == "" {
		return Notification{}, fmt.Errorf("%w: recipient is required", ErrInvalidPayload)
	}
	if err := p.Validate(); err != nil {
		return Notification{}, err
	}
	return Notification{
		UserID:  userID,
		Type:    p.Type(),
		Message: message,
		Context: p.Context(),
	}, nil
}
