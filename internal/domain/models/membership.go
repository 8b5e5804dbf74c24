package models

import "time"

// MembershipStatus is the state of one invite cycle.
type MembershipStatus string

const (
	StatusPending  MembershipStatus = "pending"
	StatusApproved MembershipStatus = "approved"
	StatusDeclined MembershipStatus = "declined"
	StatusRemoved  MembershipStatus = "removed"
)

// Active reports whether the membership is live or awaiting a response.
// Declined and removed memberships are terminal for their invite cycle.
func (s MembershipStatus) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// Permission controls what a member may do inside a project.
type Permission string

const (
	PermissionManager Permission = "manager"
	PermissionEditor  Permission = "editor"
	PermissionViewer  Permission = "viewer"
)

// ProjectMembership is one user's relationship to one project.
//
// Contact fields are copied from the user profile at invite time so team
// listings do not need a join against users.
type ProjectMembership struct {
	ID         string           `bson:"_id" json:"id"`
	ProjectID  string           `bson:"projectId" json:"projectId"`
	UserID     string           `bson:"userId" json:"userId"`
	Role       string           `bson:"role" json:"role"`
	RoleID     string           `bson:"roleId,omitempty" json:"roleId,omitempty"`
	Permission Permission       `bson:"permission" json:"permission"`
	Status     MembershipStatus `bson:"status" json:"status"`
	InvitedBy  string           `bson:"invitedBy" json:"invitedBy"`
	JoinedAt   time.Time        `bson:"joinedAt" json:"joinedAt"`
	LeftAt     *time.Time       `bson:"leftAt,omitempty" json:"leftAt,omitempty"`

	Firstname string `bson:"firstname" json:"firstname"`
	Lastname  string `bson:"lastname" json:"lastname"`
	Email     string `bson:"email" json:"email"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	PhotoURL  string `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
}

// MembershipUpdate is a partial update. Nil fields are left untouched.
type MembershipUpdate struct {
	Role       *string
	RoleID     *string
	Permission *Permission
	Status     *MembershipStatus
	InvitedBy  *string
	JoinedAt   *time.Time
	LeftAt     *time.Time
	Firstname  *string
	Lastname   *string
	Email      *string
	Phone      *string
	PhotoURL   *string
}
