package models

import (
	"strings"
	"time"
)

// User is the profile record kept for every account known to the identity
// provider. ID is the provider's uid.
type User struct {
	ID        string    `bson:"_id" json:"id"`
	Firstname string    `bson:"firstname" json:"firstname"`
	Lastname  string    `bson:"lastname" json:"lastname"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	PhotoURL  string    `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// DisplayName returns "Firstname Lastname", falling back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.Firstname + " " + u.Lastname)
	if name == "" {
		return u.Email
	}
	return name
}
