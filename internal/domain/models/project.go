package models

import "time"

// Project is a live-event production project.
type Project struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	OwnerID   string    `bson:"ownerId" json:"ownerId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Event is a scheduled item of a project. Members holds membership ids.
type Event struct {
	ID        string    `bson:"_id" json:"id"`
	ProjectID string    `bson:"projectId" json:"projectId"`
	Title     string    `bson:"title" json:"title"`
	Members   []string  `bson:"members" json:"members"`
	StartsAt  time.Time `bson:"startsAt" json:"startsAt"`
}

// Post is the display record of a role assignment shown on the project board.
type Post struct {
	ID        string    `bson:"_id" json:"id"`
	ProjectID string    `bson:"projectId" json:"projectId"`
	RoleID    string    `bson:"roleId" json:"roleId"`
	Label     string    `bson:"label" json:"label"`
	Icon      string    `bson:"icon,omitempty" json:"icon,omitempty"`
	Category  string    `bson:"category,omitempty" json:"category,omitempty"`
	Priority  int       `bson:"priority" json:"priority"`
	Members   []string  `bson:"members" json:"members"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
