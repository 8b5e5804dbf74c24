package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/showmate/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateUser creates a test user profile.
func (f *Fixtures) CreateUser(ctx context.Context, firstname, lastname, email string) models.User {
	f.t.Helper()
	u := models.User{
		ID:        uuid.NewString(),
		Firstname: firstname,
		Lastname:  lastname,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateProject creates a test project owned by ownerID.
func (f *Fixtures) CreateProject(ctx context.Context, name, ownerID string) models.Project {
	f.t.Helper()
	p := models.Project{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "projects", p)
	return p
}

// CreateEvent creates a scheduled event in the project.
func (f *Fixtures) CreateEvent(ctx context.Context, projectID, title string) models.Event {
	f.t.Helper()
	e := models.Event{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		Members:   []string{},
		StartsAt:  time.Now().UTC().Add(24 * time.Hour),
	}
	f.insert(ctx, "events", e)
	return e
}

// CreateMembership creates a membership with the given status.
func (f *Fixtures) CreateMembership(ctx context.Context, projectID string, u models.User, status models.MembershipStatus, invitedBy string) models.ProjectMembership {
	f.t.Helper()
	m := models.ProjectMembership{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		UserID:     u.ID,
		Role:       "Technicien",
		RoleID:     "tech",
		Permission: models.PermissionViewer,
		Status:     status,
		InvitedBy:  invitedBy,
		JoinedAt:   time.Now().UTC(),
		Firstname:  u.Firstname,
		Lastname:   u.Lastname,
		Email:      u.Email,
	}
	f.insert(ctx, "project_memberships", m)
	return m
}

// CreateInviteNotification creates an unanswered project_invite for userID.
func (f *Fixtures) CreateInviteNotification(ctx context.Context, userID, projectID, projectName, invitedBy string) models.Notification {
	f.t.Helper()
	n, err := models.NewNotification(userID, "You have been invited to join "+projectName, models.ProjectInvite{
		ProjectID:   projectID,
		ProjectName: projectName,
		InvitedBy:   invitedBy,
		Role:        "Technicien",
	})
	if err != nil {
		f.t.Fatalf("build notification: %v", err)
	}
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	f.insert(ctx, "notifications", n)
	return n
}

// Count returns the number of documents in coll matching filter.
func (f *Fixtures) Count(ctx context.Context, coll string, filter any) int64 {
	f.t.Helper()
	n, err := f.db.Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		f.t.Fatalf("count %s: %v", coll, err)
	}
	return n
}
