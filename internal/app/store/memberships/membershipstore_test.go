package membershipstore_test

import (
	"testing"
	"time"

	membershipstore "github.com/dalemusser/showmate/internal/app/store/memberships"
	"github.com/dalemusser/showmate/internal/domain/models"
	"github.com/dalemusser/showmate/internal/testutil"
)

func TestStore_CreateAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "p1", "u1", models.ProjectMembership{
		ProjectID: "ignored",
		Role:      "Light",
		Status:    models.StatusPending,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if created.JoinedAt.IsZero() {
		t.Error("expected JoinedAt to be set")
	}
	if created.ProjectID != "p1" || created.UserID != "u1" {
		t.Errorf("pair = %s/%s, want p1/u1", created.ProjectID, created.UserID)
	}

	got, err := store.FindByProjectAndUser(ctx, "p1", "u1")
	if err != nil {
		t.Fatalf("FindByProjectAndUser failed: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("got %+v, want id %s", got, created.ID)
	}

	byID, err := store.FindByID(ctx, created.ID)
	if err != nil || byID == nil {
		t.Fatalf("FindByID = %v, %v", byID, err)
	}

	if missing, err := store.FindByProjectAndUser(ctx, "p1", "nobody"); err != nil || missing != nil {
		t.Errorf("absent pair = %v, %v; want nil, nil", missing, err)
	}
}

func TestStore_Create_RequiresPair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "", "u1", models.ProjectMembership{}); err == nil {
		t.Error("expected error for missing projectId")
	}
	if _, err := store.Create(ctx, "p1", "", models.ProjectMembership{}); err == nil {
		t.Error("expected error for missing userId")
	}
}

func TestStore_DuplicatePairAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	old := time.Now().UTC().Add(-time.Hour)
	if _, err := store.Create(ctx, "p1", "u1", models.ProjectMembership{Status: models.StatusDeclined, JoinedAt: old}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	newer, err := store.Create(ctx, "p1", "u1", models.ProjectMembership{Status: models.StatusPending})
	if err != nil {
		t.Fatalf("second Create for the same pair should succeed: %v", err)
	}

	got, err := store.FindByProjectAndUser(ctx, "p1", "u1")
	if err != nil {
		t.Fatalf("FindByProjectAndUser failed: %v", err)
	}
	if got.ID != newer.ID {
		t.Errorf("expected the most recent record, got status %q", got.Status)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, "p1", "u1", models.ProjectMembership{
		Role:   "Light",
		Status: models.StatusPending,
		Email:  "u1@example.com",
	})

	approved := models.StatusApproved
	role := "Sound"
	got, err := store.Update(ctx, "p1", "u1", models.MembershipUpdate{Status: &approved, Role: &role})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("Update returned %+v", got)
	}
	if got.Status != models.StatusApproved || got.Role != "Sound" {
		t.Errorf("updated = %+v", got)
	}
	if got.Email != "u1@example.com" {
		t.Error("fields not in the update must be kept")
	}

	missing, err := store.Update(ctx, "p1", "nobody", models.MembershipUpdate{Status: &approved})
	if err != nil || missing != nil {
		t.Errorf("Update of absent pair = %v, %v; want nil, nil", missing, err)
	}
}

func TestStore_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, "p1", "u1", models.ProjectMembership{Status: models.StatusPending})

	ok, err := store.SetStatus(ctx, created.ID, models.StatusPending, models.StatusDeclined)
	if err != nil || !ok {
		t.Fatalf("SetStatus = %v, %v", ok, err)
	}
	got, _ := store.FindByID(ctx, created.ID)
	if got.Status != models.StatusDeclined {
		t.Errorf("status = %q, want declined", got.Status)
	}

	// the membership is no longer pending, so a second transition misses
	ok, err = store.SetStatus(ctx, created.ID, models.StatusPending, models.StatusApproved)
	if err != nil || ok {
		t.Errorf("SetStatus from stale status = %v, %v; want false, nil", ok, err)
	}
	got, _ = store.FindByID(ctx, created.ID)
	if got.Status != models.StatusDeclined {
		t.Errorf("status = %q, want still declined", got.Status)
	}

	ok, err = store.SetStatus(ctx, "missing", models.StatusPending, models.StatusDeclined)
	if err != nil || ok {
		t.Errorf("SetStatus on missing id = %v, %v", ok, err)
	}
}

func TestStore_DeletesAreIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, "p1", "u1", models.ProjectMembership{Status: models.StatusPending})
	_, _ = store.Create(ctx, "p1", "u2", models.ProjectMembership{Status: models.StatusPending})
	_, _ = store.Create(ctx, "p1", "u3", models.ProjectMembership{Status: models.StatusApproved})
	_, _ = store.Create(ctx, "p2", "u1", models.ProjectMembership{Status: models.StatusApproved})

	for i := 0; i < 2; i++ {
		if err := store.DeleteByID(ctx, a.ID); err != nil {
			t.Fatalf("DeleteByID #%d failed: %v", i+1, err)
		}
		if err := store.Delete(ctx, "p1", "u2"); err != nil {
			t.Fatalf("Delete #%d failed: %v", i+1, err)
		}
	}

	members, err := store.FindProjectMembers(ctx, "p1")
	if err != nil {
		t.Fatalf("FindProjectMembers failed: %v", err)
	}
	if len(members) != 1 || members[0].UserID != "u3" {
		t.Errorf("remaining members = %+v", members)
	}

	n, err := store.DeleteByProject(ctx, "p1")
	if err != nil || n != 1 {
		t.Errorf("DeleteByProject = %d, %v; want 1", n, err)
	}
	mine, _ := store.FindUserMemberships(ctx, "u1")
	if len(mine) != 1 || mine[0].ProjectID != "p2" {
		t.Errorf("other project's membership should survive, got %+v", mine)
	}
}

func TestStore_DistinctProjectIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _ = store.Create(ctx, "p1", "u1", models.ProjectMembership{})
	_, _ = store.Create(ctx, "p1", "u2", models.ProjectMembership{})
	_, _ = store.Create(ctx, "p2", "u1", models.ProjectMembership{})

	ids, err := store.DistinctProjectIDs(ctx)
	if err != nil {
		t.Fatalf("DistinctProjectIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %v, want 2 distinct", ids)
	}
}
