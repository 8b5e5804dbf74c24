package notificationstore_test

import (
	"testing"
	"time"

	notificationstore "github.com/dalemusser/showmate/internal/app/store/notifications"
	"github.com/dalemusser/showmate/internal/domain/models"
	"github.com/dalemusser/showmate/internal/testutil"
)

func newInvite(t *testing.T, userID, projectID string) models.Notification {
	t.Helper()
	n, err := models.NewNotification(userID, "invited", models.ProjectInvite{
		ProjectID: projectID, ProjectName: "Tour", InvitedBy: "manager", Role: "Light",
	})
	if err != nil {
		t.Fatalf("NewNotification: %v", err)
	}
	return n
}

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, newInvite(t, "u1", "p1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Errorf("expected ID and CreatedAt, got %+v", created)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.Context.ProjectID != "p1" || got.Accepted != nil || got.RespondedAt != nil {
		t.Errorf("stored notification = %+v", got)
	}

	if missing, err := store.Get(ctx, "nope"); err != nil || missing != nil {
		t.Errorf("Get(missing) = %v, %v", missing, err)
	}
}

func TestStore_FindAndListForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	for i, p := range []string{"p1", "p2", "p3"} {
		n := newInvite(t, "u1", p)
		n.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := store.Create(ctx, n); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	_, _ = store.Create(ctx, newInvite(t, "u2", "p1"))

	list, err := store.ListForUser(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 2 || list[0].Context.ProjectID != "p3" {
		t.Errorf("expected newest first with limit, got %+v", list)
	}

	no := false
	open, err := store.Find(ctx, notificationstore.Filter{ProjectID: "p1", Type: models.NotifyProjectInvite, Responded: &no})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(open) != 2 {
		t.Errorf("open invites for p1 = %d, want 2", len(open))
	}
}

func TestStore_MarkAsReadAndResponded(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, _ := store.Create(ctx, newInvite(t, "u1", "p1"))

	for _, accepted := range []bool{true, false} {
		ok, err := store.MarkAsReadAndResponded(ctx, n.ID, accepted)
		if err != nil || !ok {
			t.Fatalf("MarkAsReadAndResponded = %v, %v", ok, err)
		}
		got, _ := store.Get(ctx, n.ID)
		if !got.Read || !got.Responded || got.Accepted == nil || *got.Accepted != accepted || got.RespondedAt == nil {
			t.Errorf("after answer %v: %+v", accepted, got)
		}
	}

	ok, err := store.MarkAsReadAndResponded(ctx, "missing", true)
	if err != nil || ok {
		t.Errorf("missing id = %v, %v", ok, err)
	}
}

func TestStore_MarkAsRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, _ := store.Create(ctx, newInvite(t, "u1", "p1"))
	if ok, err := store.MarkAsRead(ctx, n.ID); err != nil || !ok {
		t.Fatalf("MarkAsRead = %v, %v", ok, err)
	}
	got, _ := store.Get(ctx, n.ID)
	if !got.Read || got.Responded {
		t.Errorf("after MarkAsRead: %+v", got)
	}
}

func TestStore_DeleteByProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _ = store.Create(ctx, newInvite(t, "u1", "p1"))
	_, _ = store.Create(ctx, newInvite(t, "u2", "p1"))
	_, _ = store.Create(ctx, newInvite(t, "u1", "p2"))
	deleted, _ := models.NewNotification("u1", "gone", models.ProjectDeleted{ProjectName: "Old"})
	_, _ = store.Create(ctx, deleted)

	n, err := store.DeleteByProject(ctx, "p1")
	if err != nil || n != 2 {
		t.Fatalf("DeleteByProject = %d, %v; want 2", n, err)
	}

	ids, err := store.DistinctProjectIDs(ctx)
	if err != nil {
		t.Fatalf("DistinctProjectIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "p2" {
		t.Errorf("remaining project ids = %v, want [p2]", ids)
	}

	left, _ := store.ListForUser(ctx, "u1", 0)
	if len(left) != 2 {
		t.Errorf("u1 notifications left = %d, want 2", len(left))
	}
}

func TestStore_Subscribe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.RequireReplicaSet(t, db)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got := make(chan models.Notification, 4)
	stop, err := store.Subscribe(ctx, "u1", func(n models.Notification) { got <- n }, func(err error) {
		t.Errorf("stream error: %v", err)
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer stop()

	_, _ = store.Create(ctx, newInvite(t, "u2", "p1"))
	mine, _ := store.Create(ctx, newInvite(t, "u1", "p1"))

	select {
	case n := <-got:
		if n.ID != mine.ID {
			t.Errorf("received %s, want %s", n.ID, mine.ID)
		}
	case <-ctx.Done():
		t.Fatal("no change event received")
	}
}
