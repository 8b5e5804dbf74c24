package indexes_test

import (
	"testing"

	"github.com/dalemusser/showmate/internal/app/system/indexes"
	"github.com/dalemusser/showmate/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bson.M {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	out := make(map[string]bson.M)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			out[name] = idx
		}
	}
	return out
}

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	// Second call should also succeed (idempotent)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesExpectedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"users":               {"idx_users_email"},
		"projects":            {"idx_projects_owner"},
		"project_memberships": {"idx_pm_project_user_joined", "idx_pm_user_joined"},
		"notifications":       {"idx_notifications_user_created", "idx_notifications_project", "idx_notifications_user_type_responded"},
		"events":              {"idx_events_project"},
		"posts":               {"idx_posts_project"},
		"messages":            {"idx_messages_project"},
		"audit_events":        {"idx_audit_timestamp", "idx_audit_project_time"},
	}
	for coll, names := range want {
		got := indexNames(t, db, coll)
		for _, n := range names {
			if _, ok := got[n]; !ok {
				t.Errorf("%s: expected index %q", coll, n)
			}
		}
	}
}

func TestEnsureAll_MembershipPairIsNotUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	idx := indexNames(t, db, "project_memberships")["idx_pm_project_user_joined"]
	if u, ok := idx["unique"].(bool); ok && u {
		t.Fatal("membership pair index must not be unique")
	}

	coll := db.Collection("project_memberships")
	doc := bson.M{"projectId": "p1", "userId": "u1", "status": "declined"}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	doc2 := bson.M{"projectId": "p1", "userId": "u1", "status": "pending"}
	if _, err := coll.InsertOne(ctx, doc2); err != nil {
		t.Fatalf("second insert for same pair should succeed: %v", err)
	}
}

func TestEnsureAll_RenamesMisnamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("posts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "projectId", Value: 1}},
	})
	if err != nil {
		t.Fatalf("seed index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	got := indexNames(t, db, "posts")
	if _, ok := got["idx_posts_project"]; !ok {
		t.Errorf("expected index to be renamed, have %v", got)
	}
	if _, ok := got["projectId_1"]; ok {
		t.Error("old index name should be gone")
	}
}
