// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/showmate/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the Mongo collection backing project memberships.
const Collection = "project_memberships"

// Store is typed CRUD over project_memberships.
//
// There is no unique index on (projectId, userId): callers check for an
// existing active membership before creating one, and two concurrent
// creates for the same pair can both succeed.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

var errMissingKey = errors.New("projectId and userId are required")

// latestFirst makes lookups by pair deterministic when more than one record
// exists for it.
var latestFirst = bson.D{{Key: "joinedAt", Value: -1}}

// FindByProjectAndUser returns the most recent membership for the pair, or
// nil when there is none.
func (s *Store) FindByProjectAndUser(ctx context.Context, projectID, userID string) (*models.ProjectMembership, error) {
	var m models.ProjectMembership
	opts := options.FindOne().SetSort(latestFirst)
	err := s.c.FindOne(ctx, bson.M{"projectId": projectID, "userId": userID}, opts).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByID returns the membership with the given id, or nil.
func (s *Store) FindByID(ctx context.Context, id string) (*models.ProjectMembership, error) {
	var m models.ProjectMembership
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindProjectMembers lists every membership of a project, oldest first.
func (s *Store) FindProjectMembers(ctx context.Context, projectID string) ([]models.ProjectMembership, error) {
	return s.find(ctx, bson.M{"projectId": projectID})
}

// FindUserMemberships lists every membership held by a user.
func (s *Store) FindUserMemberships(ctx context.Context, userID string) ([]models.ProjectMembership, error) {
	return s.find(ctx, bson.M{"userId": userID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.ProjectMembership, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ProjectMembership{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a membership for the pair. ID and JoinedAt are assigned
// here when empty; data's ProjectID/UserID are overwritten by the arguments.
func (s *Store) Create(ctx context.Context, projectID, userID string, data models.ProjectMembership) (models.ProjectMembership, error) {
	if projectID == "" || userID == "" {
		return models.ProjectMembership{}, errMissingKey
	}
	data.ProjectID = projectID
	data.UserID = userID
	if data.ID == "" {
		data.ID = uuid.NewString()
	}
	if data.JoinedAt.IsZero() {
		data.JoinedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, data); err != nil {
		return models.ProjectMembership{}, err
	}
	return data, nil
}

// Update merges u into the most recent membership of the pair and returns
// the updated record, or nil when the pair has no membership.
func (s *Store) Update(ctx context.Context, projectID, userID string, u models.MembershipUpdate) (*models.ProjectMembership, error) {
	set := updateDoc(u)
	if len(set) == 0 {
		return s.FindByProjectAndUser(ctx, projectID, userID)
	}

	opts := options.FindOneAndUpdate().
		SetSort(latestFirst).
		SetReturnDocument(options.After)

	var m models.ProjectMembership
	err := s.c.FindOneAndUpdate(ctx, bson.M{"projectId": projectID, "userId": userID}, bson.M{"$set": set}, opts).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SetStatus moves the membership with the given id from one status to
// another. It reports whether a document in the from status matched, so a
// concurrent transition leaves the later caller with false.
func (s *Store) SetStatus(ctx context.Context, id string, from, to models.MembershipStatus) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Delete hard-deletes every membership of the pair. Deleting an absent
// membership is not an error.
func (s *Store) Delete(ctx context.Context, projectID, userID string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"projectId": projectID, "userId": userID})
	return err
}

// DeleteByID hard-deletes one membership. Absent ids are not an error.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByProject removes all memberships of a project.
// Returns the number of documents deleted.
func (s *Store) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DistinctProjectIDs returns every projectId referenced by a membership.
func (s *Store) DistinctProjectIDs(ctx context.Context) ([]string, error) {
	vals, err := s.c.Distinct(ctx, "projectId", bson.M{})
	if err != nil {
		return nil, err
	}
	return stringsOf(vals), nil
}

func stringsOf(vals []interface{}) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func updateDoc(u models.MembershipUpdate) bson.M {
	set := bson.M{}
	if u.Role != nil {
		set["role"] = *u.Role
	}
	if u.RoleID != nil {
		set["roleId"] = *u.RoleID
	}
	if u.Permission != nil {
		set["permission"] = *u.Permission
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.InvitedBy != nil {
		set["invitedBy"] = *u.InvitedBy
	}
	if u.JoinedAt != nil {
		set["joinedAt"] = *u.JoinedAt
	}
	if u.LeftAt != nil {
		set["leftAt"] = *u.LeftAt
	}
	if u.Firstname != nil {
		set["firstname"] = *u.Firstname
	}
	if u.Lastname != nil {
		set["lastname"] = *u.Lastname
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.PhotoURL != nil {
		set["photo_url"] = *u.PhotoURL
	}
	return set
}
