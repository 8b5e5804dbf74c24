package eventstore

import (
	"context"

	"github.com/dalemusser/showmate/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// Create inserts an event, assigning an id when empty.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Members == nil {
		e.Members = []string{}
	}
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// GetByID returns the event, or nil.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// AddMember adds membershipID to the event's member list. Adding twice is a
// no-op. Returns mongo.ErrNoDocuments when the event does not exist.
func (s *Store) AddMember(ctx context.Context, eventID, membershipID string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{"$addToSet": bson.M{"members": membershipID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByProject removes every event of a project.
func (s *Store) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
