package messagestore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store covers the project chat messages. Only teardown is needed here;
// messages are written by the chat client directly.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages")}
}

// DeleteByProject removes every message of a project.
func (s *Store) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
