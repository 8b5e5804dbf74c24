package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/showmate/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

var errMissingName = errors.New("project name is required")

// Create inserts a project, assigning an id when empty.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	if p.Name == "" {
		return models.Project{}, errMissingName
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// GetByID returns the project, or nil when it does not exist.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the project document. Absent ids are not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ExistingIDs returns the subset of ids that still name a project.
func (s *Store) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	vals, err := s.c.Distinct(ctx, "_id", bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, v := range vals {
		if id, ok := v.(string); ok {
			out[id] = true
		}
	}
	return out, nil
}
