package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/showmate/internal/app/system/normalize"
	"github.com/dalemusser/showmate/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store reads and writes user profiles. Profiles are keyed by the identity
// provider's uid.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	ErrDuplicateUser = errors.New("a user with this id already exists")
	errMissingID     = errors.New("user id is required")
)

// GetByID loads a profile, returning nil when the uid is unknown.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new profile.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		return models.User{}, errMissingID
	}
	u.Email = normalize.Email(u.Email)
	u.Firstname = normalize.Name(u.Firstname)
	u.Lastname = normalize.Name(u.Lastname)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUser
		}
		return models.User{}, err
	}
	return u, nil
}
