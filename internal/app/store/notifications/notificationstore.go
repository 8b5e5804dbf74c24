// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"time"

	"github.com/dalemusser/showmate/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the Mongo collection backing user mailboxes.
const Collection = "notifications"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Filter selects notifications. Empty fields are not filtered on.
type Filter struct {
	UserID    string
	ProjectID string
	Type      models.NotificationType
	Responded *bool
	Limit     int64
}

func (f Filter) bson() bson.M {
	q := bson.M{}
	if f.UserID != "" {
		q["userId"] = f.UserID
	}
	if f.ProjectID != "" {
		q["context.projectId"] = f.ProjectID
	}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.Responded != nil {
		q["responded"] = *f.Responded
	}
	return q
}

// Create appends n and returns it with its generated ID and creation time.
func (s *Store) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// Get returns the notification with id, or nil.
func (s *Store) Get(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Find returns notifications matching f, newest first.
func (s *Store) Find(ctx context.Context, f Filter) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := s.c.Find(ctx, f.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForUser returns userID's mailbox, newest first. limit <= 0 means all.
func (s *Store) ListForUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error) {
	return s.Find(ctx, Filter{UserID: userID, Limit: limit})
}

// MarkAsReadAndResponded records the recipient's answer. Calling it again
// overwrites the previous answer. It reports whether a document matched.
func (s *Store) MarkAsReadAndResponded(ctx context.Context, id string, accepted bool) (bool, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"read":        true,
		"responded":   true,
		"accepted":    accepted,
		"respondedAt": time.Now().UTC(),
	}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// MarkAsRead flags a notification as seen.
func (s *Store) MarkAsRead(ctx context.Context, id string) (bool, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// DeleteByProject removes every notification whose context references the
// project. Returns the number of documents deleted.
func (s *Store) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"context.projectId": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DistinctProjectIDs returns every project id referenced by a notification.
func (s *Store) DistinctProjectIDs(ctx context.Context) ([]string, error) {
	vals, err := s.c.Distinct(ctx, "context.projectId", bson.M{"context.projectId": bson.M{"$exists": true}})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

type changeEvent struct {
	FullDocument *models.Notification `bson:"fullDocument"`
}

// Subscribe streams inserts and updates of userID's notifications to
// onChange until ctx is done or the returned func is called. Stream errors
// other than cancellation go to onError once, after which the subscription
// ends. Change streams need a replica set.
func (s *Store) Subscribe(ctx context.Context, userID string, onChange func(models.Notification), onError func(error)) (func(), error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType":       bson.M{"$in": bson.A{"insert", "update", "replace"}},
			"fullDocument.userId": userID,
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	ctx, cancel := context.WithCancel(ctx)
	cs, err := s.c.Watch(ctx, pipeline, opts)
	if err != nil {
		cancel()
		return nil, err
	}

	go func() {
		defer cs.Close(context.Background())
		for cs.Next(ctx) {
			var ev changeEvent
			if err := cs.Decode(&ev); err != nil {
				onError(err)
				return
			}
			if ev.FullDocument != nil {
				onChange(*ev.FullDocument)
			}
		}
		if err := cs.Err(); err != nil && ctx.Err() == nil {
			onError(err)
		}
	}()

	return cancel, nil
}
