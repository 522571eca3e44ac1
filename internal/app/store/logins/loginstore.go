// internal/app/store/logins/loginstore.go
package loginstore

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/orgmanager/internal/app/system/ratelimit"
	"github.com/dalemusser/orgmanager/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName lives in the master database next to the registry, so the
// partition store must treat it as reserved.
const CollectionName = "admin_logins"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Create inserts an AdminLogin. If CreatedAt is zero, it's set to time.Now().UTC().
func (s *Store) Create(ctx context.Context, rec models.AdminLogin) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// CreateFrom records a login for adminID, taking the client address and
// user agent from r.
func (s *Store) CreateFrom(ctx context.Context, r *http.Request, adminID, organization string) error {
	return s.Create(ctx, models.AdminLogin{
		AdminID:          adminID,
		OrganizationName: organization,
		CreatedAt:        time.Now().UTC(),
		IP:               ratelimit.ClientIP(r),
		UserAgent:        r.UserAgent(),
	})
}

// Recent returns up to limit logins for adminID, newest first, after
// skipping offset of them.
func (s *Store) Recent(ctx context.Context, adminID string, offset, limit int64) ([]models.AdminLogin, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"admin_id": adminID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AdminLogin
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountForAdmin returns how many logins are recorded for adminID.
func (s *Store) CountForAdmin(ctx context.Context, adminID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"admin_id": adminID})
}

// DeleteForAdmin removes the history of a deleted organization's admin.
func (s *Store) DeleteForAdmin(ctx context.Context, adminID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"admin_id": adminID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
