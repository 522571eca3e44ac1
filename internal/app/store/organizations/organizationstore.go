// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/orgmanager/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the master registry collection.
const CollectionName = "organizations"

// Unique index names; see system/indexes.
const (
	IndexName       = "uniq_orgs_name"
	IndexEmail      = "uniq_orgs_email"
	IndexCollection = "uniq_orgs_collection"
	IndexPending    = "idx_orgs_pending"
)

var (
	ErrDuplicateName       = errors.New("organization name already exists")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrDuplicateCollection = errors.New("organization collection name already in use")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Changes lists the registry fields an update may set. Empty strings are
// left untouched.
type Changes struct {
	OrganizationName      string
	DynamicCollectionName string
	Email                 string
	PasswordHash          string
}

// Create inserts org with a fresh ID and timestamps. Unique-index violations
// come back as ErrDuplicateName, ErrDuplicateEmail or ErrDuplicateCollection.
func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.CreatedAt = now
	org.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, org); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, duplicateErr(err)
		}
		return models.Organization{}, err
	}
	return org, nil
}

// GetByName returns mongo.ErrNoDocuments when no organization has that name.
func (s *Store) GetByName(ctx context.Context, name string) (models.Organization, error) {
	return s.findOne(ctx, bson.M{"organizationName": name})
}

// GetByEmail returns mongo.ErrNoDocuments when no organization uses the email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Organization, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// GetByCollection finds the organization owning a partition, either as its
// current partition or as the target of a rename in flight.
func (s *Store) GetByCollection(ctx context.Context, collection string) (models.Organization, error) {
	return s.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"dynamicCollectionName": collection},
		bson.M{"pendingCollection": collection},
	}})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Organization, error) {
	var org models.Organization
	if err := s.c.FindOne(ctx, filter).Decode(&org); err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// Update sets the non-empty fields of ch on the organization named name and
// refreshes updatedAt. Setting DynamicCollectionName also clears
// pendingCollection. It reports whether a record matched.
func (s *Store) Update(ctx context.Context, name string, ch Changes) (bool, error) {
	set := bson.M{
		"updatedAt": time.Now().UTC(),
	}
	if ch.OrganizationName != "" {
		set["organizationName"] = ch.OrganizationName
	}
	if ch.DynamicCollectionName != "" {
		set["dynamicCollectionName"] = ch.DynamicCollectionName
	}
	if ch.Email != "" {
		set["email"] = ch.Email
	}
	if ch.PasswordHash != "" {
		set["password"] = ch.PasswordHash
	}
	upd := bson.M{"$set": set}
	if ch.DynamicCollectionName != "" {
		upd["$unset"] = bson.M{"pendingCollection": ""}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"organizationName": name}, upd)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return false, duplicateErr(err)
		}
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// MarkPending records that a rename is moving the organization's data into
// target. It reports whether a record matched.
func (s *Store) MarkPending(ctx context.Context, name, target string) (bool, error) {
	return s.mark(ctx, name, bson.M{"pendingCollection": target})
}

// MarkDeleting records that the organization is being deleted. It reports
// whether a record matched.
func (s *Store) MarkDeleting(ctx context.Context, name string) (bool, error) {
	return s.mark(ctx, name, bson.M{"deletingAt": time.Now().UTC()})
}

func (s *Store) mark(ctx context.Context, name string, set bson.M) (bool, error) {
	set["updatedAt"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"organizationName": name}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Delete removes the organization named name and reports whether one existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"organizationName": name})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// List returns every organization sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Organization, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "organizationName", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Count returns the number of registered organizations.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// duplicateErr picks the sentinel for the unique index named in a
// duplicate-key error. Servers that omit the index name fall back to
// ErrDuplicateName.
func duplicateErr(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, IndexEmail):
		return ErrDuplicateEmail
	case strings.Contains(msg, IndexCollection):
		return ErrDuplicateCollection
	default:
		return ErrDuplicateName
	}
}
