package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/orgmanager/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization inserts a registry record directly, bypassing the
// lifecycle manager. The partition is not created.
func (f *Fixtures) CreateOrganization(ctx context.Context, name, collection, email, passwordHash string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:                    primitive.NewObjectID(),
		OrganizationName:      name,
		DynamicCollectionName: collection,
		Email:                 email,
		PasswordHash:          passwordHash,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// SeedPartition inserts n small documents into the named collection and
// returns them as inserted.
func (f *Fixtures) SeedPartition(ctx context.Context, collection string, n int) []bson.M {
	f.t.Helper()

	docs := make([]interface{}, 0, n)
	out := make([]bson.M, 0, n)
	for i := 0; i < n; i++ {
		d := bson.M{"seq": i, "label": "doc", "tags": bson.A{"a", "b"}}
		docs = append(docs, d)
		out = append(out, d)
	}
	if n == 0 {
		return out
	}
	if _, err := f.db.Collection(collection).InsertMany(ctx, docs); err != nil {
		f.t.Fatalf("failed to seed partition %s: %v", collection, err)
	}
	return out
}

// CollectionExists reports whether the named collection is present.
func (f *Fixtures) CollectionExists(ctx context.Context, collection string) bool {
	f.t.Helper()

	names, err := f.db.ListCollectionNames(ctx, bson.M{"name": collection})
	if err != nil {
		f.t.Fatalf("ListCollectionNames failed: %v", err)
	}
	return len(names) > 0
}

// CountDocs returns the number of documents in the named collection.
func (f *Fixtures) CountDocs(ctx context.Context, collection string) int64 {
	f.t.Helper()

	n, err := f.db.Collection(collection).CountDocuments(ctx, bson.M{})
	if err != nil {
		f.t.Fatalf("CountDocuments(%s) failed: %v", collection, err)
	}
	return n
}
