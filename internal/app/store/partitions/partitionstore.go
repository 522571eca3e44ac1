// Package partitionstore manages the per-organization data collections
// ("partitions"). Each partition is an ordinary collection in the same
// database as the registry; its name comes from the registry record.
package partitionstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DefaultBatchSize bounds how many documents CopyAll holds in memory and
// sends per InsertMany.
const DefaultBatchSize = 1000

// ErrReservedName is returned for names that must never be treated as a
// tenant partition.
var ErrReservedName = errors.New("reserved collection name")

// CopyError reports a copy that stopped part way. Copied documents are
// already in the target.
type CopyError struct {
	Source string
	Target string
	Copied int
	Err    error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s -> %s stopped after %d documents: %v", e.Source, e.Target, e.Copied, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

type Store struct {
	db        *mongo.Database
	reserved  map[string]bool
	batchSize int
	log       *zap.Logger
}

// New returns a Store over db. reserved names (typically the registry
// collection) are refused by every operation.
func New(db *mongo.Database, logger *zap.Logger, reserved ...string) *Store {
	r := make(map[string]bool, len(reserved))
	for _, name := range reserved {
		r[name] = true
	}
	return &Store{db: db, reserved: r, batchSize: DefaultBatchSize, log: logger}
}

// SetBatchSize changes the CopyAll batch size; n <= 0 restores the default.
func (s *Store) SetBatchSize(n int) {
	if n <= 0 {
		n = DefaultBatchSize
	}
	s.batchSize = n
}

func (s *Store) check(name string) error {
	if name == "" || s.reserved[name] || strings.HasPrefix(name, "system.") || strings.Contains(name, "$") {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	return nil
}

// Create makes sure the partition exists. Calling it for an existing
// partition is not an error.
func (s *Store) Create(ctx context.Context, name string) error {
	if err := s.check(name); err != nil {
		return err
	}
	if err := s.db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return nil
		}
		return err
	}
	s.log.Info("partition created", zap.String("partition", name))
	return nil
}

// Exists reports whether the partition is present.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	if err := s.check(name); err != nil {
		return false, err
	}
	names, err := s.db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// Names lists every collection in the database, registry included.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	return s.db.ListCollectionNames(ctx, bson.M{})
}

// Count returns the number of documents in the partition.
func (s *Store) Count(ctx context.Context, name string) (int64, error) {
	if err := s.check(name); err != nil {
		return 0, err
	}
	return s.db.Collection(name).CountDocuments(ctx, bson.M{})
}

// CopyAll copies every document from source into target with _id removed,
// so target assigns fresh identities. It returns the number copied. Failures
// after the first batch landed are returned as *CopyError.
func (s *Store) CopyAll(ctx context.Context, source, target string) (int, error) {
	if err := s.check(source); err != nil {
		return 0, err
	}
	if err := s.check(target); err != nil {
		return 0, err
	}
	if source == target {
		return 0, fmt.Errorf("copy %s onto itself", source)
	}

	cur, err := s.db.Collection(source).Find(ctx, bson.M{}, options.Find().SetBatchSize(int32(s.batchSize)))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	dst := s.db.Collection(target)
	copied := 0
	batch := make([]interface{}, 0, s.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := dst.InsertMany(ctx, batch, options.InsertMany().SetOrdered(true))
		copied += insertedCount(len(batch), true, err)
		batch = batch[:0]
		return err
	}
	fail := func(err error) (int, error) {
		if copied == 0 {
			return 0, err
		}
		return copied, &CopyError{Source: source, Target: target, Copied: copied, Err: err}
	}

	for cur.Next(ctx) {
		var doc bson.D
		if err := cur.Decode(&doc); err != nil {
			return fail(err)
		}
		batch = append(batch, withoutID(doc))
		if len(batch) >= s.batchSize {
			if err := flush(); err != nil {
				return fail(err)
			}
		}
	}
	if err := cur.Err(); err != nil {
		return fail(err)
	}
	if err := flush(); err != nil {
		return fail(err)
	}

	s.log.Info("partition copied",
		zap.String("source", source),
		zap.String("target", target),
		zap.Int("documents", copied))
	return copied, nil
}

// Drop removes the partition and its documents. Dropping a missing
// partition is not an error.
func (s *Store) Drop(ctx context.Context, name string) error {
	if err := s.check(name); err != nil {
		return err
	}
	if err := s.db.Collection(name).Drop(ctx); err != nil {
		return err
	}
	s.log.Info("partition dropped", zap.String("partition", name))
	return nil
}

// insertedCount returns how many documents of an n-document InsertMany
// reached the server. The driver's InsertedIDs lists every document it
// sent, so failed writes are subtracted using the bulk write errors. An
// ordered insert stops at the first failed index. Errors that carry no
// per-document detail count as nothing inserted.
func insertedCount(n int, ordered bool, err error) int {
	if err == nil {
		return n
	}
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return 0
	}
	if ordered {
		first := n
		for _, we := range bwe.WriteErrors {
			if we.Index < first {
				first = we.Index
			}
		}
		if first < 0 {
			return 0
		}
		return first
	}
	ok := n - len(bwe.WriteErrors)
	if ok < 0 {
		return 0
	}
	return ok
}

func withoutID(doc bson.D) bson.D {
	out := make(bson.D, 0, len(doc))
	for _, e := range doc {
		if e.Key == "_id" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}
