// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	loginstore "github.com/dalemusser/orgmanager/internal/app/store/logins"
	organizationstore "github.com/dalemusser/orgmanager/internal/app/store/organizations"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the master database collections (if missing) and
// attaches their JSON-Schema validators. Servers that don't support collMod/validators
// (some DocumentDB versions) are logged and skipped.
//
// Tenant partitions get no validator; their documents are opaque.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure(organizationstore.CollectionName, organizationsSchema())
	ensure(loginstore.CollectionName, adminLoginsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection reports created==true only if it actually created name.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandErr(err error, code int32, substrs ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErr(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErr(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErr(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func organizationsSchema() bson.M {
	nonBlank := bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"organizationName", "dynamicCollectionName", "email", "password", "createdAt", "updatedAt"},
			"properties": bson.M{
				"organizationName":      nonBlank,
				"dynamicCollectionName": bson.M{"bsonType": "string", "pattern": "^org[A-Z0-9][A-Za-z0-9]*$"},
				"pendingCollection":     bson.M{"bsonType": "string", "pattern": "^org[A-Z0-9][A-Za-z0-9]*$"},
				"deletingAt":            bson.M{"bsonType": "date"},
				"email":                 nonBlank,
				"password":              nonBlank,
				"createdAt":             bson.M{"bsonType": "date"},
				"updatedAt":             bson.M{"bsonType": "date"},
			},
		},
	}
}

func adminLoginsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"admin_id", "organization_name", "created_at"},
			"properties": bson.M{
				"admin_id":          bson.M{"bsonType": "string", "minLength": 1},
				"organization_name": bson.M{"bsonType": "string"},
				"created_at":        bson.M{"bsonType": "date"},
				"ip":                bson.M{"bsonType": "string"},
			},
		},
	}
}
