// Package tenants keeps the organization registry and the per-organization
// partitions consistent across create, rename and delete.
//
// No workflow is atomic. Steps run in an order that leaves a recoverable
// state when one fails:
//
//	Create: registry record, then partition. A retry with the same
//	        credentials finishes a pending partition.
//	Update: mark the record with the target partition, copy old partition
//	        to new, drop old, then update the registry (clearing the mark).
//	Delete: mark the record as deleting, drop its partitions, then delete
//	        the registry record.
//
// The marks tell a retry and Reconcile which partitions belong to a
// workflow in flight, so neither recreates or drops them behind its back.
package tenants

import (
	"context"
	"errors"
	"fmt"

	organizationstore "github.com/dalemusser/orgmanager/internal/app/store/organizations"
	"github.com/dalemusser/orgmanager/internal/app/system/authutil"
	"github.com/dalemusser/orgmanager/internal/app/system/collname"
	"github.com/dalemusser/orgmanager/internal/app/system/inputval"
	"github.com/dalemusser/orgmanager/internal/app/system/normalize"
	"github.com/dalemusser/orgmanager/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Registry is the master registry as the manager uses it. Lookups return
// mongo.ErrNoDocuments on a miss.
type Registry interface {
	GetByName(ctx context.Context, name string) (models.Organization, error)
	GetByEmail(ctx context.Context, email string) (models.Organization, error)
	GetByCollection(ctx context.Context, collection string) (models.Organization, error)
	Create(ctx context.Context, org models.Organization) (models.Organization, error)
	Update(ctx context.Context, name string, ch organizationstore.Changes) (bool, error)
	MarkPending(ctx context.Context, name, target string) (bool, error)
	MarkDeleting(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]models.Organization, error)
}

// Partitions manages the per-organization collections.
type Partitions interface {
	Create(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	Count(ctx context.Context, name string) (int64, error)
	CopyAll(ctx context.Context, source, target string) (int, error)
	Drop(ctx context.Context, name string) error
	Names(ctx context.Context) ([]string, error)
}

type Manager struct {
	reg   Registry
	parts Partitions
	log   *zap.Logger
}

func New(reg Registry, parts Partitions, logger *zap.Logger) *Manager {
	return &Manager{reg: reg, parts: parts, log: logger}
}

// UpdateInput holds the replacement values for Update. All fields are
// required; the password is always re-hashed.
type UpdateInput struct {
	NewName  string
	Email    string
	Password string
}

// UpdateResult describes a finished Update.
type UpdateResult struct {
	Organization       models.OrganizationView
	PreviousCollection string
	// Migrated is set when the partition moved to a new collection.
	Migrated  bool
	Documents int
}

// Create registers a new organization and creates its partition.
func (m *Manager) Create(ctx context.Context, name, email, password string) (models.OrganizationView, error) {
	name = normalize.Name(name)
	email = normalize.Email(email)
	if err := checkCredentials(email, password); err != nil {
		return models.OrganizationView{}, err
	}

	existing, ok, err := found(m.reg.GetByName(ctx, name))
	if err != nil {
		return models.OrganizationView{}, fmt.Errorf("look up organization: %w", err)
	}
	if ok {
		return m.resumeCreate(ctx, existing, email, password)
	}

	_, ok, err = found(m.reg.GetByEmail(ctx, email))
	if err != nil {
		return models.OrganizationView{}, fmt.Errorf("look up email: %w", err)
	}
	if ok {
		return models.OrganizationView{}, ErrDuplicateEmail
	}

	coll, err := derive(name)
	if err != nil {
		return models.OrganizationView{}, err
	}
	if err := m.checkCollectionFree(ctx, coll, ""); err != nil {
		return models.OrganizationView{}, err
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		return models.OrganizationView{}, fmt.Errorf("hash password: %w", err)
	}

	org, err := m.reg.Create(ctx, models.Organization{
		OrganizationName:      name,
		DynamicCollectionName: coll,
		Email:                 email,
		PasswordHash:          hash,
	})
	if err != nil {
		return models.OrganizationView{}, storeErr(err)
	}

	if err := m.parts.Create(ctx, coll); err != nil {
		m.log.Error("partition create failed, record kept for retry",
			zap.String("organization", name),
			zap.String("collection", coll),
			zap.Error(err))
		return models.OrganizationView{}, fmt.Errorf("create partition %s: %w", coll, err)
	}

	m.log.Info("organization created",
		zap.String("organization", name),
		zap.String("collection", coll))
	return org.View(), nil
}

// resumeCreate handles a Create for a name that is already registered. If
// the caller proves ownership and the partition was never made, the
// partition is created now. Anything else is a duplicate.
func (m *Manager) resumeCreate(ctx context.Context, org models.Organization, email, password string) (models.OrganizationView, error) {
	if org.Email != email || !authutil.CheckPassword(password, org.PasswordHash) {
		return models.OrganizationView{}, ErrDuplicateName
	}
	if !org.Settled() {
		// A missing partition is expected mid-rename or mid-delete.
		return models.OrganizationView{}, ErrDuplicateName
	}
	exists, err := m.parts.Exists(ctx, org.DynamicCollectionName)
	if err != nil {
		return models.OrganizationView{}, fmt.Errorf("check partition: %w", err)
	}
	if exists {
		return models.OrganizationView{}, ErrDuplicateName
	}
	if err := m.parts.Create(ctx, org.DynamicCollectionName); err != nil {
		return models.OrganizationView{}, fmt.Errorf("create partition %s: %w", org.DynamicCollectionName, err)
	}
	m.log.Info("pending partition created on retry",
		zap.String("organization", org.OrganizationName),
		zap.String("collection", org.DynamicCollectionName))
	return org.View(), nil
}

// Get returns the organization without its password hash.
func (m *Manager) Get(ctx context.Context, name string) (models.OrganizationView, error) {
	org, ok, err := found(m.reg.GetByName(ctx, normalize.Name(name)))
	if err != nil {
		return models.OrganizationView{}, fmt.Errorf("look up organization: %w", err)
	}
	if !ok {
		return models.OrganizationView{}, ErrNotFound
	}
	return org.View(), nil
}

// Update renames the organization and replaces its email and password. When
// the new name derives a different collection the partition is migrated
// before the registry changes.
func (m *Manager) Update(ctx context.Context, name string, in UpdateInput) (UpdateResult, error) {
	name = normalize.Name(name)
	newName := normalize.Name(in.NewName)
	email := normalize.Email(in.Email)
	if err := checkCredentials(email, in.Password); err != nil {
		return UpdateResult{}, err
	}

	cur, ok, err := found(m.reg.GetByName(ctx, name))
	if err != nil {
		return UpdateResult{}, fmt.Errorf("look up organization: %w", err)
	}
	if !ok {
		return UpdateResult{}, ErrNotFound
	}
	if cur.DeletingAt != nil {
		return UpdateResult{}, ErrDeletePending
	}

	if newName != name {
		_, taken, err := found(m.reg.GetByName(ctx, newName))
		if err != nil {
			return UpdateResult{}, fmt.Errorf("look up organization: %w", err)
		}
		if taken {
			return UpdateResult{}, ErrDuplicateName
		}
	}

	if email != cur.Email {
		other, taken, err := found(m.reg.GetByEmail(ctx, email))
		if err != nil {
			return UpdateResult{}, fmt.Errorf("look up email: %w", err)
		}
		if taken && other.ID != cur.ID {
			return UpdateResult{}, ErrDuplicateEmail
		}
	}

	oldColl := cur.DynamicCollectionName
	newColl, err := derive(newName)
	if err != nil {
		return UpdateResult{}, err
	}
	if cur.PendingCollection != "" && cur.PendingCollection != newColl {
		m.log.Warn("rename refused while another is unfinished",
			zap.String("organization", name),
			zap.String("pending", cur.PendingCollection),
			zap.String("requested", newColl))
		return UpdateResult{}, ErrRenamePending
	}
	if newColl != oldColl {
		if err := m.checkCollectionFree(ctx, newColl, cur.OrganizationName); err != nil {
			return UpdateResult{}, err
		}
		if cur.PendingCollection != newColl {
			if err := m.checkTargetEmpty(ctx, newColl); err != nil {
				return UpdateResult{}, err
			}
		}
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("hash password: %w", err)
	}

	res := UpdateResult{PreviousCollection: oldColl}
	if newColl != oldColl {
		if cur.PendingCollection != newColl {
			marked, err := m.reg.MarkPending(ctx, name, newColl)
			if err == nil && !marked {
				err = ErrNotFound
			}
			if err != nil {
				return UpdateResult{}, fmt.Errorf("mark rename: %w", err)
			}
		}
		res.Documents, err = m.migrate(ctx, oldColl, newColl)
		if err != nil {
			m.log.Error("partition migration failed",
				zap.String("organization", name),
				zap.String("source", oldColl),
				zap.String("target", newColl),
				zap.String("step", stepOf(err)),
				zap.Error(err))
			return UpdateResult{}, err
		}
		res.Migrated = true
	}

	matched, err := m.reg.Update(ctx, name, organizationstore.Changes{
		OrganizationName:      newName,
		DynamicCollectionName: newColl,
		Email:                 email,
		PasswordHash:          hash,
	})
	if err == nil && !matched {
		err = ErrNotFound
	}
	if err != nil {
		err = storeErr(err)
		if res.Migrated {
			m.log.Error("registry update failed after partition migration",
				zap.String("organization", name),
				zap.String("source", oldColl),
				zap.String("target", newColl),
				zap.Error(err))
			return UpdateResult{}, &PartialMigrationError{
				Step: StepRegistry, Source: oldColl, Target: newColl, Copied: res.Documents, Err: err,
			}
		}
		return UpdateResult{}, err
	}

	m.log.Info("organization updated",
		zap.String("organization", name),
		zap.String("new_name", newName),
		zap.String("collection", newColl),
		zap.Bool("migrated", res.Migrated),
		zap.Int("documents", res.Documents))

	updated, ok, err := found(m.reg.GetByName(ctx, newName))
	if err != nil || !ok {
		cur.OrganizationName = newName
		cur.DynamicCollectionName = newColl
		cur.PendingCollection = ""
		cur.Email = email
		updated = cur
	}
	res.Organization = updated.View()
	return res, nil
}

// checkTargetEmpty fails with ErrPartitionOccupied when coll exists and
// holds documents. The caller has already made sure no organization owns
// coll, so an empty one is a leftover that migrate may replace.
func (m *Manager) checkTargetEmpty(ctx context.Context, coll string) error {
	exists, err := m.parts.Exists(ctx, coll)
	if err != nil {
		return fmt.Errorf("check partition %s: %w", coll, err)
	}
	if !exists {
		return nil
	}
	n, err := m.parts.Count(ctx, coll)
	if err != nil {
		return fmt.Errorf("count partition %s: %w", coll, err)
	}
	if n > 0 {
		m.log.Warn("rename target holds unowned documents",
			zap.String("collection", coll),
			zap.Int64("documents", n))
		return ErrPartitionOccupied
	}
	return nil
}

// migrate moves every document from src to dst and drops src. The registry
// already marks dst as this rename's target, so anything found in dst came
// from an earlier attempt:
//
//   - src gone, dst present: the data move finished; only the registry
//     update remains.
//   - src empty, dst holding documents: the copy finished and src was
//     recreated empty; src is dropped and the registry update remains.
//   - otherwise dst holds a partial copy and is rebuilt from src.
func (m *Manager) migrate(ctx context.Context, src, dst string) (int, error) {
	srcExists, err := m.parts.Exists(ctx, src)
	if err != nil {
		return 0, fmt.Errorf("check partition %s: %w", src, err)
	}
	dstExists, err := m.parts.Exists(ctx, dst)
	if err != nil {
		return 0, fmt.Errorf("check partition %s: %w", dst, err)
	}

	if dstExists {
		if !srcExists {
			m.log.Info("partition already migrated, resuming at registry step",
				zap.String("source", src),
				zap.String("target", dst))
			return 0, nil
		}
		srcN, err := m.parts.Count(ctx, src)
		if err != nil {
			return 0, fmt.Errorf("count partition %s: %w", src, err)
		}
		dstN, err := m.parts.Count(ctx, dst)
		if err != nil {
			return 0, fmt.Errorf("count partition %s: %w", dst, err)
		}
		if srcN == 0 && dstN > 0 {
			m.log.Warn("source recreated empty after migration, dropping it",
				zap.String("source", src),
				zap.String("target", dst),
				zap.Int64("documents", dstN))
			if err := m.parts.Drop(ctx, src); err != nil {
				return 0, &PartialMigrationError{Step: StepDrop, Source: src, Target: dst, Err: err}
			}
			return 0, nil
		}
		m.log.Warn("dropping partial target partition",
			zap.String("target", dst),
			zap.Int64("documents", dstN))
		if err := m.parts.Drop(ctx, dst); err != nil {
			return 0, fmt.Errorf("drop partial partition %s: %w", dst, err)
		}
	}
	if err := m.parts.Create(ctx, dst); err != nil {
		return 0, fmt.Errorf("create partition %s: %w", dst, err)
	}

	n, err := m.parts.CopyAll(ctx, src, dst)
	if err != nil {
		return n, &PartialMigrationError{Step: StepCopy, Source: src, Target: dst, Copied: n, Err: err}
	}
	if err := m.parts.Drop(ctx, src); err != nil {
		return n, &PartialMigrationError{Step: StepDrop, Source: src, Target: dst, Copied: n, Err: err}
	}
	return n, nil
}

// Delete marks the organization as deleting, drops its partitions and then
// removes its registry record. A rename target left by an unfinished rename
// is dropped as well.
func (m *Manager) Delete(ctx context.Context, name string) error {
	name = normalize.Name(name)
	org, ok, err := found(m.reg.GetByName(ctx, name))
	if err != nil {
		return fmt.Errorf("look up organization: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	if org.DeletingAt == nil {
		marked, err := m.reg.MarkDeleting(ctx, name)
		if err != nil {
			return fmt.Errorf("mark delete: %w", err)
		}
		if !marked {
			return ErrNotFound
		}
	}

	colls := []string{org.DynamicCollectionName}
	if org.PendingCollection != "" {
		colls = append(colls, org.PendingCollection)
	}
	for _, coll := range colls {
		if err := m.parts.Drop(ctx, coll); err != nil {
			return fmt.Errorf("drop partition %s: %w", coll, err)
		}
	}

	deleted, err := m.reg.Delete(ctx, name)
	if err != nil {
		m.log.Error("registry delete failed after partition drop",
			zap.String("organization", name),
			zap.String("collection", org.DynamicCollectionName),
			zap.Error(err))
		return fmt.Errorf("delete organization: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	m.log.Info("organization deleted",
		zap.String("organization", name),
		zap.String("collection", org.DynamicCollectionName))
	return nil
}

// checkCollectionFree fails with ErrCollectionConflict when coll already
// belongs to an organization other than owner.
func (m *Manager) checkCollectionFree(ctx context.Context, coll, owner string) error {
	other, taken, err := found(m.reg.GetByCollection(ctx, coll))
	if err != nil {
		return fmt.Errorf("look up collection: %w", err)
	}
	if taken && other.OrganizationName != owner {
		m.log.Warn("derived collection name collides",
			zap.String("collection", coll),
			zap.String("owner", other.OrganizationName))
		return ErrCollectionConflict
	}
	return nil
}

func checkCredentials(email, password string) error {
	if !inputval.IsValidEmail(email) {
		return fmt.Errorf("%w: a valid email address is required", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(password) > inputval.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, inputval.MaxPasswordBytes)
	}
	return nil
}

func derive(name string) (string, error) {
	coll, err := collname.Derive(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return coll, nil
}

// found folds a registry miss into ok=false.
func found(org models.Organization, err error) (models.Organization, bool, error) {
	switch {
	case err == nil:
		return org, true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.Organization{}, false, nil
	default:
		return models.Organization{}, false, err
	}
}

// storeErr maps registry unique-index violations to domain errors. A race
// that slips past the pre-checks ends up here.
func storeErr(err error) error {
	switch {
	case errors.Is(err, organizationstore.ErrDuplicateName):
		return ErrDuplicateName
	case errors.Is(err, organizationstore.ErrDuplicateEmail):
		return ErrDuplicateEmail
	case errors.Is(err, organizationstore.ErrDuplicateCollection):
		return ErrCollectionConflict
	default:
		return err
	}
}

func stepOf(err error) string {
	var pm *PartialMigrationError
	if errors.As(err, &pm) {
		return pm.Step
	}
	return "prepare"
}
