package tenants

import (
	"context"
	"fmt"
	"sort"

	"github.com/dalemusser/orgmanager/internal/app/system/collname"
	"github.com/dalemusser/orgmanager/internal/domain/models"
	"go.uber.org/zap"
)

// ReconcileReport lists what Reconcile changed or noticed.
type ReconcileReport struct {
	// Created holds partitions that were missing for a registered
	// organization and have been created.
	Created []string
	// Orphans holds collections shaped like tenant partitions that no
	// organization references. They are reported, never dropped.
	Orphans []string
	// Unsettled holds organizations with a rename or delete in flight.
	// Their partitions are left for that workflow to finish.
	Unsettled []string
}

// Reconcile makes sure every settled organization has its partition and
// reports unreferenced tenant-looking collections. It is run at startup and
// periodically to finish creates that stopped between the registry write
// and the partition create.
//
// The organization list is a snapshot, so each record is read again before
// its partition is created and once more afterwards. A partition created for
// a record that was meanwhile deleted, renamed or marked is dropped again
// while it is still empty.
func (m *Manager) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var rep ReconcileReport

	orgs, err := m.reg.List(ctx)
	if err != nil {
		return rep, fmt.Errorf("list organizations: %w", err)
	}
	names, err := m.parts.Names(ctx)
	if err != nil {
		return rep, fmt.Errorf("list collections: %w", err)
	}

	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	referenced := make(map[string]bool, len(orgs))

	for _, org := range orgs {
		coll := org.DynamicCollectionName
		referenced[coll] = true
		if org.PendingCollection != "" {
			referenced[org.PendingCollection] = true
		}
		if !org.Settled() {
			rep.Unsettled = append(rep.Unsettled, org.OrganizationName)
			continue
		}
		if present[coll] {
			continue
		}

		created, err := m.createMissing(ctx, org)
		if err != nil {
			return rep, err
		}
		if created {
			rep.Created = append(rep.Created, coll)
		}
	}

	for _, n := range names {
		if referenced[n] || !collname.IsDerived(n) {
			continue
		}
		m.log.Warn("unreferenced partition",
			zap.String("collection", n))
		rep.Orphans = append(rep.Orphans, n)
	}
	sort.Strings(rep.Orphans)
	return rep, nil
}

// createMissing creates the partition of a listed organization if the
// registry still holds the same settled record.
func (m *Manager) createMissing(ctx context.Context, org models.Organization) (bool, error) {
	coll := org.DynamicCollectionName

	ok, err := m.stillSettled(ctx, org)
	if err != nil || !ok {
		return false, err
	}
	if err := m.parts.Create(ctx, coll); err != nil {
		return false, fmt.Errorf("create partition %s for %s: %w", coll, org.OrganizationName, err)
	}

	ok, err = m.stillSettled(ctx, org)
	if err != nil {
		return false, err
	}
	if !ok {
		m.dropIfEmpty(ctx, coll)
		return false, nil
	}

	m.log.Info("created missing partition",
		zap.String("organization", org.OrganizationName),
		zap.String("collection", coll))
	return true, nil
}

// stillSettled reports whether the registry holds org unchanged and with no
// rename or delete in flight.
func (m *Manager) stillSettled(ctx context.Context, org models.Organization) (bool, error) {
	cur, ok, err := found(m.reg.GetByName(ctx, org.OrganizationName))
	if err != nil {
		return false, fmt.Errorf("look up organization: %w", err)
	}
	if !ok || cur.ID != org.ID || cur.DynamicCollectionName != org.DynamicCollectionName || !cur.Settled() {
		m.log.Info("organization changed during reconcile, skipped",
			zap.String("organization", org.OrganizationName),
			zap.String("collection", org.DynamicCollectionName))
		return false, nil
	}
	return true, nil
}

// dropIfEmpty removes a partition Reconcile created for a record that went
// away in the meantime. A partition that already received documents is left
// for the orphan report.
func (m *Manager) dropIfEmpty(ctx context.Context, coll string) {
	n, err := m.parts.Count(ctx, coll)
	if err != nil || n > 0 {
		m.log.Warn("partition created during reconcile kept",
			zap.String("collection", coll),
			zap.Int64("documents", n),
			zap.Error(err))
		return
	}
	if err := m.parts.Drop(ctx, coll); err != nil {
		m.log.Warn("failed to drop partition created during reconcile",
			zap.String("collection", coll),
			zap.Error(err))
	}
}
