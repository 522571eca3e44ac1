package tenants_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	organizationstore "github.com/dalemusser/orgmanager/internal/app/store/organizations"
	"github.com/dalemusser/orgmanager/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var errInjected = errors.New("injected failure")

// memRegistry is an in-memory registry enforcing the same unique fields as
// the Mongo indexes.
type memRegistry struct {
	mu   sync.Mutex
	orgs map[string]models.Organization

	createErr error
	updateErr error
	deleteErr error

	// afterList and beforeDelete run outside the lock so a test can
	// interleave another workflow at that point.
	afterList    func()
	beforeDelete func()
}

func newMemRegistry() *memRegistry {
	return &memRegistry{orgs: map[string]models.Organization{}}
}

func (r *memRegistry) find(match func(models.Organization) bool) (models.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orgs {
		if match(o) {
			return o, nil
		}
	}
	return models.Organization{}, mongo.ErrNoDocuments
}

func (r *memRegistry) GetByName(_ context.Context, name string) (models.Organization, error) {
	return r.find(func(o models.Organization) bool { return o.OrganizationName == name })
}

func (r *memRegistry) GetByEmail(_ context.Context, email string) (models.Organization, error) {
	return r.find(func(o models.Organization) bool { return o.Email == email })
}

func (r *memRegistry) GetByCollection(_ context.Context, coll string) (models.Organization, error) {
	return r.find(func(o models.Organization) bool {
		return o.DynamicCollectionName == coll || o.PendingCollection == coll
	})
}

// conflict reports the unique field org would violate, ignoring skip.
func (r *memRegistry) conflict(org models.Organization, skip primitive.ObjectID) error {
	for _, o := range r.orgs {
		if o.ID == skip {
			continue
		}
		switch {
		case o.OrganizationName == org.OrganizationName:
			return organizationstore.ErrDuplicateName
		case o.Email == org.Email:
			return organizationstore.ErrDuplicateEmail
		case o.DynamicCollectionName == org.DynamicCollectionName:
			return organizationstore.ErrDuplicateCollection
		}
	}
	return nil
}

func (r *memRegistry) Create(_ context.Context, org models.Organization) (models.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return models.Organization{}, r.createErr
	}
	if err := r.conflict(org, primitive.NilObjectID); err != nil {
		return models.Organization{}, err
	}
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.CreatedAt, org.UpdatedAt = now, now
	r.orgs[org.OrganizationName] = org
	return org, nil
}

func (r *memRegistry) Update(_ context.Context, name string, ch organizationstore.Changes) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return false, r.updateErr
	}
	org, ok := r.orgs[name]
	if !ok {
		return false, nil
	}
	next := org
	if ch.OrganizationName != "" {
		next.OrganizationName = ch.OrganizationName
	}
	if ch.DynamicCollectionName != "" {
		next.DynamicCollectionName = ch.DynamicCollectionName
		next.PendingCollection = ""
	}
	if ch.Email != "" {
		next.Email = ch.Email
	}
	if ch.PasswordHash != "" {
		next.PasswordHash = ch.PasswordHash
	}
	if err := r.conflict(next, org.ID); err != nil {
		return false, err
	}
	next.UpdatedAt = time.Now().UTC()
	delete(r.orgs, name)
	r.orgs[next.OrganizationName] = next
	return true, nil
}

func (r *memRegistry) mark(name string, apply func(*models.Organization)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[name]
	if !ok {
		return false
	}
	apply(&org)
	org.UpdatedAt = time.Now().UTC()
	r.orgs[name] = org
	return true
}

func (r *memRegistry) MarkPending(_ context.Context, name, target string) (bool, error) {
	return r.mark(name, func(o *models.Organization) { o.PendingCollection = target }), nil
}

func (r *memRegistry) MarkDeleting(_ context.Context, name string) (bool, error) {
	now := time.Now().UTC()
	return r.mark(name, func(o *models.Organization) { o.DeletingAt = &now }), nil
}

func (r *memRegistry) Delete(_ context.Context, name string) (bool, error) {
	if r.beforeDelete != nil {
		hook := r.beforeDelete
		r.beforeDelete = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return false, r.deleteErr
	}
	if _, ok := r.orgs[name]; !ok {
		return false, nil
	}
	delete(r.orgs, name)
	return true, nil
}

func (r *memRegistry) List(_ context.Context) ([]models.Organization, error) {
	r.mu.Lock()
	out := make([]models.Organization, 0, len(r.orgs))
	for _, o := range r.orgs {
		out = append(out, o)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].OrganizationName < out[j].OrganizationName })
	if r.afterList != nil {
		hook := r.afterList
		r.afterList = nil
		hook()
	}
	return out, nil
}

func (r *memRegistry) get(name string) (models.Organization, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orgs[name]
	return o, ok
}

// memPartitions tracks partitions as document counts.
type memPartitions struct {
	mu    sync.Mutex
	docs  map[string]int
	calls map[string]int

	createErr error
	// afterCreate runs outside the lock after a successful Create.
	afterCreate func(name string)
	// copyErr fails CopyAll after copyPartial documents.
	copyErr     error
	copyPartial int
	dropErr     map[string]error
}

func newMemPartitions() *memPartitions {
	return &memPartitions{docs: map[string]int{}, calls: map[string]int{}, dropErr: map[string]error{}}
}

func (p *memPartitions) seed(name string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[name] = n
}

func (p *memPartitions) has(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.docs[name]
	return ok
}

func (p *memPartitions) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.docs[name]
}

func (p *memPartitions) called(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

func (p *memPartitions) Create(_ context.Context, name string) error {
	p.mu.Lock()
	p.calls["create"]++
	if p.createErr != nil {
		p.mu.Unlock()
		return p.createErr
	}
	if _, ok := p.docs[name]; !ok {
		p.docs[name] = 0
	}
	hook := p.afterCreate
	p.afterCreate = nil
	p.mu.Unlock()
	if hook != nil {
		hook(name)
	}
	return nil
}

func (p *memPartitions) Exists(_ context.Context, name string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.docs[name]
	return ok, nil
}

func (p *memPartitions) Count(_ context.Context, name string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int64(p.docs[name]), nil
}

func (p *memPartitions) CopyAll(_ context.Context, source, target string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["copy"]++
	if p.copyErr != nil {
		p.docs[target] += p.copyPartial
		return p.copyPartial, p.copyErr
	}
	n := p.docs[source]
	p.docs[target] += n
	return n, nil
}

func (p *memPartitions) Drop(_ context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["drop"]++
	if err := p.dropErr[name]; err != nil {
		return err
	}
	delete(p.docs, name)
	return nil
}

func (p *memPartitions) Names(_ context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.docs))
	for n := range p.docs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
