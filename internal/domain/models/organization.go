// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is one tenant's record in the master registry.
//
// DynamicCollectionName is stored rather than re-derived on read so that the
// record keeps pointing at the partition it actually owns even if the
// derivation rules change later.
//
// PendingCollection names the partition a rename is moving the data into;
// it is set before any document moves and cleared by the registry update
// that finishes the rename. DeletingAt is set before a delete drops any
// partition. Both are unset on a settled record.
type Organization struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	OrganizationName      string             `bson:"organizationName"`
	DynamicCollectionName string             `bson:"dynamicCollectionName"`
	Email                 string             `bson:"email"`
	PasswordHash          string             `bson:"password"` // bcrypt; never serialized to clients
	PendingCollection     string             `bson:"pendingCollection,omitempty"`
	DeletingAt            *time.Time         `bson:"deletingAt,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt"`
}

// Settled reports whether no rename or delete is in flight.
func (o Organization) Settled() bool {
	return o.PendingCollection == "" && o.DeletingAt == nil
}

// OrganizationView is the client-facing shape of an Organization (no secret).
type OrganizationView struct {
	ID                    string    `json:"_id"`
	OrganizationName      string    `json:"organizationName"`
	DynamicCollectionName string    `json:"dynamicCollectionName"`
	Email                 string    `json:"email"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// View strips the password hash.
func (o Organization) View() OrganizationView {
	return OrganizationView{
		ID:                    o.ID.Hex(),
		OrganizationName:      o.OrganizationName,
		DynamicCollectionName: o.DynamicCollectionName,
		Email:                 o.Email,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}
