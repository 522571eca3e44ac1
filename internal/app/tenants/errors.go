package tenants

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers missing or malformed input other than the name.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidName is returned when nothing usable is left of a name
	// after derivation strips it.
	ErrInvalidName        = errors.New("invalid organization name")
	ErrDuplicateName      = errors.New("organization name already exists")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrCollectionConflict = errors.New("organization name maps to a collection owned by another organization")
	ErrNotFound           = errors.New("organization not found")
	// ErrRenamePending is returned when an earlier rename stopped part way
	// and the new request targets a different partition.
	ErrRenamePending = errors.New("an earlier rename of this organization is unfinished")
	// ErrDeletePending is returned for changes to a record whose delete
	// stopped part way.
	ErrDeletePending = errors.New("organization is being deleted")
	// ErrPartitionOccupied is returned when a rename target already holds
	// documents that no organization owns.
	ErrPartitionOccupied = errors.New("target collection already holds unowned data")
)

// Migration steps reported by PartialMigrationError.
const (
	StepCopy     = "copy"
	StepDrop     = "drop"
	StepRegistry = "registry"
)

// PartialMigrationError reports a rename that stopped after touching data.
//
// The registry record carries Target as its pending collection in every
// case, so only a rename to Target (or a delete) is accepted until one
// succeeds.
//
//   - StepCopy: some documents may be in Target; Source is unchanged.
//     Retrying the rename starts the copy over.
//   - StepDrop: Target holds a full copy, Source still exists and the
//     registry still points at Source.
//   - StepRegistry: the data lives in Target only and the registry still
//     points at Source. Retrying the rename finishes the registry update.
type PartialMigrationError struct {
	Step   string
	Source string
	Target string
	Copied int
	Err    error
}

func (e *PartialMigrationError) Error() string {
	return fmt.Sprintf("rename %s -> %s failed at %s step (%d documents copied): %v",
		e.Source, e.Target, e.Step, e.Copied, e.Err)
}

func (e *PartialMigrationError) Unwrap() error { return e.Err }
