// internal/app/features/organizations/errors.go
package organizations

import (
	"errors"
	"net/http"

	"github.com/dalemusser/orgmanager/internal/app/system/jsonutil"
	"github.com/dalemusser/orgmanager/internal/app/tenants"
	"go.uber.org/zap"
)

// writeError maps lifecycle errors to a status and a client-safe message.
// Anything unrecognized is logged and reported as a 500.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var pm *tenants.PartialMigrationError
	switch {
	case errors.Is(err, tenants.ErrInvalidName):
		jsonutil.Error(w, http.StatusBadRequest, "organization name must contain at least one letter or digit")
	case errors.Is(err, tenants.ErrValidation):
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tenants.ErrNotFound):
		jsonutil.Error(w, http.StatusNotFound, "organization not found")
	case errors.Is(err, tenants.ErrDuplicateName):
		jsonutil.Error(w, http.StatusConflict, "organization name already exists")
	case errors.Is(err, tenants.ErrDuplicateEmail):
		jsonutil.Error(w, http.StatusConflict, "email already registered")
	case errors.Is(err, tenants.ErrCollectionConflict):
		jsonutil.Error(w, http.StatusConflict, "organization name is too similar to an existing organization")
	case errors.Is(err, tenants.ErrRenamePending):
		jsonutil.Error(w, http.StatusConflict, "an earlier rename is unfinished; retry it with the same new name")
	case errors.Is(err, tenants.ErrDeletePending):
		jsonutil.Error(w, http.StatusConflict, "organization is being deleted; retry the delete")
	case errors.Is(err, tenants.ErrPartitionOccupied):
		jsonutil.Error(w, http.StatusConflict, "target collection already holds data; contact an operator")
	case errors.As(err, &pm):
		h.Log.Error(op+" failed part way",
			zap.String("step", pm.Step),
			zap.String("source", pm.Source),
			zap.String("target", pm.Target),
			zap.Int("copied", pm.Copied),
			zap.Error(pm.Err))
		jsonutil.Error(w, http.StatusInternalServerError, "data migration failed at "+pm.Step+" step; retry the update")
	default:
		h.Log.Error(op+" failed", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "internal error")
	}
}
