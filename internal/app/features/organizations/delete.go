// internal/app/features/organizations/delete.go
package organizations

import (
	"net/http"

	"github.com/dalemusser/orgmanager/internal/app/system/auth"
	"github.com/dalemusser/orgmanager/internal/app/system/jsonutil"
	"github.com/dalemusser/orgmanager/internal/app/system/normalize"
	"github.com/dalemusser/orgmanager/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete drops an organization's collection and its registry record.
// The caller's token must belong to that organization.
//
// Route: DELETE /org/delete?organizationName=...
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	name := normalize.QueryParam(r.URL.Query().Get("organizationName"))
	if name == "" {
		jsonutil.Error(w, http.StatusBadRequest, "organizationName is required.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete organization")
	defer cancel()

	if !h.authorize(ctx, w, r, name, "delete") {
		return
	}

	if err := h.Tenants.Delete(ctx, name); err != nil {
		h.writeError(w, "delete organization", err)
		return
	}
	if admin, ok := auth.CurrentAdmin(r); ok && h.History != nil {
		if _, err := h.History.DeleteForAdmin(ctx, admin.ID); err != nil {
			h.Log.Warn("failed to clear login history",
				zap.String("organization", name),
				zap.Error(err))
		}
	}
	jsonutil.OK(w, http.StatusOK, jsonutil.Fields{"message": "Organization deleted successfully"})
}
