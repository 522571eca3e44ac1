// internal/app/features/organizations/get.go
package organizations

import (
	"net/http"

	"github.com/dalemusser/orgmanager/internal/app/system/jsonutil"
	"github.com/dalemusser/orgmanager/internal/app/system/normalize"
	"github.com/dalemusser/orgmanager/internal/app/system/timeouts"
)

// ServeGet returns one organization without its password hash.
//
// Route: GET /org/get?organizationName=...
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	name := normalize.QueryParam(r.URL.Query().Get("organizationName"))
	if name == "" {
		jsonutil.Error(w, http.StatusBadRequest, "organizationName is required.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get organization")
	defer cancel()

	org, err := h.Tenants.Get(ctx, name)
	if err != nil {
		h.writeError(w, "get organization", err)
		return
	}
	jsonutil.OK(w, http.StatusOK, jsonutil.Fields{"organization": org})
}
