// internal/app/features/organizations/create.go
package organizations

import (
	"net/http"

	"github.com/dalemusser/orgmanager/internal/app/system/inputval"
	"github.com/dalemusser/orgmanager/internal/app/system/jsonutil"
	"github.com/dalemusser/orgmanager/internal/app/system/timeouts"
)

// HandleCreate registers an organization and creates its collection.
//
// Route: POST /org/create
//
//	{ "organizationName": "...", "email": "...", "password": "..." }
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.Error(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create organization")
	defer cancel()

	org, err := h.Tenants.Create(ctx, in.OrganizationName, in.Email, in.Password)
	if err != nil {
		h.writeError(w, "create organization", err)
		return
	}

	jsonutil.OK(w, http.StatusOK, jsonutil.Fields{
		"message":          "Organization created successfully",
		"organizationId":   org.ID,
		"organizationName": org.OrganizationName,
		"collectionName":   org.DynamicCollectionName,
	})
}
