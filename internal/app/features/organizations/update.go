// internal/app/features/organizations/update.go
package organizations

import (
	"net/http"

	"github.com/dalemusser/orgmanager/internal/app/system/inputval"
	"github.com/dalemusser/orgmanager/internal/app/system/jsonutil"
	"github.com/dalemusser/orgmanager/internal/app/system/normalize"
	"github.com/dalemusser/orgmanager/internal/app/system/timeouts"
	"github.com/dalemusser/orgmanager/internal/app/tenants"
	"go.uber.org/zap"
)

// HandleUpdate renames an organization and replaces its admin credentials.
// The caller's token must belong to the organization being updated.
//
// Route: PUT /org/update
//
//	{ "organizationName": "...", "newOrganizationName": "...", "email": "...", "password": "..." }
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in updateRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.Error(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Migration(), h.Log, "update organization")
	defer cancel()

	name := normalize.Name(in.OrganizationName)
	if !h.authorize(ctx, w, r, name, "update") {
		return
	}

	res, err := h.Tenants.Update(ctx, name, tenants.UpdateInput{
		NewName:  in.NewOrganizationName,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		h.writeError(w, "update organization", err)
		return
	}
	org := res.Organization
	if res.Migrated {
		h.Log.Info("organization partition moved",
			zap.String("organization", org.OrganizationName),
			zap.String("from", res.PreviousCollection),
			zap.String("to", org.DynamicCollectionName),
			zap.Int("documents", res.Documents))
	}

	jsonutil.OK(w, http.StatusOK, jsonutil.Fields{
		"message":          "Organization updated successfully",
		"organizationName": org.OrganizationName,
		"collectionName":   org.DynamicCollectionName,
	})
}
