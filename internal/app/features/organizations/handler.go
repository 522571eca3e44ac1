// internal/app/features/organizations/handler.go
package organizations

import (
	"context"
	"net/http"

	"github.com/dalemusser/orgmanager/internal/app/system/auth"
	"github.com/dalemusser/orgmanager/internal/app/system/jsonutil"
	"github.com/dalemusser/orgmanager/internal/app/tenants"
	"github.com/dalemusser/orgmanager/internal/domain/models"
	"go.uber.org/zap"
)

// Lifecycle is the tenant workflow surface the endpoints call.
type Lifecycle interface {
	Create(ctx context.Context, name, email, password string) (models.OrganizationView, error)
	Get(ctx context.Context, name string) (models.OrganizationView, error)
	Update(ctx context.Context, name string, in tenants.UpdateInput) (tenants.UpdateResult, error)
	Delete(ctx context.Context, name string) error
}

// LoginHistory is cleared for an admin whose organization is deleted.
type LoginHistory interface {
	DeleteForAdmin(ctx context.Context, adminID string) (int64, error)
}

// Handler is the feature-level entry point for the /org endpoints.
type Handler struct {
	Tenants Lifecycle
	History LoginHistory // optional
	Log     *zap.Logger
}

func NewHandler(lc Lifecycle, logger *zap.Logger) *Handler {
	return &Handler{Tenants: lc, Log: logger}
}

// authorize writes 403 (or the lookup error) and returns false unless the
// caller's token was issued for the organization currently registered as
// name. op names the action in the 403 message.
func (h *Handler) authorize(ctx context.Context, w http.ResponseWriter, r *http.Request, name, op string) bool {
	forbidden := "Not authorized to " + op + " this organization"
	if !auth.OwnsOrganization(r, name) {
		jsonutil.Error(w, http.StatusForbidden, forbidden)
		return false
	}
	org, err := h.Tenants.Get(ctx, name)
	if err != nil {
		h.writeError(w, op+" organization", err)
		return false
	}
	if !auth.OwnsRecord(r, org.ID, org.OrganizationName) {
		admin, _ := auth.CurrentAdmin(r)
		h.Log.Warn("token does not match organization record",
			zap.String("organization", name),
			zap.String("admin_id", admin.ID),
			zap.String("record_id", org.ID))
		jsonutil.Error(w, http.StatusForbidden, forbidden)
		return false
	}
	return true
}
