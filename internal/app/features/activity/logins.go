// internal/app/features/activity/logins.go
package activity

import (
	"net/http"
	"time"

	"github.com/dalemusser/orgmanager/internal/app/system/auth"
	"github.com/dalemusser/orgmanager/internal/app/system/jsonutil"
	"github.com/dalemusser/orgmanager/internal/app/system/paging"
	"github.com/dalemusser/orgmanager/internal/app/system/timeouts"
	"github.com/dalemusser/orgmanager/internal/domain/models"
	"go.uber.org/zap"
)

// loginItem is one recorded admin login.
type loginItem struct {
	OrganizationName string    `json:"organizationName"`
	CreatedAt        time.Time `json:"createdAt"`
	IP               string    `json:"ip"`
	UserAgent        string    `json:"userAgent,omitempty"`
}

func toLoginItem(l models.AdminLogin) loginItem {
	return loginItem{
		OrganizationName: l.OrganizationName,
		CreatedAt:        l.CreatedAt,
		IP:               l.IP,
		UserAgent:        l.UserAgent,
	}
}

// ServeLogins lists the calling admin's successful logins, newest first.
// Logins are matched by admin id so they survive organization renames.
//
// Route: GET /admin/activity/logins?page=&limit=
func (h *Handler) ServeLogins(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		jsonutil.Error(w, http.StatusUnauthorized, "authorization header required")
		return
	}

	page := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login history")
	defer cancel()

	logins, err := h.Logins.Recent(ctx, admin.ID, page.Offset(), page.Limit())
	if err != nil {
		h.Log.Error("failed to load login history", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	total, err := h.Logins.CountForAdmin(ctx, admin.ID)
	if err != nil {
		h.Log.Error("failed to count login history", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]loginItem, 0, len(logins))
	for _, l := range logins {
		items = append(items, toLoginItem(l))
	}
	jsonutil.OK(w, http.StatusOK, jsonutil.Fields{
		"logins":     items,
		"pagination": page.Meta(total),
	})
}
