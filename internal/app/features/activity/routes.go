// internal/app/features/activity/routes.go
package activity

import (
	"github.com/dalemusser/orgmanager/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes mounts the activity routes under the path where this router is
// mounted (typically "/admin/activity" from bootstrap). Every route needs a
// bearer token and only shows the caller's own history.
func Routes(h *Handler, v auth.Verifier, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireAdmin(v, logger))
		pr.Get("/logins", h.ServeLogins)
	})

	return r
}
