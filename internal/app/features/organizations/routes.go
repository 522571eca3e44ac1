// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/dalemusser/orgmanager/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns the /org subrouter. Create and get are public; update and
// delete need a bearer token for the organization being changed.
func Routes(h *Handler, v auth.Verifier, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Post("/create", h.HandleCreate)
	r.Get("/get", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireAdmin(v, logger))
		pr.Put("/update", h.HandleUpdate)
		pr.Delete("/delete", h.HandleDelete)
	})

	return r
}
