// internal/app/features/admin/routes.go
package admin

import "github.com/go-chi/chi/v5"

// Routes returns the /admin subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.HandleLogin)
	return r
}
