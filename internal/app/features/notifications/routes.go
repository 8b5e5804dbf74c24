// internal/app/features/notifications/routes.go
package notifications

import (
	"net/http"

	"github.com/dalemusser/showmate/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes returns a subrouter mounted under /notifications. Every route
// requires a bearer token.
func Routes(h *Handler, requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requireAuth)

	r.Get("/", h.ServeList)
	r.Get("/stream", h.ServeStream)

	r.With(middleware.RequestSize(limits.MaxJSONBody)).Post("/{id}/respond", h.HandleRespond)
	r.Post("/{id}/read", h.HandleRead)
	return r
}
