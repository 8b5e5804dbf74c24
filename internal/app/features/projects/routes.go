// internal/app/features/projects/routes.go
package projects

import (
	"net/http"

	"github.com/dalemusser/showmate/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Middleware collects what the routes need from bootstrap.
type Middleware struct {
	RequireAuth func(http.Handler) http.Handler
	InviteLimit func(http.Handler) http.Handler // per caller
	RefuseLimit func(http.Handler) http.Handler // per IP; the endpoint is anonymous
}

func passthrough(next http.Handler) http.Handler { return next }

// Routes returns a subrouter mounted under /project.
func Routes(h *Handler, mw Middleware) chi.Router {
	if mw.InviteLimit == nil {
		mw.InviteLimit = passthrough
	}
	if mw.RefuseLimit == nil {
		mw.RefuseLimit = passthrough
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestSize(limits.MaxInviteBody))

	// Anonymous: the decline link in the invitation flow.
	r.With(mw.RefuseLimit, middleware.RequestSize(limits.MaxJSONBody)).
		Post("/refused-invitation", h.HandleRefusedInvitation)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireAuth)

		pr.With(mw.InviteLimit).Post("/invite", h.HandleInvite)

		pr.Get("/accept-invitation", h.ServeAcceptInvitation)
		pr.Post("/accept-invitation", h.HandleAcceptInvitation)

		pr.Delete("/member", h.HandleRemoveMember)
		pr.Delete("/delete", h.HandleDeleteProject)

		pr.Get("/members", h.ServeMembers)
		pr.Get("/memberships", h.ServeMyMemberships)
		pr.Get("/audit", h.ServeAudit)
	})
	return r
}
