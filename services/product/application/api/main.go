package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/showcase/pkg/app"
	"github.com/ghuser/showcase/pkg/auth"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/services/product/application/handlers"
	appsvcs "github.com/ghuser/showcase/services/product/application/services"
)

// ProductRoutes registers product endpoints on the provided chi router.
// The router must already run auth.Authenticate so handlers see the Caller.
func ProductRoutes(r chi.Router, a *app.Application) {
	MountRoutes(r, appsvcs.New(a), a)
}

// MountRoutes registers the routes backed by svcs. Split from ProductRoutes so
// tests can mount services built on in-memory collaborators.
func MountRoutes(r chi.Router, svcs *appsvcs.Services, a *app.Application) {
	log := a.Logger

	r.Get("/explore", handlers.NewGetExploreHandler(svcs, log).Execute)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", handlers.NewGetProductsHandler(svcs, log).Execute)
		r.Get("/featured", handlers.NewGetFeaturedHandler(svcs, log).Execute)
		r.Get("/{slug}", handlers.NewGetProductHandler(svcs, log).Execute)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(log))
			r.Post("/", handlers.NewPostProductHandler(svcs, log).Execute)

			r.Group(func(r chi.Router) {
				r.Use(httpx.VoteRateLimit())
				r.Post("/{id}/upvote", handlers.NewUpvoteHandler(svcs, log).Execute)
				r.Post("/{id}/downvote", handlers.NewDownvoteHandler(svcs, log).Execute)
			})
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAdmin(log))

		reads := handlers.NewAdminReadHandler(svcs, log)
		r.Get("/stats", reads.Stats)
		r.Get("/pending-count", reads.PendingCount)
		r.Get("/tags", reads.Tags)

		r.Get("/products", handlers.NewGetAdminProductsHandler(svcs, log).Execute)
		r.Post("/products/status", handlers.NewPostBulkStatusHandler(svcs, log).Execute)
		r.Patch("/products/{id}/status", handlers.NewPatchStatusHandler(svcs, log).Execute)
		r.Delete("/products/{id}", handlers.NewDeleteProductHandler(svcs, log).Execute)
	})
}
