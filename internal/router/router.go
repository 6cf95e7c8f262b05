// Package router wires HTTP routes to handlers.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Wafflinyo/USALeague/internal/handler"
	"github.com/Wafflinyo/USALeague/internal/middleware"
	"github.com/Wafflinyo/USALeague/pkg/apperror"
	"github.com/Wafflinyo/USALeague/pkg/response"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	AccountHandler *handler.AccountHandler
	BonusHandler   *handler.BonusHandler
	SlotsHandler   *handler.SlotsHandler
	ShopHandler    *handler.ShopHandler
	PicksHandler   *handler.PicksHandler
	AdminHandler   *handler.AdminHandler
	AdminToken     string
	CORSOrigins    []string
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Account-ID", "X-Display-Name", "X-Admin-Token"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Get("/health", cfg.Handler.Health)
		r.Get("/ready", cfg.Handler.Ready)
		r.Get("/shop/items", cfg.ShopHandler.Items)
		r.Get("/leaderboard", cfg.AccountHandler.Leaderboard)

		// Player endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)

			r.Get("/me", cfg.AccountHandler.Me)
			r.Patch("/me", cfg.AccountHandler.UpdateMe)
			r.Get("/me/inventory", cfg.AccountHandler.Inventory)

			r.Post("/bonus/claim", cfg.BonusHandler.Claim)
			r.Post("/slots/spin", cfg.SlotsHandler.Spin)
			r.Post("/shop/purchase", cfg.ShopHandler.Purchase)

			r.Post("/picks", cfg.PicksHandler.Submit)
			r.Post("/results/sync", cfg.PicksHandler.Sync)
			r.Post("/results/{day}/settle", cfg.PicksHandler.Settle)
		})

		// Operator endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminOnly(cfg.AdminToken))

			r.Post("/admin/results", cfg.AdminHandler.PostResults)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, apperror.NotFound("route not found"))
	})

	return r
}
