package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Session *SessionHandler
	Vote    *VoteHandler
	Results *ResultsHandler
	Health  *HealthHandler
}

type RouterConfig struct {
	AllowedOrigins []string
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
}

func NewHandler(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health.Health)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get(UnauthorizedPath, h.Auth.Unauthorized)

	r.Route("/oauth", func(r chi.Router) {
		r.Post("/callback", h.Auth.GoogleCallback)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/logout", h.Auth.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)

		r.Get("/me", h.User.GetMe)
		r.Get("/self-test", h.Health.SelfTest)
		r.Get("/values", h.Results.Values)
		r.Get("/analytics", h.Results.Analytics)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.User.ListUsers)
			r.Get("/{id}", h.User.GetUser)
			r.Get("/{id}/votes", h.Vote.ListUserVotes)
		})

		r.Post("/votes", h.Vote.VoteInCurrentSession)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.Session.ListSessions)
			r.Get("/current", h.Session.CurrentSession)
			r.With(RequireAdmin).Post("/", h.Session.CreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Session.GetSession)
				r.Get("/results", h.Results.SessionResults)
				r.Get("/my-vote", h.Vote.MyVote)
				r.Post("/votes", h.Vote.VoteInSession)
				r.With(RequireAdmin).Post("/close", h.Session.CloseSession)
			})
		})
	})

	return r
}
