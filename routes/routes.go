package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/WilliamSoderberg/volley-bracket/docs"
	"github.com/WilliamSoderberg/volley-bracket/handlers"
	"github.com/WilliamSoderberg/volley-bracket/metrics"
	"github.com/WilliamSoderberg/volley-bracket/middleware"
	"github.com/WilliamSoderberg/volley-bracket/services"
)

// Options carries the cross-cutting pieces the router needs besides handlers.
type Options struct {
	Auth           services.AuthService
	Metrics        *metrics.Metrics
	ReportLimiter  *middleware.IPRateLimiter
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(middleware.Metrics(opts.Metrics))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", opts.Metrics.Handler())
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// WebSocket connections are long-lived, so they stay outside the timeout.
	router.Get("/ws", webSocketHandler.ServeLobby)
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(timeout))
		r.Use(middleware.Authenticate(opts.Auth))

		r.With(middleware.RateLimit(opts.ReportLimiter)).Post("/auth/token", authHandler.Login)
		r.With(middleware.RequireAdmin).Get("/auth/check", authHandler.Check)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", dashboardHandler.List)
			r.With(middleware.RequireAdmin).Post("/", tournamentHandler.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetByIDHandler)
				r.Get("/schedule.xlsx", tournamentHandler.ScheduleExportHandler)
				r.With(middleware.RateLimit(opts.ReportLimiter)).Post("/report", tournamentHandler.ReportHandler)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Put("/", tournamentHandler.UpdateHandler)
					r.Delete("/", tournamentHandler.DeleteHandler)
				})
			})
		})
	})
}
