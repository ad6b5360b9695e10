package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/WilliamSoderberg/volley-bracket/brackets"
	"github.com/WilliamSoderberg/volley-bracket/config"
	"github.com/WilliamSoderberg/volley-bracket/db"
	"github.com/WilliamSoderberg/volley-bracket/handlers"
	"github.com/WilliamSoderberg/volley-bracket/metrics"
	"github.com/WilliamSoderberg/volley-bracket/middleware"
	"github.com/WilliamSoderberg/volley-bracket/repositories"
	api "github.com/WilliamSoderberg/volley-bracket/routes"
	"github.com/WilliamSoderberg/volley-bracket/services"
	"github.com/WilliamSoderberg/volley-bracket/storage"
)

const (
	boundaryInterval = 30 * time.Second
	shutdownTimeout  = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("timezone", cfg.Location.String()))

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	hash, err := services.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	authService, err := services.NewAuthService(services.AuthConfig{
		Username:     cfg.AdminUser,
		PasswordHash: hash,
		Secret:       []byte(cfg.JWTSecretKey),
	})
	if err != nil {
		return err
	}

	wsHub := brackets.NewHub(logger)
	notifiers := []services.Notifier{services.NewHubNotifier(wsHub)}
	if cfg.R2.Enabled() {
		store, err := storage.NewCloudflareR2Store(ctx, cfg.R2)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 store: %w", err)
		}
		notifiers = append(notifiers, services.NewSnapshotPublisher(store, logger))
		logger.Info("publishing tournament snapshots to Cloudflare R2", slog.String("bucket", cfg.R2.BucketName))
	}
	notifier := services.NewMultiNotifier(notifiers...)

	m := metrics.New()
	locks := services.NewLocker()
	tournamentService := services.NewTournamentService(repo, locks, notifier, m, cfg.Location, logger)
	scoreService := services.NewScoreService(repo, locks, notifier, m, logger)
	dashboardService := services.NewDashboardService(repo, notifier, cfg.Location, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			Auth:           authService,
			Metrics:        m,
			ReportLimiter:  middleware.PerMinute(cfg.ReportRatePerMinute),
			AllowedOrigins: cfg.CORSAllowedOrigins,
		},
		handlers.NewAuthHandler(authService),
		handlers.NewDashboardHandler(dashboardService),
		handlers.NewTournamentHandler(tournamentService, scoreService),
		handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins, logger),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return wsHub.Run(gctx) })
	g.Go(func() error { return dashboardService.WatchBoundaries(gctx, boundaryInterval) })
	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openRepository picks Postgres when DATABASE_URL is set and the in-memory
// store otherwise.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.TournamentRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, tournaments are kept in memory")
		return repositories.NewMemoryTournamentRepository(), func() {}, nil
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx, dbConn); err != nil {
		_ = dbConn.Close()
		return nil, nil, err
	}
	logger.Info("database connection established")

	return repositories.NewPostgresTournamentRepository(dbConn), func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}, nil
}
