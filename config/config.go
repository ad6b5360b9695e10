package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/WilliamSoderberg/volley-bracket/storage"
)

// Config holds every runtime setting of the server.
type Config struct {
	ServerPort int
	// DatabaseURL selects Postgres; empty keeps tournaments in memory.
	DatabaseURL  string
	JWTSecretKey string

	AdminUser     string
	AdminPassword string

	Location *time.Location
	LogLevel slog.Level

	// ReportRatePerMinute throttles anonymous score reports per client IP; 0 disables.
	ReportRatePerMinute int
	CORSAllowedOrigins  []string

	R2 storage.CloudflareR2Config
}

// Load reads the environment, after merging a .env file when one exists.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	port, err := strconv.Atoi(env("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	jwtKey := env("JWT_SECRET_KEY", "")
	if jwtKey == "" {
		return nil, errors.New("JWT_SECRET_KEY environment variable is not set")
	}
	adminPassword := getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		return nil, errors.New("ADMIN_PASSWORD environment variable is not set")
	}

	loc := time.Local
	if tz := env("TIMEZONE", ""); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	rate, err := strconv.Atoi(env("REPORT_RATE_PER_MINUTE", "30"))
	if err != nil || rate < 0 {
		return nil, fmt.Errorf("REPORT_RATE_PER_MINUTE must be a non-negative integer, got %q", getenv("REPORT_RATE_PER_MINUTE"))
	}

	var origins []string
	for _, o := range strings.Split(env("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	r2 := storage.CloudflareR2Config{
		AccountID:       env("R2_ACCOUNT_ID", ""),
		AccessKeyID:     env("R2_ACCESS_KEY_ID", ""),
		SecretAccessKey: env("R2_SECRET_ACCESS_KEY", ""),
		BucketName:      env("R2_BUCKET_NAME", ""),
		PublicBaseURL:   env("R2_PUBLIC_BASE_URL", ""),
	}
	if r2.Enabled() {
		if err := r2.Validate(); err != nil {
			return nil, err
		}
	}

	return &Config{
		ServerPort:          port,
		DatabaseURL:         env("DATABASE_URL", ""),
		JWTSecretKey:        jwtKey,
		AdminUser:           env("ADMIN_USER", "admin"),
		AdminPassword:       adminPassword,
		Location:            loc,
		LogLevel:            level,
		ReportRatePerMinute: rate,
		CORSAllowedOrigins:  origins,
		R2:                  r2,
	}, nil
}
