package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storehub/authcore/internal/api"
	"github.com/storehub/authcore/internal/audit"
	"github.com/storehub/authcore/internal/authn"
	"github.com/storehub/authcore/internal/config"
	"github.com/storehub/authcore/internal/database"
	"github.com/storehub/authcore/internal/identity"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	provider := buildProvider(cfg)

	recorder, closeRecorder, err := buildRecorder(cfg)
	if err != nil {
		slog.Error("failed to initialize audit recorder", "error", err)
		os.Exit(1)
	}
	defer closeRecorder()

	authenticator := authn.New(provider, authn.WithCookieName(cfg.SessionCookieName))

	router := api.NewRouter(api.RouterDeps{
		Provider:      provider,
		Authenticator: authenticator,
		Recorder:      recorder,
		Version:       cfg.Version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting authcore server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// buildProvider assembles the identity provider client, wrapping it in
// the Redis token cache when one is configured.
func buildProvider(cfg *config.Config) identity.Provider {
	var provider identity.Provider = identity.NewHTTPClient(
		cfg.ProviderURL,
		identity.WithTimeout(time.Duration(cfg.ProviderTimeoutSeconds)*time.Second),
	)

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Warn("invalid REDIS_URL, token cache disabled", "error", err)
			return provider
		}
		ttl := time.Duration(cfg.TokenCacheTTLSeconds) * time.Second
		provider = identity.NewCachingProvider(provider, redis.NewClient(redisOpts), ttl)
		slog.Info("token validation cache enabled", "ttl", ttl)
	}

	return provider
}

// buildRecorder assembles the audit recorder; without a database it
// degrades to a no-op.
func buildRecorder(cfg *config.Config) (audit.Recorder, func(), error) {
	if cfg.DatabaseURL == "" {
		return audit.NewNopRecorder(), func() {}, nil
	}

	db, err := database.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting audit database: %w", err)
	}

	return audit.NewPostgresRecorder(db.Pool()), db.Close, nil
}
