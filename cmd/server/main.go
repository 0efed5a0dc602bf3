package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/profilesync/internal/api"
	"github.com/Rrens/profilesync/internal/apitest"
	"github.com/Rrens/profilesync/internal/config"
	"github.com/Rrens/profilesync/internal/credential"
	"github.com/Rrens/profilesync/internal/logger"
	"github.com/Rrens/profilesync/internal/metrics"
	"github.com/Rrens/profilesync/internal/preference"
	"github.com/Rrens/profilesync/internal/service"
	"github.com/Rrens/profilesync/internal/transport"
)

func main() {
	demo := flag.Bool("demo", false, "serve against an in-process fake API with a seeded demo account")
	flag.Parse()

	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := logger.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if *demo {
		fake := apitest.New()
		fake.SeedUser("demo@example.com", "demo-password", "Demo User")
		srv := fake.Start()
		defer srv.Close()
		cfg.API.BaseURL = srv.URL + apitest.BasePath
		log.Warn().Str("base_url", cfg.API.BaseURL).Msg("Demo mode: using in-process fake API (demo@example.com / demo-password)")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("api", cfg.API.BaseURL).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting profilesync")

	// Initialize credential storage
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), connectTimeout)
	store, err := openBackend(connectCtx, cfg)
	cancelConnect()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open credential storage")
	}
	defer store.close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	credentials := credential.NewStore(store, cfg.Storage.OpTimeout)

	tr, err := transport.New(transport.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Metrics: m,
	}, credentials)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API transport")
	}

	session := service.NewSessionService(tr, credentials)
	defer session.Close()

	session.CurrentUser()
	if session.IsAuthenticated() {
		log.Info().Msg("Restored stored session")
	}

	// Initialize router
	router := api.NewRouter(cfg, api.Deps{
		Session:     session,
		Tokens:      credentials,
		Preferences: preference.NewStore(store, cfg.Storage.OpTimeout),
		Metrics:     m,
		Storage:     store.pinger,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
