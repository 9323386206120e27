// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	nuts "github.com/vaudience/go-nuts"

	"github.com/vitaltrack/pulsehub/api"
	"github.com/vitaltrack/pulsehub/api/middleware"
	"github.com/vitaltrack/pulsehub/internal/cache"
	"github.com/vitaltrack/pulsehub/internal/config"
	"github.com/vitaltrack/pulsehub/internal/database"
	"github.com/vitaltrack/pulsehub/internal/hubservice"
	"github.com/vitaltrack/pulsehub/internal/monitoring"
	"github.com/vitaltrack/pulsehub/internal/repository/postgres"
	"github.com/vitaltrack/pulsehub/internal/repository/timescale"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Initialize services
	s.hubservice = initializeHubService(s.config)
	if err := s.hubservice.Validate(); err != nil {
		return err
	}
	s.monitoring = monitoring.NewService(monitoring.Config{
		PrometheusEndpoint: s.config.Monitoring.PrometheusEndpoint,
		LokiEndpoint:       s.config.Monitoring.LokiEndpoint,
	})

	// Set up cleanup event handlers
	s.setupCleanupHandlers()

	// Setup routes
	router := api.NewRouter(s.hubservice, middleware.AuthConfig{
		JWTSecret: s.config.Auth.JWTSecret,
	})

	s.srv.Handler = handlers.CombinedLoggingHandler(os.Stdout,
		handlers.CORS(
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Auth", "X-API-Key", "X-Integration-Key"}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
		)(router))

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) setupCleanupHandlers() {
	// Handle device deletion events
	s.hubservice.Cleanup.OnCleanup("device.deleted", func(id string) {
		nuts.L.Infof("[Cleanup] Device %s and all associated data deleted", id)
		s.monitoring.RecordEvent("device_deletion", map[string]string{
			"device_id": id,
		})
	})

	// Handle reading purge events
	s.hubservice.Cleanup.OnCleanup("readings.purged", func(id string) {
		nuts.L.Infof("[Cleanup] All readings for device %s deleted", id)
		s.monitoring.RecordEvent("readings_purge", map[string]string{
			"device_id": id,
		})
	})
}

// initializeHubService creates and configures the hub service
func initializeHubService(cfg *config.Config) *hubservice.HubService {
	// Initialize database connections
	tsdb := initTimescaleDB(cfg.Database.TimescaleDB)
	appDB := initAppDB(cfg.Database.AppDB)

	if err := postgres.InitializeSchema(appDB); err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize app schema: %v", err)
	}

	// Initialize repositories
	customers := postgres.NewCustomerRepository(appDB)
	devices := postgres.NewDeviceRepository(appDB)

	readings, err := timescale.NewReadingRepository(tsdb, cfg.Ingest.RetentionDays)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize reading repository: %v", err)
	}

	deviceCache := cache.NewDeviceCache(cfg.Redis, cfg.Ingest.DeviceCacheTTL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := deviceCache.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping Redis: %v", err)
	}

	// Create and return hub service
	return hubservice.New(customers, devices, readings, deviceCache, cfg.Ingest.IntegrationKey)
}

func initTimescaleDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewTimescaleDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to TimescaleDB: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping TimescaleDB: %v", err)
	}
	return wrappedDB
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to AppDB: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping AppDB: %v", err)
	}
	return wrappedDB
}
