package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"

	dshttp "github.com/docsmith/docsmith/internal/adapter/http"
	dsmcp "github.com/docsmith/docsmith/internal/adapter/mcp"
	"github.com/docsmith/docsmith/internal/adapter/memstore"
	dsnats "github.com/docsmith/docsmith/internal/adapter/nats"
	"github.com/docsmith/docsmith/internal/adapter/otel"
	"github.com/docsmith/docsmith/internal/adapter/postgres"
	"github.com/docsmith/docsmith/internal/adapter/ristretto"
	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/logger"
	"github.com/docsmith/docsmith/internal/middleware"
	"github.com/docsmith/docsmith/internal/port/cache"
	"github.com/docsmith/docsmith/internal/port/messagequeue"
	"github.com/docsmith/docsmith/internal/port/store"
	"github.com/docsmith/docsmith/internal/service"
)

func main() {
	mcpMode := len(os.Args) > 1 && os.Args[1] == "mcp"

	if err := run(mcpMode); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(mcpMode bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var (
		lg        *slog.Logger
		logCloser logger.Closer
	)
	if mcpMode {
		// stdout carries MCP protocol traffic; logs go to stderr.
		lg, logCloser = logger.NewTo(os.Stderr, cfg.Logging)
	} else {
		lg, logCloser = logger.New(cfg.Logging)
	}
	defer logCloser.Close()
	slog.SetDefault(lg)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Backend,
		"log_level", cfg.Logging.Level,
	)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownOtel, err := otel.Init(ctx, cfg.Logging.Service, cfg.Telemetry.Endpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOtel(shutdownCtx)
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Stores ---
	var (
		agents store.AgentStore
		docs   store.DocumentStore
	)
	switch cfg.Store.Backend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		slog.Info("postgres connected, migrations applied")
		agents = postgres.NewAgentStore(pool, cfg.Store.Capacity)
		docs = postgres.NewDocumentStore(pool, cfg.Store.Capacity)
	case "memory", "":
		agents = memstore.NewAgentStore(cfg.Store.Capacity)
		docs = memstore.NewDocumentStore(cfg.Store.Capacity)
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	// --- Messaging ---
	var queue messagequeue.Publisher
	if cfg.NATS.URL != "" {
		pub, err := dsnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = pub.Close() }()
		queue = pub
		slog.Info("nats connected", "url", cfg.NATS.URL)
	}

	// --- Cache ---
	var resultCache cache.Cache
	if cfg.Cache.Enabled {
		c, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		defer c.Close()
		resultCache = c
	}

	// --- Providers and services ---
	resolver := service.NewResolver(cfg.Providers, cfg.Generation, cfg.Breaker)
	resolver.Warm()

	agentSvc := service.NewAgentService(agents, resolver, queue, lg)
	docSvc := service.NewDocumentService(docs, queue, lg)
	genSvc := service.NewGenerationService(agents, docs, resolver, resultCache,
		queue, cfg.Generation, cfg.Cache.TTL, metrics, lg)

	if mcpMode {
		return serveMCP(agentSvc, genSvc, lg)
	}
	return serveHTTP(cfg, agentSvc, docSvc, genSvc)
}

func serveHTTP(cfg *config.Config, agentSvc *service.AgentService, docSvc *service.DocumentService, genSvc *service.GenerationService) error {
	h := dshttp.NewHandlers(agentSvc, docSvc, genSvc)

	r := chi.NewRouter()
	r.Use(dshttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(dshttp.Logger)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(2 * time.Minute))

	dshttp.MountRoutes(r, h)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// serveMCP runs the tool server over stdio. Diagnostic logs go to stderr so
// stdout remains exclusively protocol traffic.
func serveMCP(agentSvc *service.AgentService, genSvc *service.GenerationService, lg *slog.Logger) error {
	srv := dsmcp.NewServer(agentSvc, genSvc, lg)

	errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)
	slog.Info("mcp server starting", "transport", "stdio")

	return mcpserver.ServeStdio(
		srv.MCPServer(),
		mcpserver.WithErrorLogger(errLogger),
	)
}
