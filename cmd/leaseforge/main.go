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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	lfhttp "github.com/Strob0t/LeaseForge/internal/adapter/http"
	"github.com/Strob0t/LeaseForge/internal/adapter/identity"
	lfnats "github.com/Strob0t/LeaseForge/internal/adapter/nats"
	"github.com/Strob0t/LeaseForge/internal/adapter/otel"
	"github.com/Strob0t/LeaseForge/internal/adapter/postgres"
	"github.com/Strob0t/LeaseForge/internal/adapter/ristretto"
	"github.com/Strob0t/LeaseForge/internal/config"
	"github.com/Strob0t/LeaseForge/internal/domain/money"
	"github.com/Strob0t/LeaseForge/internal/logger"
	"github.com/Strob0t/LeaseForge/internal/middleware"
	"github.com/Strob0t/LeaseForge/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"due_day", cfg.Billing.DueDay,
		"scheduler", cfg.Scheduler.Enabled,
	)

	ctx := context.Background()

	// --- Infrastructure ---

	if cfg.Telemetry.Enabled {
		shutdown, err := otel.Init(ctx, cfg.Logging.Service, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("otel: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := lfnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Drain() }()

	statsCache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer statsCache.Close()

	var metrics *otel.Metrics
	if cfg.Telemetry.Enabled {
		metrics, err = otel.NewMetrics()
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	commissionRate, err := money.ParseAmount(cfg.Billing.CommissionRate)
	if err != nil {
		return fmt.Errorf("commission rate: %w", err)
	}

	// --- Services ---

	store := postgres.NewStore(pool)
	resolver := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.Timeout)

	tenancySvc := service.NewTenancyService(store, queue, resolver, metrics, cfg.Billing.DueDay)
	ledgerSvc := service.NewLedgerService(store, queue, metrics, cfg.Billing.DueDay)
	maintenanceSvc := service.NewMaintenanceService(store, queue)
	bookingSvc := service.NewBookingService(store, queue, metrics, commissionRate)
	statsSvc := service.NewStatsService(store, statsCache, cfg.Cache.StatsTTL)

	if cfg.Scheduler.Enabled {
		scheduler := service.NewScheduler(ledgerSvc)
		if err := scheduler.Start(cfg.Scheduler); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		defer scheduler.Stop()
	}

	// --- HTTP ---

	handlers := lfhttp.NewHandlers(tenancySvc, ledgerSvc, maintenanceSvc, bookingSvc, statsSvc, queue)

	r := chi.NewRouter()
	r.Use(lfhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(lfhttp.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.Actor)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if cfg.Telemetry.Enabled {
		r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	}

	lfhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
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
