package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/dronepath/internal/adapters/broadcast"
	"github.com/samirrijal/dronepath/internal/adapters/http"
	natsadapter "github.com/samirrijal/dronepath/internal/adapters/nats"
	"github.com/samirrijal/dronepath/internal/adapters/postgres"
	"github.com/samirrijal/dronepath/internal/adapters/valkey"
	"github.com/samirrijal/dronepath/internal/core/playback"
	"github.com/samirrijal/dronepath/internal/core/ports"
	"github.com/samirrijal/dronepath/internal/core/usecases"
	"github.com/samirrijal/dronepath/internal/pkg/config"
	"github.com/samirrijal/dronepath/internal/pkg/logging"
	"github.com/samirrijal/dronepath/internal/pkg/telemetry"
)

// hubBuffer is the per-subscriber frame backlog before old frames are dropped.
const hubBuffer = 64

func main() {
	cfg, err := config.Load("dronepath-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup("dronepath-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{Hub: broadcast.NewHub(hubBuffer)}

	// Database (path library)
	var paths ports.SavedPathRepository
	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		deps.DB = db
		paths = postgres.NewSavedPathRepo(db)
	}

	// Cache
	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		c, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.KeyPrefix)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer c.Close()
			deps.Cache = c
			cache = c
		}
	}

	// NATS: frames fan out alongside the in-process hub, events go to JetStream
	var events ports.EventPublisher
	frames := broadcast.NewMulti(deps.Hub)
	if cfg.NATS.Enabled {
		nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer nc.Close()
			deps.NATS = nc
			events = nc
			frames = broadcast.NewMulti(deps.Hub, nc)
		}
	}

	if paths != nil {
		deps.Library = usecases.NewLibraryService(paths, cache)
	}

	deps.Sessions = usecases.NewSessionService(usecases.SessionConfig{
		Playback: playback.Config{
			Steps:        cfg.Playback.Steps,
			StepInterval: cfg.Playback.StepInterval(),
		},
		PauseAtEnd:  cfg.Playback.PauseAtEnd,
		MaxSessions: cfg.Playback.MaxSessions,
	}, frames, events, deps.Library)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		AppName:      "Dronepath API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr,
			"steps", cfg.Playback.Steps, "step_interval_ms", cfg.Playback.StepIntervalMS,
			"library", deps.Library.Available(), "nats", deps.NATS != nil)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	// Stop every engine before the publishers close
	deps.Sessions.Close()

	slog.Info("server stopped")
}
