package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/samirrijal/dronepath/internal/adapters/nats"
	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/pkg/config"
	"github.com/samirrijal/dronepath/internal/pkg/logging"
)

const (
	durableName     = "dronepath-monitor"
	summaryInterval = 30 * time.Second
)

// Monitor follows the frames and lifecycle events the API publishes to NATS.
// Pass a session ID as the first argument to watch a single session.
func main() {
	cfg, err := config.Load("dronepath-monitor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("dronepath-monitor", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	sessionID := ""
	if len(os.Args) > 1 {
		sessionID = os.Args[1]
	}

	tr := newTracker()

	if err := sub.SubscribeFrames(ctx, sessionID, func(_ context.Context, f *domain.Frame) error {
		if tr.frame(f) {
			slog.Info("waypoint reached",
				"session", f.SessionID, "index", f.Index,
				"lat", f.Position.Lat, "lon", f.Position.Lon, "at_end", f.AtEnd)
		}
		return nil
	}); err != nil {
		log.Fatalf("subscribe frames: %v", err)
	}

	if err := sub.SubscribeSessionEvents(ctx, durableName, func(_ context.Context, ev *domain.SessionEvent) error {
		if sessionID != "" && ev.SessionID != sessionID {
			return nil
		}
		tr.event(ev)
		slog.Info("session event", "session", ev.SessionID, "type", ev.Type, "points", ev.Points)
		return nil
	}); err != nil {
		log.Fatalf("subscribe events: %v", err)
	}

	slog.Info("monitor started", "session", sessionID, "url", cfg.NATS.URL)

	ticker := time.NewTicker(summaryInterval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			for _, s := range tr.summary() {
				slog.Info("session summary",
					"session", s.SessionID, "frames", s.Frames,
					"waypoints", s.Waypoints, "last_index", s.LastIndex, "state", s.Status)
			}
		case sig := <-quit:
			slog.Info("shutting down monitor", "signal", sig.String())
			return
		}
	}
}
