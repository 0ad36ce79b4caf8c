package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/dronepath/internal/pkg/metrics"
)

// wsMessage is a playback command sent by the client.
type wsMessage struct {
	Action string `json:"action"` // "toggle" | "reset" | "seek" | "frame"
	Index  int    `json:"index"`  // seek target
}

// WebSocketGuard rejects non-upgrade requests and unknown sessions before the
// connection is upgraded.
func WebSocketGuard(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		id := c.Query("session")
		if id == "" {
			return errBadRequest(c, "session query parameter is required")
		}
		if !deps.Sessions.Exists(id) {
			return errNotFound(c, "session not found")
		}
		return c.Next()
	}
}

// WebSocketHandler streams the frames of one session to the client.
// Connect with /ws?session=<id>. The current frame is sent first, then every
// frame the engine emits. Clients may send {"action":"toggle"},
// {"action":"reset"} or {"action":"seek","index":n}.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		id := c.Query("session")
		remoteAddr := c.RemoteAddr().String()
		log := slog.Default().With("session", id, "remote", remoteAddr)
		log.Info("ws client connected")

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		sub := deps.Hub.Subscribe(id)
		defer sub.Close()

		var mu sync.Mutex

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if f, err := deps.Sessions.Frame(id); err == nil {
			if err := writeJSON(f); err != nil {
				return
			}
		}

		// Read client commands
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				_, msg, err := c.ReadMessage()
				if err != nil {
					return
				}

				var m wsMessage
				if err := json.Unmarshal(msg, &m); err != nil {
					_ = writeJSON(map[string]string{"error": "invalid JSON"})
					continue
				}
				handleWSCommand(deps, id, m, writeJSON)
			}
		}()

		// Keep-alive ping; also ends the stream once the session is gone.
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case f, ok := <-sub.C:
				if !ok {
					log.Info("ws stream closed by session")
					return
				}
				if err := writeJSON(f); err != nil {
					return
				}
			case <-ticker.C:
				if !deps.Sessions.Exists(id) {
					return
				}
				mu.Lock()
				err := c.WriteMessage(websocket.PingMessage, nil)
				mu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				log.Info("ws client disconnected")
				return
			}
		}
	}
}

func handleWSCommand(deps *Dependencies, id string, m wsMessage, reply func(interface{}) error) {
	ctx := context.Background()

	var err error
	switch m.Action {
	case "toggle":
		_, err = deps.Sessions.TogglePause(ctx, id)
	case "reset":
		_, err = deps.Sessions.Reset(ctx, id)
	case "seek":
		_, err = deps.Sessions.Seek(ctx, id, m.Index)
	case "frame":
		f, ferr := deps.Sessions.Frame(id)
		if ferr == nil {
			_ = reply(f)
			return
		}
		err = ferr
	default:
		_ = reply(map[string]string{"error": "unknown action: " + m.Action})
		return
	}

	if err != nil {
		_ = reply(map[string]string{"error": err.Error()})
		return
	}
	_ = reply(map[string]string{"status": "ok", "action": m.Action})
}
