package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// Subjects
const (
	FrameSubjectPrefix = "drone.frame."
	EventSubjectPrefix = "drone.session."
	sessionStream      = "DRONE_SESSIONS"
)

// Publisher implements ports.FramePublisher and ports.EventPublisher.
// Frames go out on core NATS (fire and forget); lifecycle events are
// persisted in a JetStream stream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the session event stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      sessionStream,
		Subjects:  []string{EventSubjectPrefix + ">"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist; try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishFrame sends a frame on drone.frame.<session>. The client buffers
// outgoing messages, so this does not wait on the network.
func (p *Publisher) PublishFrame(ctx context.Context, f *domain.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return p.conn.Publish(FrameSubjectPrefix+f.SessionID, data)
}

// PublishSessionEvent stores a lifecycle event on drone.session.<type>.
func (p *Publisher) PublishSessionEvent(ctx context.Context, ev *domain.SessionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(EventSubjectPrefix+ev.Type, data, nats.Context(ctx))
	return err
}

// Connected reports whether the connection is currently up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection with reconnects enabled.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
