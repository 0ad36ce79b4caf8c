package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// Subscriber consumes frames and session events.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeFrames receives frames of one session, or of all sessions when
// sessionID is empty. Undecodable messages are skipped.
func (s *Subscriber) SubscribeFrames(ctx context.Context, sessionID string, handler func(ctx context.Context, f *domain.Frame) error) error {
	subject := FrameSubjectPrefix + ">"
	if sessionID != "" {
		subject = FrameSubjectPrefix + sessionID
	}
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		var f domain.Frame
		if err := json.Unmarshal(msg.Data, &f); err != nil {
			return
		}
		_ = handler(ctx, &f)
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeSessionEvents consumes lifecycle events with a durable consumer.
func (s *Subscriber) SubscribeSessionEvents(ctx context.Context, durable string, handler func(ctx context.Context, ev *domain.SessionEvent) error) error {
	sub, err := s.js.Subscribe(EventSubjectPrefix+">", func(msg *nats.Msg) {
		var ev domain.SessionEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &ev); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
