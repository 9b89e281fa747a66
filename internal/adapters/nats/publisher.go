package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/backoffice/internal/core/domain"
)

// SubjectPrefix is the root of every change-event subject:
// backoffice.changes.<collection>.<action>.
const SubjectPrefix = "backoffice.changes"

// Subject returns the subject an event is published on.
func Subject(ev *domain.ChangeEvent) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, ev.Collection, ev.Action)
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Connect opens a NATS connection that keeps retrying in the background.
func Connect(url, name string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// NewPublisher enables JetStream on conn and ensures the change stream exists.
func NewPublisher(conn *nats.Conn, stream string) (*Publisher, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      stream,
		Subjects:  []string{SubjectPrefix + ".>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist; try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", stream, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishChange publishes ev and waits for the JetStream ack.
func (p *Publisher) PublishChange(ctx context.Context, ev *domain.ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(Subject(ev), data, nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
