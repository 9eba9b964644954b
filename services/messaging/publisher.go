package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sahilchouksey/admission-bridge/utils"
)

// Subject suffixes published by the admissions workflow
const (
	SubjectStudentForwarded = "student.forwarded"
	SubjectStudentFinalized = "student.finalized"
)

// Publisher emits domain events to the message bus
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
	Close() error
}

// NATSPublisher publishes JSON events to NATS under a fixed subject prefix
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	log    *utils.Logger
}

// NewNATSPublisher connects to NATS
func NewNATSPublisher(url, prefix string, log *utils.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("admission-bridge"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("NATS publisher initialized", "url", url, "prefix", prefix)

	return &NATSPublisher{
		conn:   nc,
		prefix: prefix,
		log:    log,
	}, nil
}

// Subject returns the fully qualified subject for a suffix
func (p *NATSPublisher) Subject(suffix string) string {
	if p.prefix == "" {
		return suffix
	}
	return p.prefix + "." + suffix
}

// Publish marshals payload as JSON and publishes it
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	full := p.Subject(subject)
	if err := p.conn.Publish(full, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", full, err)
	}

	p.log.Debug("event published", "subject", full)
	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NoopPublisher discards events. Used when NATS_URL is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }
