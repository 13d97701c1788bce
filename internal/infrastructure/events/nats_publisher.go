package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"qctrack/internal/bootstrap/logging"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Envelope is the JSON body of every published message.
type Envelope struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
	RequestID  string    `json:"request_id,omitempty"`
	Payload    any       `json:"payload"`
}

// NATSPublisher publishes domain events to <prefix>.<event>.
type NATSPublisher struct {
	conn   conn
	prefix string
	now    func() time.Time
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

func DialNATS(url string, subjectPrefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("qctrack"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %s", url)
	}
	return newNATSPublisher(nc, subjectPrefix), nil
}

func newNATSPublisher(c conn, subjectPrefix string) *NATSPublisher {
	return &NATSPublisher{
		conn:   c,
		prefix: strings.Trim(strings.TrimSpace(subjectPrefix), "."),
		now:    time.Now,
	}
}

func (p *NATSPublisher) Subject(event string) string {
	if p.prefix == "" {
		return event
	}
	return p.prefix + "." + event
}

func (p *NATSPublisher) Publish(ctx context.Context, event string, payload any) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if strings.TrimSpace(event) == "" {
		return errors.New("event is required")
	}

	body, err := json.Marshal(Envelope{
		Event:      event,
		OccurredAt: p.now().UTC(),
		RequestID:  logging.RequestID(ctx),
		Payload:    payload,
	})
	if err != nil {
		return errs.Wrap(err, "marshal event")
	}

	subject := p.Subject(event)
	if err := p.conn.Publish(subject, body); err != nil {
		return errs.Wrapf(err, "publish %s", subject)
	}
	logging.Debug(ctx, "event published", slog.String("subject", subject))
	return nil
}

func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		return errs.Wrap(err, "drain nats connection")
	}
	return nil
}

// Noop drops every event. Used when events.nats_url is empty.
type Noop struct{}

var _ ports.EventPublisher = Noop{}

func (Noop) Publish(context.Context, string, any) error {
	return nil
}
