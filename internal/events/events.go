// Package events publishes a record of every HTTP exchange to NATS.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/rbt/internal/constants"
	"github.com/fivetwenty-io/rbt/pkg/rbt"
	"github.com/nats-io/nats.go"
)

// Static errors for err113 compliance.
var (
	ErrNATSURLRequired = errors.New("NATS URL is required")
)

const startKey = "event_start"

// Publisher sends a message on a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Record describes one exchange.
type Record struct {
	RequestID   string    `json:"request_id,omitempty"   yaml:"request_id,omitempty"`
	Method      string    `json:"method"                 yaml:"method"`
	Address     string    `json:"address"                yaml:"address"`
	StatusCode  int       `json:"status_code,omitempty"  yaml:"status_code,omitempty"`
	ContentType string    `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Error       string    `json:"error,omitempty"        yaml:"error,omitempty"`
	DurationMS  int64     `json:"duration_ms"            yaml:"duration_ms"`
	Time        time.Time `json:"time"                   yaml:"time"`
}

// Config configures the NATS connection.
type Config struct {
	// URL of the NATS server, e.g. "nats://localhost:4222".
	URL string
	// Subject records are published on. Defaults to "rbt.exchanges".
	Subject string
	// Name reported to the server for this connection.
	Name string
	// Timeout for the initial connection.
	Timeout time.Duration
}

// Emitter turns exchanges into published records.
type Emitter struct {
	publisher Publisher
	subject   string
	logger    rbt.Logger
	conn      *nats.Conn
}

// NewEmitter creates an emitter over an existing publisher.
func NewEmitter(publisher Publisher, subject string, logger rbt.Logger) *Emitter {
	if subject == "" {
		subject = constants.DefaultEventSubject
	}

	return &Emitter{
		publisher: publisher,
		subject:   subject,
		logger:    logger,
	}
}

// Connect dials NATS and returns an emitter owning the connection.
func Connect(config *Config, logger rbt.Logger) (*Emitter, error) {
	if config == nil || config.URL == "" {
		return nil, ErrNATSURLRequired
	}

	opts := []nats.Option{nats.Name(config.Name)}
	if config.Timeout > 0 {
		opts = append(opts, nats.Timeout(config.Timeout))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", config.URL, err)
	}

	emitter := NewEmitter(conn, config.Subject, logger)
	emitter.conn = conn

	return emitter, nil
}

// Subject returns the subject records are published on.
func (e *Emitter) Subject() string {
	return e.subject
}

// RequestInterceptor stamps the exchange start time.
func (e *Emitter) RequestInterceptor() rbt.RequestInterceptor {
	return func(ctx context.Context, req *rbt.Exchange) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[startKey] = time.Now()

		return nil
	}
}

// ResponseInterceptor publishes a record for the exchange. A publish failure
// is logged and does not fail the exchange.
func (e *Emitter) ResponseInterceptor() rbt.ResponseInterceptor {
	return func(ctx context.Context, req *rbt.Exchange, resp *rbt.Response, err error) error {
		record := NewRecord(req, resp, err)

		data, marshalErr := json.Marshal(record)
		if marshalErr != nil {
			return fmt.Errorf("encoding exchange record: %w", marshalErr)
		}

		publishErr := e.publisher.Publish(e.subject, data)
		if publishErr != nil && e.logger != nil {
			e.logger.Warn("failed to publish exchange", map[string]interface{}{
				"subject": e.subject,
				"error":   publishErr.Error(),
			})
		}

		return nil
	}
}

// Close drains the connection opened by Connect.
func (e *Emitter) Close() error {
	if e.conn == nil {
		return nil
	}

	err := e.conn.Drain()
	if err != nil {
		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}

// NewRecord builds the record for an exchange.
func NewRecord(req *rbt.Exchange, resp *rbt.Response, err error) Record {
	now := time.Now()
	record := Record{
		Method:  string(req.Method),
		Address: req.Address,
		Time:    now.UTC(),
	}

	if id, ok := req.Metadata["request_id"].(string); ok {
		record.RequestID = id
	}

	if start, ok := req.Metadata[startKey].(time.Time); ok {
		record.DurationMS = now.Sub(start).Milliseconds()
	}

	if resp != nil {
		record.StatusCode = resp.StatusCode
		record.ContentType = resp.ContentType()
	}

	if err != nil {
		record.Error = err.Error()
	}

	return record
}
