// Package ingest moves engagement samples through the message queue: Producer publishes
// them, Consumer stores them.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/metrics"
	"github.com/classpulse/classpulse/internal/models"
	"github.com/classpulse/classpulse/internal/queue"
	"github.com/classpulse/classpulse/internal/services"
	"github.com/classpulse/classpulse/internal/utils"
)

// ErrMissingSessionID is returned for messages without a session_id
var ErrMissingSessionID = errors.New("message has no session_id")

// SampleAppender stores validated samples; implemented by services.SampleService
type SampleAppender interface {
	Append(ctx context.Context, sessionID, source string, inputs []models.SampleInput) (int, error)
}

// Consumer subscribes to the sample subject and feeds messages to the sample service.
// Invalid messages are dropped; store failures are redelivered by the queue.
type Consumer struct {
	logger     *logging.Logger
	subscriber queue.Subscriber
	subject    string
	samples    SampleAppender
	metrics    *metrics.Metrics
}

// NewConsumer creates a new Consumer
func NewConsumer(
	logger *logging.Logger,
	subscriber queue.Subscriber,
	subject string,
	samples SampleAppender,
	m *metrics.Metrics,
) *Consumer {
	return &Consumer{
		logger:     logger.With("component", "ingest"),
		subscriber: subscriber,
		subject:    subject,
		samples:    samples,
		metrics:    m,
	}
}

// Start subscribes to the configured subject
func (c *Consumer) Start() error {
	if err := c.subscriber.Subscribe(c.subject, c.Handle); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.subject, err)
	}
	c.logger.Info("Ingest consumer started", "subject", c.subject)
	return nil
}

// Stop unsubscribes from the subject
func (c *Consumer) Stop() error {
	if err := c.subscriber.Unsubscribe(c.subject); err != nil {
		return err
	}
	c.logger.Info("Ingest consumer stopped", "subject", c.subject)
	return nil
}

// Handle processes one queue message
func (c *Consumer) Handle(ctx context.Context, msg queue.Message) error {
	ctx, cancel := context.WithTimeout(ctx, utils.IngestHandleTimeout)
	defer cancel()

	var payload models.SampleMessage
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.metrics.AddRejected(metrics.SourceQueue, "malformed", 1)
		c.logger.Warn("Dropping malformed sample message",
			"subject", msg.Subject,
			"error", err)
		return queue.Permanent(err)
	}

	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		c.metrics.AddRejected(metrics.SourceQueue, "missing_session", 1)
		c.logger.Warn("Dropping sample message without session", "subject", msg.Subject)
		return queue.Permanent(ErrMissingSessionID)
	}

	ctx = logging.WithSessionID(logging.WithLogger(ctx, c.logger), sessionID)

	n, err := c.samples.Append(ctx, sessionID, metrics.SourceQueue, payload.Items())
	if err != nil {
		if services.IsTransient(err) {
			c.logger.Warn("Failed to store samples, requesting redelivery",
				"session_id", sessionID,
				"attempt", msg.Attempt,
				"error", err)
			return err
		}
		c.logger.Warn("Dropping rejected sample message",
			"session_id", sessionID,
			"code", services.ErrorCode(err),
			"error", err)
		return queue.Permanent(err)
	}

	c.logger.Debug("Samples ingested",
		"session_id", sessionID,
		"count", n)
	return nil
}
