package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/models"
	"github.com/classpulse/classpulse/internal/queue"
)

// DefaultProducerBatch is the number of samples packed into one queue message
const DefaultProducerBatch = 500

// Producer publishes a session's samples onto the ingest subject, keyed by session
type Producer struct {
	publisher queue.Publisher
	subject   string
	batchSize int
}

// NewProducer creates a Producer. batchSize <= 0 uses DefaultProducerBatch.
func NewProducer(publisher queue.Publisher, subject string, batchSize int) *Producer {
	if batchSize <= 0 {
		batchSize = DefaultProducerBatch
	}
	return &Producer{
		publisher: publisher,
		subject:   subject,
		batchSize: batchSize,
	}
}

// PublishSamples splits samples into batch messages and publishes them in order.
// It returns the number of samples carried by successfully published messages.
func (p *Producer) PublishSamples(ctx context.Context, sessionID string, samples []analytics.Sample) (int, error) {
	if sessionID == "" {
		return 0, ErrMissingSessionID
	}

	var (
		messages []queue.BatchMessage
		sizes    []int
	)
	for start := 0; start < len(samples); start += p.batchSize {
		end := min(start+p.batchSize, len(samples))

		payload := models.SampleMessage{
			SessionID: sessionID,
			Samples:   make([]models.SampleInput, 0, end-start),
		}
		for _, s := range samples[start:end] {
			payload.Samples = append(payload.Samples, models.SampleInput{Timestamp: s.Timestamp, Score: s.Score})
		}

		data, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("encode batch at %d: %w", start, err)
		}
		messages = append(messages, queue.BatchMessage{Subject: p.subject, Data: data, Key: sessionID})
		sizes = append(sizes, end-start)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	published, err := p.publisher.PublishBatch(ctx, messages)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range sizes[:published] {
		sent += n
	}
	if published < len(messages) {
		return sent, fmt.Errorf("published %d of %d messages", published, len(messages))
	}
	return sent, nil
}
