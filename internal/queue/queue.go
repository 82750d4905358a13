// Package queue carries engagement samples from producers (the in-browser scoring
// client, classroom gateways) to the ingest consumer.
package queue

import (
	"context"
	"errors"
)

// MaxDeliver is the number of delivery attempts before a failing message is dropped
const MaxDeliver = 3

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes a message to a subject/topic
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishBatch publishes multiple messages and waits for all to complete.
	// Returns the number of successfully published messages and any error.
	PublishBatch(ctx context.Context, messages []BatchMessage) (int, error)

	// Close closes the connection
	Close() error
}

// BatchMessage represents a message for batch publishing
type BatchMessage struct {
	Subject string
	Data    []byte
	// Key groups messages that must stay in order (the session ID for samples).
	// Kafka partitions by it; the other backends keep a single ordered stream per subject.
	Key string
}

// Message is one delivery handed to a MessageHandler
type Message struct {
	Subject string
	Data    []byte
	// Attempt is the 1-based delivery attempt, when the backend tracks it
	Attempt int
}

// Subscriber subscribes to messages from a queue
type Subscriber interface {
	// Subscribe subscribes to a subject/topic with a handler
	Subscribe(subject string, handler MessageHandler) error

	// Unsubscribe unsubscribes from a subject/topic
	Unsubscribe(subject string) error

	// Close closes the connection
	Close() error
}

// MessageHandler handles incoming messages. A nil error acknowledges the message.
// An error wrapped with Permanent also acknowledges it (it will never succeed);
// any other error requests redelivery, up to MaxDeliver attempts.
type MessageHandler func(ctx context.Context, msg Message) error

// Queue combines Publisher and Subscriber interfaces
type Queue interface {
	Publisher
	Subscriber
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth redelivering
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// deliver runs handler until it succeeds, fails permanently, runs out of attempts
// or ctx is cancelled. Attempts continue from msg.Attempt.
func deliver(ctx context.Context, handler MessageHandler, msg Message) {
	for ; msg.Attempt <= MaxDeliver; msg.Attempt++ {
		err := handler(ctx, msg)
		if err == nil || IsPermanent(err) || ctx.Err() != nil {
			return
		}
	}
}
