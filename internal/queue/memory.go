package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/classpulse/classpulse/internal/utils"
)

// ErrQueueClosed is returned when publishing to or subscribing on a closed MemoryQueue
var ErrQueueClosed = errors.New("queue closed")

// memorySubject is one subject's buffer and, once subscribed, its consumer's cancel func
type memorySubject struct {
	ch     chan Message
	cancel context.CancelFunc
}

// MemoryQueue keeps each subject in a bounded channel drained by at most one consumer.
// Used by tests and single-process deployments.
type MemoryQueue struct {
	mu       sync.Mutex
	subjects map[string]*memorySubject
	closed   bool
	wg       sync.WaitGroup
}

func newMemoryQueue() *MemoryQueue {
	return &MemoryQueue{subjects: make(map[string]*memorySubject)}
}

// NewMemoryQueue creates an in-memory queue
func NewMemoryQueue() *MemoryQueue {
	return newMemoryQueue()
}

// subject returns the entry for name, creating it. Callers hold q.mu.
func (q *MemoryQueue) subject(name string) *memorySubject {
	s, ok := q.subjects[name]
	if !ok {
		s = &memorySubject{ch: make(chan Message, utils.MemoryQueueCapacity)}
		q.subjects[name] = s
	}
	return s
}

// Publish buffers a copy of data. It fails instead of blocking when the buffer is full.
func (q *MemoryQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	msg := Message{Subject: subject, Data: append([]byte(nil), data...), Attempt: 1}
	select {
	case q.subject(subject).ch <- msg:
		return nil
	default:
		return fmt.Errorf("buffer full for subject %s", subject)
	}
}

// PublishBatch publishes messages in order and reports how many were buffered
func (q *MemoryQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	published := 0
	for _, m := range messages {
		if err := q.Publish(ctx, m.Subject, m.Data); err != nil {
			if ctx.Err() != nil {
				return published, err
			}
			continue
		}
		published++
	}
	return published, nil
}

// Subscribe starts the consumer for subject. Transient handler errors are retried
// in place up to MaxDeliver attempts.
func (q *MemoryQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	s := q.subject(subject)
	if s.cancel != nil {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	q.wg.Add(1)
	go func(ch <-chan Message) {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				deliver(ctx, handler, msg)
			}
		}
	}(s.ch)

	return nil
}

// Unsubscribe stops the consumer for subject; buffered messages stay queued
func (q *MemoryQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	s, ok := q.subjects[subject]
	if !ok || s.cancel == nil {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}
	s.cancel()
	s.cancel = nil
	return nil
}

// Close stops every consumer and drops buffered messages
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	for _, s := range q.subjects {
		if s.cancel != nil {
			s.cancel()
		}
	}
	q.subjects = make(map[string]*memorySubject)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

// PendingCount returns the number of buffered, undelivered messages for subject
func (q *MemoryQueue) PendingCount(subject string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if s, ok := q.subjects[subject]; ok {
		return len(s.ch)
	}
	return 0
}
