package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// natsKeyHeader carries BatchMessage.Key so consumers can inspect the ordering key
const natsKeyHeader = "ClassPulse-Key"

// NATSConfig holds configuration for NATS JetStream queue
type NATSConfig struct {
	URL           string
	Username      string
	Password      string
	AckWait       time.Duration // Redelivery delay for unacknowledged messages (default: 30s)
	MaxAckPending int           // In-flight messages per consumer (default: 100)
}

// NATSQueue implements Queue on JetStream. Each subject gets a file-backed stream
// and a durable consumer with manual acks.
type NATSQueue struct {
	conn          *nats.Conn
	js            nats.JetStreamContext
	cfg           NATSConfig
	streams       map[string]struct{}
	subscriptions map[string]*nats.Subscription
	mu            sync.Mutex
}

func newNATSQueue(cfg NATSConfig) (*NATSQueue, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}

	opts := []nats.Option{nats.Name("classpulse")}
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	q, err := newNATSQueueWithConn(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	q.cfg = withNATSDefaults(cfg)
	return q, nil
}

// newNATSQueueWithConn wraps an existing connection
func newNATSQueueWithConn(conn *nats.Conn) (*NATSQueue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSQueue{
		conn:          conn,
		js:            js,
		cfg:           withNATSDefaults(NATSConfig{}),
		streams:       make(map[string]struct{}),
		subscriptions: make(map[string]*nats.Subscription),
	}, nil
}

func withNATSDefaults(cfg NATSConfig) NATSConfig {
	if cfg.AckWait <= 0 {
		cfg.AckWait = 30 * time.Second
	}
	if cfg.MaxAckPending <= 0 {
		cfg.MaxAckPending = 100
	}
	return cfg
}

// natsName maps a subject onto the characters allowed in stream and consumer names
func natsName(subject string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, subject)
}

// ensureStream creates the stream for subject on first use. Callers hold q.mu.
func (q *NATSQueue) ensureStream(subject string) error {
	if _, ok := q.streams[subject]; ok {
		return nil
	}

	name := "classpulse-" + natsName(subject)
	if _, err := q.js.StreamInfo(name); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			return fmt.Errorf("failed to look up stream %s: %w", name, err)
		}
		if _, err := q.js.AddStream(&nats.StreamConfig{
			Name:     name,
			Subjects: []string{subject},
			Storage:  nats.FileStorage,
		}); err != nil {
			return fmt.Errorf("failed to create stream for subject %s: %w", subject, err)
		}
	}

	q.streams[subject] = struct{}{}
	return nil
}

// Publish publishes one message and waits for the JetStream ack
func (q *NATSQueue) Publish(ctx context.Context, subject string, data []byte) error {
	var opts []nats.PubOpt
	if _, ok := ctx.Deadline(); ok {
		opts = append(opts, nats.Context(ctx))
	}
	if _, err := q.js.Publish(subject, data, opts...); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// PublishBatch publishes asynchronously, then waits for each ack until ctx is done.
// Messages whose publish or ack fails are not counted.
func (q *NATSQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	pending := make([]nats.PubAckFuture, 0, len(messages))
	for _, bm := range messages {
		msg := nats.NewMsg(bm.Subject)
		msg.Data = bm.Data
		if bm.Key != "" {
			msg.Header.Set(natsKeyHeader, bm.Key)
		}
		future, err := q.js.PublishMsgAsync(msg)
		if err != nil {
			continue
		}
		pending = append(pending, future)
	}

	acked := 0
	for _, future := range pending {
		select {
		case <-future.Ok():
			acked++
		case <-future.Err():
		case <-ctx.Done():
			return acked, fmt.Errorf("waiting for batch acks: %w", ctx.Err())
		}
	}
	return acked, nil
}

// Subscribe attaches a durable consumer to subject. Handler outcomes map to Ack,
// Term (Permanent errors) and Nak; JetStream stops after MaxDeliver attempts.
func (q *NATSQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}
	if err := q.ensureStream(subject); err != nil {
		return err
	}

	sub, err := q.js.Subscribe(subject, func(m *nats.Msg) {
		msg := Message{Subject: m.Subject, Data: m.Data, Attempt: 1}
		if meta, err := m.Metadata(); err == nil {
			msg.Attempt = int(meta.NumDelivered)
		}

		if err := handler(context.Background(), msg); err != nil {
			if IsPermanent(err) {
				_ = m.Term()
				return
			}
			_ = m.Nak()
			return
		}
		_ = m.Ack()
	},
		nats.Durable("consumer-"+natsName(subject)),
		nats.ManualAck(),
		nats.MaxAckPending(q.cfg.MaxAckPending),
		nats.AckWait(q.cfg.AckWait),
		nats.MaxDeliver(MaxDeliver),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	q.subscriptions[subject] = sub
	return nil
}

// Unsubscribe removes the subscription; the durable consumer keeps its position
func (q *NATSQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}
	delete(q.subscriptions, subject)

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from subject %s: %w", subject, err)
	}
	return nil
}

// Close removes every subscription and closes the connection
func (q *NATSQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, sub := range q.subscriptions {
		_ = sub.Unsubscribe()
		delete(q.subscriptions, subject)
	}
	q.conn.Close()
	return nil
}
