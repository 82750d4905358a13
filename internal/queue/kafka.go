package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/classpulse/classpulse/internal/utils"
)

// KafkaConfig represents Apache Kafka configuration
type KafkaConfig struct {
	Brokers      []string      // Kafka broker addresses
	GroupID      string        // Consumer group ID (default: "classpulse-ingest")
	BatchSize    int           // Producer batch size (default: 100)
	BatchTimeout time.Duration // Producer batch timeout (default: 10ms)
	MaxRetries   int           // Producer and commit attempts (default: 3)
	RetryBackoff time.Duration // Backoff between commit attempts (default: 100ms)
}

// KafkaQueue implements Queue interface using Apache Kafka.
// Subjects map one-to-one onto topics. Messages are hash-partitioned by BatchMessage.Key
// so one session's samples are consumed in publish order.
type KafkaQueue struct {
	config        KafkaConfig
	writers       map[string]*kafka.Writer
	subscriptions map[string]*kafkaSubscription
	wg            sync.WaitGroup
	mu            sync.Mutex
}

// kafkaSubscription is one topic's group reader and the cancel func of its fetch loop
type kafkaSubscription struct {
	reader *kafka.Reader
	cancel context.CancelFunc
}

func (s *kafkaSubscription) stop() error {
	s.cancel()
	return s.reader.Close()
}

// newKafkaQueue creates a new Kafka queue instance. No connection is made until first use.
func newKafkaQueue(cfg KafkaConfig) (*KafkaQueue, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	if cfg.GroupID == "" {
		cfg.GroupID = "classpulse-ingest"
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = utils.DefaultMaxRetries
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = utils.DefaultRetryBackoff
	}

	return &KafkaQueue{
		config:        cfg,
		writers:       make(map[string]*kafka.Writer),
		subscriptions: make(map[string]*kafkaSubscription),
	}, nil
}

// writer returns the topic's writer, creating it on first use
func (q *KafkaQueue) writer(topic string) *kafka.Writer {
	q.mu.Lock()
	defer q.mu.Unlock()

	if w, ok := q.writers[topic]; ok {
		return w
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(q.config.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              q.config.BatchSize,
		BatchTimeout:           q.config.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		MaxAttempts:            q.config.MaxRetries,
		AllowAutoTopicCreation: true,
	}

	q.writers[topic] = w
	return w
}

// Publish publishes a message to a Kafka topic
func (q *KafkaQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := q.writer(subject).WriteMessages(ctx, kafka.Message{Value: data, Time: time.Now()}); err != nil {
		return fmt.Errorf("failed to publish to kafka topic %s: %w", subject, err)
	}
	return nil
}

// PublishBatch groups messages by topic and writes each group in one call
func (q *KafkaQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	var (
		published int
		errs      []error
	)
	for topic, msgs := range groupByTopic(messages, time.Now()) {
		if err := q.writer(topic).WriteMessages(ctx, msgs...); err != nil {
			errs = append(errs, fmt.Errorf("topic %s: %w", topic, err))
			continue
		}
		published += len(msgs)
	}

	if published == 0 && len(errs) > 0 {
		return 0, fmt.Errorf("failed to publish batch: %w", errors.Join(errs...))
	}
	return published, nil
}

// groupByTopic converts messages to kafka messages per topic, keeping their order
func groupByTopic(messages []BatchMessage, at time.Time) map[string][]kafka.Message {
	byTopic := make(map[string][]kafka.Message)
	for _, msg := range messages {
		km := kafka.Message{Value: msg.Data, Time: at}
		if msg.Key != "" {
			km.Key = []byte(msg.Key)
		}
		byTopic[msg.Subject] = append(byTopic[msg.Subject], km)
	}
	return byTopic
}

// Subscribe subscribes to a Kafka topic with the configured consumer group
func (q *KafkaQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to topic: %s", subject)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &kafkaSubscription{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  q.config.Brokers,
			GroupID:  q.config.GroupID,
			Topic:    subject,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  time.Second,
		}),
		cancel: cancel,
	}
	q.subscriptions[subject] = sub

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.consumeMessages(ctx, subject, sub.reader, handler)
	}()

	return nil
}

// consumeMessages fetches, handles and commits messages until ctx is cancelled.
// Offsets are committed after delivery completes, whether it succeeded or gave up.
func (q *KafkaQueue) consumeMessages(ctx context.Context, subject string, reader *kafka.Reader, handler MessageHandler) {
	for {
		km, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			time.Sleep(q.config.RetryBackoff)
			continue
		}

		deliver(ctx, handler, Message{Subject: subject, Data: km.Value, Attempt: 1})

		if !q.commit(ctx, reader, km) {
			return
		}
	}
}

// commit retries the offset commit with doubling backoff, capped at utils.MaxRetryBackoff.
// It returns false once ctx is done.
func (q *KafkaQueue) commit(ctx context.Context, reader *kafka.Reader, km kafka.Message) bool {
	backoff := q.config.RetryBackoff
	for i := 0; i < q.config.MaxRetries; i++ {
		if err := reader.CommitMessages(ctx, km); err == nil {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, utils.MaxRetryBackoff)
	}
	return ctx.Err() == nil
}

// Unsubscribe stops the topic's fetch loop and closes its reader
func (q *KafkaQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub, ok := q.subscriptions[subject]
	if !ok {
		return fmt.Errorf("not subscribed to topic: %s", subject)
	}
	delete(q.subscriptions, subject)
	_ = sub.stop()
	return nil
}

// Close stops every subscription, waits for the fetch loops, then flushes and closes writers
func (q *KafkaQueue) Close() error {
	q.mu.Lock()
	var errs []error
	for subject, sub := range q.subscriptions {
		if err := sub.stop(); err != nil {
			errs = append(errs, err)
		}
		delete(q.subscriptions, subject)
	}
	q.mu.Unlock()

	q.wg.Wait()

	q.mu.Lock()
	defer q.mu.Unlock()
	for topic, w := range q.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(q.writers, topic)
	}
	return errors.Join(errs...)
}
