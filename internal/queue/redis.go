package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classpulse/classpulse/internal/utils"
)

// Redis stream entry fields
const (
	redisFieldData      = "data"
	redisFieldPublished = "published_at"
)

// RedisConfig configures the Redis Streams transport
type RedisConfig struct {
	URL      string // redis://host:port/db or a bare host:port
	Password string
	DB       int
	Stream   string // Stream prefix; one stream per subject (default: "classpulse")
	Group    string // Consumer group shared by every ingest replica (default: "classpulse-group")
	Consumer string // Name of this replica inside the group (default: hostname)
	MaxLen   int64  // Approximate cap on entries kept per stream (default: utils.RedisStreamMaxLen)
}

func (c *RedisConfig) applyDefaults() {
	if c.Stream == "" {
		c.Stream = "classpulse"
	}
	if c.Group == "" {
		c.Group = "classpulse-group"
	}
	if c.Consumer == "" {
		c.Consumer, _ = os.Hostname()
		if c.Consumer == "" {
			c.Consumer = "classpulse-consumer"
		}
	}
	if c.MaxLen <= 0 {
		c.MaxLen = utils.RedisStreamMaxLen
	}
}

// RedisQueue carries sample messages over Redis Streams consumer groups
type RedisQueue struct {
	client        *redis.Client
	config        RedisConfig
	subscriptions map[string]context.CancelFunc
	wg            sync.WaitGroup
	mu            sync.RWMutex
}

func newRedisQueue(cfg RedisConfig) (*RedisQueue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{Addr: cfg.URL}
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), utils.StoreOperationTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	cfg.applyDefaults()
	return &RedisQueue{
		client:        client,
		config:        cfg,
		subscriptions: make(map[string]context.CancelFunc),
	}, nil
}

// streamName maps a subject onto its stream key
func (q *RedisQueue) streamName(subject string) string {
	return q.config.Stream + ":" + subject
}

// addArgs builds the XADD for one message, trimming the stream approximately
func (q *RedisQueue) addArgs(subject string, data []byte) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: q.streamName(subject),
		MaxLen: q.config.MaxLen,
		Approx: true,
		Values: map[string]interface{}{
			redisFieldData:      data,
			redisFieldPublished: time.Now().UTC().UnixMicro(),
		},
	}
}

// Publish appends one message to the subject's stream
func (q *RedisQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := q.client.XAdd(ctx, q.addArgs(subject, data)).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", q.streamName(subject), err)
	}
	return nil
}

// PublishBatch pipelines every message and reports how many XADDs succeeded
func (q *RedisQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	cmds, err := q.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, msg := range messages {
			pipe.XAdd(ctx, q.addArgs(msg.Subject, msg.Data))
		}
		return nil
	})

	published := 0
	for _, cmd := range cmds {
		if cmd.Err() == nil {
			published++
		}
	}
	if err != nil && published == 0 {
		return 0, fmt.Errorf("failed to publish batch to Redis: %w", err)
	}
	return published, nil
}

// Subscribe subscribes to a Redis stream with consumer group
func (q *RedisQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	stream := q.streamName(subject)
	ctx, cancel := context.WithCancel(context.Background())

	err := q.client.XGroupCreateMkStream(ctx, stream, q.config.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		cancel()
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.readStream(ctx, subject, stream, handler)
	}()

	q.subscriptions[subject] = cancel
	return nil
}

// readStream first replays entries left pending by a previous run of this consumer,
// then blocks for new entries until ctx is cancelled. Every entry is acknowledged once
// deliver returns, so a message is never handed out more than MaxDeliver times.
func (q *RedisQueue) readStream(ctx context.Context, subject, stream string, handler MessageHandler) {
	cursor := "0"
	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.config.Group,
			Consumer: q.config.Consumer,
			Streams:  []string{stream, cursor},
			Count:    100,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				time.Sleep(time.Second)
			}
			continue
		}

		entries := 0
		for _, s := range streams {
			entries += len(s.Messages)
			if !q.handleEntries(ctx, subject, stream, s.Messages, handler) {
				return
			}
		}

		// Pending backlog drained; switch to new entries only
		if cursor == "0" && entries == 0 {
			cursor = ">"
		}
	}
}

// handleEntries delivers and acknowledges entries in order. It returns false once ctx is done.
func (q *RedisQueue) handleEntries(ctx context.Context, subject, stream string, entries []redis.XMessage, handler MessageHandler) bool {
	for _, entry := range entries {
		if data, ok := entry.Values[redisFieldData].(string); ok {
			deliver(ctx, handler, Message{Subject: subject, Data: []byte(data), Attempt: 1})
		}
		if ctx.Err() != nil {
			return false
		}
		q.client.XAck(ctx, stream, q.config.Group, entry.ID)
	}
	return true
}

// Unsubscribe unsubscribes from a subject
func (q *RedisQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	cancel()
	delete(q.subscriptions, subject)
	return nil
}

// Close closes the Redis connection
func (q *RedisQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, cancel := range q.subscriptions {
		cancel()
		delete(q.subscriptions, subject)
	}
	q.wg.Wait()

	return q.client.Close()
}
