package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/utils"
)

// RedisConfig represents Redis store configuration
type RedisConfig struct {
	URL       string // Redis URL (e.g., redis://localhost:6379) or host:port
	Password  string // Optional password
	DB        int    // Database number (default: 0)
	KeyPrefix string // Key namespace (default: "classpulse")
}

// RedisStore keeps sessions as JSON strings and samples in one sorted set per session,
// scored by the sample's Unix time in microseconds.
//
// Keys:
//
//	<prefix>:session:<id>      session JSON
//	<prefix>:share:<code>      session ID
//	<prefix>:teacher:<id>      set of session IDs
//	<prefix>:samples:<id>      sorted set of sample members
type RedisStore struct {
	client *redis.Client
	prefix string
}

// sampleMember is the sorted-set member; ID keeps identical samples distinct.
type sampleMember struct {
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"`
	Score     float64 `json:"score"`
}

// newRedisClient parses a URL or falls back to a plain address. Password and DB fill in
// what the URL leaves unset; values in the URL take precedence.
func newRedisClient(url, password string, db int) *redis.Client {
	return redis.NewClient(redisOptions(url, password, db))
}

func redisOptions(url, password string, db int) *redis.Options {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return &redis.Options{
			Addr:     url,
			Password: password,
			DB:       db,
		}
	}
	if opts.Password == "" {
		opts.Password = password
	}
	if opts.DB == 0 {
		opts.DB = db
	}
	return opts
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := newRedisClient(cfg.URL, cfg.Password, cfg.DB)

	ctx, cancel := context.WithTimeout(context.Background(), utils.StoreOperationTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "classpulse"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) sessionKey(id string) string { return r.prefix + ":session:" + id }
func (r *RedisStore) shareKey(code string) string { return r.prefix + ":share:" + code }
func (r *RedisStore) teacherKey(id string) string { return r.prefix + ":teacher:" + id }
func (r *RedisStore) samplesKey(id string) string { return r.prefix + ":samples:" + id }

func (r *RedisStore) CreateSession(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if session.ShareCode != "" {
		ok, err := r.client.SetNX(ctx, r.shareKey(session.ShareCode), session.ID, 0).Result()
		if err != nil {
			return fmt.Errorf("failed to reserve share code: %w", err)
		}
		if !ok {
			return ErrSessionExists
		}
	}

	ok, err := r.client.SetNX(ctx, r.sessionKey(session.ID), data, 0).Result()
	if err != nil || !ok {
		if session.ShareCode != "" {
			r.client.Del(ctx, r.shareKey(session.ShareCode))
		}
		if err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		return ErrSessionExists
	}

	if err := r.client.SAdd(ctx, r.teacherKey(session.TeacherID), session.ID).Err(); err != nil {
		return fmt.Errorf("failed to index session: %w", err)
	}
	return nil
}

func (r *RedisStore) GetSession(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return decodeSession(data)
}

func (r *RedisStore) FindByShareCode(ctx context.Context, code string) (*Session, error) {
	id, err := r.client.Get(ctx, r.shareKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve share code: %w", err)
	}
	return r.GetSession(ctx, id)
}

func (r *RedisStore) ListSessions(ctx context.Context, teacherID string) ([]*Session, error) {
	ids, err := r.client.SMembers(ctx, r.teacherKey(teacherID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*Session, 0, len(ids))
	if len(ids) == 0 {
		return sessions, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.sessionKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		s, err := decodeSession([]byte(raw))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	sortSessionsByStart(sessions)
	return sessions, nil
}

func (r *RedisStore) EndSession(ctx context.Context, id string, at time.Time) error {
	return r.updateSession(ctx, id, func(s *Session) {
		ended := at
		s.EndedAt = &ended
	})
}

func (r *RedisStore) Heartbeat(ctx context.Context, id string, at time.Time) error {
	return r.updateSession(ctx, id, func(s *Session) {
		s.LastSeenAt = at
	})
}

// updateSession applies mutate under WATCH, retrying when a concurrent writer wins.
func (r *RedisStore) updateSession(ctx context.Context, id string, mutate func(*Session)) error {
	key := r.sessionKey(id)

	return r.watch(ctx, id, key, func(tx *redis.Tx) error {
		s, err := r.loadWatched(ctx, tx, key)
		if err != nil {
			return err
		}
		mutate(s)
		updated, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	})
}

// loadWatched reads and decodes the session under an open WATCH
func (r *RedisStore) loadWatched(ctx context.Context, tx *redis.Tx, key string) (*Session, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(data)
}

// watch runs txn with key watched, retrying with backoff when the transaction loses a
// race. ErrSessionNotFound and ErrSessionEnded are returned unwrapped.
func (r *RedisStore) watch(ctx context.Context, id, key string, txn func(*redis.Tx) error) error {
	backoff := utils.DefaultRetryBackoff
	for attempt := 0; attempt < utils.DefaultMaxRetries; attempt++ {
		err := r.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			if err != nil && !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionEnded) {
				return fmt.Errorf("failed to update session %s: %w", id, err)
			}
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, utils.MaxRetryBackoff)
	}
	return fmt.Errorf("failed to update session %s: too much contention", id)
}

// AppendSamples adds the samples in a transaction that watches the session record, so
// an EndSession racing with the append either lands first and rejects it or fails the
// append's EXEC and is seen on retry.
func (r *RedisStore) AppendSamples(ctx context.Context, sessionID string, samples []analytics.Sample) error {
	stamped, err := stampSamples(samples)
	if err != nil {
		return err
	}

	members := make([]redis.Z, len(stamped))
	for i, ts := range stamped {
		data, err := json.Marshal(sampleMember{
			ID:        uuid.New().String(),
			Timestamp: ts.sample.Timestamp,
			Score:     ts.sample.Score,
		})
		if err != nil {
			return fmt.Errorf("failed to encode sample: %w", err)
		}
		members[i] = redis.Z{Score: float64(ts.at.UnixMicro()), Member: data}
	}

	key := r.sessionKey(sessionID)
	return r.watch(ctx, sessionID, key, func(tx *redis.Tx) error {
		s, err := r.loadWatched(ctx, tx, key)
		if err != nil {
			return err
		}
		if !s.Active() {
			return ErrSessionEnded
		}
		if len(members) == 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZAdd(ctx, r.samplesKey(sessionID), members...)
			return nil
		})
		return err
	})
}

func (r *RedisStore) ListSamples(ctx context.Context, sessionID string, since *time.Time) ([]analytics.Sample, error) {
	exists, err := r.client.Exists(ctx, r.sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if exists == 0 {
		return nil, ErrSessionNotFound
	}

	lower := "-inf"
	if since != nil {
		lower = "(" + strconv.FormatInt(since.UnixMicro(), 10)
	}

	raw, err := r.client.ZRangeByScore(ctx, r.samplesKey(sessionID), &redis.ZRangeBy{
		Min: lower,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}

	samples := make([]analytics.Sample, 0, len(raw))
	for _, item := range raw {
		var m sampleMember
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("corrupt sample member: %w", err)
		}
		samples = append(samples, analytics.Sample{Timestamp: m.Timestamp, Score: m.Score})
	}
	return samples, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func decodeSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corrupt session record: %w", err)
	}
	return &s, nil
}
