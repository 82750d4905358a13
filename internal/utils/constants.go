package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// DefaultRequestTimeout is the default timeout for HTTP requests
	DefaultRequestTimeout = 30 * time.Second

	// StoreOperationTimeout bounds a single store round-trip issued outside a request
	StoreOperationTimeout = 5 * time.Second

	// IngestHandleTimeout bounds the handling of one queue message
	IngestHandleTimeout = 10 * time.Second
)

// =============================================================================
// Session Constants
// =============================================================================

const (
	// ShareCodeLength is the length of the code students use to join a session
	ShareCodeLength = 8

	// MaxSamplesPerBatch is the largest batch accepted by one append call
	MaxSamplesPerBatch = 10000
)

// =============================================================================
// Score Constants
// =============================================================================

const (
	// MinScore and MaxScore bound a valid engagement score
	MinScore = 0.0
	MaxScore = 1.0
)

// =============================================================================
// Retry and Backoff Constants
// =============================================================================

const (
	// DefaultMaxRetries is the default number of retry attempts
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the default backoff duration between retries
	DefaultRetryBackoff = 100 * time.Millisecond

	// MaxRetryBackoff is the maximum backoff duration
	MaxRetryBackoff = 5 * time.Second
)

// =============================================================================
// Buffer Constants
// =============================================================================

const (
	// MemoryQueueCapacity is the per-subject buffer of the in-memory queue
	MemoryQueueCapacity = 10000

	// RedisStreamMaxLen caps the entries retained per Redis stream
	RedisStreamMaxLen = 100000
)

// =============================================================================
// Queue Type Constants
// =============================================================================

// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream queue (default)
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents in-memory queue (for testing)
	QueueTypeMemory QueueType = "memory"
)

// =============================================================================
// Store Type Constants
// =============================================================================

// StoreType represents the session/sample store backend
type StoreType string

const (
	// StoreTypeMemory keeps sessions and samples in process memory
	StoreTypeMemory StoreType = "memory"

	// StoreTypeRedis keeps sessions and samples in Redis
	StoreTypeRedis StoreType = "redis"
)
