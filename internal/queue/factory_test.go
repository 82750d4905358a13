package queue

import (
	"testing"

	"github.com/classpulse/classpulse/internal/config"
)

func TestNewQueue_Memory(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}
	defer func() { _ = q.Close() }()

	if _, ok := q.(*MemoryQueue); !ok {
		t.Errorf("Expected *MemoryQueue, got %T", q)
	}
}

func TestNewQueue_CaseInsensitive(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{Type: "MEMORY"})
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}
	_ = q.Close()
}

func TestNewQueue_DefaultsToNATS(t *testing.T) {
	url := setupTestNATS(t)

	q, err := NewQueue(config.QueueConfig{URL: url})
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}
	defer func() { _ = q.Close() }()

	if _, ok := q.(*NATSQueue); !ok {
		t.Errorf("Expected *NATSQueue, got %T", q)
	}
}

func TestNewQueue_Kafka(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{Type: "kafka", KafkaBrokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}
	defer func() { _ = q.Close() }()

	kq, ok := q.(*KafkaQueue)
	if !ok {
		t.Fatalf("Expected *KafkaQueue, got %T", q)
	}
	if kq.config.GroupID != "classpulse-ingest" {
		t.Errorf("Unexpected default group %q", kq.config.GroupID)
	}
}

func TestNewQueue_Unsupported(t *testing.T) {
	if _, err := NewQueue(config.QueueConfig{Type: "rabbitmq"}); err == nil {
		t.Error("Expected error for unsupported queue type")
	}
}
