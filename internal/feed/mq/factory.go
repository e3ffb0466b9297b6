package mq

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	DefaultStream  = "bonfire:events"
	DefaultTopic   = "bonfire.events"
	DefaultMaxLen  = 100000
	publishTimeout = 2 * time.Second
)

// Config selects and configures the broker. Type is redis, kafka or noop.
type Config struct {
	Type         string
	RedisURL     string
	Stream       string
	MaxLen       int64
	MaxLenApprox bool
	KafkaBrokers []string
	Topic        string
}

// New builds a Queue for cfg. An empty type yields the no-op queue.
func New(cfg Config) (Queue, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", "noop", "none":
		return NewNoop(), nil
	case "redis":
		url := cfg.RedisURL
		if url == "" {
			url = "redis://localhost:6379/0"
		}
		ml := cfg.MaxLen
		if ml == 0 {
			ml = DefaultMaxLen
		}
		slog.Info("feed mq: redis publisher enabled", "stream", orDefault(cfg.Stream, DefaultStream), "maxlen", ml)
		return NewRedis(url, cfg.Stream, ml, cfg.MaxLenApprox), nil
	case "kafka":
		brokers := cfg.KafkaBrokers
		if len(brokers) == 0 {
			brokers = []string{"localhost:9092"}
		}
		slog.Info("feed mq: kafka publisher enabled", "brokers", strings.Join(brokers, ","), "topic", orDefault(cfg.Topic, DefaultTopic))
		return NewKafka(brokers, cfg.Topic), nil
	default:
		return nil, fmt.Errorf("feed mq: unsupported type %q", cfg.Type)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
