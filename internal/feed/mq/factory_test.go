package mq

import (
	"context"
	"testing"

	"github.com/cuihairu/bonfire/internal/game"
)

func TestNewSelectsQueue(t *testing.T) {
	q, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := q.(*Noop); !ok {
		t.Fatalf("empty type should give noop, got %T", q)
	}
	if err := q.Publish(context.Background(), []game.Event{{BonfireID: "bf"}}); err != nil {
		t.Fatalf("noop publish: %v", err)
	}

	q, err = New(Config{Type: "kafka", KafkaBrokers: []string{"127.0.0.1:1"}, Topic: "t"})
	if err != nil {
		t.Fatal(err)
	}
	kq, ok := q.(*kafkaQueue)
	if !ok || kq.w.Topic != "t" {
		t.Fatalf("kafka queue = %T %+v", q, q)
	}
	kq.Close()

	q, err = New(Config{Type: "redis", RedisURL: "redis://127.0.0.1:1/0"})
	if err != nil {
		t.Fatal(err)
	}
	rq, ok := q.(*redisQueue)
	if !ok || rq.stream != DefaultStream || rq.maxLen != DefaultMaxLen {
		t.Fatalf("redis queue = %T %+v", q, q)
	}
	rq.Close()

	if _, err := New(Config{Type: "nats"}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if q := NewRedis("::bad", "", 0, false); q == nil {
		t.Fatalf("bad url should fall back to noop")
	}
}

func TestPublishEmptyIsNoop(t *testing.T) {
	q := NewKafka([]string{"127.0.0.1:1"}, "")
	defer q.Close()
	if err := q.Publish(context.Background(), nil); err != nil {
		t.Fatalf("empty publish: %v", err)
	}
}
