package feed

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cuihairu/bonfire/internal/game"
)

type recordingQueue struct {
	mu     sync.Mutex
	got    []game.Event
	err    error
	closed bool
}

func (q *recordingQueue) Publish(_ context.Context, events []game.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.got = append(q.got, events...)
	return q.err
}

func (q *recordingQueue) Close() error {
	q.closed = true
	return nil
}

type sinkFunc func(context.Context, []game.Event)

func (f sinkFunc) Publish(ctx context.Context, events []game.Event) { f(ctx, events) }

func TestPublisherFansOutInOrder(t *testing.T) {
	q := &recordingQueue{}
	var inline []string
	p := NewPublisher(q, WithSink(sinkFunc(func(_ context.Context, evs []game.Event) {
		for _, e := range evs {
			inline = append(inline, e.EventID)
		}
	})))
	p.Publish(context.Background(), []game.Event{{EventID: "a", BonfireID: "bf"}, {EventID: "b", BonfireID: "bf"}})
	p.Publish(context.Background(), []game.Event{{EventID: "c", BonfireID: "bf"}})
	p.Publish(context.Background(), nil)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if len(inline) != 3 || inline[0] != "a" || inline[2] != "c" {
		t.Fatalf("inline sink got %v", inline)
	}
	if len(q.got) != 3 || q.got[0].EventID != "a" || q.got[1].EventID != "b" || q.got[2].EventID != "c" {
		t.Fatalf("queue got %+v", q.got)
	}
	if !q.closed {
		t.Fatalf("queue not closed")
	}
}

func TestPublisherCountsFailures(t *testing.T) {
	q := &recordingQueue{err: errors.New("broker down")}
	p := NewPublisher(q)
	p.Publish(context.Background(), []game.Event{{EventID: "a", BonfireID: "bf"}, {EventID: "b", BonfireID: "bf"}})
	p.Close()
	if _, failed := p.Stats(); failed != 2 {
		t.Fatalf("failed = %d, want 2", failed)
	}
	// second Close is a no-op
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}
