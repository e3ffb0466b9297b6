package feed

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/zeromicro/go-zero/core/threading"

	"github.com/cuihairu/bonfire/internal/feed/mq"
	"github.com/cuihairu/bonfire/internal/game"
)

const defaultBacklog = 1024

// Publisher fans committed events out to in-process sinks synchronously and
// to the broker queue from a single background goroutine. The broker sees
// batches in Publish call order, which can differ from commit order for
// concurrent requests on one bonfire; consumers order by Event.Seq.
type Publisher struct {
	sinks []game.Sink
	queue mq.Queue

	mu      sync.RWMutex
	closed  bool
	backlog chan []game.Event
	done    chan struct{}
	dropped atomic.Uint64
	failed  atomic.Uint64
}

type Option func(*Publisher)

// WithSink adds an in-process sink, e.g. the websocket hub or audit chain.
func WithSink(s game.Sink) Option {
	return func(p *Publisher) {
		if s != nil {
			p.sinks = append(p.sinks, s)
		}
	}
}

// WithBacklog bounds the number of batches waiting for the broker.
func WithBacklog(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.backlog = make(chan []game.Event, n)
		}
	}
}

func NewPublisher(queue mq.Queue, opts ...Option) *Publisher {
	if queue == nil {
		queue = mq.NewNoop()
	}
	p := &Publisher{queue: queue, backlog: make(chan []game.Event, defaultBacklog), done: make(chan struct{})}
	for _, o := range opts {
		o(p)
	}
	threading.GoSafe(p.loop)
	return p
}

// Publish implements game.Sink. It never blocks on the broker; when the
// backlog is full the batch is dropped for the broker only.
func (p *Publisher) Publish(ctx context.Context, events []game.Event) {
	if len(events) == 0 {
		return
	}
	for _, s := range p.sinks {
		s.Publish(ctx, events)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.backlog <- events:
	default:
		p.dropped.Add(uint64(len(events)))
		slog.Warn("feed publisher backlog full; dropping events", "bonfire_id", events[0].BonfireID, "count", len(events))
	}
}

func (p *Publisher) loop() {
	defer close(p.done)
	for batch := range p.backlog {
		if err := p.queue.Publish(context.Background(), batch); err != nil {
			p.failed.Add(uint64(len(batch)))
			slog.Warn("feed publisher: broker publish failed", "bonfire_id", batch[0].BonfireID, "count", len(batch), "err", err)
		}
	}
}

// Stats returns events dropped for a full backlog and events the broker
// rejected.
func (p *Publisher) Stats() (dropped, failed uint64) {
	return p.dropped.Load(), p.failed.Load()
}

// Close drains the backlog and closes the queue.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.backlog)
	p.mu.Unlock()
	<-p.done
	return p.queue.Close()
}

var _ game.Sink = (*Publisher)(nil)
