package mq

import (
	"context"
	"encoding/json"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/cuihairu/bonfire/internal/game"
)

type redisQueue struct {
	cli          *redis.Client
	stream       string
	maxLen       int64
	maxLenApprox bool
}

func NewRedis(url, stream string, maxLen int64, approx bool) Queue {
	opt, err := redis.ParseURL(url)
	if err != nil {
		slog.Warn("feed mq: redis parse url", "err", err)
		return NewNoop()
	}
	return newRedisWithClient(redis.NewClient(opt), stream, maxLen, approx)
}

func newRedisWithClient(cli *redis.Client, stream string, maxLen int64, approx bool) *redisQueue {
	if stream == "" {
		stream = DefaultStream
	}
	return &redisQueue{cli: cli, stream: stream, maxLen: maxLen, maxLenApprox: approx}
}

func (q *redisQueue) Close() error { return q.cli.Close() }

// Publish appends every event to the stream in one pipeline. Each entry
// carries the bonfire id and type as fields and the JSON event as "data".
func (q *redisQueue) Publish(ctx context.Context, events []game.Event) error {
	if len(events) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	_, err := q.cli.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, ev := range events {
			b, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			args := &redis.XAddArgs{
				Stream: q.stream,
				Values: map[string]any{"bonfire_id": ev.BonfireID, "event_type": string(ev.Type), "data": string(b)},
			}
			if q.maxLen > 0 {
				args.MaxLen = q.maxLen
				args.Approx = q.maxLenApprox
			}
			p.XAdd(ctx, args)
		}
		return nil
	})
	return err
}
