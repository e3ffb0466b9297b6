package mq

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"
)

// Queue publishes committed game events to a broker.
// Implementations: Redis streams, Kafka, or a no-op for dev.
type Queue interface {
	Publish(ctx context.Context, events []game.Event) error
	Close() error
}
