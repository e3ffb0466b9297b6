package mq

import (
	"context"
	"encoding/json"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/cuihairu/bonfire/internal/game"
)

type kafkaQueue struct {
	w *kafka.Writer
}

// NewKafka writes events keyed by bonfire id so one bonfire's events stay
// on one partition and keep their order.
func NewKafka(brokers []string, topic string) Queue {
	if len(brokers) == 0 {
		return NewNoop()
	}
	if topic == "" {
		topic = DefaultTopic
	}
	// Writers are safe for concurrent use
	w := &kafka.Writer{Addr: kafka.TCP(brokers...), Topic: topic, RequiredAcks: kafka.RequireOne, Balancer: &kafka.Hash{}, BatchTimeout: 50 * time.Millisecond}
	return &kafkaQueue{w: w}
}

func (q *kafkaQueue) Close() error { return q.w.Close() }

func (q *kafkaQueue) Publish(ctx context.Context, events []game.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		b, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(ev.BonfireID),
			Value:   b,
			Time:    ev.At,
			Headers: []kafka.Header{{Key: "event_type", Value: []byte(ev.Type)}},
		})
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return q.w.WriteMessages(ctx, msgs...)
}
