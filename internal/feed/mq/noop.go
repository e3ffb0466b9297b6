package mq

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"
)

type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Publish(context.Context, []game.Event) error { return nil }
func (n *Noop) Close() error                                { return nil }
