// Package gm is the game master: it scores episodes, decides quota
// extensions and proposes quests, and writes the opening of new games.
package gm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cuihairu/bonfire/internal/catalog"
	"github.com/cuihairu/bonfire/internal/completion"
	"github.com/cuihairu/bonfire/internal/game"
)

const DefaultMaxExtension = 3

var tracer = otel.Tracer("bonfire/gm")

type Engine struct {
	completer    completion.Completer
	catalog      *catalog.Catalog
	maxExtension int
	log          *slog.Logger
}

type Option func(*Engine)

func WithCatalog(c *catalog.Catalog) Option { return func(e *Engine) { e.catalog = c } }

func WithMaxExtension(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxExtension = n
		}
	}
}

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

// New builds a game master. A nil completer selects the keyword rules.
func New(c completion.Completer, opts ...Option) *Engine {
	e := &Engine{completer: c, catalog: catalog.Default(), maxExtension: DefaultMaxExtension, log: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Decide scores in.Episode. Upstream failures are returned wrapped in
// game.ErrDecisionUnavailable; a reply that cannot be parsed falls back to
// the keyword rules.
func (e *Engine) Decide(ctx context.Context, in game.DecisionInput) (game.Decision, error) {
	ctx, span := tracer.Start(ctx, "gm.decide", trace.WithAttributes(
		attribute.String("bonfire.id", in.BonfireID),
		attribute.String("agent.id", in.AgentID),
		attribute.Int64("episode.id", in.Episode.EpisodeID),
		attribute.String("gm.trigger", string(in.Trigger)),
	))
	defer span.End()

	ev, err := e.evaluate(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return game.Decision{}, fmt.Errorf("%w: %v", game.ErrDecisionUnavailable, err)
	}
	ext := clamp(ev.Extension, 0, e.maxExtension)
	d := game.Decision{
		ExtensionAwarded: in.Signal || ext > 0,
		RechargeAmount:   ext,
		Reaction:         ev.Reaction,
		WorldStateUpdate: ev.WorldState,
		Source:           ev.Source,
		WorldChanges:     ev.World,
	}
	if d.ExtensionAwarded && len(in.OpenQuests) == 0 {
		if ev.Quest != nil {
			q := *ev.Quest
			d.NewQuest = &q
		} else {
			desc, kw := synthesizeQuest(in.Episode.Content)
			d.NewQuest = &game.QuestDraft{Description: desc, Keyword: kw}
		}
	}
	span.SetAttributes(attribute.Bool("gm.extension_awarded", d.ExtensionAwarded), attribute.Int("gm.recharge", d.RechargeAmount))
	return d, nil
}

func (e *Engine) evaluate(ctx context.Context, in game.DecisionInput) (evaluation, error) {
	if e.completer == nil {
		return Rules(in.Episode.Content), nil
	}
	raw, err := e.completer.Complete(ctx, completion.Request{JSON: true, Temperature: 0.2, Messages: decisionMessages(in, e.maxExtension)})
	if err != nil {
		return evaluation{}, err
	}
	ev, err := parseEvaluation(raw)
	if err != nil {
		e.log.Warn("gm reply not usable, applying rules", "bonfire_id", in.BonfireID, "agent_id", in.AgentID, "err", err)
		return Rules(in.Episode.Content), nil
	}
	return ev, nil
}

// Seed writes the opening episode and quests of a new game. Without a
// completer, or when the completer fails, the opening comes from the
// quest catalog.
func (e *Engine) Seed(ctx context.Context, req game.SeedRequest) (game.Seed, error) {
	if e.completer != nil {
		raw, err := e.completer.Complete(ctx, completion.Request{JSON: true, Temperature: 0.7, Messages: seedMessages(req)})
		if err == nil {
			doc, perr := parseSeed(raw)
			if perr == nil {
				s := game.Seed{Summary: strings.TrimSpace(doc.EpisodeSummary), Quests: doc.Quests}
				if len(s.Quests) < req.QuestCount {
					s.Quests = append(s.Quests, e.catalog.Pick(req.Prompt, req.QuestCount-len(s.Quests))...)
				}
				return s, nil
			}
			err = perr
		}
		e.log.Warn("gm seed completion failed, using catalog", "bonfire_id", req.BonfireID, "err", err)
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = "the bonfire"
	}
	return game.Seed{
		Summary: "The game begins: " + prompt,
		Quests:  e.catalog.Pick(prompt, req.QuestCount),
	}, nil
}

var (
	_ game.Decider = (*Engine)(nil)
	_ game.Seeder  = (*Engine)(nil)
)
