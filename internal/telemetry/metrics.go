package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cuihairu/bonfire/internal/game"
)

const meterName = "bonfire.game"

// 业务属性
const (
	BonfireIDKey     = attribute.Key("bonfire.id")
	DecisionSrcKey   = attribute.Key("gm.source")
	DecisionAwardKey = attribute.Key("gm.extension_awarded")
)

// EngineMetrics 引擎业务指标，实现 game.Metrics
type EngineMetrics struct {
	gamesCreated    metric.Int64Counter
	turns           metric.Int64Counter
	quotaRemaining  metric.Int64Histogram
	episodes        metric.Int64Counter
	episodeMessages metric.Int64Histogram
	decisions       metric.Int64Counter
	recharge        metric.Int64Counter
	decisionFails   metric.Int64Counter
	questsClaimed   metric.Int64Counter
	questReward     metric.Int64Counter
	sweeps          metric.Int64Counter
	sweepErrors     metric.Int64Counter
	sweepDuration   metric.Float64Histogram
}

func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	m := &EngineMetrics{}
	var err error
	counter := func(dst *metric.Int64Counter, name, desc, unit string) {
		if err != nil {
			return
		}
		*dst, err = meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	}
	counter(&m.gamesCreated, "bonfire.games.created", "Games created", "{games}")
	counter(&m.turns, "bonfire.turns.total", "Accepted turns", "{turns}")
	counter(&m.episodes, "bonfire.episodes.flushed", "Agent episodes flushed from stacks", "{episodes}")
	counter(&m.decisions, "bonfire.gm.decisions", "Game master decisions applied", "{decisions}")
	counter(&m.recharge, "bonfire.gm.recharge", "Quota granted by game master extensions", "{turns}")
	counter(&m.decisionFails, "bonfire.gm.failures", "Game master decisions that could not be reached", "{decisions}")
	counter(&m.questsClaimed, "bonfire.quests.claimed", "Quests claimed", "{quests}")
	counter(&m.questReward, "bonfire.quests.reward", "Quota granted by quest rewards", "{turns}")
	counter(&m.sweeps, "bonfire.sweeps.total", "Stack sweeps finished", "{sweeps}")
	counter(&m.sweepErrors, "bonfire.sweeps.errors", "Per-agent failures inside sweeps", "{errors}")
	if err != nil {
		return nil, err
	}

	m.quotaRemaining, err = meter.Int64Histogram("bonfire.quota.remaining",
		metric.WithDescription("Quota left after each accepted turn"),
		metric.WithUnit("{turns}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 5, 8, 13, 21),
	)
	if err != nil {
		return nil, err
	}
	m.episodeMessages, err = meter.Int64Histogram("bonfire.episode.messages",
		metric.WithDescription("Messages folded into each flushed episode"),
		metric.WithUnit("{messages}"),
		metric.WithExplicitBucketBoundaries(1, 2, 4, 8, 16, 32, 64),
	)
	if err != nil {
		return nil, err
	}
	m.sweepDuration, err = meter.Float64Histogram("bonfire.sweep.duration",
		metric.WithDescription("Wall time of one stack sweep"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(10, 50, 100, 500, 1000, 5000, 20000, 60000),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func bonfire(id string) metric.MeasurementOption {
	return metric.WithAttributes(BonfireIDKey.String(id))
}

func (m *EngineMetrics) GameCreated(ctx context.Context, bonfireID string) {
	m.gamesCreated.Add(ctx, 1, bonfire(bonfireID))
}

func (m *EngineMetrics) TurnTaken(ctx context.Context, bonfireID string, remaining int) {
	m.turns.Add(ctx, 1, bonfire(bonfireID))
	m.quotaRemaining.Record(ctx, int64(remaining), bonfire(bonfireID))
}

func (m *EngineMetrics) EpisodeFlushed(ctx context.Context, bonfireID string, messages int) {
	m.episodes.Add(ctx, 1, bonfire(bonfireID))
	m.episodeMessages.Record(ctx, int64(messages), bonfire(bonfireID))
}

func (m *EngineMetrics) DecisionApplied(ctx context.Context, bonfireID string, d game.Decision) {
	m.decisions.Add(ctx, 1, metric.WithAttributes(
		BonfireIDKey.String(bonfireID),
		DecisionSrcKey.String(d.Source),
		DecisionAwardKey.Bool(d.ExtensionAwarded),
	))
	if d.ExtensionAwarded && d.RechargeAmount > 0 {
		m.recharge.Add(ctx, int64(d.RechargeAmount), bonfire(bonfireID))
	}
}

func (m *EngineMetrics) DecisionFailed(ctx context.Context, bonfireID string) {
	m.decisionFails.Add(ctx, 1, bonfire(bonfireID))
}

func (m *EngineMetrics) QuestClaimed(ctx context.Context, bonfireID string, reward int) {
	m.questsClaimed.Add(ctx, 1, bonfire(bonfireID))
	m.questReward.Add(ctx, int64(reward), bonfire(bonfireID))
}

func (m *EngineMetrics) SweepFinished(ctx context.Context, rep game.SweepReport) {
	m.sweeps.Add(ctx, 1)
	if n := len(rep.Errors); n > 0 {
		m.sweepErrors.Add(ctx, int64(n))
	}
	m.sweepDuration.Record(ctx, float64(rep.FinishedAt.Sub(rep.StartedAt).Milliseconds()))
}

var _ game.Metrics = (*EngineMetrics)(nil)
