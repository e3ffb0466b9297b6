package game

import "context"

// Metrics is the engine's instrumentation hook.
type Metrics interface {
	GameCreated(ctx context.Context, bonfireID string)
	TurnTaken(ctx context.Context, bonfireID string, remaining int)
	EpisodeFlushed(ctx context.Context, bonfireID string, messages int)
	DecisionApplied(ctx context.Context, bonfireID string, d Decision)
	DecisionFailed(ctx context.Context, bonfireID string)
	QuestClaimed(ctx context.Context, bonfireID string, reward int)
	SweepFinished(ctx context.Context, rep SweepReport)
}

type nopMetrics struct{}

func (nopMetrics) GameCreated(context.Context, string)               {}
func (nopMetrics) TurnTaken(context.Context, string, int)            {}
func (nopMetrics) EpisodeFlushed(context.Context, string, int)       {}
func (nopMetrics) DecisionApplied(context.Context, string, Decision) {}
func (nopMetrics) DecisionFailed(context.Context, string)            {}
func (nopMetrics) QuestClaimed(context.Context, string, int)         {}
func (nopMetrics) SweepFinished(context.Context, SweepReport)        {}
