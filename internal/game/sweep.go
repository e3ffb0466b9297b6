package game

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

type SweepError struct {
	BonfireID string `json:"bonfire_id"`
	AgentID   string `json:"agent"`
	Error     string `json:"error"`
}

// SweepReport is the outcome of one pass over every registered agent.
type SweepReport struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Processed  []string     `json:"processed"`
	Skipped    []string     `json:"skipped"`
	Errors     []SweepError `json:"errors"`
}

type sweepTarget struct {
	bonfireID string
	agentID   string
}

func (e *Engine) sweepTargets() []sweepTarget {
	var out []sweepTarget
	for _, sl := range e.store.all() {
		sl.mu.Lock()
		if sl.active != nil {
			for _, id := range sl.active.agentIDs() {
				out = append(out, sweepTarget{bonfireID: sl.bonfireID, agentID: id})
			}
		}
		sl.mu.Unlock()
	}
	return out
}

// ProcessAll flushes the stack of every agent of every active game. A
// failing agent is recorded in the report and the sweep moves on.
func (e *Engine) ProcessAll(ctx context.Context) SweepReport {
	ctx, span := tracer.Start(ctx, "game.process_all")
	defer span.End()

	rep := SweepReport{StartedAt: e.now(), Processed: []string{}, Skipped: []string{}, Errors: []SweepError{}}
	for _, t := range e.sweepTargets() {
		if err := ctx.Err(); err != nil {
			rep.Errors = append(rep.Errors, SweepError{BonfireID: t.bonfireID, AgentID: t.agentID, Error: err.Error()})
			continue
		}
		res, err := e.processTarget(ctx, t)
		switch {
		case err != nil:
			e.log.Warn("sweep: process stack failed", "bonfire_id", t.bonfireID, "agent_id", t.agentID, "err", err)
			rep.Errors = append(rep.Errors, SweepError{BonfireID: t.bonfireID, AgentID: t.agentID, Error: err.Error()})
		case res.Episode == nil:
			rep.Skipped = append(rep.Skipped, t.agentID)
		default:
			rep.Processed = append(rep.Processed, t.agentID)
		}
	}
	rep.FinishedAt = e.now()
	span.SetAttributes(
		attribute.Int("sweep.processed", len(rep.Processed)),
		attribute.Int("sweep.skipped", len(rep.Skipped)),
		attribute.Int("sweep.errors", len(rep.Errors)),
	)
	e.metrics.SweepFinished(ctx, rep)
	return rep
}

func (e *Engine) processTarget(ctx context.Context, t sweepTarget) (res StackResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing stack: %v", r)
		}
	}()
	return e.ProcessStack(ctx, t.bonfireID, t.agentID)
}
