// Package scheduler runs the periodic stack sweep and keeps a short history
// of its outcomes.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeromicro/go-zero/core/threading"

	"github.com/cuihairu/bonfire/internal/game"
)

const (
	MinInterval        = 5 * time.Second
	DefaultInterval    = 120 * time.Second
	DefaultHistorySize = 20
)

// ErrBusy is returned by RunNow while another sweep is executing.
var ErrBusy = errors.New("sweep already running")

type Trigger string

const (
	TriggerTimer  Trigger = "timer"
	TriggerManual Trigger = "manual"
)

// SweepFunc is the shared sweep path, normally (*game.Engine).ProcessAll.
type SweepFunc func(ctx context.Context) game.SweepReport

type Run struct {
	Trigger    Trigger          `json:"trigger"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Processed  int              `json:"processed"`
	Skipped    int              `json:"skipped"`
	Errors     int              `json:"errors"`
	Report     game.SweepReport `json:"report"`
}

type Status struct {
	Enabled         bool       `json:"enabled"`
	Running         bool       `json:"running"`
	InFlight        bool       `json:"in_flight"`
	IntervalSeconds int        `json:"interval_seconds"`
	Ticks           int64      `json:"ticks"`
	SkippedTicks    int64      `json:"skipped_ticks"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	LastRun         *Run       `json:"last_run,omitempty"`
	History         []Run      `json:"history"`
}

type Config struct {
	Enabled     bool
	Interval    time.Duration
	HistorySize int
	// RunTimeout bounds one sweep; zero means no bound beyond the
	// scheduler's lifetime.
	RunTimeout time.Duration
}

// Scheduler fires the sweep on a fixed interval. At most one sweep runs at
// a time; a tick that finds a sweep in flight is skipped.
type Scheduler struct {
	sweep SweepFunc
	cfg   Config
	log   *slog.Logger

	inFlight atomic.Bool
	ticks    atomic.Int64
	skipped  atomic.Int64

	mu      sync.Mutex
	history ring
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(sweep SweepFunc, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.Interval < MinInterval {
		if cfg.Interval <= 0 {
			cfg.Interval = DefaultInterval
		} else {
			cfg.Interval = MinInterval
		}
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{sweep: sweep, cfg: cfg, log: logger, history: newRing(cfg.HistorySize)}
}

// Start launches the timer loop. It is a no-op when disabled or already
// started.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
	s.log.Info("stack sweep timer started", "interval", s.cfg.Interval.String())
}

// Stop ends the timer loop and waits for it to exit. A sweep already in
// flight finishes on its own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	tk := time.NewTicker(s.cfg.Interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.ticks.Add(1)
	if !s.inFlight.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.log.Warn("stack sweep still running, skipping tick")
		return
	}
	threading.GoSafe(func() {
		defer s.inFlight.Store(false)
		s.execute(context.WithoutCancel(ctx), TriggerTimer)
	})
}

// RunNow runs one sweep synchronously through the same guard as the timer.
func (s *Scheduler) RunNow(ctx context.Context) (Run, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return Run{}, ErrBusy
	}
	defer s.inFlight.Store(false)
	return s.execute(ctx, TriggerManual), nil
}

func (s *Scheduler) execute(ctx context.Context, trig Trigger) Run {
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}
	started := time.Now().UTC()
	rep := s.sweep(ctx)
	run := Run{
		Trigger:    trig,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Processed:  len(rep.Processed),
		Skipped:    len(rep.Skipped),
		Errors:     len(rep.Errors),
		Report:     rep,
	}
	s.mu.Lock()
	s.history.push(run)
	s.mu.Unlock()
	if run.Errors > 0 {
		s.log.Warn("stack sweep finished with errors", "trigger", trig, "processed", run.Processed, "skipped", run.Skipped, "errors", run.Errors)
	} else {
		s.log.Debug("stack sweep finished", "trigger", trig, "processed", run.Processed, "skipped", run.Skipped)
	}
	return run
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Enabled:         s.cfg.Enabled,
		Running:         s.cancel != nil,
		InFlight:        s.inFlight.Load(),
		IntervalSeconds: int(s.cfg.Interval / time.Second),
		Ticks:           s.ticks.Load(),
		SkippedTicks:    s.skipped.Load(),
		History:         s.history.items(),
	}
	if n := len(st.History); n > 0 {
		last := st.History[n-1]
		st.LastRun = &last
		at := last.FinishedAt
		st.LastRunAt = &at
	}
	return st
}
