package hotreload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/cuihairu/bonfire/internal/game"
)

// Target receives reloaded tuning. *game.Engine satisfies it.
type Target interface {
	Tuning() game.Tuning
	SetTuning(game.Tuning)
}

// TuningFile is the YAML shape of the tuning file. Absent keys keep the
// value currently in effect.
type TuningFile struct {
	DefaultQuota              *int `yaml:"default_quota"`
	DefaultRecharge           *int `yaml:"default_recharge"`
	QuestReward               *int `yaml:"quest_reward"`
	InitialQuestCount         *int `yaml:"initial_quest_count"`
	QuestClaimCooldownSeconds *int `yaml:"quest_claim_cooldown_seconds"`
}

// Apply overlays f on cur.
func (f TuningFile) Apply(cur game.Tuning) game.Tuning {
	if f.DefaultQuota != nil {
		cur.DefaultQuota = *f.DefaultQuota
	}
	if f.DefaultRecharge != nil {
		cur.DefaultRecharge = *f.DefaultRecharge
	}
	if f.QuestReward != nil {
		cur.QuestReward = *f.QuestReward
	}
	if f.InitialQuestCount != nil {
		cur.InitialQuestCount = *f.InitialQuestCount
	}
	if f.QuestClaimCooldownSeconds != nil {
		cur.QuestClaimCooldown = time.Duration(*f.QuestClaimCooldownSeconds) * time.Second
	}
	return cur
}

// ParseTuning decodes a tuning document, rejecting unknown keys.
func ParseTuning(b []byte) (TuningFile, error) {
	var f TuningFile
	if len(bytes.TrimSpace(b)) == 0 {
		return f, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return f, fmt.Errorf("tuning file: %w", err)
	}
	return f, nil
}

// Watcher reloads a tuning file whenever it changes on disk. It watches
// the parent directory so editors that replace the file are seen too.
type Watcher struct {
	path     string
	target   Target
	debounce time.Duration
	log      *slog.Logger

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
	loads   int
	lastErr error
	done    chan struct{}
}

func NewWatcher(path string, target Target, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("tuning file path is empty")
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Watcher{path: abs, target: target, debounce: debounce, log: logger, done: make(chan struct{})}, nil
}

// Load reads the file once and applies it.
func (w *Watcher) Load() error {
	b, err := os.ReadFile(w.path)
	if err == nil {
		var f TuningFile
		if f, err = ParseTuning(b); err == nil {
			w.target.SetTuning(f.Apply(w.target.Tuning()))
		}
	}
	w.mu.Lock()
	w.lastErr = err
	if err == nil {
		w.loads++
	}
	w.mu.Unlock()
	if err != nil {
		w.log.Warn("tuning reload failed; keeping previous values", "file", w.path, "err", err)
		return err
	}
	t := w.target.Tuning()
	w.log.Info("tuning reloaded", "file", w.path,
		"default_quota", t.DefaultQuota, "default_recharge", t.DefaultRecharge,
		"quest_reward", t.QuestReward, "claim_cooldown", t.QuestClaimCooldown)
	return nil
}

// Start loads the file if present and watches it until ctx ends or Stop.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = fw
	if _, err := os.Stat(w.path); err == nil {
		_ = w.Load()
	}
	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("tuning watcher error", "err", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { _ = w.Load() })
}

// Stats returns successful loads and the last load error.
func (w *Watcher) Stats() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loads, w.lastErr
}

func (w *Watcher) Stop() error {
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}
