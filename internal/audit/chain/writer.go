package chain

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cuihairu/bonfire/internal/game"
)

// Writer appends hash-chained JSON lines. Each record's hash covers the
// previous hash and the record body, so editing or dropping a line breaks
// every hash after it.
type Writer struct {
	mu   sync.Mutex
	f    *os.File
	prev []byte // previous hash
}

// NewWriter opens path for append and resumes the chain from its last line.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	prev, err := lastHash(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, prev: prev}, nil
}

func (w *Writer) Close() error { return w.f.Close() }

type Record struct {
	Time      time.Time         `json:"time"`
	Kind      string            `json:"kind"`
	BonfireID string            `json:"bonfire_id"`
	GameID    string            `json:"game_id,omitempty"`
	Agent     string            `json:"agent,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	Prev      string            `json:"prev"`
	Hash      string            `json:"hash"`
}

func (w *Writer) Log(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}
	rec.Prev = hex.EncodeToString(w.prev)
	rec.Hash = ""
	h := chainHash(w.prev, rec)
	rec.Hash = hex.EncodeToString(h)
	b, _ := json.Marshal(rec)
	if _, err := w.f.Write(append(b, '\n')); err != nil {
		return err
	}
	w.prev = h
	return nil
}

// quotaEvents are the event types that change an agent's quota.
var quotaEvents = map[game.EventType]bool{
	game.EventPlayerRegistered: true,
	game.EventTurnProcessed:    true,
	game.EventAgentRecharged:   true,
	game.EventQuestClaimed:     true,
}

// Publish implements game.Sink, recording quota mutations only.
func (w *Writer) Publish(_ context.Context, events []game.Event) {
	for _, ev := range events {
		if !quotaEvents[ev.Type] {
			continue
		}
		rec := Record{Time: ev.At.UTC(), Kind: string(ev.Type), BonfireID: ev.BonfireID, GameID: ev.GameID, Meta: map[string]string{"event_id": ev.EventID}}
		for k, v := range ev.Payload {
			if k == "agent_id" {
				rec.Agent = fmt.Sprint(v)
				continue
			}
			rec.Meta[k] = fmt.Sprint(v)
		}
		if err := w.Log(rec); err != nil {
			slog.Warn("audit chain write failed", "bonfire_id", ev.BonfireID, "err", err)
		}
	}
}

// Verify re-reads path and returns the number of valid records, or an
// error naming the first line whose hash does not match.
func Verify(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	prev := make([]byte, sha256.Size)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	n := 0
	for sc.Scan() {
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return n, fmt.Errorf("line %d: %w", n+1, err)
		}
		if rec.Prev != hex.EncodeToString(prev) {
			return n, fmt.Errorf("line %d: chain broken", n+1)
		}
		want := rec.Hash
		rec.Hash = ""
		h := chainHash(prev, rec)
		if hex.EncodeToString(h) != want {
			return n, fmt.Errorf("line %d: hash mismatch", n+1)
		}
		prev = h
		n++
	}
	return n, sc.Err()
}

func chainHash(prev []byte, rec Record) []byte {
	b, _ := json.Marshal(rec)
	h := sha256.Sum256(append(append([]byte{}, prev...), b...))
	return h[:]
}

func lastHash(path string) ([]byte, error) {
	prev := make([]byte, sha256.Size)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return prev, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	var last string
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			last = line
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if last == "" {
		return prev, nil
	}
	var rec Record
	if err := json.Unmarshal([]byte(last), &rec); err != nil {
		return nil, fmt.Errorf("audit chain tail: %w", err)
	}
	return hex.DecodeString(rec.Hash)
}

var _ game.Sink = (*Writer)(nil)
