package chain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cuihairu/bonfire/internal/game"
)

func TestChainResumesAndVerifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "quota.log")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	w.Publish(context.Background(), []game.Event{
		{EventID: "e1", Type: game.EventPlayerRegistered, BonfireID: "bf", GameID: "g", At: at, Payload: map[string]any{"agent_id": "a1", "quota": 5}},
		{EventID: "e2", Type: game.EventEpisodePublished, BonfireID: "bf", GameID: "g", At: at},
		{EventID: "e3", Type: game.EventTurnProcessed, BonfireID: "bf", GameID: "g", At: at, Payload: map[string]any{"agent_id": "a1", "quota_remaining": 4}},
	})
	w.Close()

	w, err = NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Log(Record{Kind: "manual", BonfireID: "bf"}); err != nil {
		t.Fatal(err)
	}
	w.Close()

	n, err := Verify(path)
	if err != nil || n != 3 {
		t.Fatalf("Verify = %d, %v", n, err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"agent":"a1"`) {
		t.Fatalf("agent missing from record: %s", raw)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quota.log")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	w.Log(Record{Kind: "turn_processed", BonfireID: "bf", Meta: map[string]string{"quota_remaining": "4"}})
	w.Log(Record{Kind: "turn_processed", BonfireID: "bf", Meta: map[string]string{"quota_remaining": "3"}})
	w.Close()

	raw, _ := os.ReadFile(path)
	tampered := strings.Replace(string(raw), `"quota_remaining":"4"`, `"quota_remaining":"9"`, 1)
	if err := os.WriteFile(path, []byte(tampered), 0o644); err != nil {
		t.Fatal(err)
	}
	if n, err := Verify(path); err == nil || n != 0 {
		t.Fatalf("Verify tampered = %d, %v", n, err)
	}
}
