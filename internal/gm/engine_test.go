package gm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cuihairu/bonfire/internal/completion"
	"github.com/cuihairu/bonfire/internal/game"
)

type fakeCompleter struct {
	reply string
	err   error
	last  completion.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req completion.Request) (string, error) {
	f.last = req
	return f.reply, f.err
}

func input(content string, signal bool, open ...game.Quest) game.DecisionInput {
	return game.DecisionInput{
		BonfireID:  "b1",
		AgentID:    "a1",
		Episode:    game.Episode{EpisodeID: 4, Author: "a1", Content: content},
		OpenQuests: open,
		Trigger:    game.TriggerFlush,
		Signal:     signal,
	}
}

func TestRules(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"user: we walked on", 0},
		{"user: found an ARTIFACT", 1},
		{"user: the quest is completed", 1},
		{"user: a major breakthrough", 2},
	}
	for _, c := range cases {
		if got := Rules(c.text).Extension; got != c.want {
			t.Errorf("Rules(%q) = %d, want %d", c.text, got, c.want)
		}
	}
}

func TestDecide_RulesWithoutCompleter(t *testing.T) {
	e := New(nil)
	d, err := e.Decide(context.Background(), input("user: we made a discovery in the crypt", false))
	if err != nil {
		t.Fatal(err)
	}
	if !d.ExtensionAwarded || d.RechargeAmount != 1 || d.Source != SourceRules {
		t.Fatalf("decision = %+v", d)
	}
	if d.NewQuest == nil || !strings.HasPrefix(d.NewQuest.Description, "Follow up on: we made a discovery") || d.NewQuest.Keyword != "discovery" {
		t.Fatalf("quest = %+v", d.NewQuest)
	}

	d, _ = e.Decide(context.Background(), input("user: nothing happens", false))
	if d.ExtensionAwarded || d.NewQuest != nil {
		t.Fatalf("expected no award, got %+v", d)
	}
}

func TestDecide_SignalAwardsWithoutQuestWhenOneIsOpen(t *testing.T) {
	e := New(nil)
	d, err := e.Decide(context.Background(), input("user: nothing happens", true, game.Quest{QuestID: "q"}))
	if err != nil {
		t.Fatal(err)
	}
	if !d.ExtensionAwarded || d.RechargeAmount != 0 || d.NewQuest != nil {
		t.Fatalf("decision = %+v", d)
	}
}

func TestDecide_CompletionReply(t *testing.T) {
	fc := &fakeCompleter{reply: "```json\n{\"extension_awarded\": 7, \"reaction\": \"Bold.\", \"world_state_update\": \"The tower fell.\", \"quest\": {\"description\": \"Rebuild the tower\", \"keyword\": \"tower\"}}\n```"}
	e := New(fc)
	d, err := e.Decide(context.Background(), input("user: I toppled the tower", false))
	if err != nil {
		t.Fatal(err)
	}
	if d.RechargeAmount != DefaultMaxExtension || d.Reaction != "Bold." || d.WorldStateUpdate != "The tower fell." || d.Source != SourceCompletion {
		t.Fatalf("decision = %+v", d)
	}
	if d.NewQuest == nil || d.NewQuest.Keyword != "tower" {
		t.Fatalf("quest = %+v", d.NewQuest)
	}
	if !fc.last.JSON || len(fc.last.Messages) != 2 || !strings.Contains(fc.last.Messages[1].Content, "I toppled the tower") {
		t.Fatalf("request = %+v", fc.last)
	}
}

func TestDecide_BooleanExtension(t *testing.T) {
	e := New(&fakeCompleter{reply: `{"extension_awarded": true}`})
	d, err := e.Decide(context.Background(), input("x", false, game.Quest{}))
	if err != nil || !d.ExtensionAwarded || d.RechargeAmount != 1 {
		t.Fatalf("decision = %+v, %v", d, err)
	}
}

func TestDecide_HugeExtensionClampsToMax(t *testing.T) {
	for _, raw := range []string{"1e300", "9223372036854775807", "-1e300"} {
		e := New(&fakeCompleter{reply: `{"extension_awarded": ` + raw + `}`})
		d, err := e.Decide(context.Background(), input("x", false, game.Quest{}))
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		want := DefaultMaxExtension
		if strings.HasPrefix(raw, "-") {
			want = 0
		}
		if d.RechargeAmount != want {
			t.Errorf("extension %s: recharge = %d, want %d", raw, d.RechargeAmount, want)
		}
	}
}

func TestDecide_MalformedReplyFallsBackToRules(t *testing.T) {
	e := New(&fakeCompleter{reply: "I think they deserve a milestone bonus"})
	d, err := e.Decide(context.Background(), input("user: a milestone reached", false))
	if err != nil {
		t.Fatal(err)
	}
	if d.Source != SourceRules || d.RechargeAmount != 2 {
		t.Fatalf("decision = %+v", d)
	}
}

func TestDecide_UpstreamFailure(t *testing.T) {
	e := New(&fakeCompleter{err: completion.ErrTimeout})
	_, err := e.Decide(context.Background(), input("x", true))
	if !errors.Is(err, game.ErrDecisionUnavailable) {
		t.Fatalf("expected decision unavailable, got %v", err)
	}
}

func TestSeed(t *testing.T) {
	e := New(nil)
	s, err := e.Seed(context.Background(), game.SeedRequest{Prompt: "the drowned city", QuestCount: 3})
	if err != nil || len(s.Quests) != 3 || !strings.Contains(s.Summary, "the drowned city") {
		t.Fatalf("catalog seed = %+v, %v", s, err)
	}

	fc := &fakeCompleter{reply: `{"episode_summary": "Rain falls on the city.", "quests": [{"description": "Find the bell", "keyword": "bell"}]}`}
	s, err = New(fc).Seed(context.Background(), game.SeedRequest{Prompt: "the drowned city", QuestCount: 2})
	if err != nil || s.Summary != "Rain falls on the city." || len(s.Quests) != 2 || s.Quests[0].Keyword != "bell" {
		t.Fatalf("completion seed = %+v, %v", s, err)
	}

	s, err = New(&fakeCompleter{err: errors.New("down")}).Seed(context.Background(), game.SeedRequest{Prompt: "p", QuestCount: 1})
	if err != nil || len(s.Quests) != 1 {
		t.Fatalf("fallback seed = %+v, %v", s, err)
	}
}

func TestDecide_WorldChanges(t *testing.T) {
	fc := &fakeCompleter{reply: `{"extension_awarded": 1, "world_changes": {"new_rooms": [{"name": "Crypt", "connections": ["The Hearth"]}], "room_movements": [{"agent_id": "a1", "room": "Crypt"}]}}`}
	in := input("user: we opened the crypt", false)
	in.Rooms = []string{"The Hearth"}
	d, err := New(fc).Decide(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if d.WorldChanges == nil || len(d.WorldChanges.NewRooms) != 1 || d.WorldChanges.RoomMovements[0].Room != "Crypt" {
		t.Fatalf("world changes = %+v", d.WorldChanges)
	}
	if !strings.Contains(fc.last.Messages[1].Content, "Rooms: The Hearth") {
		t.Fatalf("prompt lacks rooms: %q", fc.last.Messages[1].Content)
	}

	fc.reply = `{"extension_awarded": 0, "world_changes": {"new_npcs": [{"personality": "no name"}]}}`
	d, err = New(fc).Decide(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if d.Source != SourceRules || d.WorldChanges != nil {
		t.Fatalf("invalid world changes should fall back to rules: %+v", d)
	}
}
