package servercmd

import (
	"os"
	"path/filepath"
	"testing"
)

const sample = `server:
  Name: bonfire
  Host: 127.0.0.1
  Port: 9000
  game:
    default_quota: 4
    quest_claim_cooldown_seconds: 30
  feed:
    queue: noop
`

func writeConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "bonfire.yaml")
	if err := os.WriteFile(p, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadSectionedFile(t *testing.T) {
	v, err := Load(writeConfig(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := Decode(v)
	if err != nil {
		t.Fatal(err)
	}
	if c.Port != 9000 || c.Game.DefaultQuota != 4 || c.Game.QuestClaimCooldownSeconds != 30 {
		t.Fatalf("config port=%d game=%+v", c.Port, c.Game)
	}
	if c.Game.QuestReward != 1 || c.Feed.MaxLenApprox != true {
		t.Fatalf("section defaults not applied: game=%+v feed=%+v", c.Game, c.Feed)
	}
}

func TestLegacyEnvOverridesFile(t *testing.T) {
	t.Setenv("QUEST_CLAIM_COOLDOWN_SECONDS", "15")
	t.Setenv("STACK_PROCESS_INTERVAL_SECONDS", "45")
	t.Setenv("DELVE_API_KEY", "k-123")
	v, err := Load(writeConfig(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := Decode(v)
	if err != nil {
		t.Fatal(err)
	}
	if c.Game.QuestClaimCooldownSeconds != 15 || c.Scheduler.StackProcessIntervalSeconds != 45 {
		t.Fatalf("env not applied: game=%+v scheduler=%+v", c.Game, c.Scheduler)
	}
	if c.Reveal.APIKey != "k-123" {
		t.Fatalf("reveal api key = %q", c.Reveal.APIKey)
	}
}

func TestPrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("BONFIRE_GAME_QUEST_CLAIM_COOLDOWN_SECONDS", "20")
	t.Setenv("QUEST_CLAIM_COOLDOWN_SECONDS", "15")
	v, err := Load(writeConfig(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.GetInt("game.quest_claim_cooldown_seconds"); got != 20 {
		t.Fatalf("cooldown = %d", got)
	}
}

func TestNewRegistersFlags(t *testing.T) {
	cmd := New()
	for _, name := range []string{"config", "host", "port", "log.level"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Fatalf("missing flag %s", name)
		}
	}
}
