package game

import (
	"context"
	"fmt"
	"strings"
)

type Trigger string

const (
	TriggerFlush  Trigger = "flush"
	TriggerManual Trigger = "manual"
)

// DecisionInput is what the game master sees: the fresh episode plus the
// authoring agent's recent history.
type DecisionInput struct {
	BonfireID      string    `json:"bonfire_id"`
	GameID         string    `json:"game_id"`
	AgentID        string    `json:"agent_id"`
	Prompt         string    `json:"prompt"`
	WorldState     string    `json:"world_state"`
	Episode        Episode   `json:"episode"`
	QuotaRemaining int       `json:"quota_remaining"`
	RecentEpisodes []Episode `json:"recent_episodes"`
	OpenQuests     []Quest   `json:"open_quests"`
	Trigger        Trigger   `json:"trigger"`
	Rooms          []string  `json:"rooms,omitempty"`
	CurrentRoom    string    `json:"current_room,omitempty"`
	// Signal is set when the episode carries an owner as_game_master
	// message or the reaction was requested explicitly.
	Signal bool `json:"signal"`
}

type Decision struct {
	ExtensionAwarded bool        `json:"extension_awarded"`
	RechargeAmount   int         `json:"recharge_amount"`
	NewQuest         *QuestDraft `json:"new_quest,omitempty"`
	Reaction         string      `json:"reaction,omitempty"`
	WorldStateUpdate string      `json:"world_state_update,omitempty"`
	Source           string      `json:"source,omitempty"`
	Applied          bool        `json:"applied"`

	// WorldChanges is applied with the decision; entries that do not
	// resolve against the current world are skipped.
	WorldChanges *WorldChanges `json:"world_changes,omitempty"`
}

// Decider evaluates an episode. Implementations must not retry; a failure
// is reported and results in no quota change and no quest.
type Decider interface {
	Decide(ctx context.Context, in DecisionInput) (Decision, error)
}

type SeedRequest struct {
	BonfireID  string
	Prompt     string
	QuestCount int
}

type Seed struct {
	Summary string
	Quests  []QuestDraft
}

// Seeder produces the opening episode and quests of a new game.
type Seeder interface {
	Seed(ctx context.Context, req SeedRequest) (Seed, error)
}

// Archiver receives the final snapshot of a game that was just archived.
type Archiver interface {
	Archive(ctx context.Context, snap Snapshot) error
}

type noDecision struct{}

func (noDecision) Decide(context.Context, DecisionInput) (Decision, error) {
	return Decision{Source: "none"}, nil
}

var fallbackQuestTemplates = []QuestDraft{
	{Description: "Explore the opening scene of %s and report a discovery.", Keyword: "discovery"},
	{Description: "Recover an artifact connected to %s.", Keyword: "artifact"},
	{Description: "Reach a milestone that moves %s forward.", Keyword: "milestone"},
	{Description: "Uncover a secret hidden in %s.", Keyword: "secret"},
	{Description: "Complete a task for the people of %s.", Keyword: "completed"},
}

// FallbackSeed builds a deterministic opening when no seeder is available.
func FallbackSeed(req SeedRequest) Seed {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = "the bonfire"
	}
	n := clampQuestCount(req.QuestCount, DefaultInitialQuestCount)
	s := Seed{Summary: "The game begins: " + prompt}
	for i := 0; i < n; i++ {
		t := fallbackQuestTemplates[i%len(fallbackQuestTemplates)]
		s.Quests = append(s.Quests, QuestDraft{Description: fmt.Sprintf(t.Description, prompt), Keyword: t.Keyword})
	}
	return s
}
