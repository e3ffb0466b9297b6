package game

import (
	"sort"
	"strings"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// AgentState belongs to exactly one game. Once the game is archived the
// state is kept for history and never mutated again.
type AgentState struct {
	AgentID        string    `json:"agent_id"`
	BonfireID      string    `json:"bonfire_id"`
	GameID         string    `json:"game_id"`
	OwnerWallet    string    `json:"owner_wallet"`
	PurchaseID     string    `json:"purchase_id,omitempty"`
	PurchaseTxHash string    `json:"purchase_tx_hash,omitempty"`
	Quota          Quota     `json:"quota"`
	Stack          Stack     `json:"stack"`
	LastRechargeAt time.Time `json:"last_recharge_at,omitempty"`
	RegisteredAt   time.Time `json:"registered_at"`
	CurrentRoom    string    `json:"current_room,omitempty"`
}

func (a *AgentState) clone() AgentState {
	cp := *a
	cp.Quota = a.Quota.clone()
	cp.Stack = a.Stack.clone()
	return cp
}

// Game is the mutable record guarded by its bonfire's lock.
type Game struct {
	GameID         string
	BonfireID      string
	OwnerWallet    string
	Prompt         string
	GMAgentID      string
	Status         Status
	CreatedAt      time.Time
	ArchivedAt     time.Time
	WorldState     string
	LastGMReaction string

	Episodes EpisodeLog
	Quests   QuestRegistry
	World    World

	agents     map[string]*AgentState
	agentOrder []string
	// wallet -> earliest next claim; the only claim cooldown gate
	claimCooldown map[string]time.Time
}

func newGame(id, bonfireID, owner, prompt, gmAgentID string, at time.Time) *Game {
	return &Game{
		GameID:        id,
		BonfireID:     bonfireID,
		OwnerWallet:   owner,
		Prompt:        prompt,
		GMAgentID:     gmAgentID,
		Status:        StatusActive,
		CreatedAt:     at,
		World:         newWorld(),
		agents:        map[string]*AgentState{},
		claimCooldown: map[string]time.Time{},
	}
}

func (g *Game) agent(id string) (*AgentState, bool) {
	a, ok := g.agents[id]
	return a, ok
}

func (g *Game) addAgent(a *AgentState) {
	g.agents[a.AgentID] = a
	g.agentOrder = append(g.agentOrder, a.AgentID)
}

func (g *Game) agentIDs() []string {
	return append([]string(nil), g.agentOrder...)
}

// agentForWallet returns the earliest registered agent owned by wallet.
func (g *Game) agentForWallet(wallet string) (*AgentState, bool) {
	for _, id := range g.agentOrder {
		if a := g.agents[id]; sameWallet(a.OwnerWallet, wallet) {
			return a, true
		}
	}
	return nil, false
}

func (g *Game) isOwner(wallet string) bool { return sameWallet(g.OwnerWallet, wallet) }

// Snapshot is a detached deep copy of a game, safe to hand to callers.
type Snapshot struct {
	GameID         string       `json:"game_id"`
	BonfireID      string       `json:"bonfire_id"`
	OwnerWallet    string       `json:"owner_wallet"`
	Prompt         string       `json:"prompt"`
	GMAgentID      string       `json:"gm_agent_id,omitempty"`
	Status         Status       `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	ArchivedAt     *time.Time   `json:"archived_at,omitempty"`
	WorldState     string       `json:"world_state_summary"`
	LastGMReaction string       `json:"last_gm_reaction,omitempty"`
	LastEpisodeID  int64        `json:"last_episode_id"`
	Episodes       []Episode    `json:"episodes"`
	Quests         []Quest      `json:"quests"`
	Agents         []AgentState `json:"agents"`
	Rooms          []Room       `json:"rooms"`
	NPCs           []NPC        `json:"npcs"`
	Objects        []Object     `json:"objects"`
}

func (g *Game) snapshot() Snapshot {
	s := Snapshot{
		GameID:         g.GameID,
		BonfireID:      g.BonfireID,
		OwnerWallet:    g.OwnerWallet,
		Prompt:         g.Prompt,
		GMAgentID:      g.GMAgentID,
		Status:         g.Status,
		CreatedAt:      g.CreatedAt,
		WorldState:     g.WorldState,
		LastGMReaction: g.LastGMReaction,
		LastEpisodeID:  g.Episodes.LastID(),
		Episodes:       g.Episodes.all(),
		Quests:         g.Quests.all(),
		Agents:         make([]AgentState, 0, len(g.agentOrder)),
		Rooms:          g.World.roomList(),
		NPCs:           g.World.npcList(),
		Objects:        g.World.objectsWhere(func(*Object) bool { return true }),
	}
	if !g.ArchivedAt.IsZero() {
		at := g.ArchivedAt
		s.ArchivedAt = &at
	}
	for _, id := range g.agentOrder {
		s.Agents = append(s.Agents, g.agents[id].clone())
	}
	return s
}

// Summary is the list-active row of a game.
type Summary struct {
	BonfireID     string    `json:"bonfire_id"`
	GameID        string    `json:"game_id"`
	OwnerWallet   string    `json:"owner_wallet"`
	Prompt        string    `json:"prompt"`
	CreatedAt     time.Time `json:"created_at"`
	AgentCount    int       `json:"agent_count"`
	EpisodeCount  int       `json:"episode_count"`
	OpenQuests    int       `json:"open_quests"`
	LastEpisodeID int64     `json:"last_episode_id"`
}

func (g *Game) summary() Summary {
	return Summary{
		BonfireID:     g.BonfireID,
		GameID:        g.GameID,
		OwnerWallet:   g.OwnerWallet,
		Prompt:        g.Prompt,
		CreatedAt:     g.CreatedAt,
		AgentCount:    len(g.agentOrder),
		EpisodeCount:  g.Episodes.Len(),
		OpenQuests:    len(g.Quests.Open()),
		LastEpisodeID: g.Episodes.LastID(),
	}
}

// NormalizeWallet lowercases and trims a wallet address.
func NormalizeWallet(w string) string { return strings.ToLower(strings.TrimSpace(w)) }

func sameWallet(a, b string) bool {
	return a != "" && NormalizeWallet(a) == NormalizeWallet(b)
}

func sortAgents(in []AgentState) {
	sort.SliceStable(in, func(i, j int) bool { return in[i].RegisteredAt.Before(in[j].RegisteredAt) })
}
