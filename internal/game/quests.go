package game

import (
	"strings"
	"time"
)

type QuestStatus string

const (
	QuestOpen    QuestStatus = "open"
	QuestClaimed QuestStatus = "claimed"
)

type Quest struct {
	QuestID              string      `json:"quest_id"`
	Description          string      `json:"description"`
	Keyword              string      `json:"keyword,omitempty"`
	Status               QuestStatus `json:"status"`
	Reward               int         `json:"reward"`
	CreatedFromEpisodeID int64       `json:"created_from_episode_id"`
	ClaimCooldownUntil   time.Time   `json:"claim_cooldown_until,omitempty"`
	ClaimedByWallet      string      `json:"claimed_by_wallet,omitempty"`
	ClaimedByAgent       string      `json:"claimed_by_agent,omitempty"`
	ClaimedAt            time.Time   `json:"claimed_at,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
}

// QuestDraft is a quest proposed by the seeder, the game master or the owner.
type QuestDraft struct {
	Description string `json:"description"`
	Keyword     string `json:"keyword,omitempty"`
	Reward      int    `json:"reward,omitempty"`
}

// QuestRegistry keeps quests in insertion order.
type QuestRegistry struct {
	order []string
	byID  map[string]*Quest
}

func (r *QuestRegistry) Add(q Quest) Quest {
	if r.byID == nil {
		r.byID = map[string]*Quest{}
	}
	q.Description = strings.TrimSpace(q.Description)
	if q.Status == "" {
		q.Status = QuestOpen
	}
	cp := q
	r.byID[q.QuestID] = &cp
	r.order = append(r.order, q.QuestID)
	return cp
}

func (r *QuestRegistry) Get(id string) (Quest, bool) {
	q, ok := r.byID[id]
	if !ok {
		return Quest{}, false
	}
	return *q, true
}

func (r *QuestRegistry) HasOpen() bool {
	for _, id := range r.order {
		if r.byID[id].Status == QuestOpen {
			return true
		}
	}
	return false
}

func (r *QuestRegistry) Open() []Quest {
	var out []Quest
	for _, id := range r.order {
		if q := r.byID[id]; q.Status == QuestOpen {
			out = append(out, *q)
		}
	}
	return out
}

// Claim marks the quest claimed and stamps ClaimCooldownUntil. The
// cooldown gates the claiming wallet, not the quest; the engine enforces it
// through Game.claimCooldown.
func (r *QuestRegistry) Claim(id, wallet, agentID string, now time.Time, cooldown time.Duration) (Quest, error) {
	q, ok := r.byID[id]
	if !ok {
		return Quest{}, notFound("quest", id)
	}
	if q.Status == QuestClaimed {
		return Quest{}, ErrAlreadyClaimed
	}
	q.Status = QuestClaimed
	q.ClaimedByWallet = wallet
	q.ClaimedByAgent = agentID
	q.ClaimedAt = now
	q.ClaimCooldownUntil = now.Add(cooldown)
	return *q, nil
}

func (r *QuestRegistry) Len() int { return len(r.order) }

func (r *QuestRegistry) all() []Quest {
	out := make([]Quest, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}
