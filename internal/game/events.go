package game

import (
	"context"
	"time"
)

type EventType string

const (
	EventGameArchived     EventType = "game_archived"
	EventGameCreated      EventType = "game_created"
	EventQuestCreated     EventType = "quest_created"
	EventPlayerRegistered EventType = "player_registered"
	EventTurnProcessed    EventType = "turn_processed"
	EventStackProcessed   EventType = "stack_processed"
	EventEpisodePublished EventType = "episode_published"
	EventGMReacted        EventType = "gm_reacted"
	EventQuestClaimed     EventType = "quest_claimed"
	EventAgentRecharged   EventType = "agent_recharged"
	EventRoomCreated      EventType = "room_created"
	EventPlayerMoved      EventType = "player_moved"
	EventNPCCreated       EventType = "npc_created"
	EventObjectCreated    EventType = "object_created"
	EventObjectGranted    EventType = "object_granted"
	EventObjectUsed       EventType = "object_used"
	EventRoomMessage      EventType = "room_message"
)

type Event struct {
	EventID string `json:"event_id"`
	// Seq increases by one per bonfire in commit order. Sinks may see
	// batches from concurrent requests swapped and reorder by it.
	Seq       int64          `json:"seq"`
	Type      EventType      `json:"event_type"`
	BonfireID string         `json:"bonfire_id"`
	GameID    string         `json:"game_id,omitempty"`
	At        time.Time      `json:"at"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Sink receives events after the mutation that produced them is committed
// and the bonfire lock has been released.
type Sink interface {
	Publish(ctx context.Context, events []Event)
}

// eventRing keeps the newest cap events of one bonfire.
type eventRing struct {
	cap   int
	items []Event
}

func (r *eventRing) push(e Event) {
	if r.cap <= 0 {
		r.cap = DefaultFeedCapacity
	}
	r.items = append(r.items, e)
	if over := len(r.items) - r.cap; over > 0 {
		r.items = append([]Event(nil), r.items[over:]...)
	}
}

// newest returns up to limit events, newest first.
func (r *eventRing) newest(limit int) []Event {
	n := len(r.items)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Event, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.items[i])
	}
	return out
}
