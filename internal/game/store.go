package game

import (
	"sort"
	"sync"
)

// Store is the process-wide in-memory state. It starts empty and is not
// persisted. Every bonfire has its own slot and all mutations of a bonfire
// are serialized by that slot's mutex.
type Store struct {
	mu      sync.RWMutex
	slots   map[string]*slot
	games   map[string]*slot
	feedCap int
}

type StoreOption func(*Store)

func WithFeedCapacity(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.feedCap = n
		}
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{slots: map[string]*slot{}, games: map[string]*slot{}, feedCap: DefaultFeedCapacity}
	for _, o := range opts {
		o(s)
	}
	return s
}

type slot struct {
	mu        sync.Mutex
	bonfireID string
	active    *Game
	history   []*Game
	events    eventRing
	pending   []Event
	seq       int64
}

func (sl *slot) find(gameID string) *Game {
	if sl.active != nil && sl.active.GameID == gameID {
		return sl.active
	}
	for _, g := range sl.history {
		if g.GameID == gameID {
			return g
		}
	}
	return nil
}

func (sl *slot) takePending() []Event {
	out := sl.pending
	sl.pending = nil
	return out
}

func (s *Store) lookup(bonfireID string) *slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[bonfireID]
}

func (s *Store) slotFor(bonfireID string) *slot {
	if sl := s.lookup(bonfireID); sl != nil {
		return sl
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[bonfireID]; ok {
		return sl
	}
	sl := &slot{bonfireID: bonfireID, events: eventRing{cap: s.feedCap}}
	s.slots[bonfireID] = sl
	return sl
}

// index is called with the slot lock held; lock order is slot then store.
func (s *Store) index(gameID string, sl *slot) {
	s.mu.Lock()
	s.games[gameID] = sl
	s.mu.Unlock()
}

func (s *Store) slotOfGame(gameID string) *slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[gameID]
}

// all returns every slot ordered by bonfire id.
func (s *Store) all() []*slot {
	s.mu.RLock()
	out := make([]*slot, 0, len(s.slots))
	for _, sl := range s.slots {
		out = append(out, sl)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].bonfireID < out[j].bonfireID })
	return out
}
