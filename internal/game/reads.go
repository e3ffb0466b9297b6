package game

import (
	"context"
	"strings"
)

// State returns the active game of a bonfire.
func (e *Engine) State(ctx context.Context, bonfireID string) (Snapshot, error) {
	var s Snapshot
	err := e.withActive(ctx, bonfireID, func(_ *slot, g *Game) error {
		s = g.snapshot()
		return nil
	})
	return s, err
}

// Details returns any game, active or archived, by id.
func (e *Engine) Details(_ context.Context, gameID string) (Snapshot, error) {
	sl := e.store.slotOfGame(strings.TrimSpace(gameID))
	if sl == nil {
		return Snapshot{}, notFound("game", gameID)
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	g := sl.find(gameID)
	if g == nil {
		return Snapshot{}, notFound("game", gameID)
	}
	return g.snapshot(), nil
}

// Agent returns one agent of the active game.
func (e *Engine) Agent(ctx context.Context, bonfireID, agentID string) (AgentState, error) {
	var out AgentState
	err := e.withActive(ctx, bonfireID, func(_ *slot, g *Game) error {
		a, ok := g.agent(agentID)
		if !ok {
			return notFound("agent", agentID)
		}
		out = a.clone()
		return nil
	})
	return out, err
}

// History lists every game ever created for the bonfire, oldest first.
func (e *Engine) History(_ context.Context, bonfireID string) []Summary {
	sl := e.store.lookup(bonfireID)
	if sl == nil {
		return []Summary{}
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	out := make([]Summary, 0, len(sl.history)+1)
	for _, g := range sl.history {
		out = append(out, g.summary())
	}
	if sl.active != nil {
		out = append(out, sl.active.summary())
	}
	return out
}

// Feed returns the newest events of a bonfire, newest first. Unknown
// bonfires have an empty feed.
func (e *Engine) Feed(_ context.Context, bonfireID string, limit int) []Event {
	sl := e.store.lookup(strings.TrimSpace(bonfireID))
	if sl == nil {
		return []Event{}
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.events.newest(limit)
}

// ListActive returns one row per bonfire that has an active game.
func (e *Engine) ListActive(_ context.Context) []Summary {
	out := []Summary{}
	for _, sl := range e.store.all() {
		sl.mu.Lock()
		if sl.active != nil {
			out = append(out, sl.active.summary())
		}
		sl.mu.Unlock()
	}
	return out
}

// RestoreAgents finds every agent owned by wallet across active and
// archived games. A non-empty purchase filters on purchase tx hash or
// purchase id. It never mutates state.
func (e *Engine) RestoreAgents(_ context.Context, wallet, purchase string) ([]AgentState, error) {
	wallet = NormalizeWallet(wallet)
	if wallet == "" {
		return nil, invalid("wallet is required")
	}
	purchase = strings.ToLower(strings.TrimSpace(purchase))
	out := []AgentState{}
	for _, sl := range e.store.all() {
		sl.mu.Lock()
		games := append([]*Game(nil), sl.history...)
		if sl.active != nil {
			games = append(games, sl.active)
		}
		for _, g := range games {
			for _, id := range g.agentOrder {
				a := g.agents[id]
				if !sameWallet(a.OwnerWallet, wallet) {
					continue
				}
				if purchase != "" && strings.ToLower(a.PurchaseTxHash) != purchase && strings.ToLower(a.PurchaseID) != purchase {
					continue
				}
				out = append(out, a.clone())
			}
		}
		sl.mu.Unlock()
	}
	sortAgents(out)
	return out, nil
}
