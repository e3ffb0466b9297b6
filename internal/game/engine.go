package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("bonfire/game")

// Engine owns the lifecycle of games. It is safe for concurrent use.
type Engine struct {
	store     *Store
	decider   Decider
	seeder    Seeder
	sink      Sink
	archiver  Archiver
	metrics   Metrics
	tuning    atomic.Pointer[Tuning]
	gmTimeout time.Duration
	now       func() time.Time
	newID     func() string
	log       *slog.Logger
}

type Option func(*Engine)

func WithDecider(d Decider) Option   { return func(e *Engine) { e.decider = d } }
func WithSeeder(s Seeder) Option     { return func(e *Engine) { e.seeder = s } }
func WithSink(s Sink) Option         { return func(e *Engine) { e.sink = s } }
func WithArchiver(a Archiver) Option { return func(e *Engine) { e.archiver = a } }
func WithMetrics(m Metrics) Option   { return func(e *Engine) { e.metrics = m } }
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithTuning(t Tuning) Option {
	return func(e *Engine) { e.SetTuning(t) }
}

// WithGMTimeout bounds each call into the decider and seeder.
func WithGMTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.gmTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func WithIDGenerator(fn func() string) Option { return func(e *Engine) { e.newID = fn } }

func NewEngine(store *Store, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		decider:   noDecision{},
		metrics:   nopMetrics{},
		gmTimeout: DefaultGMTimeout,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		log:       slog.Default(),
	}
	e.SetTuning(DefaultTuning())
	for _, o := range opts {
		o(e)
	}
	if e.decider == nil {
		e.decider = noDecision{}
	}
	if e.metrics == nil {
		e.metrics = nopMetrics{}
	}
	return e
}

func (e *Engine) Tuning() Tuning { return *e.tuning.Load() }

func (e *Engine) SetTuning(t Tuning) {
	n := t.normalized()
	e.tuning.Store(&n)
}

// emit records an event on the bonfire feed. Callers hold sl.mu.
func (e *Engine) emit(sl *slot, g *Game, typ EventType, payload map[string]any) {
	sl.seq++
	ev := Event{EventID: e.newID(), Seq: sl.seq, Type: typ, BonfireID: sl.bonfireID, At: e.now(), Payload: payload}
	if g != nil {
		ev.GameID = g.GameID
	}
	sl.events.push(ev)
	sl.pending = append(sl.pending, ev)
}

func (e *Engine) publish(ctx context.Context, events []Event) {
	if e.sink == nil || len(events) == 0 {
		return
	}
	e.sink.Publish(ctx, events)
}

// withActive runs fn on the active game of bonfireID under the bonfire lock
// and publishes the events fn emitted once the lock is released.
func (e *Engine) withActive(ctx context.Context, bonfireID string, fn func(sl *slot, g *Game) error) error {
	sl := e.store.lookup(strings.TrimSpace(bonfireID))
	if sl == nil {
		return notFound("active game for bonfire", bonfireID)
	}
	var events []Event
	err := func() error {
		sl.mu.Lock()
		defer sl.mu.Unlock()
		defer func() { events = sl.takePending() }()
		if sl.active == nil {
			return notFound("active game for bonfire", bonfireID)
		}
		return fn(sl, sl.active)
	}()
	e.publish(ctx, events)
	return err
}

type CreateParams struct {
	BonfireID         string
	OwnerWallet       string
	Prompt            string
	GMAgentID         string
	InitialQuestCount int
}

// CreateGame always succeeds for valid input: an existing active game of the
// bonfire is archived and the new one takes its place.
func (e *Engine) CreateGame(ctx context.Context, p CreateParams) (Snapshot, error) {
	bonfireID := strings.TrimSpace(p.BonfireID)
	owner := NormalizeWallet(p.OwnerWallet)
	prompt := strings.TrimSpace(p.Prompt)
	if bonfireID == "" {
		return Snapshot{}, invalid("bonfire_id is required")
	}
	if owner == "" {
		return Snapshot{}, invalid("owner wallet is required")
	}
	t := e.Tuning()
	seed := e.seed(ctx, SeedRequest{BonfireID: bonfireID, Prompt: prompt, QuestCount: clampQuestCount(p.InitialQuestCount, t.InitialQuestCount)})

	sl := e.store.slotFor(bonfireID)
	var (
		created  Snapshot
		archived *Snapshot
		events   []Event
	)
	func() {
		sl.mu.Lock()
		defer sl.mu.Unlock()
		now := e.now()
		if prev := sl.active; prev != nil {
			prev.Status = StatusArchived
			prev.ArchivedAt = now
			sl.history = append(sl.history, prev)
			snap := prev.snapshot()
			archived = &snap
			e.emit(sl, prev, EventGameArchived, map[string]any{"reason": "replaced_by_new_game"})
		}
		g := newGame(e.newID(), bonfireID, owner, prompt, strings.TrimSpace(p.GMAgentID), now)
		ep := g.Episodes.Append(g.GameID, AuthorWorld, seed.Summary, 0, now)
		g.WorldState = seed.Summary
		start, _ := g.World.ensureStart(e.newID(), now)
		sl.active = g
		e.store.index(g.GameID, sl)
		e.emit(sl, g, EventGameCreated, map[string]any{"owner_wallet": owner, "prompt": prompt, "episode_id": ep.EpisodeID})
		e.emit(sl, g, EventRoomCreated, map[string]any{"room_id": start.RoomID, "name": start.Name})
		for _, d := range seed.Quests {
			q := g.Quests.Add(e.questFromDraft(d, ep.EpisodeID, t, now))
			e.emit(sl, g, EventQuestCreated, map[string]any{"quest_id": q.QuestID, "description": q.Description, "reward": q.Reward})
		}
		created = g.snapshot()
		events = sl.takePending()
	}()

	e.metrics.GameCreated(ctx, bonfireID)
	e.publish(ctx, events)
	if archived != nil && e.archiver != nil {
		if err := e.archiver.Archive(ctx, *archived); err != nil {
			e.log.Warn("archive export failed", "bonfire_id", bonfireID, "game_id", archived.GameID, "err", err)
		}
	}
	return created, nil
}

func (e *Engine) seed(ctx context.Context, req SeedRequest) Seed {
	if e.seeder != nil {
		sctx, cancel := context.WithTimeout(ctx, e.gmTimeout)
		s, err := e.seeder.Seed(sctx, req)
		cancel()
		switch {
		case err != nil:
			e.log.Warn("seeder failed, using fallback opening", "bonfire_id", req.BonfireID, "err", err)
		case strings.TrimSpace(s.Summary) == "":
			e.log.Warn("seeder returned empty summary, using fallback opening", "bonfire_id", req.BonfireID)
		default:
			if len(s.Quests) == 0 {
				s.Quests = FallbackSeed(req).Quests
			}
			if len(s.Quests) > req.QuestCount {
				s.Quests = s.Quests[:req.QuestCount]
			}
			return s
		}
	}
	return FallbackSeed(req)
}

func (e *Engine) questFromDraft(d QuestDraft, episodeID int64, t Tuning, now time.Time) Quest {
	reward := d.Reward
	if reward < 1 {
		reward = t.QuestReward
	}
	return Quest{
		QuestID:              e.newID(),
		Description:          d.Description,
		Keyword:              strings.ToLower(strings.TrimSpace(d.Keyword)),
		Status:               QuestOpen,
		Reward:               reward,
		CreatedFromEpisodeID: episodeID,
		CreatedAt:            now,
	}
}

type RegisterParams struct {
	BonfireID      string
	AgentID        string
	PurchaseID     string
	PurchaseTxHash string
	OwnerWallet    string
	// Quota overrides the configured default when positive.
	Quota int
}

func (e *Engine) RegisterAgent(ctx context.Context, p RegisterParams) (AgentState, error) {
	agentID := strings.TrimSpace(p.AgentID)
	wallet := NormalizeWallet(p.OwnerWallet)
	if agentID == "" {
		return AgentState{}, invalid("agent_id is required")
	}
	if wallet == "" {
		return AgentState{}, invalid("owner wallet is required")
	}
	t := e.Tuning()
	var out AgentState
	err := e.withActive(ctx, p.BonfireID, func(sl *slot, g *Game) error {
		if _, ok := g.agent(agentID); ok {
			return fmt.Errorf("agent %q: %w", agentID, ErrDuplicate)
		}
		now := e.now()
		a := &AgentState{
			AgentID:        agentID,
			BonfireID:      g.BonfireID,
			GameID:         g.GameID,
			OwnerWallet:    wallet,
			PurchaseID:     strings.TrimSpace(p.PurchaseID),
			PurchaseTxHash: strings.TrimSpace(p.PurchaseTxHash),
			RegisteredAt:   now,
			CurrentRoom:    g.World.StartingRoomID(),
		}
		quota := p.Quota
		if quota <= 0 {
			quota = t.DefaultQuota
		}
		if quota > 0 {
			if _, err := a.Quota.Credit(e.newID(), quota, ReasonRegistration, "", now); err != nil {
				return err
			}
		}
		g.addAgent(a)
		e.emit(sl, g, EventPlayerRegistered, map[string]any{
			"agent_id":     agentID,
			"owner_wallet": wallet,
			"purchase_id":  a.PurchaseID,
			"quota":        a.Quota.Remaining,
			"room_id":      a.CurrentRoom,
		})
		out = a.clone()
		return nil
	})
	return out, err
}

type TurnParams struct {
	BonfireID    string
	AgentID      string
	Message      string
	Role         string
	AsGameMaster bool
}

type TurnResult struct {
	Accepted       bool `json:"accepted"`
	QuotaRemaining int  `json:"quota_remaining"`
	StackSize      int  `json:"stack_size"`
}

// TakeTurn spends one quota unit and buffers the message. It never flushes.
func (e *Engine) TakeTurn(ctx context.Context, p TurnParams) (TurnResult, error) {
	msg := strings.TrimSpace(p.Message)
	if msg == "" {
		return TurnResult{}, invalid("message is required")
	}
	role := p.Role
	if role == "" {
		role = RoleUser
	}
	var res TurnResult
	err := e.withActive(ctx, p.BonfireID, func(sl *slot, g *Game) error {
		a, ok := g.agent(p.AgentID)
		if !ok {
			return notFound("agent", p.AgentID)
		}
		if p.AsGameMaster && !g.isOwner(a.OwnerWallet) {
			return fmt.Errorf("%w: only the game owner's agent may speak as game master", ErrForbidden)
		}
		now := e.now()
		if err := a.Quota.Debit(e.newID(), now); err != nil {
			return fmt.Errorf("agent %q: %w", a.AgentID, err)
		}
		a.Stack.Push(Message{Role: role, Content: msg, At: now, AsGameMaster: p.AsGameMaster})
		e.emit(sl, g, EventTurnProcessed, map[string]any{
			"agent_id":        a.AgentID,
			"quota_remaining": a.Quota.Remaining,
			"stack_size":      a.Stack.Len(),
		})
		res = TurnResult{Accepted: true, QuotaRemaining: a.Quota.Remaining, StackSize: a.Stack.Len()}
		return nil
	})
	if err == nil {
		e.metrics.TurnTaken(ctx, p.BonfireID, res.QuotaRemaining)
	}
	return res, err
}

// AppendReply buffers an assistant reply for the agent without charging
// quota. It is used after a completed turn.
func (e *Engine) AppendReply(ctx context.Context, bonfireID, agentID, content string) (int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, invalid("reply is empty")
	}
	var size int
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		a, ok := g.agent(agentID)
		if !ok {
			return notFound("agent", agentID)
		}
		a.Stack.Push(Message{Role: RoleAssistant, Content: content, At: e.now()})
		size = a.Stack.Len()
		return nil
	})
	return size, err
}

type StackResult struct {
	Episode        *Episode  `json:"episode"`
	Decision       *Decision `json:"decision,omitempty"`
	Quest          *Quest    `json:"quest,omitempty"`
	QuotaRemaining int       `json:"quota_remaining"`
}

// ProcessStack folds the agent's buffered messages into one episode, clears
// the buffer and asks the game master to react. An empty stack is a no-op
// and yields a nil Episode. The bonfire lock is released while the game
// master runs. A decider failure leaves the episode committed and returns
// an error wrapping ErrDecisionUnavailable.
func (e *Engine) ProcessStack(ctx context.Context, bonfireID, agentID string) (StackResult, error) {
	ctx, span := tracer.Start(ctx, "game.process_stack", trace.WithAttributes(
		attribute.String("bonfire.id", bonfireID),
		attribute.String("agent.id", agentID),
	))
	defer span.End()

	var (
		res StackResult
		in  DecisionInput
	)
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		a, ok := g.agent(agentID)
		if !ok {
			return notFound("agent", agentID)
		}
		res.QuotaRemaining = a.Quota.Remaining
		if a.Stack.Len() == 0 {
			return nil
		}
		msgs := a.Stack.Drain()
		ep := g.Episodes.Append(g.GameID, a.AgentID, Fold(msgs), len(msgs), e.now())
		e.emit(sl, g, EventStackProcessed, map[string]any{
			"agent_id":      a.AgentID,
			"episode_id":    ep.EpisodeID,
			"message_count": ep.MessageCount,
		})
		res.Episode = &ep
		in = e.decisionInput(g, a, ep, TriggerFlush, flagged(msgs))
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	if res.Episode == nil {
		return res, nil
	}
	e.metrics.EpisodeFlushed(ctx, bonfireID, res.Episode.MessageCount)
	res, err = e.react(ctx, in, res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

// GMReact re-evaluates an agent episode on explicit request. episodeID 0
// selects the agent's latest episode.
func (e *Engine) GMReact(ctx context.Context, bonfireID, agentID string, episodeID int64) (StackResult, error) {
	var (
		res StackResult
		in  DecisionInput
	)
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		a, ok := g.agent(agentID)
		if !ok {
			return notFound("agent", agentID)
		}
		var (
			ep    Episode
			found bool
		)
		if episodeID > 0 {
			ep, found = g.Episodes.Get(episodeID)
			found = found && ep.Author == a.AgentID
		} else {
			ep, found = g.Episodes.Latest(a.AgentID)
		}
		if !found {
			return notFound("episode for agent", agentID)
		}
		res.Episode = &ep
		res.QuotaRemaining = a.Quota.Remaining
		in = e.decisionInput(g, a, ep, TriggerManual, true)
		return nil
	})
	if err != nil {
		return res, err
	}
	return e.react(ctx, in, res)
}

func (e *Engine) decisionInput(g *Game, a *AgentState, ep Episode, trig Trigger, signal bool) DecisionInput {
	recent := g.Episodes.Recent(a.AgentID, recentWindow+1)
	if n := len(recent); n > 0 && recent[n-1].EpisodeID == ep.EpisodeID {
		recent = recent[:n-1]
	}
	in := DecisionInput{
		BonfireID:      g.BonfireID,
		GameID:         g.GameID,
		AgentID:        a.AgentID,
		Prompt:         g.Prompt,
		WorldState:     g.WorldState,
		Episode:        ep,
		QuotaRemaining: a.Quota.Remaining,
		RecentEpisodes: recent,
		OpenQuests:     g.Quests.Open(),
		Trigger:        trig,
		Signal:         signal,
	}
	for _, id := range g.World.roomOrder {
		in.Rooms = append(in.Rooms, g.World.rooms[id].Name)
	}
	if r, ok := g.World.rooms[a.CurrentRoom]; ok {
		in.CurrentRoom = r.Name
	}
	return in
}

func (e *Engine) react(ctx context.Context, in DecisionInput, res StackResult) (StackResult, error) {
	dctx, cancel := context.WithTimeout(ctx, e.gmTimeout)
	d, err := e.decider.Decide(dctx, in)
	cancel()
	if err != nil {
		e.metrics.DecisionFailed(ctx, in.BonfireID)
		if !errors.Is(err, ErrDecisionUnavailable) {
			err = fmt.Errorf("%w: %v", ErrDecisionUnavailable, err)
		}
		return res, err
	}
	res, err = e.apply(ctx, in, d, res)
	if err == nil && res.Decision != nil {
		e.metrics.DecisionApplied(ctx, in.BonfireID, *res.Decision)
	}
	return res, err
}

// apply commits a decision. Decisions for a game that has been archived in
// the meantime are returned unapplied. A decision on an episode that already
// earned an extension only updates the reaction and world state summary.
func (e *Engine) apply(ctx context.Context, in DecisionInput, d Decision, res StackResult) (StackResult, error) {
	t := e.Tuning()
	err := e.withActive(ctx, in.BonfireID, func(sl *slot, g *Game) error {
		if g.GameID != in.GameID {
			return nil
		}
		a, ok := g.agent(in.AgentID)
		if !ok {
			return notFound("agent", in.AgentID)
		}
		now := e.now()
		if ep, ok := g.Episodes.Get(in.Episode.EpisodeID); ok && ep.ExtensionAwarded && d.ExtensionAwarded {
			// an episode earns at most one extension
			d.ExtensionAwarded = false
			d.RechargeAmount = 0
			d.NewQuest = nil
			d.WorldChanges = nil
		}
		if d.ExtensionAwarded && d.RechargeAmount <= 0 {
			d.RechargeAmount = t.DefaultRecharge
		}
		if d.ExtensionAwarded {
			if _, err := a.Quota.Credit(e.newID(), d.RechargeAmount, ReasonGMExtension, "", now); err != nil {
				return err
			}
			a.LastRechargeAt = now
			g.Episodes.markExtension(in.Episode.EpisodeID, d.RechargeAmount)
			e.emit(sl, g, EventAgentRecharged, map[string]any{
				"agent_id":        a.AgentID,
				"amount":          d.RechargeAmount,
				"reason":          ReasonGMExtension,
				"quota_remaining": a.Quota.Remaining,
			})
		}
		if d.ExtensionAwarded && d.NewQuest != nil && strings.TrimSpace(d.NewQuest.Description) != "" && !g.Quests.HasOpen() {
			q := g.Quests.Add(e.questFromDraft(*d.NewQuest, in.Episode.EpisodeID, t, now))
			res.Quest = &q
			e.emit(sl, g, EventQuestCreated, map[string]any{"quest_id": q.QuestID, "description": q.Description, "reward": q.Reward, "source": "gm"})
		}
		if r := strings.TrimSpace(d.Reaction); r != "" {
			g.LastGMReaction = r
		}
		if w := strings.TrimSpace(d.WorldStateUpdate); w != "" {
			g.WorldState = w
		}
		if d.WorldChanges != nil {
			e.applyWorldChanges(sl, g, *d.WorldChanges)
		}
		d.Applied = true
		e.emit(sl, g, EventGMReacted, map[string]any{
			"agent_id":          a.AgentID,
			"episode_id":        in.Episode.EpisodeID,
			"trigger":           string(in.Trigger),
			"extension_awarded": d.ExtensionAwarded,
			"recharge_amount":   d.RechargeAmount,
			"reaction":          d.Reaction,
		})
		res.QuotaRemaining = a.Quota.Remaining
		if ep, ok := g.Episodes.Get(in.Episode.EpisodeID); ok {
			res.Episode = &ep
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		// game replaced or bonfire gone: keep the decision for the caller only
		err = nil
	}
	res.Decision = &d
	return res, err
}

// PublishWorldEpisode appends an owner-authored world episode and makes it
// the current world state.
func (e *Engine) PublishWorldEpisode(ctx context.Context, bonfireID, wallet, content string) (Episode, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Episode{}, invalid("content is required")
	}
	var ep Episode
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		if !g.isOwner(wallet) {
			return fmt.Errorf("%w: wallet is not the game owner", ErrForbidden)
		}
		ep = g.Episodes.Append(g.GameID, AuthorWorld, content, 1, e.now())
		g.WorldState = content
		e.emit(sl, g, EventEpisodePublished, map[string]any{"episode_id": ep.EpisodeID, "author": AuthorWorld})
		return nil
	})
	return ep, err
}

// CreateQuest lets the owner add a quest to the active game.
func (e *Engine) CreateQuest(ctx context.Context, bonfireID, wallet string, d QuestDraft) (Quest, error) {
	if strings.TrimSpace(d.Description) == "" {
		return Quest{}, invalid("description is required")
	}
	if d.Reward < 0 {
		return Quest{}, invalid("reward must be >= 1")
	}
	t := e.Tuning()
	var q Quest
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		if !g.isOwner(wallet) {
			return fmt.Errorf("%w: wallet is not the game owner", ErrForbidden)
		}
		q = g.Quests.Add(e.questFromDraft(d, g.Episodes.LastID(), t, e.now()))
		e.emit(sl, g, EventQuestCreated, map[string]any{"quest_id": q.QuestID, "description": q.Description, "reward": q.Reward, "source": "owner"})
		return nil
	})
	return q, err
}

type ClaimParams struct {
	BonfireID string
	QuestID   string
	Wallet    string
	// AgentID selects which of the wallet's agents receives the reward.
	// Empty picks the wallet's earliest registered agent.
	AgentID string
}

type ClaimResult struct {
	QuestID        string    `json:"quest_id"`
	AgentID        string    `json:"agent_id"`
	RewardApplied  int       `json:"reward_applied"`
	QuotaRemaining int       `json:"quota_remaining"`
	CooldownUntil  time.Time `json:"cooldown_until"`
}

// ClaimQuest claims an open quest exactly once and credits its reward.
func (e *Engine) ClaimQuest(ctx context.Context, p ClaimParams) (ClaimResult, error) {
	wallet := NormalizeWallet(p.Wallet)
	if wallet == "" {
		return ClaimResult{}, invalid("wallet is required")
	}
	cooldown := e.Tuning().QuestClaimCooldown
	var res ClaimResult
	err := e.withActive(ctx, p.BonfireID, func(sl *slot, g *Game) error {
		q, ok := g.Quests.Get(p.QuestID)
		if !ok {
			return notFound("quest", p.QuestID)
		}
		if q.Status == QuestClaimed {
			return ErrAlreadyClaimed
		}
		now := e.now()
		if until, ok := g.claimCooldown[wallet]; ok && now.Before(until) {
			return fmt.Errorf("%w until %s", ErrCooldown, until.Format(time.RFC3339))
		}
		var a *AgentState
		if p.AgentID != "" {
			a, ok = g.agent(p.AgentID)
			if !ok {
				return notFound("agent", p.AgentID)
			}
			if !sameWallet(a.OwnerWallet, wallet) {
				return fmt.Errorf("%w: agent is not owned by wallet", ErrForbidden)
			}
		} else if a, ok = g.agentForWallet(wallet); !ok {
			return notFound("agent for wallet", wallet)
		}
		claimed, err := g.Quests.Claim(q.QuestID, wallet, a.AgentID, now, cooldown)
		if err != nil {
			return err
		}
		if _, err := a.Quota.Credit(e.newID(), claimed.Reward, ReasonQuestReward, claimed.QuestID, now); err != nil {
			return err
		}
		g.claimCooldown[wallet] = claimed.ClaimCooldownUntil
		e.emit(sl, g, EventQuestClaimed, map[string]any{
			"quest_id": claimed.QuestID,
			"agent_id": a.AgentID,
			"wallet":   wallet,
			"reward":   claimed.Reward,
		})
		res = ClaimResult{
			QuestID:        claimed.QuestID,
			AgentID:        a.AgentID,
			RewardApplied:  claimed.Reward,
			QuotaRemaining: a.Quota.Remaining,
			CooldownUntil:  claimed.ClaimCooldownUntil,
		}
		return nil
	})
	if err == nil {
		e.metrics.QuestClaimed(ctx, p.BonfireID, res.RewardApplied)
	}
	return res, err
}

type RechargeParams struct {
	BonfireID       string
	AgentID         string
	Amount          int
	RequesterWallet string
}

// Recharge adds quota to an agent on behalf of the game owner.
func (e *Engine) Recharge(ctx context.Context, p RechargeParams) (int, error) {
	var remaining int
	err := e.withActive(ctx, p.BonfireID, func(sl *slot, g *Game) error {
		if !g.isOwner(p.RequesterWallet) {
			return fmt.Errorf("%w: wallet is not the game owner", ErrForbidden)
		}
		a, ok := g.agent(p.AgentID)
		if !ok {
			return notFound("agent", p.AgentID)
		}
		now := e.now()
		if _, err := a.Quota.Credit(e.newID(), p.Amount, ReasonOwnerRecharge, "", now); err != nil {
			return err
		}
		a.LastRechargeAt = now
		e.emit(sl, g, EventAgentRecharged, map[string]any{
			"agent_id":        a.AgentID,
			"amount":          p.Amount,
			"reason":          ReasonOwnerRecharge,
			"quota_remaining": a.Quota.Remaining,
		})
		remaining = a.Quota.Remaining
		return nil
	})
	return remaining, err
}
