package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cuihairu/bonfire/internal/completion"
	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/internal/scheduler"
	"github.com/cuihairu/bonfire/services/server/internal/config"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"
)

const owner = "0xOwner"

func newTestContext(t *testing.T) *svc.ServiceContext {
	t.Helper()
	var c config.Config
	c.Game.DefaultQuota = 2
	c.Game.InitialQuestCount = 1
	c.Ownership.Mode = "first-claim"
	c.Payment.DefaultAmount = "0.01"
	ctx := svc.NewServiceContext(c)
	t.Cleanup(ctx.Stop)
	return ctx
}

// serve dispatches through the same role middleware the server installs.
func serve(t *testing.T, sc *svc.ServiceContext, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return dispatch(t, sc, req)
}

func dispatch(t *testing.T, sc *svc.ServiceContext, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	method := req.Method
	var h http.HandlerFunc
	for _, rt := range GameRoutes(sc) {
		if rt.Method == method && rt.Path == req.URL.Path {
			h = sc.RoleCheck(rt.Handler)
		}
	}
	if h == nil {
		t.Fatalf("no route %s %s", method, req.URL.Path)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func createGame(t *testing.T, sc *svc.ServiceContext) types.CreateGameResponse {
	t.Helper()
	rec := serve(t, sc, http.MethodPost, "/game/create", map[string]any{
		"bonfire_id": "bf1", "wallet_address": owner, "game_prompt": "the sunken city",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var out types.CreateGameResponse
	decode(t, rec, &out)
	return out
}

func register(t *testing.T, sc *svc.ServiceContext, agentID, wallet string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, sc, http.MethodPost, "/game/agents/register-purchase", map[string]any{
		"bonfire_id": "bf1", "wallet_address": wallet, "agent_id": agentID,
		"purchase_id": "p-" + agentID, "purchase_tx_hash": "0xtx-" + agentID,
	})
}

func TestGameFlow(t *testing.T) {
	sc := newTestContext(t)
	created := createGame(t, sc)
	if created.GameId == "" || len(created.InitialQuests) != 1 || created.Warning == "" {
		t.Fatalf("create response %+v", created)
	}

	if rec := register(t, sc, "a1", owner); rec.Code != http.StatusOK {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	if rec := register(t, sc, "a1", owner); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", rec.Code)
	}

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		rec := serve(t, sc, http.MethodPost, "/game/turn", map[string]any{
			"bonfire_id": "bf1", "agent_id": "a1", "action": fmt.Sprintf("we found the artifact %d", i),
		})
		if rec.Code != want {
			t.Fatalf("turn %d: got %d want %d (%s)", i, rec.Code, want, rec.Body.String())
		}
	}

	rec := serve(t, sc, http.MethodPost, "/game/agents/process-stack", map[string]any{"bonfire_id": "bf1", "agent_id": "a1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("process-stack: %d %s", rec.Code, rec.Body.String())
	}
	var stack game.StackResult
	decode(t, rec, &stack)
	if stack.Episode == nil || stack.Episode.MessageCount != 2 {
		t.Fatalf("episode %+v", stack.Episode)
	}
	if stack.Decision == nil || !stack.Decision.ExtensionAwarded || stack.QuotaRemaining != 1 {
		t.Fatalf("decision %+v remaining %d", stack.Decision, stack.QuotaRemaining)
	}

	claim := map[string]any{"bonfire_id": "bf1", "wallet_address": owner, "quest_id": created.InitialQuests[0].QuestID}
	if rec := serve(t, sc, http.MethodPost, "/game/quests/claim", claim); rec.Code != http.StatusOK {
		t.Fatalf("claim: %d %s", rec.Code, rec.Body.String())
	}
	if rec := serve(t, sc, http.MethodPost, "/game/quests/claim", claim); rec.Code != http.StatusConflict {
		t.Fatalf("reclaim: %d", rec.Code)
	}

	rec = serve(t, sc, http.MethodGet, "/game/feed?bonfire_id=bf1&limit=3", nil)
	var fd types.FeedResponse
	decode(t, rec, &fd)
	if len(fd.Events) != 3 || fd.Events[0].Type != game.EventQuestClaimed {
		t.Fatalf("feed %+v", fd.Events)
	}

	rec = serve(t, sc, http.MethodGet, "/game/details?bonfire_id=bf1", nil)
	var det types.DetailsResponse
	decode(t, rec, &det)
	if det.Game.GameID != created.GameId || len(det.Game.Agents) != 1 || len(det.Game.Agents[0].Quota.Ledger) == 0 {
		t.Fatalf("details %+v", det.Game)
	}
}

func TestOwnerRoutesRequireOwnerWallet(t *testing.T) {
	sc := newTestContext(t)
	createGame(t, sc)
	if rec := register(t, sc, "a2", "0xplayer"); rec.Code != http.StatusOK {
		t.Fatalf("register: %d", rec.Code)
	}

	rec := serve(t, sc, http.MethodPost, "/game/agents/recharge", map[string]any{
		"bonfire_id": "bf1", "wallet_address": "0xplayer", "agent_id": "a2", "amount": 3,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("player recharge: %d", rec.Code)
	}
	rec = serve(t, sc, http.MethodPost, "/game/create", map[string]any{
		"bonfire_id": "bf1", "wallet_address": "0xplayer", "game_prompt": "takeover",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign create: %d", rec.Code)
	}
	rec = serve(t, sc, http.MethodPost, "/game/agents/recharge", map[string]any{
		"bonfire_id": "bf1", "wallet_address": owner, "agent_id": "a2", "amount": 3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("owner recharge: %d %s", rec.Code, rec.Body.String())
	}
	var out types.RechargeResponse
	decode(t, rec, &out)
	if out.QuotaRemaining != 5 {
		t.Fatalf("remaining = %d", out.QuotaRemaining)
	}
	rec = serve(t, sc, http.MethodPost, "/game/agents/recharge", map[string]any{
		"bonfire_id": "bf1", "agent_id": "a2", "amount": 3,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing wallet: %d", rec.Code)
	}
}

func TestUnknownBonfire(t *testing.T) {
	sc := newTestContext(t)
	if rec := serve(t, sc, http.MethodGet, "/game/state?bonfire_id=nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("state: %d", rec.Code)
	}
	if rec := register(t, sc, "a1", owner); rec.Code != http.StatusNotFound {
		t.Fatalf("register: %d", rec.Code)
	}
	if rec := serve(t, sc, http.MethodGet, "/game/details", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("details without ids: %d", rec.Code)
	}
}

func TestProcessAllAndTimerStatus(t *testing.T) {
	sc := newTestContext(t)
	createGame(t, sc)
	register(t, sc, "a1", owner)
	serve(t, sc, http.MethodPost, "/game/turn", map[string]any{"bonfire_id": "bf1", "agent_id": "a1", "action": "hello"})

	rec := serve(t, sc, http.MethodPost, "/game/stack/process-all", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("process-all: %d %s", rec.Code, rec.Body.String())
	}
	var run scheduler.Run
	decode(t, rec, &run)
	if run.Trigger != scheduler.TriggerManual || run.Processed != 1 {
		t.Fatalf("run %+v", run)
	}

	rec = serve(t, sc, http.MethodGet, "/game/stack/timer/status", nil)
	var st types.TimerStatusResponse
	decode(t, rec, &st)
	if st.Enabled || st.LastRun == nil || len(st.History) != 1 {
		t.Fatalf("status %+v", st)
	}
}

func TestRegisterRequiresPayment(t *testing.T) {
	var c config.Config
	c.Payment.Required = true
	sc := svc.NewServiceContext(c)
	t.Cleanup(sc.Stop)
	createGame(t, sc)
	rec := register(t, sc, "a1", owner)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("register without payment: %d", rec.Code)
	}
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("agent: %w", game.ErrNotFound), http.StatusNotFound},
		{game.ErrDuplicate, http.StatusConflict},
		{game.ErrAlreadyClaimed, http.StatusConflict},
		{scheduler.ErrBusy, http.StatusConflict},
		{game.ErrQuotaExhausted, http.StatusTooManyRequests},
		{game.ErrCooldown, http.StatusTooManyRequests},
		{game.ErrForbidden, http.StatusForbidden},
		{game.ErrPaymentInvalid, http.StatusPaymentRequired},
		{game.ErrDecisionUnavailable, http.StatusServiceUnavailable},
		{game.ErrInvalidArgument, http.StatusBadRequest},
		{completion.ErrTimeout, http.StatusGatewayTimeout},
		{completion.ErrUpstream, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := errorStatus(tc.err); got != tc.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestOwnerRouteDoesNotClaimUnownedBonfire(t *testing.T) {
	sc := newTestContext(t)
	rec := serve(t, sc, http.MethodPost, "/game/agents/recharge", map[string]any{
		"bonfire_id": "bf1", "wallet_address": "0xsquatter", "agent_id": "a1", "amount": 3,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("recharge on unowned bonfire: %d", rec.Code)
	}
	// the real owner can still create the first game
	createGame(t, sc)
}

func paymentHeader(t *testing.T, from string) string {
	t.Helper()
	env := map[string]any{
		"x402Version": 1,
		"scheme":      "exact",
		"network":     "base",
		"payload": map[string]any{
			"signature": "0x" + strings.Repeat("cd", 65),
			"authorization": map[string]any{
				"from":        from,
				"to":          "0xpayto",
				"value":       "10000",
				"validAfter":  "0",
				"validBefore": "0",
				"nonce":       "0x" + strings.Repeat("ab", 32),
			},
		},
	}
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestFailedRegistrationKeepsPaymentUsable(t *testing.T) {
	var c config.Config
	c.Ownership.Mode = "first-claim"
	c.Payment.Required = true
	c.Payment.Network = "base"
	c.Payment.DefaultAmount = "0.01"
	sc := svc.NewServiceContext(c)
	t.Cleanup(sc.Stop)

	header := paymentHeader(t, owner)
	registerPaid := func() *httptest.ResponseRecorder {
		b, _ := json.Marshal(map[string]any{"bonfire_id": "bf1", "wallet_address": owner, "agent_id": "a1"})
		req := httptest.NewRequest(http.MethodPost, "/game/agents/register-purchase", bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Payment", header)
		return dispatch(t, sc, req)
	}

	if rec := registerPaid(); rec.Code != http.StatusNotFound {
		t.Fatalf("register before game: %d %s", rec.Code, rec.Body.String())
	}
	createGame(t, sc)
	if rec := registerPaid(); rec.Code != http.StatusOK {
		t.Fatalf("retry after game exists: %d %s", rec.Code, rec.Body.String())
	}
	b, _ := json.Marshal(map[string]any{"bonfire_id": "bf1", "wallet_address": owner, "agent_id": "a2"})
	req := httptest.NewRequest(http.MethodPost, "/game/agents/register-purchase", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Payment", header)
	if rec := dispatch(t, sc, req); rec.Code != http.StatusPaymentRequired {
		t.Fatalf("payment reused after success: %d", rec.Code)
	}
}

func TestRoomsFlow(t *testing.T) {
	sc := newTestContext(t)
	createGame(t, sc)
	if rec := register(t, sc, "a2", "0xplayer"); rec.Code != http.StatusOK {
		t.Fatalf("register: %d", rec.Code)
	}

	rec := serve(t, sc, http.MethodGet, "/game/map?bonfire_id=bf1", nil)
	var m game.RoomMap
	decode(t, rec, &m)
	if len(m.Rooms) != 1 || len(m.Players) != 1 || m.Players[0].RoomID != m.StartingRoomID {
		t.Fatalf("map %+v", m)
	}

	hall := map[string]any{"bonfire_id": "bf1", "wallet_address": "0xplayer", "name": "Hall", "connections": []string{game.StartingRoomName}}
	if rec := serve(t, sc, http.MethodPost, "/game/room/create", hall); rec.Code != http.StatusForbidden {
		t.Fatalf("player room create: %d", rec.Code)
	}
	hall["wallet_address"] = owner
	rec = serve(t, sc, http.MethodPost, "/game/room/create", hall)
	if rec.Code != http.StatusOK {
		t.Fatalf("room create: %d %s", rec.Code, rec.Body.String())
	}
	var room game.Room
	decode(t, rec, &room)
	if rec := serve(t, sc, http.MethodPost, "/game/room/create", hall); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate room: %d", rec.Code)
	}

	move := map[string]any{"bonfire_id": "bf1", "agent_id": "a2", "room_id": "Hall"}
	if rec := serve(t, sc, http.MethodPost, "/game/room/move", move); rec.Code != http.StatusOK {
		t.Fatalf("move: %d %s", rec.Code, rec.Body.String())
	}
	move["room_id"] = "Nowhere"
	if rec := serve(t, sc, http.MethodPost, "/game/room/move", move); rec.Code != http.StatusNotFound {
		t.Fatalf("move nowhere: %d", rec.Code)
	}

	rec = serve(t, sc, http.MethodPost, "/game/object/create", map[string]any{
		"bonfire_id": "bf1", "wallet_address": owner, "name": "Tonic", "obj_type": "consumable",
		"location_type": "player", "location_id": "a2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("object create: %d %s", rec.Code, rec.Body.String())
	}
	var tonic game.Object
	decode(t, rec, &tonic)

	rec = serve(t, sc, http.MethodGet, "/game/inventory?bonfire_id=bf1&agent_id=a2", nil)
	var inv types.InventoryResponse
	decode(t, rec, &inv)
	if len(inv.Items) != 1 || inv.Items[0].ObjectID != tonic.ObjectID {
		t.Fatalf("inventory %+v", inv)
	}
	use := map[string]any{"bonfire_id": "bf1", "agent_id": "a2", "object_id": tonic.ObjectID}
	if rec := serve(t, sc, http.MethodPost, "/game/inventory/use", use); rec.Code != http.StatusOK {
		t.Fatalf("use: %d %s", rec.Code, rec.Body.String())
	}
	if rec := serve(t, sc, http.MethodPost, "/game/inventory/use", use); rec.Code != http.StatusNotFound {
		t.Fatalf("reuse consumed: %d", rec.Code)
	}

	rec = serve(t, sc, http.MethodGet, "/game/room/chat?bonfire_id=bf1&room_id="+room.RoomID, nil)
	var chat types.RoomChatResponse
	decode(t, rec, &chat)
	if len(chat.Messages) != 1 || !strings.Contains(chat.Messages[0].Content, "Tonic") {
		t.Fatalf("room chat %+v", chat)
	}

	rec = serve(t, sc, http.MethodPost, "/game/npc/create", map[string]any{
		"bonfire_id": "bf1", "wallet_address": owner, "name": "Warden", "room_id": room.RoomID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("npc create: %d %s", rec.Code, rec.Body.String())
	}
	var npc game.NPC
	decode(t, rec, &npc)
	rec = serve(t, sc, http.MethodGet, "/game/room/npcs?bonfire_id=bf1&room_id="+room.RoomID, nil)
	var npcs types.RoomNpcsResponse
	decode(t, rec, &npcs)
	if len(npcs.Npcs) != 1 {
		t.Fatalf("room npcs %+v", npcs)
	}
	rec = serve(t, sc, http.MethodPost, "/game/npc/interact", map[string]any{
		"bonfire_id": "bf1", "agent_id": "a2", "npc_id": npc.NPCID, "message": "hello",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("npc interact without completion backend: %d", rec.Code)
	}

	rec = serve(t, sc, http.MethodPost, "/game/agents/end-turn", map[string]any{"bonfire_id": "bf1", "agent_id": "a2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("end-turn: %d %s", rec.Code, rec.Body.String())
	}
	var end types.EndTurnResponse
	decode(t, rec, &end)
	if end.Episode != nil || len(end.Map.Rooms) != 2 || end.Map.Players[0].RoomID != room.RoomID {
		t.Fatalf("end-turn %+v", end)
	}
}
