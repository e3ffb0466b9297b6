package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestCreateGame_SeedsStartingRoom(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	g := mustCreate(t, e, "b1", "0xowner")
	if len(g.Rooms) != 1 || g.Rooms[0].Name != StartingRoomName {
		t.Fatalf("rooms = %+v", g.Rooms)
	}
	a := mustRegister(t, e, "b1", "A", "0xp", 3)
	if a.CurrentRoom != g.Rooms[0].RoomID {
		t.Fatalf("agent room = %q, want %q", a.CurrentRoom, g.Rooms[0].RoomID)
	}
	m, err := e.InitMap(ctx, "b1")
	if err != nil {
		t.Fatalf("init map: %v", err)
	}
	if len(m.Rooms) != 1 || m.StartingRoomID != g.Rooms[0].RoomID {
		t.Fatalf("init map must not add rooms: %+v", m)
	}
	if len(m.Players) != 1 || m.Players[0].RoomID != m.StartingRoomID {
		t.Fatalf("players = %+v", m.Players)
	}
}

func TestMovePlayer_FollowsConnections(t *testing.T) {
	sink := &recordingSink{}
	e, _ := newTestEngine(t, WithSink(sink))
	ctx := context.Background()
	mustCreate(t, e, "b1", "0xowner")
	mustRegister(t, e, "b1", "A", "0xp", 3)

	hall, err := e.CreateRoom(ctx, "b1", "0xowner", RoomDraft{Name: "Hall", Connections: []string{StartingRoomName}})
	if err != nil {
		t.Fatalf("create hall: %v", err)
	}
	vault, err := e.CreateRoom(ctx, "b1", "0xowner", RoomDraft{Name: "Vault", Connections: []string{"hall"}})
	if err != nil {
		t.Fatalf("create vault: %v", err)
	}
	if _, err := e.CreateRoom(ctx, "b1", "0xp", RoomDraft{Name: "Attic"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner create room: %v", err)
	}
	if _, err := e.CreateRoom(ctx, "b1", "0xowner", RoomDraft{Name: "VAULT"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate room name: %v", err)
	}

	if _, err := e.MovePlayer(ctx, "b1", "A", vault.RoomID); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("vault is two rooms away, got %v", err)
	}
	if _, err := e.MovePlayer(ctx, "b1", "A", "Hall"); err != nil {
		t.Fatalf("move to hall: %v", err)
	}
	if _, err := e.MovePlayer(ctx, "b1", "A", vault.RoomID); err != nil {
		t.Fatalf("move to vault: %v", err)
	}
	if _, err := e.MovePlayer(ctx, "b1", "A", "nowhere"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown room: %v", err)
	}
	a, _ := e.Agent(ctx, "b1", "A")
	if a.CurrentRoom != vault.RoomID {
		t.Fatalf("agent in %q, want vault", a.CurrentRoom)
	}

	m, _ := e.Map(ctx, "b1")
	var hallView Room
	for _, r := range m.Rooms {
		if r.RoomID == hall.RoomID {
			hallView = r
		}
	}
	if len(hallView.Connections) != 2 {
		t.Fatalf("hall should link back to the hearth and the vault: %+v", hallView)
	}

	var moves []Event
	for _, ev := range sink.events {
		if ev.Type == EventPlayerMoved {
			moves = append(moves, ev)
		}
	}
	if len(moves) != 2 || moves[1].Payload["from_room_id"] != hall.RoomID || moves[1].Payload["room_id"] != vault.RoomID {
		t.Fatalf("player_moved events = %+v", moves)
	}
}

func TestUseObject_UnlocksAndConsumes(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "b1", "0xowner")
	mustRegister(t, e, "b1", "A", "0xp", 3)
	mustRegister(t, e, "b1", "B", "0xq", 3)
	if _, err := e.CreateRoom(ctx, "b1", "0xowner", RoomDraft{Name: "Crypt"}); err != nil {
		t.Fatalf("create crypt: %v", err)
	}

	key, err := e.CreateObject(ctx, "b1", "0xowner", ObjectDraft{
		Name:         "Bone Key",
		Type:         ObjectConsumable,
		Properties:   map[string]string{PropUnlocksRoom: "Crypt", PropRevealsEntity: "the warden"},
		LocationType: LocationPlayer,
		LocationID:   "A",
	})
	if err != nil {
		t.Fatalf("create key: %v", err)
	}
	if _, err := e.UseObject(ctx, "b1", "B", key.ObjectID); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("B does not hold the key: %v", err)
	}
	if _, err := e.MovePlayer(ctx, "b1", "A", "Crypt"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("crypt should be locked: %v", err)
	}

	res, err := e.UseObject(ctx, "b1", "A", key.ObjectID)
	if err != nil {
		t.Fatalf("use key: %v", err)
	}
	if !res.Object.Consumed || len(res.Effects) != 3 {
		t.Fatalf("use result = %+v", res)
	}
	if _, err := e.UseObject(ctx, "b1", "A", key.ObjectID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("consumed key reused: %v", err)
	}
	if inv, _ := e.Inventory(ctx, "b1", "A"); len(inv) != 0 {
		t.Fatalf("inventory after consume = %+v", inv)
	}
	if _, err := e.MovePlayer(ctx, "b1", "A", "Crypt"); err != nil {
		t.Fatalf("crypt should be unlocked: %v", err)
	}

	m, _ := e.Map(ctx, "b1")
	chat, err := e.RoomChat(ctx, "b1", m.StartingRoomID, 10)
	if err != nil {
		t.Fatalf("room chat: %v", err)
	}
	if len(chat) != 1 || chat[0].Role != RoleSystem || chat[0].SenderID != AuthorWorld {
		t.Fatalf("use should be announced in the room: %+v", chat)
	}
}

func TestGrantObject_OwnerOnlyAndArtifactsPersist(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "b1", "0xowner")
	mustRegister(t, e, "b1", "A", "0xp", 3)

	lamp, err := e.CreateObject(ctx, "b1", "0xowner", ObjectDraft{Name: "Lamp"})
	if err != nil {
		t.Fatalf("create lamp: %v", err)
	}
	if lamp.Type != ObjectArtifact || lamp.LocationType != LocationRoom {
		t.Fatalf("defaults = %+v", lamp)
	}
	if _, err := e.GrantObject(ctx, "b1", "0xp", lamp.ObjectID, "A"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner grant: %v", err)
	}
	if _, err := e.GrantObject(ctx, "b1", "0xowner", lamp.ObjectID, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("grant to unknown agent: %v", err)
	}
	if _, err := e.GrantObject(ctx, "b1", "0xowner", lamp.ObjectID, "A"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := e.UseObject(ctx, "b1", "A", lamp.ObjectID); err != nil {
			t.Fatalf("artifact use %d: %v", i, err)
		}
	}
	if inv, _ := e.Inventory(ctx, "b1", "A"); len(inv) != 1 {
		t.Fatalf("artifact should stay in the inventory: %+v", inv)
	}
	if _, err := e.CreateObject(ctx, "b1", "0xowner", ObjectDraft{Name: "Orb", LocationType: LocationNPC, LocationID: "nobody"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown npc location: %v", err)
	}
}

func TestNPCs_PerRoomAndScene(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "b1", "0xowner")
	mustRegister(t, e, "b1", "A", "0xp", 3)

	if _, err := e.CreateNPC(ctx, "b1", "0xowner", NPCDraft{Name: "Mira", Room: "Nowhere"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("npc in unknown room: %v", err)
	}
	mira, err := e.CreateNPC(ctx, "b1", "0xowner", NPCDraft{Name: "Mira", Room: StartingRoomName, Personality: "wry"})
	if err != nil {
		t.Fatalf("create npc: %v", err)
	}
	if _, err := e.CreateObject(ctx, "b1", "0xowner", ObjectDraft{Name: "Map", LocationType: LocationNPC, LocationID: mira.NPCID}); err != nil {
		t.Fatalf("object for npc: %v", err)
	}
	npcs, err := e.RoomNPCs(ctx, "b1", mira.RoomID)
	if err != nil || len(npcs) != 1 || npcs[0].Name != "Mira" {
		t.Fatalf("room npcs = %+v, %v", npcs, err)
	}
	scene, err := e.NPCScene(ctx, "b1", "A", mira.NPCID)
	if err != nil {
		t.Fatalf("scene: %v", err)
	}
	if scene.Room.Name != StartingRoomName || len(scene.NPCItems) != 1 || len(scene.PlayerItems) != 0 {
		t.Fatalf("scene = %+v", scene)
	}
	if _, err := e.NPCScene(ctx, "b1", "A", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing npc: %v", err)
	}
}

func TestRoomChat_CappedOldestFirst(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "b1", "0xowner")
	a := mustRegister(t, e, "b1", "A", "0xp", 3)

	for i := 0; i < RoomChatCapacity+5; i++ {
		if _, err := e.Say(ctx, "b1", "A", RoleUser, fmt.Sprintf("line %d", i)); err != nil {
			t.Fatalf("say %d: %v", i, err)
		}
	}
	all, _ := e.RoomChat(ctx, "b1", a.CurrentRoom, RoomChatCapacity*2)
	if len(all) != RoomChatCapacity || all[0].Content != "line 5" {
		t.Fatalf("chat len %d first %q", len(all), all[0].Content)
	}
	tail, _ := e.RoomChat(ctx, "b1", a.CurrentRoom, 2)
	if len(tail) != 2 || tail[1].Content != fmt.Sprintf("line %d", RoomChatCapacity+4) {
		t.Fatalf("tail = %+v", tail)
	}
	if _, err := e.RoomChat(ctx, "b1", "nope", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown room chat: %v", err)
	}
}

func TestDecision_AppliesWorldChangesOnce(t *testing.T) {
	dec := deciderFunc(func(_ context.Context, in DecisionInput) (Decision, error) {
		return Decision{
			ExtensionAwarded: true,
			RechargeAmount:   1,
			WorldChanges: &WorldChanges{
				NewRooms:      []RoomDraft{{Name: "Grove", Connections: []string{StartingRoomName}}},
				RoomMovements: []RoomMovement{{AgentID: in.AgentID, Room: "Grove"}, {AgentID: "ghost", Room: "Grove"}},
				NewNPCs:       []NPCDraft{{Name: "Dryad", Room: "Grove"}},
				NewObjects:    []ObjectDraft{{Name: "Acorn", LocationType: LocationRoom, LocationID: "Grove"}},
				ObjectGrants:  []ObjectGrant{{Object: "acorn", AgentID: in.AgentID}},
			},
		}, nil
	})
	e, _ := newTestEngine(t, WithDecider(dec))
	ctx := context.Background()
	mustCreate(t, e, "b1", "0xowner")
	mustRegister(t, e, "b1", "A", "0xp", 3)
	mustTurn(t, e, "b1", "A", "we walk into the trees")
	if _, err := e.ProcessStack(ctx, "b1", "A"); err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, err := e.GMReact(ctx, "b1", "A", 0); err != nil {
		t.Fatalf("react: %v", err)
	}

	s, _ := e.State(ctx, "b1")
	if len(s.Rooms) != 2 || len(s.NPCs) != 1 {
		t.Fatalf("world applied more than once: rooms=%d npcs=%d", len(s.Rooms), len(s.NPCs))
	}
	if s.Agents[0].CurrentRoom != s.Rooms[1].RoomID {
		t.Fatalf("agent should be in the grove: %+v", s.Agents[0])
	}
	inv, _ := e.Inventory(ctx, "b1", "A")
	if len(inv) != 1 || inv[0].Name != "Acorn" {
		t.Fatalf("inventory = %+v", inv)
	}
}

func TestWorld_ConcurrentMovesAndGrants(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "b1", "0xowner")
	if _, err := e.CreateRoom(ctx, "b1", "0xowner", RoomDraft{Name: "Yard", Connections: []string{StartingRoomName}}); err != nil {
		t.Fatalf("create yard: %v", err)
	}
	const agents = 8
	for i := 0; i < agents; i++ {
		mustRegister(t, e, "b1", fmt.Sprintf("A%d", i), fmt.Sprintf("0x%d", i), 3)
	}
	coin, err := e.CreateObject(ctx, "b1", "0xowner", ObjectDraft{Name: "Coin"})
	if err != nil {
		t.Fatalf("create coin: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < agents; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				room := "Yard"
				if j%2 == 1 {
					room = StartingRoomName
				}
				if _, err := e.MovePlayer(ctx, "b1", id, room); err != nil {
					t.Errorf("move %s: %v", id, err)
					return
				}
				if _, err := e.GrantObject(ctx, "b1", "0xowner", coin.ObjectID, id); err != nil {
					t.Errorf("grant %s: %v", id, err)
					return
				}
				_, _ = e.Map(ctx, "b1")
			}
		}(fmt.Sprintf("A%d", i))
	}
	wg.Wait()

	holders := 0
	for i := 0; i < agents; i++ {
		inv, _ := e.Inventory(ctx, "b1", fmt.Sprintf("A%d", i))
		holders += len(inv)
	}
	if holders != 1 {
		t.Fatalf("coin held by %d agents", holders)
	}
	m, _ := e.Map(ctx, "b1")
	for _, p := range m.Players {
		if p.RoomID != m.StartingRoomID {
			t.Fatalf("every agent ends on an odd step in the hearth: %+v", p)
		}
	}
}
