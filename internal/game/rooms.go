package game

import (
	"context"
	"fmt"
	"strings"
)

// WorldChanges is the spatial part of a game master decision.
type WorldChanges struct {
	NewRooms      []RoomDraft    `json:"new_rooms,omitempty"`
	RoomMovements []RoomMovement `json:"room_movements,omitempty"`
	NewNPCs       []NPCDraft     `json:"new_npcs,omitempty"`
	NewObjects    []ObjectDraft  `json:"new_objects,omitempty"`
	ObjectGrants  []ObjectGrant  `json:"object_grants,omitempty"`
}

func (c WorldChanges) Empty() bool {
	return len(c.NewRooms)+len(c.RoomMovements)+len(c.NewNPCs)+len(c.NewObjects)+len(c.ObjectGrants) == 0
}

type RoomMovement struct {
	AgentID string `json:"agent_id"`
	// Room is a room id or name.
	Room string `json:"room"`
}

type ObjectGrant struct {
	// Object is an object id or name.
	Object  string `json:"object"`
	AgentID string `json:"agent_id"`
}

// InitMap creates the starting room if the game has none and places every
// agent without a room there.
func (e *Engine) InitMap(ctx context.Context, bonfireID string) (RoomMap, error) {
	var m RoomMap
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		start, created := g.World.ensureStart(e.newID(), e.now())
		if created {
			e.emit(sl, g, EventRoomCreated, map[string]any{"room_id": start.RoomID, "name": start.Name})
		}
		for _, id := range g.agentOrder {
			if a := g.agents[id]; a.CurrentRoom == "" {
				e.move(sl, g, a, start.RoomID)
			}
		}
		m = g.roomMap()
		return nil
	})
	return m, err
}

func (e *Engine) Map(ctx context.Context, bonfireID string) (RoomMap, error) {
	var m RoomMap
	err := e.withActive(ctx, bonfireID, func(_ *slot, g *Game) error {
		m = g.roomMap()
		return nil
	})
	return m, err
}

// CreateRoom lets the owner add a room linked to the named rooms.
func (e *Engine) CreateRoom(ctx context.Context, bonfireID, wallet string, d RoomDraft) (Room, error) {
	var r Room
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		if !g.isOwner(wallet) {
			return fmt.Errorf("%w: wallet is not the game owner", ErrForbidden)
		}
		var err error
		r, err = e.addRoom(sl, g, d, "owner")
		return err
	})
	return r, err
}

func (e *Engine) addRoom(sl *slot, g *Game, d RoomDraft, source string) (Room, error) {
	r, err := g.World.addRoom(e.newID(), d, e.now())
	if err != nil {
		return Room{}, err
	}
	e.emit(sl, g, EventRoomCreated, map[string]any{"room_id": r.RoomID, "name": r.Name, "connections": r.Connections, "source": source})
	return r, nil
}

// MovePlayer moves an agent to a room connected to its current one. An agent
// that has no room yet may enter any room.
func (e *Engine) MovePlayer(ctx context.Context, bonfireID, agentID, room string) (Room, error) {
	var out Room
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		a, ok := g.agent(agentID)
		if !ok {
			return notFound("agent", agentID)
		}
		to, ok := g.World.resolveRoom(room)
		if !ok {
			return notFound("room", room)
		}
		if from, ok := g.World.rooms[a.CurrentRoom]; ok && from.RoomID != to.RoomID && !from.connectedTo(to.RoomID) {
			return invalid("room %q is not reachable from %q", to.Name, from.Name)
		}
		e.move(sl, g, a, to.RoomID)
		out = to.clone()
		return nil
	})
	return out, err
}

func (e *Engine) move(sl *slot, g *Game, a *AgentState, roomID string) {
	if a.CurrentRoom == roomID {
		return
	}
	from := a.CurrentRoom
	a.CurrentRoom = roomID
	e.emit(sl, g, EventPlayerMoved, map[string]any{"agent_id": a.AgentID, "from_room_id": from, "room_id": roomID})
}

// RoomChat returns the newest limit messages of a room, oldest first.
func (e *Engine) RoomChat(ctx context.Context, bonfireID, roomID string, limit int) ([]RoomMessage, error) {
	if limit <= 0 {
		limit = DefaultChatLimit
	}
	var out []RoomMessage
	err := e.withActive(ctx, bonfireID, func(_ *slot, g *Game) error {
		r, ok := g.World.resolveRoom(roomID)
		if !ok {
			return notFound("room", roomID)
		}
		out = g.World.chatTail(r.RoomID, limit)
		return nil
	})
	return out, err
}

// Say records a message in the agent's current room. Agents without a room
// are silently skipped and the returned message is zero.
func (e *Engine) Say(ctx context.Context, bonfireID, agentID, role, content string) (RoomMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return RoomMessage{}, invalid("message is required")
	}
	var m RoomMessage
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		a, ok := g.agent(agentID)
		if !ok {
			return notFound("agent", agentID)
		}
		if a.CurrentRoom == "" {
			return nil
		}
		m = e.say(sl, g, a.CurrentRoom, a.AgentID, role, content)
		return nil
	})
	return m, err
}

// NPCSay records an NPC line in the room the NPC stands in.
func (e *Engine) NPCSay(ctx context.Context, bonfireID, npcID, content string) (RoomMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return RoomMessage{}, invalid("message is required")
	}
	var m RoomMessage
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		n, ok := g.World.npc(npcID)
		if !ok {
			return notFound("npc", npcID)
		}
		m = e.say(sl, g, n.RoomID, n.NPCID, RoleAssistant, content)
		return nil
	})
	return m, err
}

func (e *Engine) say(sl *slot, g *Game, roomID, sender, role, content string) RoomMessage {
	m := RoomMessage{RoomID: roomID, SenderID: sender, Role: role, Content: content, At: e.now()}
	g.World.appendChat(m)
	e.emit(sl, g, EventRoomMessage, map[string]any{"room_id": roomID, "sender_id": sender, "role": role, "content": content})
	return m
}

func (e *Engine) RoomNPCs(ctx context.Context, bonfireID, roomID string) ([]NPC, error) {
	var out []NPC
	err := e.withActive(ctx, bonfireID, func(_ *slot, g *Game) error {
		r, ok := g.World.resolveRoom(roomID)
		if !ok {
			return notFound("room", roomID)
		}
		out = g.World.npcsIn(r.RoomID)
		return nil
	})
	return out, err
}

func (e *Engine) CreateNPC(ctx context.Context, bonfireID, wallet string, d NPCDraft) (NPC, error) {
	var n NPC
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		if !g.isOwner(wallet) {
			return fmt.Errorf("%w: wallet is not the game owner", ErrForbidden)
		}
		var err error
		n, err = e.addNPC(sl, g, d, "owner")
		return err
	})
	return n, err
}

func (e *Engine) addNPC(sl *slot, g *Game, d NPCDraft, source string) (NPC, error) {
	n, err := g.World.addNPC(e.newID(), d)
	if err != nil {
		return NPC{}, err
	}
	e.emit(sl, g, EventNPCCreated, map[string]any{"npc_id": n.NPCID, "name": n.Name, "room_id": n.RoomID, "source": source})
	return n, nil
}

// CreateObject places a new object in a room, an agent's inventory or an
// NPC's hands.
func (e *Engine) CreateObject(ctx context.Context, bonfireID, wallet string, d ObjectDraft) (Object, error) {
	var o Object
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		if !g.isOwner(wallet) {
			return fmt.Errorf("%w: wallet is not the game owner", ErrForbidden)
		}
		var err error
		o, err = e.addObject(sl, g, d, "owner")
		return err
	})
	return o, err
}

func (e *Engine) addObject(sl *slot, g *Game, d ObjectDraft, source string) (Object, error) {
	o, err := g.World.addObject(g, e.newID(), d)
	if err != nil {
		return Object{}, err
	}
	payload := map[string]any{
		"object_id":     o.ObjectID,
		"name":          o.Name,
		"location_type": string(o.LocationType),
		"location_id":   o.LocationID,
		"source":        source,
	}
	if o.LocationType == LocationRoom {
		payload["room_id"] = o.LocationID
	}
	e.emit(sl, g, EventObjectCreated, payload)
	return o, nil
}

// GrantObject moves an object into an agent's inventory on behalf of the
// owner.
func (e *Engine) GrantObject(ctx context.Context, bonfireID, wallet, objectID, agentID string) (Object, error) {
	var o Object
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		if !g.isOwner(wallet) {
			return fmt.Errorf("%w: wallet is not the game owner", ErrForbidden)
		}
		var err error
		o, err = e.grant(sl, g, objectID, agentID)
		return err
	})
	return o, err
}

func (e *Engine) grant(sl *slot, g *Game, objectID, agentID string) (Object, error) {
	o, err := g.World.grant(g, objectID, agentID)
	if err != nil {
		return Object{}, err
	}
	e.emit(sl, g, EventObjectGranted, map[string]any{"object_id": o.ObjectID, "agent_id": agentID})
	return o, nil
}

func (e *Engine) Inventory(ctx context.Context, bonfireID, agentID string) ([]Object, error) {
	var out []Object
	err := e.withActive(ctx, bonfireID, func(_ *slot, g *Game) error {
		if _, ok := g.agent(agentID); !ok {
			return notFound("agent", agentID)
		}
		out = g.World.inventory(agentID)
		return nil
	})
	return out, err
}

type UseResult struct {
	Object  Object   `json:"object"`
	Effects []string `json:"effects"`
}

// UseObject applies the properties of an object the agent holds. An
// unlocks_room property opens a passage from the agent's current room, a
// consumable is used up. The outcome is announced in the agent's room.
func (e *Engine) UseObject(ctx context.Context, bonfireID, agentID, objectID string) (UseResult, error) {
	var res UseResult
	err := e.withActive(ctx, bonfireID, func(sl *slot, g *Game) error {
		a, ok := g.agent(agentID)
		if !ok {
			return notFound("agent", agentID)
		}
		o, ok := g.World.objects[objectID]
		if !ok || o.Consumed {
			return notFound("object", objectID)
		}
		if !o.heldBy(a.AgentID) {
			return invalid("object %q is not in the inventory of %q", objectID, agentID)
		}
		effects := []string{}
		if ref := o.Properties[PropUnlocksRoom]; ref != "" {
			cur, hasRoom := g.World.rooms[a.CurrentRoom]
			target, found := g.World.resolveRoom(ref)
			if hasRoom && found && target.RoomID != cur.RoomID && !cur.connectedTo(target.RoomID) {
				cur.Connections = append(cur.Connections, target.RoomID)
				effects = append(effects, "Unlocked passage to "+target.Name)
			}
		}
		if ref := o.Properties[PropRevealsEntity]; ref != "" {
			effects = append(effects, "Revealed entity "+ref)
		}
		if o.Type == ObjectConsumable {
			o.Consumed = true
			effects = append(effects, "Item consumed")
		}
		e.emit(sl, g, EventObjectUsed, map[string]any{
			"object_id": o.ObjectID,
			"agent_id":  a.AgentID,
			"room_id":   a.CurrentRoom,
			"effects":   effects,
		})
		if a.CurrentRoom != "" {
			text := a.AgentID + " used " + o.Name
			if len(effects) > 0 {
				text += ": " + strings.Join(effects, ", ")
			}
			e.say(sl, g, a.CurrentRoom, AuthorWorld, RoleSystem, text)
		}
		res = UseResult{Object: o.clone(), Effects: effects}
		return nil
	})
	return res, err
}

// NPCScene is what an NPC conversation needs to stay in character.
type NPCScene struct {
	NPC         NPC      `json:"npc"`
	Room        Room     `json:"room"`
	NPCItems    []Object `json:"npc_items"`
	PlayerItems []Object `json:"player_items"`
	WorldState  string   `json:"world_state"`
}

func (e *Engine) NPCScene(ctx context.Context, bonfireID, agentID, npcID string) (NPCScene, error) {
	var s NPCScene
	err := e.withActive(ctx, bonfireID, func(_ *slot, g *Game) error {
		if _, ok := g.agent(agentID); !ok {
			return notFound("agent", agentID)
		}
		n, ok := g.World.npc(npcID)
		if !ok || !n.Active {
			return notFound("npc", npcID)
		}
		s = NPCScene{
			NPC:         *n,
			NPCItems:    g.World.objectsWhere(func(o *Object) bool { return !o.Consumed && o.LocationType == LocationNPC && o.LocationID == n.NPCID }),
			PlayerItems: g.World.inventory(agentID),
			WorldState:  g.WorldState,
		}
		if r, ok := g.World.rooms[n.RoomID]; ok {
			s.Room = r.clone()
		}
		return nil
	})
	return s, err
}

// applyWorldChanges runs under the bonfire lock. Rooms are created first so
// that later entries may refer to them by name.
func (e *Engine) applyWorldChanges(sl *slot, g *Game, c WorldChanges) {
	skip := func(kind string, err error) {
		e.log.Debug("world change skipped", "bonfire_id", g.BonfireID, "kind", kind, "err", err)
	}
	for _, d := range c.NewRooms {
		if _, err := e.addRoom(sl, g, d, "gm"); err != nil {
			skip("room", err)
		}
	}
	for _, mv := range c.RoomMovements {
		a, ok := g.agent(mv.AgentID)
		if !ok {
			skip("movement", notFound("agent", mv.AgentID))
			continue
		}
		r, ok := g.World.resolveRoom(mv.Room)
		if !ok {
			skip("movement", notFound("room", mv.Room))
			continue
		}
		e.move(sl, g, a, r.RoomID)
	}
	for _, d := range c.NewNPCs {
		if _, err := e.addNPC(sl, g, d, "gm"); err != nil {
			skip("npc", err)
		}
	}
	for _, d := range c.NewObjects {
		if _, err := e.addObject(sl, g, d, "gm"); err != nil {
			skip("object", err)
		}
	}
	for _, gr := range c.ObjectGrants {
		id := gr.Object
		if _, ok := g.World.objects[id]; !ok {
			id = g.World.objectIDByName(gr.Object)
		}
		if _, err := e.grant(sl, g, id, gr.AgentID); err != nil {
			skip("grant", err)
		}
	}
}
