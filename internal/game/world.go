package game

import (
	"fmt"
	"strings"
	"time"
)

const (
	StartingRoomName        = "The Hearth"
	startingRoomDescription = "A warm gathering place where all adventurers begin their journey."
	// RoomChatCapacity bounds the retained chat of one room.
	RoomChatCapacity = 200
	DefaultChatLimit = 50

	ObjectArtifact   = "artifact"
	ObjectConsumable = "consumable"

	PropUnlocksRoom   = "unlocks_room"
	PropRevealsEntity = "reveals_entity"
)

type LocationType string

const (
	LocationRoom   LocationType = "room"
	LocationPlayer LocationType = "player"
	LocationNPC    LocationType = "npc"
)

type Room struct {
	RoomID      string    `json:"room_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Connections []string  `json:"connections"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *Room) clone() Room {
	cp := *r
	cp.Connections = append([]string{}, r.Connections...)
	return cp
}

func (r *Room) connectedTo(id string) bool {
	for _, c := range r.Connections {
		if c == id {
			return true
		}
	}
	return false
}

type NPC struct {
	NPCID         string `json:"npc_id"`
	Name          string `json:"name"`
	RoomID        string `json:"room_id"`
	Personality   string `json:"personality"`
	Description   string `json:"description,omitempty"`
	DialogueStyle string `json:"dialogue_style,omitempty"`
	Active        bool   `json:"is_active"`
}

type Object struct {
	ObjectID     string            `json:"object_id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Type         string            `json:"obj_type"`
	Properties   map[string]string `json:"properties,omitempty"`
	LocationType LocationType      `json:"location_type"`
	LocationID   string            `json:"location_id"`
	Consumed     bool              `json:"is_consumed"`
}

func (o *Object) clone() Object {
	cp := *o
	if o.Properties != nil {
		cp.Properties = make(map[string]string, len(o.Properties))
		for k, v := range o.Properties {
			cp.Properties[k] = v
		}
	}
	return cp
}

func (o *Object) heldBy(agentID string) bool {
	return o.LocationType == LocationPlayer && o.LocationID == agentID
}

type RoomMessage struct {
	RoomID   string    `json:"room_id"`
	SenderID string    `json:"sender_id"`
	Role     string    `json:"role"`
	Content  string    `json:"content"`
	At       time.Time `json:"at"`
}

// RoomDraft describes a room to create. Connections name existing rooms by
// id or by name; unknown entries are dropped.
type RoomDraft struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Connections []string `json:"connections,omitempty"`
}

type NPCDraft struct {
	Name          string `json:"name"`
	Room          string `json:"room"`
	Personality   string `json:"personality,omitempty"`
	Description   string `json:"description,omitempty"`
	DialogueStyle string `json:"dialogue_style,omitempty"`
}

type ObjectDraft struct {
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Type         string            `json:"obj_type,omitempty"`
	Properties   map[string]string `json:"properties,omitempty"`
	LocationType LocationType      `json:"location_type,omitempty"`
	// LocationID is a room id or name, an agent id or an NPC id.
	LocationID string `json:"location_id,omitempty"`
}

// World is the spatial layer of one game: rooms, NPCs, objects and the
// per-room chat. It is guarded by the bonfire lock like the rest of Game.
type World struct {
	startID   string
	rooms     map[string]*Room
	roomOrder []string
	npcs      map[string]*NPC
	npcOrder  []string
	objects   map[string]*Object
	objOrder  []string
	chat      map[string][]RoomMessage
}

func newWorld() World {
	return World{
		rooms:   map[string]*Room{},
		npcs:    map[string]*NPC{},
		objects: map[string]*Object{},
		chat:    map[string][]RoomMessage{},
	}
}

func (w *World) StartingRoomID() string { return w.startID }

// ensureStart creates the starting room once and reports whether it did.
func (w *World) ensureStart(id string, now time.Time) (Room, bool) {
	if r, ok := w.rooms[w.startID]; ok {
		return r.clone(), false
	}
	r := &Room{RoomID: id, Name: StartingRoomName, Description: startingRoomDescription, Connections: []string{}, CreatedAt: now}
	w.putRoom(r)
	w.startID = id
	return r.clone(), true
}

func (w *World) putRoom(r *Room) {
	w.rooms[r.RoomID] = r
	w.roomOrder = append(w.roomOrder, r.RoomID)
}

// resolveRoom finds a room by id, then by case-insensitive name.
func (w *World) resolveRoom(ref string) (*Room, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}
	if r, ok := w.rooms[ref]; ok {
		return r, true
	}
	for _, id := range w.roomOrder {
		if r := w.rooms[id]; strings.EqualFold(r.Name, ref) {
			return r, true
		}
	}
	return nil, false
}

// addRoom links the new room both ways with every resolvable connection.
func (w *World) addRoom(id string, d RoomDraft, now time.Time) (Room, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Room{}, invalid("room name is required")
	}
	if _, dup := w.resolveRoom(name); dup {
		return Room{}, fmt.Errorf("room %q: %w", name, ErrConflict)
	}
	r := &Room{RoomID: id, Name: name, Description: strings.TrimSpace(d.Description), Connections: []string{}, CreatedAt: now}
	for _, ref := range d.Connections {
		other, ok := w.resolveRoom(ref)
		if !ok || r.connectedTo(other.RoomID) {
			continue
		}
		r.Connections = append(r.Connections, other.RoomID)
		if !other.connectedTo(id) {
			other.Connections = append(other.Connections, id)
		}
	}
	w.putRoom(r)
	return r.clone(), nil
}

func (w *World) addNPC(id string, d NPCDraft) (NPC, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return NPC{}, invalid("npc name is required")
	}
	room, ok := w.resolveRoom(d.Room)
	if !ok {
		return NPC{}, notFound("room", d.Room)
	}
	n := &NPC{
		NPCID:         id,
		Name:          name,
		RoomID:        room.RoomID,
		Personality:   strings.TrimSpace(d.Personality),
		Description:   strings.TrimSpace(d.Description),
		DialogueStyle: strings.TrimSpace(d.DialogueStyle),
		Active:        true,
	}
	w.npcs[id] = n
	w.npcOrder = append(w.npcOrder, id)
	return *n, nil
}

func (w *World) npc(id string) (*NPC, bool) {
	n, ok := w.npcs[id]
	return n, ok
}

// addObject validates the location against g: players must be agents of the
// game, NPCs and rooms must exist. An empty location puts the object in the
// starting room.
func (w *World) addObject(g *Game, id string, d ObjectDraft) (Object, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Object{}, invalid("object name is required")
	}
	o := &Object{
		ObjectID:    id,
		Name:        name,
		Description: strings.TrimSpace(d.Description),
		Type:        strings.ToLower(strings.TrimSpace(d.Type)),
	}
	if o.Type == "" {
		o.Type = ObjectArtifact
	}
	if len(d.Properties) > 0 {
		o.Properties = make(map[string]string, len(d.Properties))
		for k, v := range d.Properties {
			o.Properties[k] = v
		}
	}
	loc, err := w.locate(g, d.LocationType, d.LocationID)
	if err != nil {
		return Object{}, err
	}
	o.LocationType, o.LocationID = loc.typ, loc.id
	w.objects[id] = o
	w.objOrder = append(w.objOrder, id)
	return o.clone(), nil
}

type location struct {
	typ LocationType
	id  string
}

func (w *World) locate(g *Game, typ LocationType, ref string) (location, error) {
	ref = strings.TrimSpace(ref)
	switch typ {
	case "", LocationRoom:
		if ref == "" {
			ref = w.startID
		}
		r, ok := w.resolveRoom(ref)
		if !ok {
			return location{}, notFound("room", ref)
		}
		return location{LocationRoom, r.RoomID}, nil
	case LocationPlayer:
		if _, ok := g.agent(ref); !ok {
			return location{}, notFound("agent", ref)
		}
		return location{LocationPlayer, ref}, nil
	case LocationNPC:
		if _, ok := w.npcs[ref]; !ok {
			return location{}, notFound("npc", ref)
		}
		return location{LocationNPC, ref}, nil
	default:
		return location{}, invalid("unknown location type %q", typ)
	}
}

// grant moves an unconsumed object into an agent's inventory.
func (w *World) grant(g *Game, objectID, agentID string) (Object, error) {
	o, ok := w.objects[objectID]
	if !ok {
		return Object{}, notFound("object", objectID)
	}
	if o.Consumed {
		return Object{}, invalid("object %q is consumed", objectID)
	}
	if _, ok := g.agent(agentID); !ok {
		return Object{}, notFound("agent", agentID)
	}
	o.LocationType, o.LocationID = LocationPlayer, agentID
	return o.clone(), nil
}

func (w *World) objectIDByName(name string) string {
	for _, id := range w.objOrder {
		if strings.EqualFold(w.objects[id].Name, strings.TrimSpace(name)) {
			return id
		}
	}
	return name
}

func (w *World) objectsWhere(keep func(*Object) bool) []Object {
	out := []Object{}
	for _, id := range w.objOrder {
		if o := w.objects[id]; keep(o) {
			out = append(out, o.clone())
		}
	}
	return out
}

// inventory lists the unconsumed objects an agent holds.
func (w *World) inventory(agentID string) []Object {
	return w.objectsWhere(func(o *Object) bool { return !o.Consumed && o.heldBy(agentID) })
}

func (w *World) npcsIn(roomID string) []NPC {
	out := []NPC{}
	for _, id := range w.npcOrder {
		if n := w.npcs[id]; n.Active && n.RoomID == roomID {
			out = append(out, *n)
		}
	}
	return out
}

func (w *World) appendChat(m RoomMessage) {
	log := append(w.chat[m.RoomID], m)
	if over := len(log) - RoomChatCapacity; over > 0 {
		log = append([]RoomMessage(nil), log[over:]...)
	}
	w.chat[m.RoomID] = log
}

// chatTail returns up to limit messages of a room, oldest first.
func (w *World) chatTail(roomID string, limit int) []RoomMessage {
	log := w.chat[roomID]
	if limit <= 0 || limit > len(log) {
		limit = len(log)
	}
	return append([]RoomMessage{}, log[len(log)-limit:]...)
}

func (w *World) roomList() []Room {
	out := make([]Room, 0, len(w.roomOrder))
	for _, id := range w.roomOrder {
		out = append(out, w.rooms[id].clone())
	}
	return out
}

func (w *World) npcList() []NPC {
	out := make([]NPC, 0, len(w.npcOrder))
	for _, id := range w.npcOrder {
		out = append(out, *w.npcs[id])
	}
	return out
}

type PlayerPosition struct {
	AgentID     string `json:"agent_id"`
	OwnerWallet string `json:"owner_wallet"`
	RoomID      string `json:"room_id"`
}

// RoomMap is the whole spatial view of a game.
type RoomMap struct {
	StartingRoomID string              `json:"starting_room_id"`
	Rooms          []Room              `json:"rooms"`
	Players        []PlayerPosition    `json:"players"`
	NPCsByRoom     map[string][]NPC    `json:"npcs_by_room"`
	ObjectsByRoom  map[string][]Object `json:"objects_by_room"`
}

func (g *Game) roomMap() RoomMap {
	w := &g.World
	m := RoomMap{
		StartingRoomID: w.startID,
		Rooms:          w.roomList(),
		Players:        make([]PlayerPosition, 0, len(g.agentOrder)),
		NPCsByRoom:     map[string][]NPC{},
		ObjectsByRoom:  map[string][]Object{},
	}
	for _, id := range g.agentOrder {
		a := g.agents[id]
		m.Players = append(m.Players, PlayerPosition{AgentID: a.AgentID, OwnerWallet: a.OwnerWallet, RoomID: a.CurrentRoom})
	}
	for _, id := range w.roomOrder {
		m.NPCsByRoom[id] = w.npcsIn(id)
		m.ObjectsByRoom[id] = w.objectsWhere(func(o *Object) bool {
			return !o.Consumed && o.LocationType == LocationRoom && o.LocationID == id
		})
	}
	return m
}
