package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cuihairu/bonfire/internal/game"
)

const (
	outBuffer    = 64
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
	pingEvery    = 25 * time.Second
)

type subscriber struct {
	bonfireID string
	// roomID, when set, limits delivery to events that touch that room.
	roomID string
	out    chan []byte
}

func (s *subscriber) wants(ev game.Event) bool {
	if s.roomID == "" {
		return true
	}
	for _, k := range []string{"room_id", "from_room_id"} {
		if v, _ := ev.Payload[k].(string); v == s.roomID {
			return true
		}
	}
	return false
}

// Hub fans committed game events out to websocket subscribers of a bonfire.
// Slow subscribers lose events rather than stall the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}

	upgrader websocket.Upgrader
	dropped  atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{
		subs: map[string]map[*subscriber]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Publish implements game.Sink.
func (h *Hub) Publish(_ context.Context, events []game.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ev := range events {
		set := h.subs[ev.BonfireID]
		if len(set) == 0 {
			continue
		}
		b, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		for s := range set {
			if !s.wants(ev) {
				continue
			}
			select {
			case s.out <- b:
			default:
				h.dropped.Add(1)
			}
		}
	}
}

// Subscribers returns the number of live subscribers for bonfireID.
func (h *Hub) Subscribers(bonfireID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[bonfireID])
}

// Dropped returns how many event deliveries were skipped for full buffers.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

func (h *Hub) subscribe(bonfireID, roomID string) *subscriber {
	s := &subscriber{bonfireID: bonfireID, roomID: roomID, out: make(chan []byte, outBuffer)}
	h.mu.Lock()
	set := h.subs[bonfireID]
	if set == nil {
		set = map[*subscriber]struct{}{}
		h.subs[bonfireID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	if set := h.subs[s.bonfireID]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.bonfireID)
		}
	}
	h.mu.Unlock()
}

// ServeHTTP upgrades GET /game/feed/ws?bonfire_id=...[&room_id=...] and
// streams that bonfire's events as JSON text frames until the client goes
// away. With room_id only events that name the room, as their room or as
// the room a player left, are sent.
func (h *Hub) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	bonfireID := strings.TrimSpace(r.URL.Query().Get("bonfire_id"))
	if bonfireID == "" {
		http.Error(rw, `{"message":"bonfire_id is required"}`, http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	roomID := strings.TrimSpace(r.URL.Query().Get("room_id"))
	s := h.subscribe(bonfireID, roomID)
	defer h.unsubscribe(s)
	slog.Debug("feed ws subscribed", "bonfire_id", bonfireID, "room_id", roomID, "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer goroutine.
	writeErr := make(chan error, 1)
	go func() {
		ping := time.NewTicker(pingEvery)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				writeErr <- ctx.Err()
				return
			case b := <-s.out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					return
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	// Reader loop only watches for close; client frames are ignored.
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
}

var _ game.Sink = (*Hub)(nil)
