package app

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/realtime-gateway/internal/core"
)

// Rooms is the fanout router: named channels holding sets of connections.
// Rooms come into being on first join and are dropped when the last
// member leaves, so the map never accumulates empty entries.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]map[core.ConnID]core.Conn
}

type RoomInfo struct {
	Name        string `json:"name"`
	MemberCount int    `json:"client_count"`
}

func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[string]map[core.ConnID]core.Conn)}
}

// Join adds c to room, creating the room if needed. Joining twice is a
// no-op.
func (r *Rooms) Join(room string, c core.Conn) {
	if room == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.rooms[room]
	if !ok {
		set = make(map[core.ConnID]core.Conn)
		r.rooms[room] = set
	}
	set[c.ID()] = c
	log.Debug().Str("module", "app.rooms").Str("room", room).Str("conn", string(c.ID())).Msg("joined")
}

func (r *Rooms) Leave(room string, id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(room, id)
}

// LeaveAll removes the connection from every room it is a member of.
// Called on disconnect.
func (r *Rooms) LeaveAll(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room, set := range r.rooms {
		if _, ok := set[id]; ok {
			r.leaveLocked(room, id)
		}
	}
}

func (r *Rooms) leaveLocked(room string, id core.ConnID) {
	set, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(r.rooms, room)
	}
}

// Broadcast delivers payload under event to every member of room except
// exclude. Pass an empty ConnID to include all members. Delivery is
// best-effort, at-most-once; slow connections just miss the event.
// Returns the number of successful sends.
func (r *Rooms) Broadcast(room, event string, payload any, exclude core.ConnID) int {
	targets := r.Members(room)
	if len(targets) == 0 {
		return 0
	}
	frame, err := core.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.rooms").Str("event", event).Msg("broadcast encode")
		return 0
	}
	sent := 0
	for _, c := range targets {
		if exclude != "" && c.ID() == exclude {
			continue
		}
		if err := c.TrySend(frame); err == nil {
			sent++
		}
	}
	log.Debug().Str("module", "app.rooms").Str("room", room).Str("event", event).Int("sent", sent).Msg("broadcast")
	return sent
}

// Members returns a snapshot of the room's connections.
func (r *Rooms) Members(room string) []core.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.rooms[room]
	if !ok {
		return nil
	}
	out := make([]core.Conn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

func (r *Rooms) Contains(room string, id core.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room][id]
	return ok
}

func (r *Rooms) Count(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

func (r *Rooms) List() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for name, set := range r.rooms {
		out = append(out, RoomInfo{Name: name, MemberCount: len(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
