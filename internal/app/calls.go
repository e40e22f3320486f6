package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/realtime-gateway/internal/core"
)

// CallRooms tracks mesh call participants per room in join order, so a
// newcomer can be handed the list of peers already present.
//
// Membership is intentionally not pruned on disconnect: unreachable
// peers are skipped at relay time and the pairwise WebRTC legs time out
// on their own. Matching the web client requires keeping that behavior.
type CallRooms struct {
	mu    sync.Mutex
	rooms map[string][]core.ConnID
}

func NewCallRooms() *CallRooms {
	return &CallRooms{rooms: make(map[string][]core.ConnID)}
}

// Join adds id to the call room and returns the peers that were already
// present, in join order. Rejoining returns the same peer list without
// duplicating the entry.
func (cr *CallRooms) Join(room string, id core.ConnID) []core.ConnID {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	members := cr.rooms[room]
	others := make([]core.ConnID, 0, len(members))
	present := false
	for _, m := range members {
		if m == id {
			present = true
			continue
		}
		others = append(others, m)
	}
	if !present {
		cr.rooms[room] = append(members, id)
	}
	log.Info().Str("module", "app.calls").Str("room", room).Str("conn", string(id)).Int("peers", len(others)).Msg("call join")
	return others
}

// Members returns the current participant list in join order.
func (cr *CallRooms) Members(room string) []core.ConnID {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	members := cr.rooms[room]
	out := make([]core.ConnID, len(members))
	copy(out, members)
	return out
}

func (cr *CallRooms) Contains(room string, id core.ConnID) bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	for _, m := range cr.rooms[room] {
		if m == id {
			return true
		}
	}
	return false
}
