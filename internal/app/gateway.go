package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/realtime-gateway/internal/core"
	"github.com/taskhive/realtime-gateway/internal/domain"
)

// Gateway wires presence, room fanout and call tracking together and
// keeps the index of all live connections. One instance per process;
// constructed in main and handed to the adapters.
type Gateway struct {
	Presence *Presence
	Rooms    *Rooms
	Calls    *CallRooms

	mu    sync.RWMutex
	conns map[core.ConnID]core.Conn
}

func NewGateway() *Gateway {
	return &Gateway{
		Presence: NewPresence(),
		Rooms:    NewRooms(),
		Calls:    NewCallRooms(),
		conns:    make(map[core.ConnID]core.Conn),
	}
}

// Connect indexes a freshly upgraded connection. Presence registration
// happens later, when the client sends its identity during setup.
func (g *Gateway) Connect(c core.Conn) {
	g.mu.Lock()
	g.conns[c.ID()] = c
	total := len(g.conns)
	g.mu.Unlock()
	log.Info().Str("module", "app.gateway").Str("conn", string(c.ID())).Int("total", total).Msg("connected")
}

// Setup binds the connection to a user identity: the connection joins
// the user's direct-message room and, if this is the user's first live
// connection, everyone is told the user came online. A connection that
// re-identifies as a different user is moved: the previous identity is
// unregistered first, with its offline broadcast if this was the last
// connection, so no user is left online with zero live connections.
func (g *Gateway) Setup(user domain.UserID, c core.Conn) {
	if prev, ok := g.Presence.Owner(c.ID()); ok && prev != user {
		g.Rooms.Leave(prev.Room(), c.ID())
		for _, u := range g.Presence.Unregister(c.ID()) {
			g.BroadcastAll(domain.EvtUserStatus, domain.UserStatus{UserID: u, Status: domain.StatusOffline}, "")
		}
	}
	wentOnline := g.Presence.Register(user, c)
	g.Rooms.Join(user.Room(), c)
	if wentOnline {
		g.BroadcastAll(domain.EvtUserStatus, domain.UserStatus{UserID: user, Status: domain.StatusOnline}, "")
	}
}

// Disconnect tears down everything the gateway owns for the connection:
// room memberships and the presence entry. Call-room membership is left
// alone (see CallRooms). If the owner's last connection just went away,
// everyone is told the user went offline.
func (g *Gateway) Disconnect(c core.Conn) {
	id := c.ID()
	g.mu.Lock()
	delete(g.conns, id)
	g.mu.Unlock()

	g.Rooms.LeaveAll(id)
	for _, user := range g.Presence.Unregister(id) {
		g.BroadcastAll(domain.EvtUserStatus, domain.UserStatus{UserID: user, Status: domain.StatusOffline}, "")
	}
	log.Info().Str("module", "app.gateway").Str("conn", string(id)).Msg("disconnected")
}

// Conn looks up a live connection by id.
func (g *Gateway) Conn(id core.ConnID) (core.Conn, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.conns[id]
	return c, ok
}

// EmitTo unicasts event to the named connection. Unknown targets are
// silently dropped.
func (g *Gateway) EmitTo(id core.ConnID, event string, payload any) bool {
	c, ok := g.Conn(id)
	if !ok {
		log.Debug().Str("module", "app.gateway").Str("conn", string(id)).Str("event", event).Msg("unicast target gone")
		return false
	}
	core.Emit(c, event, payload)
	return true
}

// BroadcastAll fans event out to every live connection, optionally
// excluding one.
func (g *Gateway) BroadcastAll(event string, payload any, exclude core.ConnID) {
	frame, err := core.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("event", event).Msg("broadcast encode")
		return
	}
	g.mu.RLock()
	targets := make([]core.Conn, 0, len(g.conns))
	for _, c := range g.conns {
		if exclude != "" && c.ID() == exclude {
			continue
		}
		targets = append(targets, c)
	}
	g.mu.RUnlock()
	for _, c := range targets {
		_ = c.TrySend(frame)
	}
}

// NotifyProject delivers a mutation event to a project's room, including
// every member. Used by the ingestion side for REST-originated events.
func (g *Gateway) NotifyProject(projectID, event string, payload any) {
	g.Rooms.Broadcast(projectID, event, payload, "")
}

// NotifyUsers delivers an event to each listed user's personal
// `user_<id>` channel.
func (g *Gateway) NotifyUsers(users []domain.UserID, event string, payload any) {
	for _, u := range users {
		g.Rooms.Broadcast(u.PersonalRoom(), event, payload, "")
	}
}

// NotifyUser delivers an event to one user's direct-message room, i.e.
// every live session of that user.
func (g *Gateway) NotifyUser(user domain.UserID, event string, payload any) {
	g.Rooms.Broadcast(user.Room(), event, payload, "")
}
