package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/realtime-gateway/internal/core"
	"github.com/taskhive/realtime-gateway/internal/domain"
)

func (ctl *Controller) handleJoinChat(c core.Conn, data json.RawMessage) {
	room, ok := decodeString(data)
	if !ok {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("bad join_chat payload")
		return
	}
	ctl.GW.Rooms.Join(room, c)
}

func (ctl *Controller) handleJoinProject(c core.Conn, data json.RawMessage) {
	project, ok := decodeString(data)
	if !ok {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("bad join_project payload")
		return
	}
	ctl.GW.Rooms.Join(project, c)
}

func (ctl *Controller) handleLeaveProject(c core.Conn, data json.RawMessage) {
	project, ok := decodeString(data)
	if !ok {
		return
	}
	ctl.GW.Rooms.Leave(project, c.ID())
}

// handleJoinUser subscribes the connection to the `user_<id>` channel.
// That channel is distinct from the plain user-id room created during
// setup; chat and notification fanout targets it.
func (ctl *Controller) handleJoinUser(c core.Conn, data json.RawMessage) {
	uid, ok := decodeString(data)
	if !ok {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("bad join_user payload")
		return
	}
	ctl.GW.Rooms.Join(domain.UserID(uid).PersonalRoom(), c)
}

// Typing indicators are relayed to everyone else in the chat room; the
// payload echoed back is the room key itself.
func (ctl *Controller) handleTyping(c core.Conn, data json.RawMessage) {
	ctl.relayTyping(c, data, domain.EvtTyping)
}

func (ctl *Controller) handleStopTyping(c core.Conn, data json.RawMessage) {
	ctl.relayTyping(c, data, domain.EvtStopTyping)
}

func (ctl *Controller) relayTyping(c core.Conn, data json.RawMessage, event string) {
	room, ok := decodeString(data)
	if !ok {
		return
	}
	ctl.GW.Rooms.Broadcast(room, event, room, c.ID())
}
