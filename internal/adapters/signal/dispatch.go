package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/realtime-gateway/internal/core"
	"github.com/taskhive/realtime-gateway/internal/domain"
)

type handlerFunc func(ctl *Controller, c core.Conn, data json.RawMessage)

// handlers is the dispatch table: one entry per inbound wire event.
var handlers = map[string]handlerFunc{
	domain.EvtSetup:              (*Controller).handleSetup,
	domain.EvtRequestOnlineUsers: (*Controller).handleRequestOnlineUsers,
	domain.EvtJoinChat:           (*Controller).handleJoinChat,
	domain.EvtJoinProject:        (*Controller).handleJoinProject,
	domain.EvtLeaveProject:       (*Controller).handleLeaveProject,
	domain.EvtJoinUser:           (*Controller).handleJoinUser,
	domain.EvtTyping:             (*Controller).handleTyping,
	domain.EvtStopTyping:         (*Controller).handleStopTyping,
	domain.EvtNewMessage:         (*Controller).handleNewMessage,
	domain.EvtTaskAction:         (*Controller).handleTaskAction,
	domain.EvtJoinRoom:           (*Controller).handleJoinRoom,
	domain.EvtSendingSignal:      (*Controller).handleSendingSignal,
	domain.EvtReturningSignal:    (*Controller).handleReturningSignal,
	domain.EvtRingRoom:           (*Controller).handleRingRoom,
	domain.EvtEndCall:            (*Controller).handleEndCall,
	domain.EvtCallUser:           (*Controller).handleCallUser,
	domain.EvtAnswerCall:         (*Controller).handleAnswerCall,
	domain.EvtSendSignal:         (*Controller).handleSendSignal,
}

// dispatch decodes the envelope and routes the event. A panic in one
// handler is contained here so a single bad event cannot take down
// every user's session.
func (ctl *Controller) dispatch(c core.Conn, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Str("module", "signal").Str("conn", string(c.ID())).Msg("handler panic recovered")
		}
	}()

	var env core.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("bad envelope")
		return
	}

	h, ok := handlers[env.Event]
	if !ok {
		log.Warn().Str("module", "signal").Str("event", env.Event).Msg("unknown event")
		return
	}

	if !ctl.limiter.Allow(c.ID()) {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Str("event", env.Event).Msg("rate limited")
		return
	}

	h(ctl, c, env.Data)
}

// decodeString decodes the bare JSON string the client sends for room
// keys and user ids.
func decodeString(data json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	return s, s != ""
}
