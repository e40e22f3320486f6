package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/realtime-gateway/internal/core"
	"github.com/taskhive/realtime-gateway/internal/domain"
)

// handleJoinRoom runs the asymmetric mesh join: the newcomer gets the
// list of peers already in the call, and each existing peer is told
// about the newcomer so it can initiate its side of the handshake. The
// newcomer never initiates toward existing peers, which keeps the two
// sides from racing to call each other.
func (ctl *Controller) handleJoinRoom(c core.Conn, data json.RawMessage) {
	room, ok := decodeString(data)
	if !ok {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("bad join_room payload")
		return
	}

	others := ctl.GW.Calls.Join(room, c.ID())
	core.Emit(c, domain.EvtAllUsers, others)
	for _, peer := range others {
		ctl.GW.EmitTo(peer, domain.EvtUserJoined, c.ID())
	}
}

// Signal exchange is point-to-point and deliberately unvalidated
// against call-room membership, matching the client's trust model.
func (ctl *Controller) handleSendingSignal(c core.Conn, data json.RawMessage) {
	var p struct {
		UserToSignal string          `json:"userToSignal"`
		CallerID     string          `json:"callerID"`
		Signal       json.RawMessage `json:"signal"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.UserToSignal == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("bad sending_signal payload")
		return
	}

	out := struct {
		Signal   json.RawMessage `json:"signal"`
		CallerID string          `json:"callerID"`
	}{p.Signal, p.CallerID}
	ctl.GW.EmitTo(core.ConnID(p.UserToSignal), domain.EvtUserJoinedSignal, out)
}

func (ctl *Controller) handleReturningSignal(c core.Conn, data json.RawMessage) {
	var p struct {
		CallerID string          `json:"callerID"`
		Signal   json.RawMessage `json:"signal"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.CallerID == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("bad returning_signal payload")
		return
	}

	out := struct {
		Signal json.RawMessage `json:"signal"`
		ID     core.ConnID     `json:"id"`
	}{p.Signal, c.ID()}
	ctl.GW.EmitTo(core.ConnID(p.CallerID), domain.EvtReceivingReturnSignal, out)
}

// handleRingRoom is an out-of-band UX ping to everyone already in the
// call room; it does not touch membership.
func (ctl *Controller) handleRingRoom(c core.Conn, data json.RawMessage) {
	var p struct {
		RoomID     string `json:"roomID"`
		CallerName string `json:"callerName"`
		IsVideo    bool   `json:"isVideo"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("bad ring_room payload")
		return
	}

	for _, member := range ctl.GW.Calls.Members(p.RoomID) {
		if member == c.ID() {
			continue
		}
		ctl.GW.EmitTo(member, domain.EvtIncomingCallNotify, p)
	}
}

// handleEndCall tears down a single pairwise leg. Nothing is removed
// from the call room; multi-party calls end each leg independently.
func (ctl *Controller) handleEndCall(c core.Conn, data json.RawMessage) {
	var p struct {
		To string `json:"to"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("bad end_call payload")
		return
	}
	ctl.GW.EmitTo(core.ConnID(p.To), domain.EvtCallEnded, nil)
}

// Legacy 1:1 calling events, kept alongside the mesh protocol.

func (ctl *Controller) handleCallUser(c core.Conn, data json.RawMessage) {
	var p struct {
		UserToCall string          `json:"userToCall"`
		SignalData json.RawMessage `json:"signalData"`
		From       string          `json:"from"`
		Name       string          `json:"name"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.UserToCall == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("bad call_user payload")
		return
	}

	out := struct {
		Signal json.RawMessage `json:"signal"`
		From   string          `json:"from"`
		Name   string          `json:"name"`
	}{p.SignalData, p.From, p.Name}
	ctl.GW.EmitTo(core.ConnID(p.UserToCall), domain.EvtCallIncoming, out)
}

func (ctl *Controller) handleAnswerCall(c core.Conn, data json.RawMessage) {
	var p struct {
		To     string          `json:"to"`
		Signal json.RawMessage `json:"signal"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("bad answer_call payload")
		return
	}

	out := struct {
		Signal json.RawMessage `json:"signal"`
	}{p.Signal}
	ctl.GW.EmitTo(core.ConnID(p.To), domain.EvtCallAccepted, out)
}

func (ctl *Controller) handleSendSignal(c core.Conn, data json.RawMessage) {
	var p struct {
		To     string          `json:"to"`
		Signal json.RawMessage `json:"signal"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("bad send_signal payload")
		return
	}

	out := struct {
		Signal json.RawMessage `json:"signal"`
		From   core.ConnID     `json:"from"`
	}{p.Signal, c.ID()}
	ctl.GW.EmitTo(core.ConnID(p.To), domain.EvtSignalReceived, out)
}
