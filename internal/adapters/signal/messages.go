package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/realtime-gateway/internal/core"
	"github.com/taskhive/realtime-gateway/internal/domain"
)

// handleNewMessage fans a freshly persisted chat message out to every
// member of the chat except its author. The message object is relayed
// verbatim; only the sender and member ids are inspected for routing.
func (ctl *Controller) handleNewMessage(c core.Conn, data json.RawMessage) {
	var p struct {
		Sender struct {
			ID string `json:"_id"`
		} `json:"sender"`
		Chat struct {
			Users []struct {
				ID string `json:"_id"`
			} `json:"users"`
		} `json:"chat"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("bad new_message payload")
		return
	}
	if len(p.Chat.Users) == 0 {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("new_message without chat.users")
		return
	}

	for _, u := range p.Chat.Users {
		if u.ID == "" || u.ID == p.Sender.ID {
			continue
		}
		ctl.GW.Rooms.Broadcast(domain.UserID(u.ID).Room(), domain.EvtMessageReceived, data, "")
	}
}

// handleTaskAction relays an ephemeral UX action (share/export/view) on
// a task to the rest of the project room.
func (ctl *Controller) handleTaskAction(c core.Conn, data json.RawMessage) {
	var p struct {
		Action    string `json:"action"`
		TaskID    string `json:"taskId"`
		ProjectID string `json:"projectId"`
		UserName  string `json:"userName"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ProjectID == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Msg("bad task_action payload")
		return
	}

	out := struct {
		Action string `json:"action"`
		TaskID string `json:"taskId"`
		User   string `json:"user"`
	}{p.Action, p.TaskID, p.UserName}
	ctl.GW.Rooms.Broadcast(p.ProjectID, domain.EvtTaskActionReceived, out, c.ID())
}
