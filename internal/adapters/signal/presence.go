package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/realtime-gateway/internal/core"
	"github.com/taskhive/realtime-gateway/internal/domain"
)

// handleSetup registers the connection under the client's user identity
// and hands back the current online roster. The client sends either
// `_id` (document id) or `id`; `_id` wins when both are present. When
// the handshake was authenticated, the token's identity is
// authoritative and a differing claimed id is ignored.
func (ctl *Controller) handleSetup(c core.Conn, data json.RawMessage) {
	var p struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("bad setup payload")
		return
	}
	raw := p.MongoID
	if raw == "" {
		raw = p.ID
	}
	user, err := domain.ParseUserID(raw)
	if tok, ok := authIdentity(c); ok {
		if err == nil && user != tok {
			log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Str("claimed", string(user)).Str("token", string(tok)).Msg("setup identity does not match token")
		}
		user = tok
	} else if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("setup without identity")
		return
	}

	ctl.GW.Setup(user, c)

	core.Emit(c, domain.EvtConnected, nil)
	core.Emit(c, domain.EvtGetOnlineUsers, ctl.GW.Presence.Online())
}

// handleRequestOnlineUsers lets a client resynchronize its roster view
// without waiting for incremental status deltas.
func (ctl *Controller) handleRequestOnlineUsers(c core.Conn, _ json.RawMessage) {
	core.Emit(c, domain.EvtGetOnlineUsers, ctl.GW.Presence.Online())
}

// authIdentity reports the identity the handshake token pinned to the
// connection, when handshake auth is enabled for the transport.
func authIdentity(c core.Conn) (domain.UserID, bool) {
	a, ok := c.(interface{ AuthUser() (domain.UserID, bool) })
	if !ok {
		return "", false
	}
	return a.AuthUser()
}
