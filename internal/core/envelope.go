package core

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Envelope is the wire framing: an event name plus its payload.
// Event names inside the envelope match the original client contract.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode wraps payload under event into a wire frame.
func Encode(event string, payload any) (Frame, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// Emit encodes and fires event at c. Delivery is best-effort: marshal
// failures and backpressure are logged and swallowed, never returned.
func Emit(c Conn, event string, payload any) {
	f, err := Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "core").Str("event", event).Msg("emit encode")
		return
	}
	if err := c.TrySend(f); err != nil {
		log.Debug().Err(err).Str("module", "core").Str("event", event).Str("conn", string(c.ID())).Msg("emit dropped")
	}
}
