package core

// Frame is a raw outbound payload, ready for the wire.
type Frame []byte

// ConnID identifies one live transport session. It is server-assigned
// and doubles as the peer id visible in call signaling payloads.
type ConnID string

// Conn abstracts a single client transport session.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	ID() ConnID
	TrySend(Frame) error
	Close()
}
