package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/taskhive/realtime-gateway/internal/core"
)

// fakeConn records every frame sent to it so tests can assert on the
// exact event stream a client would observe.
type fakeConn struct {
	id core.ConnID

	mu     sync.Mutex
	frames []core.Frame
	broken bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: core.ConnID(id)}
}

func (f *fakeConn) ID() core.ConnID { return f.id }

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken {
		return errTestConnBroken
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

var errTestConnBroken = errBroken{}

type errBroken struct{}

func (errBroken) Error() string { return "broken test conn" }

// events decodes the recorded frames back into envelopes.
func (f *fakeConn) events(t *testing.T) []core.Envelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Envelope, 0, len(f.frames))
	for _, fr := range f.frames {
		var env core.Envelope
		if err := json.Unmarshal(fr, &env); err != nil {
			t.Fatalf("recorded frame is not an envelope: %v", err)
		}
		out = append(out, env)
	}
	return out
}

// countEvent reports how many times the named event was delivered.
func (f *fakeConn) countEvent(t *testing.T, event string) int {
	t.Helper()
	n := 0
	for _, env := range f.events(t) {
		if env.Event == event {
			n++
		}
	}
	return n
}

// lastEvent returns the most recent envelope for the named event.
func (f *fakeConn) lastEvent(t *testing.T, event string) (core.Envelope, bool) {
	t.Helper()
	evs := f.events(t)
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Event == event {
			return evs[i], true
		}
	}
	return core.Envelope{}, false
}
