package ingest

import (
	"encoding/json"
	"testing"

	"github.com/taskhive/realtime-gateway/internal/app"
	"github.com/taskhive/realtime-gateway/internal/core"
	"github.com/taskhive/realtime-gateway/internal/domain"
)

type fakeConn struct {
	id     core.ConnID
	frames []core.Frame
}

func (f *fakeConn) ID() core.ConnID { return f.id }

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) received(t *testing.T, event string) int {
	t.Helper()
	n := 0
	for _, fr := range f.frames {
		var env core.Envelope
		if err := json.Unmarshal(fr, &env); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		if env.Event == event {
			n++
		}
	}
	return n
}

func TestRouteProjectEvent(t *testing.T) {
	gw := app.NewGateway()
	member := &fakeConn{id: "c1"}
	outsider := &fakeConn{id: "c2"}
	gw.Rooms.Join("p1", member)
	gw.Rooms.Join("p2", outsider)

	err := Route(gw, Event{
		Event:   domain.EvtTaskCreated,
		Project: "p1",
		Data:    json.RawMessage(`{"title":"ship it"}`),
	})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	if member.received(t, domain.EvtTaskCreated) != 1 {
		t.Error("project member should receive the event")
	}
	if outsider.received(t, domain.EvtTaskCreated) != 0 {
		t.Error("event leaked into another project room")
	}
}

func TestRouteUserEvent(t *testing.T) {
	gw := app.NewGateway()
	u1 := &fakeConn{id: "c1"}
	u2 := &fakeConn{id: "c2"}
	u3 := &fakeConn{id: "c3"}
	gw.Rooms.Join(domain.UserID("u1").PersonalRoom(), u1)
	gw.Rooms.Join(domain.UserID("u2").PersonalRoom(), u2)
	gw.Rooms.Join(domain.UserID("u3").PersonalRoom(), u3)

	err := Route(gw, Event{
		Event: domain.EvtNotificationReceived,
		Users: []string{"u1", "u2"},
		Data:  json.RawMessage(`{"kind":"mention"}`),
	})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	if u1.received(t, domain.EvtNotificationReceived) != 1 || u2.received(t, domain.EvtNotificationReceived) != 1 {
		t.Error("listed recipients should receive the notification")
	}
	if u3.received(t, domain.EvtNotificationReceived) != 0 {
		t.Error("unlisted user received the notification")
	}
}

func TestRouteMissingKeys(t *testing.T) {
	gw := app.NewGateway()

	if err := Route(gw, Event{Event: domain.EvtTaskUpdated}); err == nil {
		t.Error("project event without a project key should fail")
	}
	if err := Route(gw, Event{Event: domain.EvtNewChatReceived}); err == nil {
		t.Error("user event without recipients should fail")
	}
}

func TestRouteUnknownEvent(t *testing.T) {
	gw := app.NewGateway()

	if err := Route(gw, Event{Event: "made_up"}); err == nil {
		t.Error("unroutable events should error so the consumer can log them")
	}
}

func TestRouteEmptyRoomIsQuiet(t *testing.T) {
	gw := app.NewGateway()

	// Nobody subscribed yet. Still routable, just nothing to do.
	if err := Route(gw, Event{Event: domain.EvtProjectUpdated, Project: "p1"}); err != nil {
		t.Fatalf("Route into empty room: %v", err)
	}
}
