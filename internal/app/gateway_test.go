package app

import (
	"encoding/json"
	"testing"

	"github.com/taskhive/realtime-gateway/internal/domain"
)

func setupGateway(conns ...*fakeConn) *Gateway {
	gw := NewGateway()
	for _, c := range conns {
		gw.Connect(c)
	}
	return gw
}

func statusPayload(t *testing.T, data json.RawMessage) domain.UserStatus {
	t.Helper()
	var p domain.UserStatus
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("bad user_status payload: %v", err)
	}
	return p
}

func TestGatewaySetupBroadcastsOnlineOnce(t *testing.T) {
	c1 := newFakeConn("c1")
	c2 := newFakeConn("c2")
	gw := setupGateway(c1, c2)

	gw.Setup("u1", c1)

	env, ok := c2.lastEvent(t, domain.EvtUserStatus)
	if !ok {
		t.Fatal("observer did not receive user_status")
	}
	if p := statusPayload(t, env.Data); p.UserID != "u1" || p.Status != domain.StatusOnline {
		t.Errorf("user_status = %+v, want u1 online", p)
	}

	// A second session for the same user is not a presence transition.
	gw.Setup("u1", c2)
	if n := c1.countEvent(t, domain.EvtUserStatus); n != 1 {
		t.Errorf("second session re-broadcast user_status, count = %d", n)
	}
}

func TestGatewaySetupJoinsUserRoom(t *testing.T) {
	c1 := newFakeConn("c1")
	gw := setupGateway(c1)
	gw.Setup("u1", c1)

	gw.NotifyUser("u1", domain.EvtMessageReceived, "hi")
	if c1.countEvent(t, domain.EvtMessageReceived) != 1 {
		t.Error("direct message fanout should reach the user's session")
	}
}

func TestGatewayDisconnectCleanup(t *testing.T) {
	c1 := newFakeConn("c1")
	c2 := newFakeConn("c2")
	observer := newFakeConn("obs")
	gw := setupGateway(c1, c2, observer)
	gw.Setup("u1", c1)
	gw.Setup("u1", c2)
	gw.Rooms.Join("proj1", c1)

	gw.Disconnect(c1)

	if gw.Rooms.Contains("proj1", "c1") {
		t.Error("disconnect should remove the connection from its rooms")
	}
	if !gw.Presence.IsOnline("u1") {
		t.Error("u1 should stay online via c2")
	}
	for _, env := range observer.events(t) {
		if env.Event != domain.EvtUserStatus {
			continue
		}
		if p := statusPayload(t, env.Data); p.Status == domain.StatusOffline {
			t.Error("no offline event while another session is live")
		}
	}

	gw.Disconnect(c2)

	offline := 0
	for _, env := range observer.events(t) {
		if env.Event != domain.EvtUserStatus {
			continue
		}
		if p := statusPayload(t, env.Data); p.UserID == "u1" && p.Status == domain.StatusOffline {
			offline++
		}
	}
	if offline != 1 {
		t.Errorf("offline broadcast count = %d, want exactly 1", offline)
	}
}

func TestGatewaySetupReidentify(t *testing.T) {
	c1 := newFakeConn("c1")
	observer := newFakeConn("obs")
	gw := setupGateway(c1, observer)

	gw.Setup("u1", c1)
	gw.Setup("u2", c1)

	if gw.Presence.IsOnline("u1") {
		t.Error("u1 should be offline after its connection re-identified as u2")
	}
	if !gw.Presence.IsOnline("u2") {
		t.Error("u2 should be online")
	}
	if gw.Rooms.Contains("u1", "c1") {
		t.Error("re-identifying should leave the previous direct-message room")
	}
	if !gw.Rooms.Contains("u2", "c1") {
		t.Error("re-identifying should join the new direct-message room")
	}

	u1Offline := 0
	for _, env := range observer.events(t) {
		if env.Event != domain.EvtUserStatus {
			continue
		}
		if p := statusPayload(t, env.Data); p.UserID == "u1" && p.Status == domain.StatusOffline {
			u1Offline++
		}
	}
	if u1Offline != 1 {
		t.Errorf("u1 offline broadcast count = %d, want exactly 1", u1Offline)
	}

	// Disconnecting afterwards must only transition the current identity.
	gw.Disconnect(c1)
	u2Offline := 0
	for _, env := range observer.events(t) {
		if env.Event != domain.EvtUserStatus {
			continue
		}
		if p := statusPayload(t, env.Data); p.UserID == "u2" && p.Status == domain.StatusOffline {
			u2Offline++
		}
	}
	if u2Offline != 1 {
		t.Errorf("u2 offline broadcast count = %d, want exactly 1", u2Offline)
	}
}

func TestGatewaySetupSameIdentityNoTransition(t *testing.T) {
	c1 := newFakeConn("c1")
	observer := newFakeConn("obs")
	gw := setupGateway(c1, observer)

	gw.Setup("u1", c1)
	gw.Setup("u1", c1)

	for _, env := range observer.events(t) {
		if env.Event != domain.EvtUserStatus {
			continue
		}
		if p := statusPayload(t, env.Data); p.Status == domain.StatusOffline {
			t.Error("repeating setup under the same identity must not bounce presence")
		}
	}
	if !gw.Presence.IsOnline("u1") {
		t.Error("u1 should stay online")
	}
}

func TestGatewayDisconnectLeavesCallRooms(t *testing.T) {
	c1 := newFakeConn("c1")
	gw := setupGateway(c1)
	gw.Setup("u1", c1)
	gw.Calls.Join("call1", c1.ID())

	gw.Disconnect(c1)

	if !gw.Calls.Contains("call1", c1.ID()) {
		t.Error("call-room membership must survive disconnect")
	}
}

func TestGatewayEmitToUnknownTarget(t *testing.T) {
	gw := setupGateway()
	if gw.EmitTo("ghost", domain.EvtCallEnded, nil) {
		t.Error("unicast to unknown connection should report not delivered")
	}
}

func TestGatewayNotifyUsersPersonalRooms(t *testing.T) {
	c1 := newFakeConn("c1")
	c2 := newFakeConn("c2")
	gw := setupGateway(c1, c2)
	gw.Rooms.Join(domain.UserID("u1").PersonalRoom(), c1)
	gw.Rooms.Join(domain.UserID("u2").PersonalRoom(), c2)

	gw.NotifyUsers([]domain.UserID{"u1"}, domain.EvtNotificationReceived, "n")

	if c1.countEvent(t, domain.EvtNotificationReceived) != 1 {
		t.Error("recipient's personal room should get the notification")
	}
	if c2.countEvent(t, domain.EvtNotificationReceived) != 0 {
		t.Error("other users must not get the notification")
	}
}

func TestGatewayBroadcastAllExclude(t *testing.T) {
	c1 := newFakeConn("c1")
	c2 := newFakeConn("c2")
	gw := setupGateway(c1, c2)

	gw.BroadcastAll("user_status", domain.UserStatus{UserID: "u1", Status: "online"}, c1.ID())

	if c1.countEvent(t, "user_status") != 0 {
		t.Error("excluded connection received the broadcast")
	}
	if c2.countEvent(t, "user_status") != 1 {
		t.Error("other connection missed the broadcast")
	}
}
