package session

import (
	"net"
	"testing"
	"time"

	"github.com/voidrunner/arcade/internal/transport"
)

func mustEndpoint(t *testing.T, port uint16) transport.Endpoint {
	t.Helper()
	ep, err := transport.NewEndpoint(net.ParseIP("127.0.0.1"), port)
	if err != nil {
		t.Fatalf("NewEndpoint: %v", err)
	}
	return ep
}

func TestLifecycle_HelloJoinReady(t *testing.T) {
	tbl := NewTable()
	ep := mustEndpoint(t, 40000)
	now := time.Now()

	s := tbl.OnHello(ep, now)
	if s.State != StateHello {
		t.Fatalf("expected StateHello, got %v", s.State)
	}

	res := tbl.OnJoinRequest(ep, "alice", now)
	if !res.Accepted || res.PlayerID == 0 {
		t.Fatalf("expected join accepted with a nonzero playerId, got %+v", res)
	}
	joined, _ := tbl.Get(ep)
	if joined.State != StateJoined {
		t.Fatalf("expected StateJoined, got %v", joined.State)
	}

	if !tbl.OnReady(ep, now) {
		t.Fatal("expected OnReady to succeed from Joined")
	}
	ready, _ := tbl.Get(ep)
	if ready.State != StateReady {
		t.Fatalf("expected StateReady, got %v", ready.State)
	}
}

func TestMarkGameStarted_PromotesReadyToPlaying(t *testing.T) {
	tbl := NewTable()
	ep := mustEndpoint(t, 40001)
	now := time.Now()
	tbl.OnHello(ep, now)
	tbl.OnJoinRequest(ep, "bob", now)
	tbl.OnReady(ep, now)

	tbl.MarkGameStarted()
	s, _ := tbl.Get(ep)
	if s.State != StatePlaying {
		t.Fatalf("expected StatePlaying after MarkGameStarted, got %v", s.State)
	}
}

func TestAllReady_FalseWhenEmptyOrPartial(t *testing.T) {
	tbl := NewTable()
	if tbl.AllReady() {
		t.Error("expected AllReady to be false for an empty table")
	}

	now := time.Now()
	a := mustEndpoint(t, 40002)
	b := mustEndpoint(t, 40003)
	tbl.OnHello(a, now)
	tbl.OnJoinRequest(a, "a", now)
	tbl.OnReady(a, now)
	tbl.OnHello(b, now)
	tbl.OnJoinRequest(b, "b", now)
	// b never readies up.
	if tbl.AllReady() {
		t.Error("expected AllReady to be false while one session is not ready")
	}
	tbl.OnReady(b, now)
	if !tbl.AllReady() {
		t.Error("expected AllReady to be true once every session is ready")
	}
}

func TestOnJoinRequest_DeniesNewEndpointMidGame(t *testing.T) {
	tbl := NewTable()
	now := time.Now()
	existing := mustEndpoint(t, 40004)
	tbl.OnHello(existing, now)
	tbl.OnJoinRequest(existing, "existing", now)
	tbl.OnReady(existing, now)
	tbl.MarkGameStarted()

	newcomer := mustEndpoint(t, 40005)
	res := tbl.OnJoinRequest(newcomer, "late", now)
	if res.Accepted {
		t.Error("expected join request from a new endpoint to be denied once the game has started")
	}
}

func TestDisconnect_RemovesSession(t *testing.T) {
	tbl := NewTable()
	now := time.Now()
	ep := mustEndpoint(t, 40006)
	tbl.OnHello(ep, now)

	s, ok := tbl.Disconnect(ep)
	if !ok || s.State != StateDisconnected {
		t.Fatalf("expected disconnect to succeed, got %+v, ok=%v", s, ok)
	}
	if _, ok := tbl.Get(ep); ok {
		t.Error("expected session removed from table after disconnect")
	}
}

func TestSweepTimeouts_EvictsStaleSessions(t *testing.T) {
	tbl := NewTable()
	past := time.Now().Add(-time.Minute)
	ep := mustEndpoint(t, 40007)
	tbl.OnHello(ep, past)

	evicted := tbl.SweepTimeouts(time.Now(), DefaultInactivityTimeout)
	if len(evicted) != 1 {
		t.Fatalf("expected 1 evicted session, got %d", len(evicted))
	}
	if tbl.Count() != 0 {
		t.Errorf("expected table empty after sweep, got %d", tbl.Count())
	}
}

func TestTouch_TracksHighestSequenceOnly(t *testing.T) {
	tbl := NewTable()
	now := time.Now()
	ep := mustEndpoint(t, 40008)
	tbl.OnHello(ep, now)

	tbl.Touch(ep, now, 5)
	tbl.Touch(ep, now, 3) // out of order / duplicate, must not regress
	s, _ := tbl.Get(ep)
	if s.LastInputSeq != 5 {
		t.Errorf("expected LastInputSeq to stay at 5, got %d", s.LastInputSeq)
	}
}
