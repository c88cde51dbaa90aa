package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/voidrunner/arcade/internal/transport"
)

// DefaultInactivityTimeout is the default per-client silence window
// (spec.md §4.F/§5) after which a ReceiveThread posts a timeout event.
const DefaultInactivityTimeout = 30 * time.Second

// Table is the per-instance session table, keyed by endpoint. Like the
// entity store it replicates, it is owned by the tick thread once
// control events have been drained and performs no internal locking.
type Table struct {
	sessions     map[transport.Endpoint]*ClientSession
	nextPlayerID uint32
	gameStarted  bool
}

// NewTable creates an empty session table.
func NewTable() *Table {
	return &Table{sessions: make(map[transport.Endpoint]*ClientSession)}
}

// Get returns the session for ep, if any.
func (t *Table) Get(ep transport.Endpoint) (*ClientSession, bool) {
	s, ok := t.sessions[ep]
	return s, ok
}

// All returns every tracked session. Order is unspecified.
func (t *Table) All() []*ClientSession {
	out := make([]*ClientSession, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s)
	}
	return out
}

// OnHello handles the null -> Hello transition, creating the session on
// first contact from ep.
func (t *Table) OnHello(ep transport.Endpoint, now time.Time) *ClientSession {
	if s, ok := t.sessions[ep]; ok {
		s.LastSeen = now
		return s
	}
	s := &ClientSession{Endpoint: ep, State: StateHello, LastSeen: now}
	t.sessions[ep] = s
	return s
}

// JoinResult is the outcome of a join request: either an accept carrying
// the assigned playerId, or a deny carrying a reason.
type JoinResult struct {
	Accepted bool
	PlayerID uint32
	Reason   string
}

// OnJoinRequest handles Hello -> Joined. A request from an endpoint with
// no active session while the game is already in progress is refused —
// spec.md §4.G's permanent "deny mid-game rejoin" policy (see DESIGN.md).
func (t *Table) OnJoinRequest(ep transport.Endpoint, displayName string, now time.Time) JoinResult {
	s, ok := t.sessions[ep]
	if !ok {
		if t.gameStarted {
			return JoinResult{Accepted: false, Reason: "game already in progress"}
		}
		s = &ClientSession{Endpoint: ep, State: StateHello, LastSeen: now}
		t.sessions[ep] = s
	}
	if s.State == StateJoined || s.State == StateReady {
		// A repeat join from an already-accepted session keeps its playerId
		// and state.
		s.LastSeen = now
		return JoinResult{Accepted: true, PlayerID: s.PlayerID}
	}
	if s.State != StateHello {
		return JoinResult{Accepted: false, Reason: "unexpected join request for session state " + s.State.String()}
	}

	t.nextPlayerID++
	s.PlayerID = t.nextPlayerID
	s.DisplayName = displayName
	s.JoinToken = uuid.New()
	s.State = StateJoined
	s.LastSeen = now
	return JoinResult{Accepted: true, PlayerID: s.PlayerID}
}

// OnReady handles Joined -> Ready.
func (t *Table) OnReady(ep transport.Endpoint, now time.Time) bool {
	s, ok := t.sessions[ep]
	if !ok || s.State != StateJoined {
		return false
	}
	s.State = StateReady
	s.LastSeen = now
	return true
}

// AllReady reports whether every tracked session has reached Ready — the
// start-gate condition in spec.md §4.H step 2.
func (t *Table) AllReady() bool {
	if len(t.sessions) == 0 {
		return false
	}
	for _, s := range t.sessions {
		if s.State != StateReady && s.State != StatePlaying {
			return false
		}
	}
	return true
}

// MarkGameStarted flips every Ready session to Playing (the implicit
// Ready -> Playing transition on the first tick after GameStart) and
// latches gameStarted so later join attempts from unseen endpoints are
// refused.
func (t *Table) MarkGameStarted() {
	t.gameStarted = true
	for _, s := range t.sessions {
		if s.State == StateReady {
			s.State = StatePlaying
		}
	}
}

// GameStarted reports whether MarkGameStarted has been called.
func (t *Table) GameStarted() bool { return t.gameStarted }

// Touch refreshes ep's last-seen timestamp and echoes the highest input
// sequence id observed, per spec.md §5's strictly-increasing sequence
// ordering guarantee.
func (t *Table) Touch(ep transport.Endpoint, now time.Time, inputSeq uint32) {
	s, ok := t.sessions[ep]
	if !ok {
		return
	}
	s.LastSeen = now
	if inputSeq > s.LastInputSeq {
		s.LastInputSeq = inputSeq
	}
}

// Disconnect transitions ep to Disconnected and removes it from the
// table, per spec.md §4.G's "any -> Disconnected" rule.
func (t *Table) Disconnect(ep transport.Endpoint) (*ClientSession, bool) {
	s, ok := t.sessions[ep]
	if !ok {
		return nil, false
	}
	s.State = StateDisconnected
	delete(t.sessions, ep)
	return s, true
}

// SweepTimeouts disconnects every session whose LastSeen exceeds timeout
// relative to now, returning the sessions that were evicted.
func (t *Table) SweepTimeouts(now time.Time, timeout time.Duration) []*ClientSession {
	var evicted []*ClientSession
	for ep, s := range t.sessions {
		if now.Sub(s.LastSeen) > timeout {
			s.State = StateDisconnected
			evicted = append(evicted, s)
			delete(t.sessions, ep)
		}
	}
	return evicted
}

// Count returns the number of tracked sessions.
func (t *Table) Count() int { return len(t.sessions) }
