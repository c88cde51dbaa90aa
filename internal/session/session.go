package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/voidrunner/arcade/internal/transport"
)

// ClientSession is the server-side record of one endpoint's handshake
// progress, per spec.md §3.
type ClientSession struct {
	Endpoint transport.Endpoint
	PlayerID uint32

	State State

	// JoinToken is minted on the Hello->Joined transition. The table does
	// not read it back: a repeat join is recognised by the session's state.
	JoinToken uuid.UUID

	DisplayName         string
	AuthenticatedUserID uint64 // 0 means unauthenticated
	LastSeen            time.Time

	LastInputSeq uint32 // highest ClientInput sequence seen, echoed in snapshots
}
