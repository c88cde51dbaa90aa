package instance

import (
	"github.com/voidrunner/arcade/internal/transport"
	"github.com/voidrunner/arcade/internal/wire"
)

// ControlKind discriminates ControlEvent.
type ControlKind int

const (
	ControlHello ControlKind = iota
	ControlJoin
	ControlReady
	ControlPing
	ControlDisconnect
	ControlTimeout
	ControlForceStart
	ControlChat
	ControlKick
)

// ControlEvent is one decoded control-plane message, handed from the
// ReceiveWorker to the tick loop's Control-drain phase (spec.md §4.H step
// 1) via the control queue. Only the fields relevant to Kind are set.
type ControlEvent struct {
	Endpoint transport.Endpoint
	Kind     ControlKind
	Seq      uint16

	Join wire.ClientJoinRequest // valid when Kind == ControlJoin
	Ping wire.ClientPing        // valid when Kind == ControlPing
	Chat wire.Chat              // valid when Kind == ControlChat
	Kick wire.KickPlayer        // valid when Kind == ControlKick
}

// InputEvent is one decoded ClientInput, handed from the ReceiveWorker to
// the tick loop's Input-drain phase (spec.md §4.H step 3).
type InputEvent struct {
	Endpoint transport.Endpoint
	Seq      uint16
	Input    wire.ClientInput
}
