package instance

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/voidrunner/arcade/internal/queue"
	"github.com/voidrunner/arcade/internal/transport"
	"github.com/voidrunner/arcade/internal/wire"
)

// ReceiveWorker is the per-instance ingress loop spec.md §4.F describes:
// it polls the socket, decodes each frame, routes gameplay inputs into
// the input queue and control messages into the control queue, and
// tracks per-endpoint last-seen time to post timeout events on silence.
type ReceiveWorker struct {
	sock    *transport.Socket
	inputQ  *queue.Queue[InputEvent]
	ctrlQ   *queue.Queue[ControlEvent]
	timeout time.Duration
	log     *slog.Logger

	lastSeen       map[transport.Endpoint]time.Time
	malformedCount atomic.Uint64
	nextSweep      time.Time
}

// NewReceiveWorker builds a ReceiveWorker bound to sock.
func NewReceiveWorker(sock *transport.Socket, inputQ *queue.Queue[InputEvent], ctrlQ *queue.Queue[ControlEvent], timeout time.Duration, log *slog.Logger) *ReceiveWorker {
	return &ReceiveWorker{
		sock:     sock,
		inputQ:   inputQ,
		ctrlQ:    ctrlQ,
		timeout:  timeout,
		log:      log,
		lastSeen: make(map[transport.Endpoint]time.Time),
	}
}

// MalformedCount returns the running count of dropped malformed packets,
// the metric spec.md §7's "Malformed packet" policy calls for.
func (w *ReceiveWorker) MalformedCount() uint64 { return w.malformedCount.Load() }

// Run polls the socket until ctx is cancelled, cooperative with the
// process-wide stop flag per spec.md §5.
func (w *ReceiveWorker) Run(ctx context.Context) {
	buf := make([]byte, 2048)
	const sweepInterval = time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, from, tag := transport.Poll(ctx, w.sock, buf)
		now := time.Now()
		if now.After(w.nextSweep) {
			w.sweepTimeouts(now)
			w.nextSweep = now.Add(sweepInterval)
		}

		if tag == transport.Closed {
			return
		}
		if tag != transport.Ok {
			continue
		}

		frame, err := wire.Decode(buf[:n])
		if err != nil {
			w.malformedCount.Add(1)
			w.log.Debug("dropped malformed packet", "from", from, "err", err)
			continue
		}
		if frame.Header.PacketType != wire.ClientToServer {
			w.malformedCount.Add(1)
			continue
		}

		w.lastSeen[from] = now
		w.route(from, frame)
	}
}

func (w *ReceiveWorker) route(from transport.Endpoint, frame wire.Frame) {
	payload, err := wire.DecodePayload(frame.Header.MessageType, frame.Payload)
	if err != nil {
		w.malformedCount.Add(1)
		w.log.Debug("dropped malformed payload", "from", from, "messageType", frame.Header.MessageType, "err", err)
		return
	}

	seq := frame.Header.SequenceID
	switch m := payload.(type) {
	case wire.ClientHello:
		w.pushControl(ControlEvent{Endpoint: from, Kind: ControlHello, Seq: seq})
	case wire.ClientJoinRequest:
		w.pushControl(ControlEvent{Endpoint: from, Kind: ControlJoin, Seq: seq, Join: m})
	case wire.ClientReady:
		w.pushControl(ControlEvent{Endpoint: from, Kind: ControlReady, Seq: seq})
	case wire.ClientPing:
		w.pushControl(ControlEvent{Endpoint: from, Kind: ControlPing, Seq: seq, Ping: m})
	case wire.LeaveRoom:
		w.pushControl(ControlEvent{Endpoint: from, Kind: ControlDisconnect, Seq: seq})
	case wire.ForceStart:
		w.pushControl(ControlEvent{Endpoint: from, Kind: ControlForceStart, Seq: seq})
	case wire.Chat:
		w.pushControl(ControlEvent{Endpoint: from, Kind: ControlChat, Seq: seq, Chat: m})
	case wire.KickPlayer:
		w.pushControl(ControlEvent{Endpoint: from, Kind: ControlKick, Seq: seq, Kick: m})
	case wire.ClientInput:
		if err := w.inputQ.Push(InputEvent{Endpoint: from, Seq: seq, Input: m}); err != nil {
			w.log.Debug("input queue full, dropping input", "from", from)
		}
	default:
		w.malformedCount.Add(1)
	}
}

func (w *ReceiveWorker) pushControl(ev ControlEvent) {
	if err := w.ctrlQ.Push(ev); err != nil {
		w.log.Debug("control queue full, dropping event", "from", ev.Endpoint, "kind", ev.Kind)
	}
}

// sweepTimeouts posts a ControlTimeout event for every endpoint silent
// longer than w.timeout, per spec.md §4.F.
func (w *ReceiveWorker) sweepTimeouts(now time.Time) {
	for ep, seen := range w.lastSeen {
		if now.Sub(seen) > w.timeout {
			delete(w.lastSeen, ep)
			w.pushControl(ControlEvent{Endpoint: ep, Kind: ControlTimeout})
		}
	}
}
