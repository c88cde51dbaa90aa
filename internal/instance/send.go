package instance

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/voidrunner/arcade/internal/queue"
	"github.com/voidrunner/arcade/internal/transport"
)

// OutboundKind discriminates an OutboundPacket's delivery policy.
type OutboundKind int

const (
	// OutboundBroadcast sends immediately to every registered client, no
	// rate limit — used for spawn/destroy events and control broadcasts
	// (GameStart, LevelInit, PlayerDisconnected, ...).
	OutboundBroadcast OutboundKind = iota
	// OutboundPublish is the rate-limited "latest snapshot" path: a
	// client that already received a publish within 1/hz seconds is
	// skipped this round, coalescing into whatever the next successful
	// publish carries (spec.md §4.F / §9).
	OutboundPublish
)

// OutboundPacket is one item on the tick loop -> send worker handoff
// queue. Frames holds one or more already wire.Encode-d byte slices — more
// than one only for a chunked snapshot publish.
type OutboundPacket struct {
	Kind   OutboundKind
	Frames [][]byte
}

// SendWorker is the per-instance egress loop spec.md §4.F describes: it
// owns the socket for outbound traffic and exposes sendTo/broadcast plus a
// rate-limited publish that is safe to call more often than hz.
type SendWorker struct {
	sock *transport.Socket
	egQ  *queue.Queue[OutboundPacket]
	hz   int
	log  *slog.Logger

	mu            sync.Mutex
	clients       map[transport.Endpoint]bool
	lastPublished map[transport.Endpoint]time.Time
}

// NewSendWorker builds a SendWorker bound to sock, publishing at most hz
// snapshots per second per client.
func NewSendWorker(sock *transport.Socket, egQ *queue.Queue[OutboundPacket], hz int, log *slog.Logger) *SendWorker {
	return &SendWorker{
		sock:          sock,
		egQ:           egQ,
		hz:            hz,
		log:           log,
		clients:       make(map[transport.Endpoint]bool),
		lastPublished: make(map[transport.Endpoint]time.Time),
	}
}

// RegisterClient adds ep to the broadcast/publish recipient set.
func (w *SendWorker) RegisterClient(ep transport.Endpoint) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[ep] = true
}

// UnregisterClient removes ep, e.g. on timeout or disconnect.
func (w *SendWorker) UnregisterClient(ep transport.Endpoint) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.clients, ep)
	delete(w.lastPublished, ep)
}

// SendTo writes a single already-encoded packet directly to dst, bypassing
// the registered-client set and rate limiting — used for unicast replies
// (ServerHello, JoinAccept/Deny) that must go out regardless of session
// registration state.
func (w *SendWorker) SendTo(encoded []byte, dst transport.Endpoint) {
	if _, tag := w.sock.SendTo(encoded, dst); tag != transport.Ok && !tag.Transient() {
		w.log.Debug("sendTo failed", "dst", dst, "tag", tag)
	}
}

// Run drains the egress queue until ctx is cancelled.
func (w *SendWorker) Run(ctx context.Context) {
	for {
		pkt, ok := w.egQ.WaitPop(ctx)
		if !ok {
			return
		}
		switch pkt.Kind {
		case OutboundBroadcast:
			w.broadcast(pkt.Frames)
		case OutboundPublish:
			w.publish(pkt.Frames)
		}
	}
}

func (w *SendWorker) broadcast(frames [][]byte) {
	if len(frames) == 0 {
		return
	}
	w.mu.Lock()
	targets := make([]transport.Endpoint, 0, len(w.clients))
	for ep := range w.clients {
		targets = append(targets, ep)
	}
	w.mu.Unlock()

	for _, ep := range targets {
		w.SendTo(frames[0], ep)
	}
}

func (w *SendWorker) publish(frames [][]byte) {
	if len(frames) == 0 || w.hz <= 0 {
		return
	}
	period := time.Second / time.Duration(w.hz)
	now := time.Now()

	w.mu.Lock()
	ready := make([]transport.Endpoint, 0, len(w.clients))
	for ep := range w.clients {
		if now.Sub(w.lastPublished[ep]) >= period {
			ready = append(ready, ep)
			w.lastPublished[ep] = now
		}
	}
	w.mu.Unlock()

	for _, ep := range ready {
		for _, f := range frames {
			w.SendTo(f, ep)
		}
	}
}
