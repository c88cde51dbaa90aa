package client

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/voidrunner/arcade/internal/queue"
	"github.com/voidrunner/arcade/internal/transport"
	"github.com/voidrunner/arcade/internal/wire"
)

// Snapshot is one tick's reassembled replication payload, stitched back
// together from either a single Snapshot frame or every chunk of a
// SnapshotChunk set sharing the same tickId (spec.md §4.A chunking).
type Snapshot struct {
	Tick            uint32
	LastInputAckSeq uint32
	Entities        []wire.EntitySnapshot
}

// chunkAssembly tracks the partial reassembly of one tick's
// SnapshotChunk set.
type chunkAssembly struct {
	count    uint16
	received uint16
	have     []bool
	entities []wire.EntitySnapshot
	lastAck  uint32
}

// Pipeline is the single receiver thread spec.md §4.K describes: it
// drains the socket, decodes each frame, and routes it onto typed queues
// or handshake flags for the rest of the client to consume.
type Pipeline struct {
	sock   *transport.Socket
	server transport.Endpoint
	log    *slog.Logger

	SnapshotQ   *queue.Queue[Snapshot]
	LevelInitQ  *queue.Queue[wire.LevelInit]
	LevelEventQ *queue.Queue[wire.LevelEvent]
	SpawnQ      *queue.Queue[wire.EntitySnapshot]
	DestroyQ    *queue.Queue[uint32]
	ChatQ       *queue.Queue[wire.Chat]
	BroadcastQ  *queue.Queue[wire.ServerBroadcast]
	DisconnectQ *queue.Queue[wire.ServerDisconnect]
	PongQ       *queue.Queue[wire.ServerPong]
	KickedQ     *queue.Queue[wire.PlayerKicked]
	RosterQ     *queue.Queue[wire.PlayerList]
	StartingQ   *queue.Queue[wire.RoomGameStarting]

	joinAccepted  atomic.Bool
	joinDenied    atomic.Bool
	joinDenyMsg   atomic.Value // string
	gameStart     atomic.Bool
	handshakeDone atomic.Bool
	assignedID    atomic.Uint32
	countdown     atomic.Uint32

	mu          sync.Mutex
	chunks      map[uint32]*chunkAssembly
	highestTick uint32

	malformedCount atomic.Uint64
}

// NewPipeline builds a Pipeline bound to sock, accepting frames only from
// server (spec.md §5's single-server-per-client model — anything else is
// silently dropped as a spoofed source).
func NewPipeline(sock *transport.Socket, server transport.Endpoint, log *slog.Logger) *Pipeline {
	return &Pipeline{
		sock:        sock,
		server:      server,
		log:         log,
		SnapshotQ:   queue.New[Snapshot](DefaultQueueSize),
		LevelInitQ:  queue.New[wire.LevelInit](DefaultQueueSize),
		LevelEventQ: queue.New[wire.LevelEvent](DefaultQueueSize),
		SpawnQ:      queue.New[wire.EntitySnapshot](DefaultQueueSize),
		DestroyQ:    queue.New[uint32](DefaultQueueSize),
		ChatQ:       queue.New[wire.Chat](DefaultQueueSize),
		BroadcastQ:  queue.New[wire.ServerBroadcast](DefaultQueueSize),
		DisconnectQ: queue.New[wire.ServerDisconnect](DefaultQueueSize),
		PongQ:       queue.New[wire.ServerPong](DefaultQueueSize),
		KickedQ:     queue.New[wire.PlayerKicked](DefaultQueueSize),
		RosterQ:     queue.New[wire.PlayerList](DefaultQueueSize),
		StartingQ:   queue.New[wire.RoomGameStarting](DefaultQueueSize),
		chunks:      make(map[uint32]*chunkAssembly),
	}
}

// JoinAccepted reports whether a ServerHello or ServerJoinAccept has
// arrived.
func (p *Pipeline) JoinAccepted() bool { return p.joinAccepted.Load() }

// JoinDenied reports whether the server refused the join request, and
// why.
func (p *Pipeline) JoinDenied() (bool, string) {
	if !p.joinDenied.Load() {
		return false, ""
	}
	reason, _ := p.joinDenyMsg.Load().(string)
	return true, reason
}

// GameStarted reports whether GameStart has arrived.
func (p *Pipeline) GameStarted() bool { return p.gameStart.Load() }

// HandshakeDone reports whether the welcome loop should stop: set once
// GameStart arrives, per spec.md §4.K.
func (p *Pipeline) HandshakeDone() bool { return p.handshakeDone.Load() }

// AssignedPlayerID returns the player id carried by the most recently
// routed ServerHello or ServerJoinAccept. The game server allocates the id
// on join and sends it in ServerJoinAccept; its ServerHello carries zero.
func (p *Pipeline) AssignedPlayerID() uint32 { return p.assignedID.Load() }

// CountdownSeconds returns the most recent CountdownTick value.
func (p *Pipeline) CountdownSeconds() uint32 { return p.countdown.Load() }

// MalformedCount returns the running count of dropped malformed or
// unexpected-direction packets.
func (p *Pipeline) MalformedCount() uint64 { return p.malformedCount.Load() }

// Run polls the socket until ctx is cancelled, decoding and routing every
// frame that arrives from the configured server endpoint.
func (p *Pipeline) Run(ctx context.Context) {
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, from, tag := transport.Poll(ctx, p.sock, buf)
		if tag == transport.Closed {
			return
		}
		if tag != transport.Ok {
			continue
		}
		if from != p.server {
			continue
		}

		frame, err := wire.Decode(buf[:n])
		if err != nil {
			p.malformedCount.Add(1)
			p.log.Debug("dropped malformed packet", "err", err)
			continue
		}
		if frame.Header.PacketType != wire.ServerToClient {
			p.malformedCount.Add(1)
			continue
		}
		p.route(frame)
	}
}

func (p *Pipeline) route(frame wire.Frame) {
	payload, err := wire.DecodePayload(frame.Header.MessageType, frame.Payload)
	if err != nil {
		p.malformedCount.Add(1)
		p.log.Debug("dropped malformed payload", "messageType", frame.Header.MessageType, "err", err)
		return
	}

	switch m := payload.(type) {
	case wire.ServerHello:
		p.assignedID.Store(m.AssignedPlayerID)
		p.joinAccepted.Store(true)
	case wire.ServerJoinAccept:
		p.assignedID.Store(m.PlayerID)
		p.joinAccepted.Store(true)
	case wire.ServerJoinDeny:
		p.joinDenied.Store(true)
		p.joinDenyMsg.Store(m.Reason)
	case wire.ServerPong:
		pushOrDrop(p.PongQ, m, p.log)
	case wire.Snapshot:
		p.completeSnapshot(frame.Header.TickID, m.LastInputAckSeq, m.Entities)
	case wire.SnapshotChunk:
		p.assembleChunk(frame.Header.TickID, m)
	case wire.EntitySpawn:
		pushOrDrop(p.SpawnQ, m.Entity, p.log)
	case wire.EntityDestroyed:
		pushOrDrop(p.DestroyQ, m.EntityID, p.log)
	case wire.LevelInit:
		pushOrDrop(p.LevelInitQ, m, p.log)
	case wire.LevelEvent:
		pushOrDrop(p.LevelEventQ, m, p.log)
	case wire.GameStart:
		p.gameStart.Store(true)
		p.handshakeDone.Store(true)
	case wire.GameEnd:
		// Out of this subsystem's scope beyond the handshake flag
		// reset a renderer would key off of; nothing to route.
	case wire.PlayerDisconnected:
		// Carried informationally via the broadcast queue so a UI can
		// show it without a dedicated lifecycle queue.
		pushOrDrop(p.BroadcastQ, wire.ServerBroadcast{Text: "player disconnected"}, p.log)
	case wire.CountdownTick:
		p.countdown.Store(uint32(m.SecondsRemaining))
	case wire.RoomGameStarting:
		pushOrDrop(p.StartingQ, m, p.log)
	case wire.PlayerList:
		pushOrDrop(p.RosterQ, m, p.log)
	case wire.PlayerKicked:
		pushOrDrop(p.KickedQ, m, p.log)
	case wire.Chat:
		pushOrDrop(p.ChatQ, m, p.log)
	case wire.ServerBroadcast:
		pushOrDrop(p.BroadcastQ, m, p.log)
	case wire.ServerDisconnect:
		pushOrDrop(p.DisconnectQ, m, p.log)
	default:
		// Lobby response types (RoomList, RoomCreated, JoinSuccess,
		// JoinFailed, auth responses, stats) are consumed synchronously
		// by internal/client's lobby RPC helper, not this pipeline —
		// reaching here means a message type this pipeline has no
		// route for arrived on the game-instance socket.
		p.log.Debug("pipeline: unhandled message type", "messageType", frame.Header.MessageType)
	}
}

// pushOrDrop pushes v onto q, logging and dropping it on the (bounded)
// queue's ErrFull rather than blocking the receive loop — spec.md §4.C's
// producer-never-blocks discipline.
func pushOrDrop[T any](q *queue.Queue[T], v T, log *slog.Logger) {
	if err := q.Push(v); err != nil {
		log.Debug("queue full, dropping message")
	}
}

func (p *Pipeline) completeSnapshot(tick uint32, lastAck uint32, entities []wire.EntitySnapshot) {
	p.mu.Lock()
	if tick < p.highestTick {
		p.mu.Unlock()
		return
	}
	p.highestTick = tick
	p.mu.Unlock()

	if err := p.SnapshotQ.Push(Snapshot{Tick: tick, LastInputAckSeq: lastAck, Entities: entities}); err != nil {
		p.log.Debug("snapshot queue full, dropping tick", "tick", tick)
	}
}

func (p *Pipeline) assembleChunk(tick uint32, m wire.SnapshotChunk) {
	p.mu.Lock()
	a, ok := p.chunks[tick]
	if !ok {
		a = &chunkAssembly{count: m.ChunkCount, have: make([]bool, m.ChunkCount)}
		p.chunks[tick] = a
	}
	if int(m.ChunkIndex) < len(a.have) && !a.have[m.ChunkIndex] {
		a.have[m.ChunkIndex] = true
		a.received++
		a.entities = append(a.entities, m.Entities...)
		a.lastAck = m.LastInputAckSeq
	}
	complete := a.received >= a.count
	if complete {
		delete(p.chunks, tick)
	}
	p.mu.Unlock()

	if complete {
		p.completeSnapshot(tick, a.lastAck, a.entities)
	}
}
