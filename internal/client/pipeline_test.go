package client

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/voidrunner/arcade/internal/transport"
	"github.com/voidrunner/arcade/internal/wire"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServer stands in for a game instance's socket: it sends frames to a
// Pipeline under test and never receives.
type testServer struct {
	t    *testing.T
	sock *transport.Socket
	seq  uint16
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s, err := transport.Open("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return &testServer{t: t, sock: s}
}

func (s *testServer) endpoint() transport.Endpoint { return s.sock.LocalEndpoint() }

func (s *testServer) sendTick(dst transport.Endpoint, tick uint32, mt wire.MessageType, payload interface{ Marshal() []byte }) {
	s.t.Helper()
	s.seq++
	buf, err := wire.Encode(wire.ServerToClient, mt, s.seq, tick, payload.Marshal())
	if err != nil {
		s.t.Fatalf("Encode: %v", err)
	}
	if _, tag := s.sock.SendTo(buf, dst); tag != transport.Ok {
		s.t.Fatalf("SendTo: tag=%v", tag)
	}
}

func newTestPipeline(t *testing.T) (*Pipeline, *testServer, context.CancelFunc) {
	t.Helper()
	cliSock, err := transport.Open("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = cliSock.Close() })

	srv := newTestServer(t)
	p := NewPipeline(cliSock, srv.endpoint(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)
	t.Cleanup(cancel)
	return p, srv, cancel
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

func TestPipeline_RoutesServerHello(t *testing.T) {
	p, srv, _ := newTestPipeline(t)
	srv.sendTick(p.sock.LocalEndpoint(), 0, wire.MsgServerHello, wire.ServerHello{AssignedPlayerID: 7})

	waitFor(t, time.Second, p.JoinAccepted)
	if p.AssignedPlayerID() != 7 {
		t.Errorf("expected assigned player id 7, got %d", p.AssignedPlayerID())
	}
}

func TestPipeline_RoutesJoinDenyWithReason(t *testing.T) {
	p, srv, _ := newTestPipeline(t)
	srv.sendTick(p.sock.LocalEndpoint(), 0, wire.MsgServerJoinDeny, wire.ServerJoinDeny{Reason: "room full"})

	waitFor(t, time.Second, func() bool { denied, _ := p.JoinDenied(); return denied })
	_, reason := p.JoinDenied()
	if reason != "room full" {
		t.Errorf("expected deny reason %q, got %q", "room full", reason)
	}
}

func TestPipeline_GameStartSetsHandshakeDone(t *testing.T) {
	p, srv, _ := newTestPipeline(t)
	srv.sendTick(p.sock.LocalEndpoint(), 0, wire.MsgGameStart, wire.GameStart{})

	waitFor(t, time.Second, p.HandshakeDone)
	if !p.GameStarted() {
		t.Error("expected GameStarted to report true")
	}
}

func TestPipeline_SnapshotArrivesOnQueue(t *testing.T) {
	p, srv, _ := newTestPipeline(t)
	ent := fullEntity(1, 3, 4, 10)
	srv.sendTick(p.sock.LocalEndpoint(), 5, wire.MsgSnapshot, wire.Snapshot{LastInputAckSeq: 9, Entities: []wire.EntitySnapshot{ent}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, ok := p.SnapshotQ.WaitPop(ctx)
	if !ok {
		t.Fatal("timed out waiting for snapshot")
	}
	if snap.Tick != 5 {
		t.Errorf("expected tick 5, got %d", snap.Tick)
	}
	if len(snap.Entities) != 1 || snap.Entities[0].EntityID != 1 {
		t.Errorf("unexpected entities: %+v", snap.Entities)
	}
}

func TestPipeline_ReassemblesChunkedSnapshot(t *testing.T) {
	p, srv, _ := newTestPipeline(t)
	dst := p.sock.LocalEndpoint()

	chunk0 := wire.SnapshotChunk{ChunkIndex: 0, ChunkCount: 2, LastInputAckSeq: 1, Entities: []wire.EntitySnapshot{fullEntity(1, 0, 0, 10)}}
	chunk1 := wire.SnapshotChunk{ChunkIndex: 1, ChunkCount: 2, LastInputAckSeq: 1, Entities: []wire.EntitySnapshot{fullEntity(2, 1, 1, 20)}}
	srv.sendTick(dst, 8, wire.MsgSnapshotChunk, chunk0)
	srv.sendTick(dst, 8, wire.MsgSnapshotChunk, chunk1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, ok := p.SnapshotQ.WaitPop(ctx)
	if !ok {
		t.Fatal("timed out waiting for reassembled snapshot")
	}
	if snap.Tick != 8 {
		t.Errorf("expected tick 8, got %d", snap.Tick)
	}
	if len(snap.Entities) != 2 {
		t.Errorf("expected 2 reassembled entities, got %d", len(snap.Entities))
	}
}

func TestPipeline_DropsPacketsFromUnknownSource(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	other, err := transport.Open("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer other.Close()

	buf, err := wire.Encode(wire.ServerToClient, wire.MsgServerHello, 1, 0, wire.ServerHello{AssignedPlayerID: 99}.Marshal())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, tag := other.SendTo(buf, p.sock.LocalEndpoint()); tag != transport.Ok {
		t.Fatalf("SendTo: tag=%v", tag)
	}

	time.Sleep(100 * time.Millisecond)
	if p.JoinAccepted() {
		t.Error("expected packet from an unconfigured source to be dropped")
	}
}

func TestPipeline_DropsStaleSnapshotTick(t *testing.T) {
	p, srv, _ := newTestPipeline(t)
	dst := p.sock.LocalEndpoint()

	srv.sendTick(dst, 10, wire.MsgSnapshot, wire.Snapshot{Entities: []wire.EntitySnapshot{fullEntity(1, 0, 0, 1)}})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	if _, ok := p.SnapshotQ.WaitPop(ctx); !ok {
		cancel()
		t.Fatal("timed out waiting for first snapshot")
	}
	cancel()

	srv.sendTick(dst, 2, wire.MsgSnapshot, wire.Snapshot{Entities: []wire.EntitySnapshot{fullEntity(2, 0, 0, 1)}})
	ctx2, cancel2 := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel2()
	if snap, ok := p.SnapshotQ.WaitPop(ctx2); ok {
		t.Fatalf("expected stale tick 2 to be dropped, got %+v", snap)
	}
}
