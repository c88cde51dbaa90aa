package client

import (
	"context"
	"testing"
	"time"

	"github.com/voidrunner/arcade/internal/config"
	"github.com/voidrunner/arcade/internal/instance"
)

func testInstanceConfig() config.InstanceConfig {
	cfg := config.DefaultInstance()
	cfg.InactivityTimeout = time.Second
	return cfg
}

func newTestInstance(t *testing.T) *instance.Instance {
	t.Helper()
	inst, err := instance.New(instance.Spec{RoomID: 1, Capacity: 2, Difficulty: "normal", BindAddr: "127.0.0.1:0"}, testInstanceConfig(), discardLogger(), nil)
	if err != nil {
		t.Fatalf("instance.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = inst.Run(ctx) }()
	t.Cleanup(cancel)
	return inst
}

func TestClient_HandshakeReachesGameStart(t *testing.T) {
	inst := newTestInstance(t)

	c, err := Dial(Config{ServerAddr: inst.LocalEndpoint().String(), DisplayName: "erin"}, discardLogger())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitFor(t, 3*time.Second, c.Pipeline.HandshakeDone)

	if !c.Pipeline.JoinAccepted() {
		t.Error("expected join to be accepted")
	}
	if c.Pipeline.AssignedPlayerID() == 0 {
		t.Error("expected a nonzero assigned player id")
	}
}

func TestClient_ReplicatesSnapshotsIntoLocalStore(t *testing.T) {
	inst := newTestInstance(t)

	c, err := Dial(Config{ServerAddr: inst.LocalEndpoint().String(), DisplayName: "frank"}, discardLogger())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitFor(t, 3*time.Second, c.Pipeline.HandshakeDone)

	ctx2, cancel2 := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel2()
	snap, ok := c.Pipeline.SnapshotQ.WaitPop(ctx2)
	if !ok {
		t.Fatal("timed out waiting for a post-start snapshot")
	}
	c.Repl.ApplySnapshot(snap)

	if len(snap.Entities) == 0 {
		t.Fatal("expected at least one replicated entity once the game has started")
	}
}
