package lobbymgr

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/voidrunner/arcade/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testManager(t *testing.T, maxInstances int) *Manager {
	t.Helper()
	return New("127.0.0.1", 52000, maxInstances, config.DefaultInstance(), nil, discardLogger())
}

func TestCreate_AllocatesDeterministicPort(t *testing.T) {
	m := testManager(t, 4)
	defer m.Destroy(1)

	roomID, port, err := m.Create(context.Background(), RoomParams{Name: "room-a", Capacity: 4, Difficulty: "normal"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if roomID != 1 {
		t.Errorf("expected first room id 1, got %d", roomID)
	}
	if port != uint16(52000+int(roomID)) {
		t.Errorf("expected port 52001, got %d", port)
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 tracked room, got %d", m.Count())
	}
}

func TestCreate_RefusesOverCapacity(t *testing.T) {
	m := testManager(t, 1)
	id, _, err := m.Create(context.Background(), RoomParams{Name: "only-room", Capacity: 2, Difficulty: "normal"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer m.Destroy(id)

	if _, _, err := m.Create(context.Background(), RoomParams{Name: "overflow", Capacity: 2, Difficulty: "normal"}); err != ErrCapacityReached {
		t.Fatalf("expected ErrCapacityReached, got %v", err)
	}
}

func TestGet_UnknownRoom(t *testing.T) {
	m := testManager(t, 4)
	if _, err := m.Get(999); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDestroy_RemovesRoom(t *testing.T) {
	m := testManager(t, 4)
	id, _, err := m.Create(context.Background(), RoomParams{Name: "to-destroy", Capacity: 2, Difficulty: "normal"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Destroy(id); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := m.Destroy(id); err != ErrNotFound {
		t.Fatalf("expected second Destroy to report ErrNotFound, got %v", err)
	}
}

func TestCleanupEmpty_WaitsForConsecutiveEmptySweeps(t *testing.T) {
	m := testManager(t, 4)
	id, _, err := m.Create(context.Background(), RoomParams{Name: "idle-room", Capacity: 2, Difficulty: "normal"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer m.Destroy(id)

	m.CleanupEmpty()
	if m.Count() != 1 {
		t.Fatalf("expected room to survive the first empty sweep, got count %d", m.Count())
	}
	m.CleanupEmpty()
	if m.Count() != 0 {
		t.Fatalf("expected room destroyed after %d consecutive empty sweeps, got count %d", emptySweepThreshold, m.Count())
	}
}
