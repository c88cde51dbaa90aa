// Package lobbymgr implements the instance manager spec.md §4.I
// describes: it allocates rooms under a capacity cap, maps room ids to
// game ports deterministically, and periodically reaps rooms observed
// empty for long enough. A single mutex guards the instance map; game
// ticks never run while it is held.
package lobbymgr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/voidrunner/arcade/internal/config"
	"github.com/voidrunner/arcade/internal/instance"
	"github.com/voidrunner/arcade/internal/metrics"
)

// ErrCapacityReached is returned by Create once maxInstances rooms are
// already allocated.
var ErrCapacityReached = errors.New("lobbymgr: instance capacity reached")

// ErrNotFound is returned by Get/Destroy for an unknown room id.
var ErrNotFound = errors.New("lobbymgr: room not found")

// RoomParams is the caller-supplied half of a room's creation request —
// the lobby-catalog metadata that isn't part of instance.Spec because the
// instance package has no notion of names or passwords.
type RoomParams struct {
	Name         string
	Capacity     int
	Visibility   uint8
	PasswordHash string
	Difficulty   string
}

// managedRoom bundles a running instance with its catalog metadata and
// the bookkeeping cleanupEmpty needs.
type managedRoom struct {
	RoomID uint32
	Port   uint16
	Params RoomParams

	inst        *instance.Instance
	cancel      context.CancelFunc
	emptySweeps int
}

// Manager owns every room this process hosts.
type Manager struct {
	bindHost     string
	basePort     int
	maxInstances int
	cfg          config.InstanceConfig
	sampler      *metrics.Sampler
	log          *slog.Logger

	mu       sync.Mutex
	rooms    map[uint32]*managedRoom
	nextRoom uint32
}

// New builds a Manager. bindHost is the interface each instance's private
// socket binds to; basePort + roomId is that instance's port, per
// spec.md §4.I.
func New(bindHost string, basePort, maxInstances int, cfg config.InstanceConfig, sampler *metrics.Sampler, log *slog.Logger) *Manager {
	return &Manager{
		bindHost:     bindHost,
		basePort:     basePort,
		maxInstances: maxInstances,
		cfg:          cfg,
		sampler:      sampler,
		log:          log,
		rooms:        make(map[uint32]*managedRoom),
	}
}

// Create allocates a new room, binds its private game socket, and starts
// its tick loop on a background goroutine. The room runs under a child of
// ctx: it stops when Destroy is called for it or when ctx is done.
func (m *Manager) Create(ctx context.Context, params RoomParams) (roomID uint32, port uint16, err error) {
	m.mu.Lock()
	if len(m.rooms) >= m.maxInstances {
		m.mu.Unlock()
		return 0, 0, ErrCapacityReached
	}
	m.nextRoom++
	id := m.nextRoom
	p := m.basePort + int(id)
	m.mu.Unlock()

	spec := instance.Spec{
		RoomID:     id,
		Capacity:   params.Capacity,
		Difficulty: params.Difficulty,
		BindAddr:   fmt.Sprintf("%s:%d", m.bindHost, p),
	}
	inst, err := instance.New(spec, m.cfg, m.log.With("room", id), m.sampler)
	if err != nil {
		return 0, 0, fmt.Errorf("lobbymgr: creating instance for room %d: %w", id, err)
	}

	roomCtx, cancel := context.WithCancel(ctx)
	room := &managedRoom{RoomID: id, Port: uint16(p), Params: params, inst: inst, cancel: cancel}

	m.mu.Lock()
	m.rooms[id] = room
	m.mu.Unlock()

	go func() {
		if err := inst.Run(roomCtx); err != nil {
			m.log.Error("instance exited with error", "room", id, "err", err)
		}
		m.mu.Lock()
		delete(m.rooms, id)
		m.mu.Unlock()
	}()

	return id, uint16(p), nil
}

// Destroy stops and removes a room.
func (m *Manager) Destroy(roomID uint32) error {
	m.mu.Lock()
	room, ok := m.rooms[roomID]
	if ok {
		delete(m.rooms, roomID)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	room.cancel()
	return nil
}

// RoomInfo is a read-only snapshot of one room's catalog entry, safe to
// hold onto after the mutex is released.
type RoomInfo struct {
	RoomID      uint32
	Port        uint16
	Params      RoomParams
	PlayerCount int
	GameStarted bool
}

func snapshot(r *managedRoom) RoomInfo {
	return RoomInfo{
		RoomID:      r.RoomID,
		Port:        r.Port,
		Params:      r.Params,
		PlayerCount: r.inst.PlayerCount(),
		GameStarted: r.inst.GameStarted(),
	}
}

// Get returns one room's catalog snapshot.
func (m *Manager) Get(roomID uint32) (RoomInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return RoomInfo{}, ErrNotFound
	}
	return snapshot(room), nil
}

// All returns a snapshot of every room currently tracked. Order is
// unspecified.
func (m *Manager) All() []RoomInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, snapshot(r))
	}
	return out
}

// emptySweepThreshold is how many consecutive CleanupEmpty calls a room
// must be observed with zero players before it is destroyed — spec.md
// §4.I's "destroys instances observed empty for long enough."
const emptySweepThreshold = 2

// CleanupEmpty destroys every room that has had zero players for
// emptySweepThreshold consecutive calls. Intended to be called on a
// config.LobbyConfig.CleanupPeriod timer from the owning process.
func (m *Manager) CleanupEmpty() {
	var toDestroy []uint32

	m.mu.Lock()
	for id, r := range m.rooms {
		if r.inst.PlayerCount() == 0 {
			r.emptySweeps++
			if r.emptySweeps >= emptySweepThreshold {
				toDestroy = append(toDestroy, id)
			}
		} else {
			r.emptySweeps = 0
		}
	}
	m.mu.Unlock()

	for _, id := range toDestroy {
		if err := m.Destroy(id); err != nil {
			m.log.Debug("cleanup: room already gone", "room", id)
		} else {
			m.log.Info("cleanup: destroyed empty room", "room", id)
		}
	}
}

// Count returns the number of rooms currently tracked.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}
