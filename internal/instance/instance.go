// Package instance implements spec.md §4.H's self-contained per-room
// runtime: a private UDP socket, an entity store and session table owned
// exclusively by the tick thread, and a fixed-timestep loop that drains
// control and input queues, steps the simulation, resolves collisions,
// replicates state, and logs housekeeping stats once per bandwidth
// interval.
package instance

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.uber.org/multierr"

	"github.com/voidrunner/arcade/internal/config"
	"github.com/voidrunner/arcade/internal/entity"
	"github.com/voidrunner/arcade/internal/metrics"
	"github.com/voidrunner/arcade/internal/queue"
	"github.com/voidrunner/arcade/internal/replication"
	"github.com/voidrunner/arcade/internal/session"
	"github.com/voidrunner/arcade/internal/transport"
	"github.com/voidrunner/arcade/internal/wire"
)

// Spec is what the instance manager hands a new Instance at creation time
// (spec.md §4.I): which room it serves, its capacity and difficulty, and
// the address to bind its private game socket to.
type Spec struct {
	RoomID     uint32
	Capacity   int
	Difficulty string
	BindAddr   string
	LevelID    uint16
	Waves      []wire.Wave
}

// startingLives is how many attempts a player has before elimination —
// gameplay content out of this subsystem's scope, held fixed per spec.md §1.
const startingLives = 3

// Instance runs one room's game loop on its own goroutine set: a receive
// worker, a send worker, and the tick loop itself.
type Instance struct {
	spec Spec
	cfg  config.InstanceConfig
	diff config.DifficultyPreset
	log  *slog.Logger

	sock *transport.Socket

	store   *entity.Store
	table   *session.Table
	repl    *replication.Engine
	level   *LevelDirector
	systems []System
	rng     *rand.Rand
	events  *EventLog

	inputQ *queue.Queue[InputEvent]
	ctrlQ  *queue.Queue[ControlEvent]
	egQ    *queue.Queue[OutboundPacket]

	recv *ReceiveWorker
	send *SendWorker

	players map[transport.Endpoint]entity.ID
	metrics *metrics.Sampler

	tick    uint64
	started bool

	cancel context.CancelFunc
}

// New builds an Instance bound to spec.BindAddr. The socket is opened
// eagerly so a bind failure surfaces before the instance is registered
// with the manager.
func New(spec Spec, cfg config.InstanceConfig, log *slog.Logger, sampler *metrics.Sampler) (*Instance, error) {
	sock, err := transport.Open(spec.BindAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBindFailed, err)
	}

	diff, ok := cfg.Difficulties[spec.Difficulty]
	if !ok {
		diff = config.DifficultyPreset{EnemyHealthMultiplier: 1, EnemyFireRateMultiplier: 1, ScoreMultiplier: 1}
	}

	levelID, waves := spec.LevelID, spec.Waves
	if len(waves) == 0 {
		levelID, waves = DefaultLevelScript()
	}

	inputQ := queue.New[InputEvent](cfg.InputQueueSize)
	ctrlQ := queue.New[ControlEvent](cfg.ControlQueueSize)
	egQ := queue.New[OutboundPacket](cfg.ControlQueueSize)

	inst := &Instance{
		spec:    spec,
		cfg:     cfg,
		diff:    diff,
		log:     log.With("room", spec.RoomID),
		sock:    sock,
		store:   entity.New(),
		table:   session.NewTable(),
		repl:    replication.NewEngine(),
		level:   NewLevelDirector(levelID, waves),
		systems: DefaultSystems(),
		rng:     rand.New(rand.NewPCG(uint64(spec.RoomID), uint64(spec.RoomID)^0x9e3779b97f4a7c15)),
		events:  newEventLog(),
		inputQ:  inputQ,
		ctrlQ:   ctrlQ,
		egQ:     egQ,
		players: make(map[transport.Endpoint]entity.ID),
		metrics: sampler,
	}
	inst.recv = NewReceiveWorker(sock, inputQ, ctrlQ, cfg.InactivityTimeout, inst.log.With("worker", "receive"))
	inst.send = NewSendWorker(sock, egQ, cfg.SnapshotRateHz, inst.log.With("worker", "send"))
	return inst, nil
}

// LocalEndpoint returns the instance's bound game-port endpoint.
func (inst *Instance) LocalEndpoint() transport.Endpoint { return inst.sock.LocalEndpoint() }

// PlayerCount returns the number of sessions currently tracked, the value
// the lobby dispatcher's room-catalog refresh polls (spec.md §4.J).
func (inst *Instance) PlayerCount() int { return inst.table.Count() }

// GameStarted reports whether this instance has left the pre-start state.
func (inst *Instance) GameStarted() bool { return inst.table.GameStarted() }

// Run starts the receive worker, send worker, and tick loop, and blocks
// until ctx is cancelled or Stop is called. Worker shutdown errors are
// aggregated with multierr and returned once every goroutine has exited.
func (inst *Instance) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	inst.cancel = cancel
	defer cancel()

	done := make(chan struct{}, 2)
	go func() { inst.recv.Run(ctx); done <- struct{}{} }()
	go func() { inst.send.Run(ctx); done <- struct{}{} }()

	tickErr := inst.runTickLoop(ctx)

	cancel()
	<-done
	<-done
	inst.egQ.Close()

	return multierr.Append(tickErr, inst.sock.Close())
}

// Stop requests the instance's workers and tick loop exit at the next
// cooperative check point (spec.md §5's process-wide running flag).
func (inst *Instance) Stop() {
	if inst.cancel != nil {
		inst.cancel()
	}
}

func (inst *Instance) runTickLoop(ctx context.Context) error {
	interval := inst.cfg.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bandwidthTicker := time.NewTicker(inst.cfg.BandwidthLogInterval)
	defer bandwidthTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-bandwidthTicker.C:
			inst.logBandwidth(ctx)
		case now := <-ticker.C:
			inst.step(now, float32(interval.Seconds()))
			if inst.table.Count() == 0 && inst.started {
				inst.resetWorld()
			}
		}
	}
}

// step runs one full tick: spec.md §4.H's seven ordered phases.
func (inst *Instance) step(now time.Time, dt float32) {
	inst.tick++

	inst.drainControl(now)
	inst.checkStartGate()
	inst.drainInput(now)

	inst.events.reset()
	tctx := &TickContext{
		Store:                    inst.store,
		DT:                       dt,
		Tick:                     inst.tick,
		Difficulty:               inst.diff,
		Level:                    inst.level,
		RNG:                      inst.rng,
		RespawnInvincibilitySecs: float32(inst.cfg.RespawnInvincibilitySecs),
		RespawnDelaySecs:         float32(inst.cfg.RespawnDelaySeconds),
		Events:                   inst.events,
	}
	inst.runSystems(tctx)

	for _, dmg := range CollisionAndDamage(tctx) {
		inst.handleDamage(dmg, tctx)
	}

	if len(inst.events.Deaths) > 0 || len(inst.events.SpawnedEnemy) > 0 {
		inst.log.Debug("tick events", "tick", inst.tick,
			"deaths", len(inst.events.Deaths), "spawnedEnemy", len(inst.events.SpawnedEnemy))
	}

	inst.replicate()
}

// runSystems executes every default system, isolating a panic to the
// system that raised it so one bad system never aborts the tick — spec.md
// §4.H's "any exception from a simulation system aborts only that
// system's work for the tick" failure semantic.
func (inst *Instance) runSystems(ctx *TickContext) {
	for _, sys := range inst.systems {
		inst.runSystemSafely(sys, ctx)
	}
}

func (inst *Instance) runSystemSafely(sys System, ctx *TickContext) {
	defer func() {
		if r := recover(); r != nil {
			inst.log.Error("simulation system panicked, skipping for this tick", "panic", r)
		}
	}()
	sys.Update(ctx)
}

func (inst *Instance) drainControl(now time.Time) {
	for {
		ev, ok := inst.ctrlQ.TryPop()
		if !ok {
			return
		}
		inst.handleControl(ev, now)
	}
}

func (inst *Instance) handleControl(ev ControlEvent, now time.Time) {
	switch ev.Kind {
	case ControlHello:
		inst.table.OnHello(ev.Endpoint, now)
		inst.send.SendTo(inst.encode(wire.MsgServerHello, ev.Seq, wire.ServerHello{}), ev.Endpoint)

	case ControlJoin:
		result := inst.table.OnJoinRequest(ev.Endpoint, ev.Join.DisplayName, now)
		if !result.Accepted {
			inst.send.SendTo(inst.encode(wire.MsgServerJoinDeny, ev.Seq, wire.ServerJoinDeny{Reason: result.Reason}), ev.Endpoint)
			return
		}
		inst.send.RegisterClient(ev.Endpoint)
		inst.send.SendTo(inst.encode(wire.MsgServerJoinAccept, ev.Seq, wire.ServerJoinAccept{PlayerID: result.PlayerID}), ev.Endpoint)
		inst.broadcastPlayerList()

	case ControlReady:
		if inst.table.OnReady(ev.Endpoint, now) {
			inst.broadcastPlayerList()
		}

	case ControlPing:
		inst.send.SendTo(inst.encode(wire.MsgServerPong, ev.Seq, wire.ServerPong{Nonce: ev.Ping.Nonce}), ev.Endpoint)

	case ControlDisconnect, ControlTimeout:
		inst.dropSession(ev.Endpoint)

	case ControlForceStart:
		inst.startGame()

	case ControlChat:
		inst.broadcast(wire.MsgChat, ev.Chat)

	case ControlKick:
		inst.handleKick(ev.Kick.PlayerID)
	}
}

// broadcastPlayerList re-announces the room roster, sent on every join,
// ready, and disconnect so clients waiting in the lobby see an accurate
// player list before GameStart.
func (inst *Instance) broadcastPlayerList() {
	sessions := inst.table.All()
	summaries := make([]wire.PlayerSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, wire.PlayerSummary{
			PlayerID: s.PlayerID,
			Name:     s.DisplayName,
			Ready:    s.State == session.StateReady || s.State == session.StatePlaying,
		})
	}
	inst.broadcast(wire.MsgPlayerList, wire.PlayerList{Players: summaries})
}

// handleKick drops whichever tracked session carries playerID, notifying it
// with a PlayerKicked before the disconnect broadcast goes out. The wire
// protocol carries no notion of room ownership, so any connected session may
// issue a kick — access control over who may call it belongs to a layer
// above this one.
func (inst *Instance) handleKick(playerID uint32) {
	for _, s := range inst.table.All() {
		if s.PlayerID == playerID {
			inst.send.SendTo(inst.encode(wire.MsgPlayerKicked, 0, wire.PlayerKicked{Reason: "kicked"}), s.Endpoint)
			inst.dropSession(s.Endpoint)
			return
		}
	}
}

func (inst *Instance) dropSession(ep transport.Endpoint) {
	s, ok := inst.table.Disconnect(ep)
	if !ok {
		return
	}
	inst.send.UnregisterClient(ep)
	if id, ok := inst.players[ep]; ok {
		inst.store.DestroyEntity(id)
		inst.repl.Forget(id)
		delete(inst.players, ep)
	}
	inst.broadcast(wire.MsgPlayerDisconnected, wire.PlayerDisconnected{PlayerID: s.PlayerID})
	inst.broadcastPlayerList()
}

// checkStartGate implements spec.md §4.H step 2: once every tracked
// session has reached Ready, start the game.
func (inst *Instance) checkStartGate() {
	if inst.started || !inst.table.AllReady() {
		return
	}
	inst.startGame()
}

// startGame flips the instance to the playing phase, spawning a player
// entity per tracked session and broadcasting GameStart then LevelInit.
// Reachable either through the normal all-ready gate or a ForceStart
// control event that bypasses it.
func (inst *Instance) startGame() {
	if inst.started {
		return
	}
	inst.started = true
	inst.table.MarkGameStarted()
	for _, s := range inst.table.All() {
		inst.spawnPlayer(s)
	}
	inst.broadcast(wire.MsgGameStart, wire.GameStart{})
	inst.broadcast(wire.MsgLevelInit, inst.level.LevelInit())
}

func (inst *Instance) spawnPlayer(s *session.ClientSession) {
	id := inst.store.CreateEntity()
	entity.Emplace(inst.store, id, entity.Transform{X: checkpointX, Y: checkpointY, Scale: 1})
	entity.Emplace(inst.store, id, entity.Velocity{})
	entity.Emplace(inst.store, id, entity.Health{Current: 100, Max: 100})
	entity.Emplace(inst.store, id, entity.Tag(entity.TagPlayer))
	entity.Emplace(inst.store, id, entity.Lives{Current: startingLives, Max: startingLives})
	entity.Emplace(inst.store, id, entity.Score{})
	entity.Emplace(inst.store, id, entity.Hitbox{W: 32, H: 32})
	entity.Emplace(inst.store, id, entity.RenderType{Key: 0})
	inst.players[s.Endpoint] = id
}

// drainInput implements spec.md §4.H step 3: map endpoint-bound inputs to
// entity-bound commands via the session table.
func (inst *Instance) drainInput(now time.Time) {
	for {
		ev, ok := inst.inputQ.TryPop()
		if !ok {
			return
		}
		if _, ok := inst.table.Get(ev.Endpoint); !ok {
			continue
		}
		inst.table.Touch(ev.Endpoint, now, ev.Input.SequenceID)
		id, ok := inst.players[ev.Endpoint]
		if !ok {
			continue
		}
		entity.Emplace(inst.store, id, entity.PlayerInput{
			X: ev.Input.X, Y: ev.Input.Y, Angle: ev.Input.Angle, SequenceID: ev.Input.SequenceID,
		})
		entity.Emplace(inst.store, id, entity.Velocity{VX: ev.Input.X, VY: ev.Input.Y})
	}
}

// handleDamage applies the respawn/elimination policy spec.md §4.H
// describes for any entity a collision reduced to zero health.
func (inst *Instance) handleDamage(dmg DamageEvent, ctx *TickContext) {
	h, ok := entity.Get[entity.Health](inst.store, dmg.Victim)
	if !ok || !h.Dead() {
		return
	}
	lives, isPlayer := entity.Get[entity.Lives](inst.store, dmg.Victim)
	if !isPlayer {
		inst.store.DestroyEntity(dmg.Victim)
		inst.repl.Forget(dmg.Victim)
		ctx.Events.Deaths = append(ctx.Events.Deaths, dmg.Victim)
		return
	}

	if lives.Current == 0 {
		inst.store.DestroyEntity(dmg.Victim)
		inst.repl.Forget(dmg.Victim)
		ctx.Events.Deaths = append(ctx.Events.Deaths, dmg.Victim)
		return
	}
	lives.Current--
	entity.Emplace(inst.store, dmg.Victim, lives)
	entity.Emplace(inst.store, dmg.Victim, entity.Transform{X: -1000, Y: -1000, Scale: 1})
	entity.Emplace(inst.store, dmg.Victim, entity.RespawnTimer{Remaining: ctx.RespawnDelaySecs})
}

// replicate implements spec.md §4.H step 6: run the replication engine
// over every alive entity with a Transform, broadcast spawn/destroy
// events immediately, then publish the (possibly chunked) snapshot at the
// configured rate.
func (inst *Instance) replicate() {
	ids := entity.View1[entity.Transform](inst.store)
	sources := make([]replication.Source, 0, len(ids))
	for _, id := range ids {
		sources = append(sources, inst.replicationSource(id))
	}

	result := inst.repl.Replicate(sources, inst.highestInputSeq())

	for _, sp := range result.Spawned {
		inst.broadcast(wire.MsgEntitySpawn, wire.EntitySpawn{Entity: sp})
	}
	for _, id := range result.Destroyed {
		inst.broadcast(wire.MsgEntityDestroyed, wire.EntityDestroyed{EntityID: uint32(id)})
	}

	frames := make([][]byte, 0, len(result.Frames))
	for _, f := range result.Frames {
		frames = append(frames, inst.encode(f.MessageType, 0, f.Payload))
	}
	if len(frames) > 0 {
		inst.enqueue(OutboundPacket{Kind: OutboundPublish, Frames: frames})
	}
}

func (inst *Instance) replicationSource(id entity.ID) replication.Source {
	tr, _ := entity.Get[entity.Transform](inst.store, id)
	vel, _ := entity.Get[entity.Velocity](inst.store, id)
	h, _ := entity.Get[entity.Health](inst.store, id)
	rt, _ := entity.Get[entity.RenderType](inst.store, id)
	lives, _ := entity.Get[entity.Lives](inst.store, id)
	score, _ := entity.Get[entity.Score](inst.store, id)

	return replication.Source{
		EntityID:   id,
		EntityType: rt.Key,
		PosX:       tr.X, PosY: tr.Y,
		VelX: vel.VX, VelY: vel.VY,
		Health: h.Current,
		Status: 0,
		Lives:  lives.Current,
		Dead:   h.Dead(),
		Score:  score.Value,
	}
}

func (inst *Instance) highestInputSeq() uint32 {
	var max uint32
	for _, s := range inst.table.All() {
		if s.LastInputSeq > max {
			max = s.LastInputSeq
		}
	}
	return max
}

// logBandwidth implements spec.md §4.H step 7's periodic housekeeping log.
func (inst *Instance) logBandwidth(ctx context.Context) {
	if inst.metrics == nil {
		return
	}
	sample := inst.metrics.Sample(ctx)
	inst.log.Info("instance housekeeping",
		"tick", inst.tick,
		"players", inst.table.Count(),
		"malformed_dropped", inst.recv.MalformedCount(),
		"cpu_percent", sample.CPUPercent,
		"rss_bytes", sample.RSSBytes,
	)
}

// resetWorld implements spec.md §4.H's "if the session table becomes
// empty, the instance resets the world and re-enters the pre-start state."
func (inst *Instance) resetWorld() {
	inst.store = entity.New()
	inst.repl = replication.NewEngine()
	inst.players = make(map[transport.Endpoint]entity.ID)
	inst.started = false
	inst.table = session.NewTable()
}

func (inst *Instance) broadcast(mt wire.MessageType, payload interface {
	Marshal() []byte
}) {
	encoded := inst.encode(mt, 0, payload.Marshal())
	inst.enqueue(OutboundPacket{Kind: OutboundBroadcast, Frames: [][]byte{encoded}})
}

// enqueue hands a packet to the send worker, dropping and logging it if
// the egress queue is saturated rather than blocking the tick loop.
func (inst *Instance) enqueue(pkt OutboundPacket) {
	if err := inst.egQ.Push(pkt); err != nil {
		inst.log.Debug("egress queue full, dropping outbound packet", "kind", pkt.Kind)
	}
}

func (inst *Instance) encode(mt wire.MessageType, seq uint16, payload any) []byte {
	var raw []byte
	switch p := payload.(type) {
	case []byte:
		raw = p
	case interface{ Marshal() []byte }:
		raw = p.Marshal()
	}
	buf, err := wire.Encode(wire.ServerToClient, mt, seq, uint32(inst.tick), raw)
	if err != nil {
		inst.log.Error("failed to encode outbound message", "messageType", mt, "err", err)
		return nil
	}
	return buf
}
