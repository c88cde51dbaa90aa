// Package lobby implements the UDP control-plane spec.md §4.J describes:
// a single receive loop on the well-known lobby port that serves the room
// catalog, room lifecycle, and account commands, forwarding everything
// gameplay-related to the per-room instances internal/lobbymgr owns.
package lobby

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/voidrunner/arcade/internal/auth"
	"github.com/voidrunner/arcade/internal/config"
	"github.com/voidrunner/arcade/internal/lobbymgr"
	"github.com/voidrunner/arcade/internal/transport"
	"github.com/voidrunner/arcade/internal/wire"
)

// difficultyNames maps the wire protocol's uint8 difficulty code to the
// config.InstanceConfig.Difficulties key an instance is created with.
// Index 0 is also the fallback for an out-of-range code.
var difficultyNames = []string{"normal", "hard", "ranked"}

func difficultyName(code uint8) string {
	if int(code) < len(difficultyNames) {
		return difficultyNames[code]
	}
	return difficultyNames[0]
}

func difficultyCode(name string) uint8 {
	for i, n := range difficultyNames {
		if n == name {
			return uint8(i)
		}
	}
	return 0
}

// accountSession is what the dispatcher remembers about an authenticated
// endpoint: just enough to call back into internal/auth, which identifies
// accounts by login rather than by id for password changes.
type accountSession struct {
	accountID int64
	login     string
}

// Dispatcher owns the lobby's single UDP socket. Unlike a game instance it
// has no tick loop to synchronize state against, so its receive loop
// handles each request to completion inline rather than handing work off
// to a queue.
type Dispatcher struct {
	sock    *transport.Socket
	mgr     *lobbymgr.Manager
	authSvc *auth.Service
	cfg     config.LobbyConfig
	log     *slog.Logger

	mu     sync.Mutex
	authed map[transport.Endpoint]accountSession
}

// NewDispatcher opens the lobby's bind address and returns a Dispatcher
// ready to Run.
func NewDispatcher(bindAddr string, mgr *lobbymgr.Manager, authSvc *auth.Service, cfg config.LobbyConfig, log *slog.Logger) (*Dispatcher, error) {
	sock, err := transport.Open(bindAddr)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		sock:    sock,
		mgr:     mgr,
		authSvc: authSvc,
		cfg:     cfg,
		log:     log,
		authed:  make(map[transport.Endpoint]accountSession),
	}, nil
}

// LocalEndpoint returns the lobby's bound endpoint.
func (d *Dispatcher) LocalEndpoint() transport.Endpoint { return d.sock.LocalEndpoint() }

// Run polls the socket and periodically sweeps empty rooms until ctx is
// cancelled. It does not return an error on a clean shutdown; Close should
// be called separately once Run returns.
func (d *Dispatcher) Run(ctx context.Context) {
	buf := make([]byte, 2048)
	cleanupPeriod := time.Duration(d.cfg.CleanupPeriod) * time.Second
	if cleanupPeriod <= 0 {
		cleanupPeriod = 10 * time.Second
	}
	nextCleanup := time.Now().Add(cleanupPeriod)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, from, tag := transport.Poll(ctx, d.sock, buf)

		now := time.Now()
		if now.After(nextCleanup) {
			d.mgr.CleanupEmpty()
			nextCleanup = now.Add(cleanupPeriod)
		}

		if tag == transport.Closed {
			return
		}
		if tag != transport.Ok {
			continue
		}

		frame, err := wire.Decode(buf[:n])
		if err != nil {
			d.log.Debug("dropped malformed packet", "from", from, "err", err)
			continue
		}
		if frame.Header.PacketType != wire.ClientToServer {
			continue
		}
		d.handle(ctx, from, frame)
	}
}

// Close releases the lobby socket.
func (d *Dispatcher) Close() error { return d.sock.Close() }

func (d *Dispatcher) handle(ctx context.Context, from transport.Endpoint, frame wire.Frame) {
	payload, err := wire.DecodePayload(frame.Header.MessageType, frame.Payload)
	if err != nil {
		d.log.Debug("dropped malformed payload", "from", from, "messageType", frame.Header.MessageType, "err", err)
		return
	}
	seq := frame.Header.SequenceID

	switch m := payload.(type) {
	case wire.ListRooms:
		d.handleListRooms(from, seq)
	case wire.LoginRequest:
		d.handleLogin(ctx, from, seq, m)
	case wire.RegisterRequest:
		d.handleRegister(ctx, from, seq, m)
	case wire.ChangePasswordRequest:
		d.handleChangePassword(ctx, from, seq, m)
	case wire.GetStatsRequest:
		d.handleGetStats(ctx, from, seq)
	case wire.CreateRoom:
		d.handleCreateRoom(ctx, from, seq, m)
	case wire.JoinRoom:
		d.handleJoinRoom(from, seq, m)
	default:
		d.log.Debug("lobby: unexpected message type", "from", from, "messageType", frame.Header.MessageType)
	}
}

func (d *Dispatcher) send(mt wire.MessageType, seq uint16, payload interface{ Marshal() []byte }, dst transport.Endpoint) {
	buf, err := wire.Encode(wire.ServerToClient, mt, seq, 0, payload.Marshal())
	if err != nil {
		d.log.Error("failed to encode lobby response", "messageType", mt, "err", err)
		return
	}
	if _, tag := d.sock.SendTo(buf, dst); tag != transport.Ok && !tag.Transient() {
		d.log.Debug("lobby sendTo failed", "dst", dst, "tag", tag)
	}
}

// requireAuth reports whether from has an authenticated session, replying
// AuthRequired and returning false otherwise — spec.md §4.J's "commands
// other than list/login/register require a prior LoginResponse(Success)."
func (d *Dispatcher) requireAuth(from transport.Endpoint, seq uint16) (accountSession, bool) {
	d.mu.Lock()
	s, ok := d.authed[from]
	d.mu.Unlock()
	if !ok {
		d.send(wire.MsgAuthRequired, seq, wire.AuthRequired{}, from)
		return accountSession{}, false
	}
	return s, true
}

func (d *Dispatcher) handleListRooms(from transport.Endpoint, seq uint16) {
	rooms := d.mgr.All()
	summaries := make([]wire.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		state := uint8(0)
		if r.GameStarted {
			state = 1
		}
		summaries = append(summaries, wire.RoomSummary{
			RoomID:     r.RoomID,
			Name:       r.Params.Name,
			PlayerCnt:  uint8(r.PlayerCount),
			Capacity:   uint8(r.Params.Capacity),
			State:      state,
			Visibility: r.Params.Visibility,
			Difficulty: difficultyCode(r.Params.Difficulty),
		})
	}
	d.send(wire.MsgRoomList, seq, wire.RoomList{Rooms: summaries}, from)
}

func (d *Dispatcher) handleLogin(ctx context.Context, from transport.Endpoint, seq uint16, m wire.LoginRequest) {
	accountID, err := d.authSvc.Login(ctx, m.Username, m.Password)
	if err != nil {
		d.send(wire.MsgLoginResponse, seq, wire.LoginResponse{Success: false, Reason: err.Error()}, from)
		return
	}
	d.mu.Lock()
	d.authed[from] = accountSession{accountID: accountID, login: m.Username}
	d.mu.Unlock()
	d.send(wire.MsgLoginResponse, seq, wire.LoginResponse{Success: true}, from)
}

func (d *Dispatcher) handleRegister(ctx context.Context, from transport.Endpoint, seq uint16, m wire.RegisterRequest) {
	accountID, err := d.authSvc.Register(ctx, m.Username, m.Password)
	if err != nil {
		d.send(wire.MsgRegisterResponse, seq, wire.RegisterResponse{Success: false, Reason: err.Error()}, from)
		return
	}
	d.mu.Lock()
	d.authed[from] = accountSession{accountID: accountID, login: m.Username}
	d.mu.Unlock()
	d.send(wire.MsgRegisterResponse, seq, wire.RegisterResponse{Success: true}, from)
}

func (d *Dispatcher) handleChangePassword(ctx context.Context, from transport.Endpoint, seq uint16, m wire.ChangePasswordRequest) {
	s, ok := d.requireAuth(from, seq)
	if !ok {
		return
	}
	err := d.authSvc.ChangePassword(ctx, s.accountID, s.login, m.OldPassword, m.NewPassword)
	if err != nil {
		d.send(wire.MsgChangePasswordResponse, seq, wire.ChangePasswordResponse{Success: false, Reason: err.Error()}, from)
		return
	}
	d.send(wire.MsgChangePasswordResponse, seq, wire.ChangePasswordResponse{Success: true}, from)
}

func (d *Dispatcher) handleGetStats(ctx context.Context, from transport.Endpoint, seq uint16) {
	s, ok := d.requireAuth(from, seq)
	if !ok {
		return
	}
	stats, err := d.authSvc.Stats(ctx, s.accountID)
	if err != nil {
		d.log.Debug("lobby: stats lookup failed", "account", s.accountID, "err", err)
		d.send(wire.MsgGetStatsResponse, seq, wire.GetStatsResponse{}, from)
		return
	}
	d.send(wire.MsgGetStatsResponse, seq, wire.GetStatsResponse{
		GamesPlayed: uint32(stats.GamesPlayed),
		HighScore:   uint32(stats.HighScore),
		TotalKills:  uint32(stats.TotalScore),
	}, from)
}

// handleCreateRoom allocates a new instance via the instance manager.
// There is no dedicated "room creation failed" message in the wire
// protocol, so failures reuse JoinFailed — the same "here is why you can't
// get a room/port" shape a client already has to handle for JoinRoom.
func (d *Dispatcher) handleCreateRoom(ctx context.Context, from transport.Endpoint, seq uint16, m wire.CreateRoom) {
	if _, ok := d.requireAuth(from, seq); !ok {
		return
	}
	params := lobbymgr.RoomParams{
		Name:         m.Name,
		Capacity:     int(m.Capacity),
		Visibility:   m.Visibility,
		PasswordHash: m.PasswordHash,
		Difficulty:   difficultyName(m.Difficulty),
	}
	roomID, port, err := d.mgr.Create(ctx, params)
	if err != nil {
		d.send(wire.MsgJoinFailed, seq, wire.JoinFailed{Reason: err.Error()}, from)
		return
	}
	d.send(wire.MsgRoomCreated, seq, wire.RoomCreated{RoomID: roomID, Port: port}, from)
}

func (d *Dispatcher) handleJoinRoom(from transport.Endpoint, seq uint16, m wire.JoinRoom) {
	if _, ok := d.requireAuth(from, seq); !ok {
		return
	}
	info, err := d.mgr.Get(m.RoomID)
	if err != nil {
		d.send(wire.MsgJoinFailed, seq, wire.JoinFailed{Reason: "room not found"}, from)
		return
	}
	if info.Params.PasswordHash != "" && info.Params.PasswordHash != m.PasswordHash {
		d.send(wire.MsgJoinFailed, seq, wire.JoinFailed{Reason: "invalid password"}, from)
		return
	}
	if info.GameStarted {
		d.send(wire.MsgJoinFailed, seq, wire.JoinFailed{Reason: "game already in progress"}, from)
		return
	}
	if info.PlayerCount >= info.Params.Capacity {
		d.send(wire.MsgJoinFailed, seq, wire.JoinFailed{Reason: "room full"}, from)
		return
	}
	d.send(wire.MsgJoinSuccess, seq, wire.JoinSuccess{RoomID: info.RoomID, Port: info.Port}, from)
}
