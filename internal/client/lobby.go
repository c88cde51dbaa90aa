package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/voidrunner/arcade/internal/transport"
	"github.com/voidrunner/arcade/internal/wire"
)

// ErrLobbyTimeout is returned once a lobby RPC exhausts its retry budget
// without a matching reply.
var ErrLobbyTimeout = errors.New("client: lobby request timed out")

// lookupDeadline/joinDeadline/maxRetries are spec.md §5's "per-call
// deadlines (typical 500ms for lookups, 5s for join); unanswered
// requests retry up to a small fixed limit."
const (
	lookupDeadline = 500 * time.Millisecond
	joinDeadline   = 5 * time.Second
	maxRPCRetries  = 3
)

// LobbyClient is a thin synchronous request/response wrapper over one UDP
// socket talking to the lobby's control-plane port — used before a
// gameclient connects onward to a room's private game port.
type LobbyClient struct {
	sock *transport.Socket
	addr transport.Endpoint
	seq  uint16
}

// DialLobby opens a local socket on an ephemeral port and resolves the
// lobby address that requests are sent to.
func DialLobby(lobbyAddr string) (*LobbyClient, error) {
	sock, err := transport.Open("0.0.0.0:0")
	if err != nil {
		return nil, fmt.Errorf("client: opening lobby socket: %w", err)
	}
	addr, err := transport.ResolveEndpoint(lobbyAddr)
	if err != nil {
		sock.Close()
		return nil, fmt.Errorf("client: resolving lobby address %s: %w", lobbyAddr, err)
	}
	return &LobbyClient{sock: sock, addr: addr}, nil
}

// Close releases the lobby socket.
func (l *LobbyClient) Close() error { return l.sock.Close() }

func (l *LobbyClient) nextSeq() uint16 {
	l.seq++
	return l.seq
}

// request sends req and waits for the first well-formed reply from the
// lobby, sending up to maxRPCRetries times in all and waiting up to
// deadline for a reply after each send. want
// filters which MessageType values count as the reply (a request can
// have more than one possible success/failure reply type).
func (l *LobbyClient) request(mt wire.MessageType, req interface{ Marshal() []byte }, deadline time.Duration, want ...wire.MessageType) (wire.Frame, error) {
	seq := l.nextSeq()
	buf, err := wire.Encode(wire.ClientToServer, mt, seq, 0, req.Marshal())
	if err != nil {
		return wire.Frame{}, fmt.Errorf("client: encoding %v: %w", mt, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = deadline / 2
	b.MaxElapsedTime = 0

	respBuf := make([]byte, 2048)
	for attempt := 0; attempt < maxRPCRetries; attempt++ {
		if _, tag := l.sock.SendTo(buf, l.addr); tag != transport.Ok && !tag.Transient() {
			return wire.Frame{}, fmt.Errorf("client: sending %v: tag=%v", mt, tag)
		}

		ctx, cancel := context.WithTimeout(context.Background(), deadline)
		for {
			n, from, tag := transport.Poll(ctx, l.sock, respBuf)
			if tag != transport.Ok {
				break
			}
			if from != l.addr {
				continue
			}
			frame, err := wire.Decode(respBuf[:n])
			if err != nil || frame.Header.PacketType != wire.ServerToClient || frame.Header.SequenceID != seq {
				continue
			}
			if !containsType(want, frame.Header.MessageType) {
				continue
			}
			cancel()
			return frame, nil
		}
		cancel()
		time.Sleep(b.NextBackOff())
	}
	return wire.Frame{}, ErrLobbyTimeout
}

func containsType(types []wire.MessageType, mt wire.MessageType) bool {
	for _, t := range types {
		if t == mt {
			return true
		}
	}
	return false
}

// ListRooms fetches the current room catalog.
func (l *LobbyClient) ListRooms() (wire.RoomList, error) {
	frame, err := l.request(wire.MsgListRooms, wire.ListRooms{}, lookupDeadline, wire.MsgRoomList)
	if err != nil {
		return wire.RoomList{}, err
	}
	return wire.UnmarshalRoomList(frame.Payload)
}

// Login authenticates this endpoint against the lobby's AuthService.
func (l *LobbyClient) Login(username, password string) (wire.LoginResponse, error) {
	frame, err := l.request(wire.MsgLoginRequest, wire.LoginRequest{Username: username, Password: password}, lookupDeadline, wire.MsgLoginResponse)
	if err != nil {
		return wire.LoginResponse{}, err
	}
	return wire.UnmarshalLoginResponse(frame.Payload)
}

// Register creates a new account and authenticates this endpoint as it.
func (l *LobbyClient) Register(username, password string) (wire.RegisterResponse, error) {
	frame, err := l.request(wire.MsgRegisterRequest, wire.RegisterRequest{Username: username, Password: password}, lookupDeadline, wire.MsgRegisterResponse)
	if err != nil {
		return wire.RegisterResponse{}, err
	}
	return wire.UnmarshalRegisterResponse(frame.Payload)
}

// CreateRoom asks the lobby to allocate a new room, returning its id and
// game port.
func (l *LobbyClient) CreateRoom(req wire.CreateRoom) (wire.RoomCreated, error) {
	frame, err := l.request(wire.MsgCreateRoom, req, joinDeadline, wire.MsgRoomCreated, wire.MsgJoinFailed)
	if err != nil {
		return wire.RoomCreated{}, err
	}
	if frame.Header.MessageType == wire.MsgJoinFailed {
		deny, derr := wire.UnmarshalJoinFailed(frame.Payload)
		if derr != nil {
			return wire.RoomCreated{}, derr
		}
		return wire.RoomCreated{}, fmt.Errorf("client: create room failed: %s", deny.Reason)
	}
	return wire.UnmarshalRoomCreated(frame.Payload)
}

// JoinRoom asks the lobby to admit this endpoint to roomID, returning the
// game port to reconnect to.
func (l *LobbyClient) JoinRoom(roomID uint32, passwordHash string) (wire.JoinSuccess, error) {
	frame, err := l.request(wire.MsgJoinRoom, wire.JoinRoom{RoomID: roomID, PasswordHash: passwordHash}, joinDeadline, wire.MsgJoinSuccess, wire.MsgJoinFailed)
	if err != nil {
		return wire.JoinSuccess{}, err
	}
	if frame.Header.MessageType == wire.MsgJoinFailed {
		deny, derr := wire.UnmarshalJoinFailed(frame.Payload)
		if derr != nil {
			return wire.JoinSuccess{}, derr
		}
		return wire.JoinSuccess{}, fmt.Errorf("client: join room failed: %s", deny.Reason)
	}
	return wire.UnmarshalJoinSuccess(frame.Payload)
}

// Stats fetches the authenticated account's stats.
func (l *LobbyClient) Stats() (wire.GetStatsResponse, error) {
	frame, err := l.request(wire.MsgGetStatsRequest, wire.GetStatsRequest{}, lookupDeadline, wire.MsgGetStatsResponse, wire.MsgAuthRequired)
	if err != nil {
		return wire.GetStatsResponse{}, err
	}
	if frame.Header.MessageType == wire.MsgAuthRequired {
		return wire.GetStatsResponse{}, errors.New("client: login required")
	}
	return wire.UnmarshalGetStatsResponse(frame.Payload)
}
