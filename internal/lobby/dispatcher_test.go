package lobby

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/voidrunner/arcade/internal/config"
	"github.com/voidrunner/arcade/internal/lobbymgr"
	"github.com/voidrunner/arcade/internal/transport"
	"github.com/voidrunner/arcade/internal/wire"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDispatcher boots a Dispatcher over a loopback socket with a real
// lobbymgr.Manager and no auth backend, starts its receive loop, and
// returns it with a client socket; roundTrip is the send/recv helper. Commands that require
// authentication are out of scope for these tests since wiring a live
// internal/auth.Service needs Postgres.
func newTestDispatcher(t *testing.T) (*Dispatcher, *transport.Socket) {
	t.Helper()
	mgr := lobbymgr.New("127.0.0.1", 53000, 4, config.DefaultInstance(), nil, discardLogger())

	d, err := NewDispatcher("127.0.0.1:0", mgr, nil, config.DefaultLobby(), discardLogger())
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go d.Run(ctx)

	client, err := transport.Open("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Open client socket: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return d, client
}

func roundTrip(t *testing.T, client *transport.Socket, dst transport.Endpoint, mt wire.MessageType, payload interface{ Marshal() []byte }) wire.Frame {
	t.Helper()
	buf, err := wire.Encode(wire.ClientToServer, mt, 1, 0, payload.Marshal())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, tag := client.SendTo(buf, dst); tag != transport.Ok {
		t.Fatalf("SendTo: tag=%v", tag)
	}

	recvBuf := make([]byte, 2048)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n, _, tag := transport.Poll(ctx, client, recvBuf)
	if tag != transport.Ok {
		t.Fatalf("Poll: tag=%v", tag)
	}
	frame, err := wire.Decode(recvBuf[:n])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return frame
}

func TestListRooms_EmptyCatalog(t *testing.T) {
	d, client := newTestDispatcher(t)
	frame := roundTrip(t, client, d.LocalEndpoint(), wire.MsgListRooms, wire.ListRooms{})

	if frame.Header.MessageType != wire.MsgRoomList {
		t.Fatalf("expected RoomList, got messageType %v", frame.Header.MessageType)
	}
	list, err := wire.UnmarshalRoomList(frame.Payload)
	if err != nil {
		t.Fatalf("UnmarshalRoomList: %v", err)
	}
	if len(list.Rooms) != 0 {
		t.Errorf("expected empty room list, got %d rooms", len(list.Rooms))
	}
}

func TestListRooms_ReflectsCreatedRoom(t *testing.T) {
	d, client := newTestDispatcher(t)

	roomID, port, err := d.mgr.Create(context.Background(), lobbymgr.RoomParams{
		Name: "test-room", Capacity: 4, Difficulty: "hard", Visibility: 0,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer d.mgr.Destroy(roomID)

	frame := roundTrip(t, client, d.LocalEndpoint(), wire.MsgListRooms, wire.ListRooms{})
	list, err := wire.UnmarshalRoomList(frame.Payload)
	if err != nil {
		t.Fatalf("UnmarshalRoomList: %v", err)
	}
	if len(list.Rooms) != 1 {
		t.Fatalf("expected 1 room, got %d", len(list.Rooms))
	}
	got := list.Rooms[0]
	if got.RoomID != roomID || got.Name != "test-room" || got.Capacity != 4 {
		t.Errorf("unexpected room summary: %+v", got)
	}
	if got.Difficulty != difficultyCode("hard") {
		t.Errorf("expected difficulty code %d, got %d", difficultyCode("hard"), got.Difficulty)
	}
	_ = port
}

func TestJoinRoom_DeniesWithoutAuth(t *testing.T) {
	d, client := newTestDispatcher(t)
	frame := roundTrip(t, client, d.LocalEndpoint(), wire.MsgJoinRoom, wire.JoinRoom{RoomID: 1})
	if frame.Header.MessageType != wire.MsgAuthRequired {
		t.Fatalf("expected AuthRequired for an unauthenticated JoinRoom, got %v", frame.Header.MessageType)
	}
}

func TestDifficultyCode_RoundTrips(t *testing.T) {
	for i, name := range difficultyNames {
		if difficultyCode(name) != uint8(i) {
			t.Errorf("difficultyCode(%q) = %d, want %d", name, difficultyCode(name), i)
		}
		if difficultyName(uint8(i)) != name {
			t.Errorf("difficultyName(%d) = %q, want %q", i, difficultyName(uint8(i)), name)
		}
	}
	if difficultyName(200) != difficultyNames[0] {
		t.Errorf("expected out-of-range difficulty code to fall back to %q", difficultyNames[0])
	}
}
