package wire

// MessageType is the closed enum of every message this protocol carries.
type MessageType uint8

const (
	MsgUnknown MessageType = iota

	// Handshake
	MsgClientHello
	MsgServerHello
	MsgClientJoinRequest
	MsgServerJoinAccept
	MsgServerJoinDeny
	MsgClientReady
	MsgClientPing
	MsgServerPong

	// Game data
	MsgClientInput
	MsgSnapshot
	MsgSnapshotChunk
	MsgEntitySpawn
	MsgEntityDestroyed
	MsgLevelInit
	MsgLevelEvent
	MsgGameStart
	MsgGameEnd
	MsgPlayerDisconnected
	MsgCountdownTick

	// Lobby
	MsgListRooms
	MsgRoomList
	MsgCreateRoom
	MsgRoomCreated
	MsgJoinRoom
	MsgJoinSuccess
	MsgJoinFailed
	MsgLeaveRoom
	MsgKickPlayer
	MsgPlayerList
	MsgForceStart
	MsgRoomGameStarting
	MsgPlayerKicked
	MsgChat

	// Auth
	MsgLoginRequest
	MsgLoginResponse
	MsgRegisterRequest
	MsgRegisterResponse
	MsgChangePasswordRequest
	MsgChangePasswordResponse
	MsgAuthRequired
	MsgGetStatsRequest
	MsgGetStatsResponse

	// Broadcast / lifecycle
	MsgServerBroadcast
	MsgServerDisconnect

	msgTypeCount
)

func (t MessageType) valid() bool { return t > MsgUnknown && t < msgTypeCount }

// serverOriginated reports whether msgType is only ever sent S→C. Used by
// the direction-enforcement check in Decode.
func serverOriginated(t MessageType) bool {
	switch t {
	case MsgServerHello, MsgServerJoinAccept, MsgServerJoinDeny, MsgServerPong,
		MsgSnapshot, MsgSnapshotChunk, MsgEntitySpawn, MsgEntityDestroyed,
		MsgLevelInit, MsgLevelEvent, MsgGameStart, MsgGameEnd,
		MsgPlayerDisconnected, MsgCountdownTick,
		MsgRoomList, MsgRoomCreated, MsgJoinSuccess, MsgJoinFailed,
		MsgPlayerList, MsgRoomGameStarting, MsgPlayerKicked,
		MsgLoginResponse, MsgRegisterResponse, MsgChangePasswordResponse,
		MsgAuthRequired, MsgGetStatsResponse,
		MsgServerBroadcast, MsgServerDisconnect:
		return true
	default:
		return false
	}
}

// clientOriginated reports whether msgType is only ever sent C→S.
func clientOriginated(t MessageType) bool {
	switch t {
	case MsgClientHello, MsgClientJoinRequest, MsgClientReady, MsgClientPing,
		MsgClientInput, MsgListRooms, MsgCreateRoom, MsgJoinRoom, MsgLeaveRoom,
		MsgKickPlayer, MsgForceStart, MsgLoginRequest, MsgRegisterRequest,
		MsgChangePasswordRequest, MsgGetStatsRequest:
		return true
	default:
		// MsgChat flows both ways (client sends it, server rebroadcasts it).
		return false
	}
}

// directionOK enforces §3/§8: a packet whose packetType contradicts the
// expected direction for the receiver is rejected before decode proceeds.
func directionOK(t MessageType, pt PacketType) bool {
	if serverOriginated(t) {
		return pt == ServerToClient
	}
	if clientOriginated(t) {
		return pt == ClientToServer
	}
	return true
}
