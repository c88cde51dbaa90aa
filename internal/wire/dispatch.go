package wire

// DecodePayload dispatches on mt to the matching per-type Unmarshal
// function and returns the typed payload as an any, so routing code (the
// receive worker, the client pipeline) can switch on a Frame's
// MessageType once and get a ready-to-use value back.
func DecodePayload(mt MessageType, payload []byte) (any, error) {
	switch mt {
	case MsgClientHello:
		return UnmarshalClientHello(payload)
	case MsgServerHello:
		return UnmarshalServerHello(payload)
	case MsgClientJoinRequest:
		return UnmarshalClientJoinRequest(payload)
	case MsgServerJoinAccept:
		return UnmarshalServerJoinAccept(payload)
	case MsgServerJoinDeny:
		return UnmarshalServerJoinDeny(payload)
	case MsgClientReady:
		return UnmarshalClientReady(payload)
	case MsgClientPing:
		return UnmarshalClientPing(payload)
	case MsgServerPong:
		return UnmarshalServerPong(payload)
	case MsgClientInput:
		return UnmarshalClientInput(payload)
	case MsgSnapshot:
		return UnmarshalSnapshot(payload)
	case MsgSnapshotChunk:
		return UnmarshalSnapshotChunk(payload)
	case MsgEntitySpawn:
		return UnmarshalEntitySpawn(payload)
	case MsgEntityDestroyed:
		return UnmarshalEntityDestroyed(payload)
	case MsgLevelInit:
		return UnmarshalLevelInit(payload)
	case MsgLevelEvent:
		return UnmarshalLevelEvent(payload)
	case MsgGameStart:
		return UnmarshalGameStart(payload)
	case MsgGameEnd:
		return UnmarshalGameEnd(payload)
	case MsgPlayerDisconnected:
		return UnmarshalPlayerDisconnected(payload)
	case MsgCountdownTick:
		return UnmarshalCountdownTick(payload)
	case MsgListRooms:
		return UnmarshalListRooms(payload)
	case MsgRoomList:
		return UnmarshalRoomList(payload)
	case MsgCreateRoom:
		return UnmarshalCreateRoom(payload)
	case MsgRoomCreated:
		return UnmarshalRoomCreated(payload)
	case MsgJoinRoom:
		return UnmarshalJoinRoom(payload)
	case MsgJoinSuccess:
		return UnmarshalJoinSuccess(payload)
	case MsgJoinFailed:
		return UnmarshalJoinFailed(payload)
	case MsgLeaveRoom:
		return UnmarshalLeaveRoom(payload)
	case MsgKickPlayer:
		return UnmarshalKickPlayer(payload)
	case MsgPlayerList:
		return UnmarshalPlayerList(payload)
	case MsgForceStart:
		return UnmarshalForceStart(payload)
	case MsgRoomGameStarting:
		return UnmarshalRoomGameStarting(payload)
	case MsgPlayerKicked:
		return UnmarshalPlayerKicked(payload)
	case MsgChat:
		return UnmarshalChat(payload)
	case MsgLoginRequest:
		return UnmarshalLoginRequest(payload)
	case MsgLoginResponse:
		return UnmarshalLoginResponse(payload)
	case MsgRegisterRequest:
		return UnmarshalRegisterRequest(payload)
	case MsgRegisterResponse:
		return UnmarshalRegisterResponse(payload)
	case MsgChangePasswordRequest:
		return UnmarshalChangePasswordRequest(payload)
	case MsgChangePasswordResponse:
		return UnmarshalChangePasswordResponse(payload)
	case MsgAuthRequired:
		return UnmarshalAuthRequired(payload)
	case MsgGetStatsRequest:
		return UnmarshalGetStatsRequest(payload)
	case MsgGetStatsResponse:
		return UnmarshalGetStatsResponse(payload)
	case MsgServerBroadcast:
		return UnmarshalServerBroadcast(payload)
	case MsgServerDisconnect:
		return UnmarshalServerDisconnect(payload)
	default:
		return nil, newParseError("no decoder registered for message type %d", mt)
	}
}
