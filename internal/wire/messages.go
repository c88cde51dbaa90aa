package wire

// This file defines the payload struct and Marshal/Unmarshal pair for every
// MessageType. Marshal never fails (callers build well-formed Go values);
// Unmarshal returns a *ParseError on any truncation, out-of-range enum, or
// non-finite float, per the decode contract in §4.A.

// --- Handshake -------------------------------------------------------

type ClientHello struct {
	ProtocolVersion uint8
}

func (m ClientHello) Marshal() []byte {
	w := NewWriter(1)
	w.Uint8(m.ProtocolVersion)
	return w.Result()
}

func UnmarshalClientHello(p []byte) (ClientHello, error) {
	r := NewReader(p)
	v, err := r.Uint8()
	return ClientHello{ProtocolVersion: v}, err
}

type ServerHello struct {
	AssignedPlayerID uint32
}

func (m ServerHello) Marshal() []byte {
	w := NewWriter(4)
	w.Uint32(m.AssignedPlayerID)
	return w.Result()
}

func UnmarshalServerHello(p []byte) (ServerHello, error) {
	r := NewReader(p)
	id, err := r.Uint32()
	return ServerHello{AssignedPlayerID: id}, err
}

type ClientJoinRequest struct {
	DisplayName string
}

func (m ClientJoinRequest) Marshal() []byte {
	w := NewWriter(1 + len(m.DisplayName))
	w.String8(m.DisplayName)
	return w.Result()
}

func UnmarshalClientJoinRequest(p []byte) (ClientJoinRequest, error) {
	r := NewReader(p)
	s, err := r.String8()
	return ClientJoinRequest{DisplayName: s}, err
}

type ServerJoinAccept struct {
	PlayerID uint32
}

func (m ServerJoinAccept) Marshal() []byte {
	w := NewWriter(4)
	w.Uint32(m.PlayerID)
	return w.Result()
}

func UnmarshalServerJoinAccept(p []byte) (ServerJoinAccept, error) {
	r := NewReader(p)
	id, err := r.Uint32()
	return ServerJoinAccept{PlayerID: id}, err
}

type ServerJoinDeny struct {
	Reason string
}

func (m ServerJoinDeny) Marshal() []byte {
	w := NewWriter(1 + len(m.Reason))
	w.String8(m.Reason)
	return w.Result()
}

func UnmarshalServerJoinDeny(p []byte) (ServerJoinDeny, error) {
	r := NewReader(p)
	s, err := r.String8()
	return ServerJoinDeny{Reason: s}, err
}

type ClientReady struct{}

func (ClientReady) Marshal() []byte { return nil }

func UnmarshalClientReady(p []byte) (ClientReady, error) { return ClientReady{}, nil }

type ClientPing struct {
	Nonce uint32
}

func (m ClientPing) Marshal() []byte {
	w := NewWriter(4)
	w.Uint32(m.Nonce)
	return w.Result()
}

func UnmarshalClientPing(p []byte) (ClientPing, error) {
	r := NewReader(p)
	n, err := r.Uint32()
	return ClientPing{Nonce: n}, err
}

type ServerPong struct {
	Nonce uint32
}

func (m ServerPong) Marshal() []byte {
	w := NewWriter(4)
	w.Uint32(m.Nonce)
	return w.Result()
}

func UnmarshalServerPong(p []byte) (ServerPong, error) {
	r := NewReader(p)
	n, err := r.Uint32()
	return ServerPong{Nonce: n}, err
}

// --- Game data ---------------------------------------------------------

type ClientInput struct {
	SequenceID uint32
	X, Y       float32
	Angle      float32
	Buttons    uint8
}

func (m ClientInput) Marshal() []byte {
	w := NewWriter(17)
	w.Uint32(m.SequenceID)
	w.Float32(m.X)
	w.Float32(m.Y)
	w.Float32(m.Angle)
	w.Uint8(m.Buttons)
	return w.Result()
}

func UnmarshalClientInput(p []byte) (ClientInput, error) {
	r := NewReader(p)
	var m ClientInput
	var err error
	if m.SequenceID, err = r.Uint32(); err != nil {
		return m, err
	}
	if m.X, err = r.Float32(); err != nil {
		return m, err
	}
	if m.Y, err = r.Float32(); err != nil {
		return m, err
	}
	if m.Angle, err = r.Float32(); err != nil {
		return m, err
	}
	m.Buttons, err = r.Uint8()
	return m, err
}

// Snapshot is the periodic/delta replication payload; TickID travels in the
// packet header, not here.
type Snapshot struct {
	LastInputAckSeq uint32
	Entities        []EntitySnapshot
}

func (m Snapshot) Marshal() []byte {
	w := NewWriter(6 + len(m.Entities)*8)
	w.Uint32(m.LastInputAckSeq)
	w.Uint16(uint16(len(m.Entities)))
	for _, e := range m.Entities {
		EncodeEntity(w, e)
	}
	return w.Result()
}

func UnmarshalSnapshot(p []byte) (Snapshot, error) {
	r := NewReader(p)
	var m Snapshot
	var err error
	if m.LastInputAckSeq, err = r.Uint32(); err != nil {
		return m, err
	}
	count, err := r.Uint16()
	if err != nil {
		return m, err
	}
	m.Entities = make([]EntitySnapshot, 0, count)
	for i := uint16(0); i < count; i++ {
		e, err := DecodeEntity(r)
		if err != nil {
			return m, err
		}
		m.Entities = append(m.Entities, e)
	}
	return m, nil
}

// SnapshotChunk carries one slice of a snapshot too large for one packet;
// TickID is shared across all chunks via the header.
type SnapshotChunk struct {
	ChunkIndex      uint16
	ChunkCount      uint16
	LastInputAckSeq uint32
	Entities        []EntitySnapshot
}

func (m SnapshotChunk) Marshal() []byte {
	w := NewWriter(10 + len(m.Entities)*8)
	w.Uint16(m.ChunkIndex)
	w.Uint16(m.ChunkCount)
	w.Uint32(m.LastInputAckSeq)
	w.Uint16(uint16(len(m.Entities)))
	for _, e := range m.Entities {
		EncodeEntity(w, e)
	}
	return w.Result()
}

func UnmarshalSnapshotChunk(p []byte) (SnapshotChunk, error) {
	r := NewReader(p)
	var m SnapshotChunk
	var err error
	if m.ChunkIndex, err = r.Uint16(); err != nil {
		return m, err
	}
	if m.ChunkCount, err = r.Uint16(); err != nil {
		return m, err
	}
	if m.LastInputAckSeq, err = r.Uint32(); err != nil {
		return m, err
	}
	count, err := r.Uint16()
	if err != nil {
		return m, err
	}
	m.Entities = make([]EntitySnapshot, 0, count)
	for i := uint16(0); i < count; i++ {
		e, err := DecodeEntity(r)
		if err != nil {
			return m, err
		}
		m.Entities = append(m.Entities, e)
	}
	return m, nil
}

type EntitySpawn struct {
	Entity EntitySnapshot
}

func (m EntitySpawn) Marshal() []byte {
	w := NewWriter(20)
	EncodeEntity(w, m.Entity)
	return w.Result()
}

func UnmarshalEntitySpawn(p []byte) (EntitySpawn, error) {
	r := NewReader(p)
	e, err := DecodeEntity(r)
	return EntitySpawn{Entity: e}, err
}

type EntityDestroyed struct {
	EntityID uint32
}

func (m EntityDestroyed) Marshal() []byte {
	w := NewWriter(4)
	w.Uint32(m.EntityID)
	return w.Result()
}

func UnmarshalEntityDestroyed(p []byte) (EntityDestroyed, error) {
	r := NewReader(p)
	id, err := r.Uint32()
	return EntityDestroyed{EntityID: id}, err
}

// Wave is one entry of a LevelInit's scripted spawn timeline (§6 of
// SPEC_FULL.md — the level-director envelope the distilled spec left
// unspecified).
type Wave struct {
	TriggerTick  uint32
	EnemyType    uint16
	Count        uint8
	SpacingTicks uint16
}

type LevelInit struct {
	LevelID uint16
	Waves   []Wave
}

func (m LevelInit) Marshal() []byte {
	w := NewWriter(4 + len(m.Waves)*9)
	w.Uint16(m.LevelID)
	w.Uint16(uint16(len(m.Waves)))
	for _, wv := range m.Waves {
		w.Uint32(wv.TriggerTick)
		w.Uint16(wv.EnemyType)
		w.Uint8(wv.Count)
		w.Uint16(wv.SpacingTicks)
	}
	return w.Result()
}

func UnmarshalLevelInit(p []byte) (LevelInit, error) {
	r := NewReader(p)
	var m LevelInit
	var err error
	if m.LevelID, err = r.Uint16(); err != nil {
		return m, err
	}
	count, err := r.Uint16()
	if err != nil {
		return m, err
	}
	m.Waves = make([]Wave, 0, count)
	for i := uint16(0); i < count; i++ {
		var wv Wave
		if wv.TriggerTick, err = r.Uint32(); err != nil {
			return m, err
		}
		if wv.EnemyType, err = r.Uint16(); err != nil {
			return m, err
		}
		if wv.Count, err = r.Uint8(); err != nil {
			return m, err
		}
		if wv.SpacingTicks, err = r.Uint16(); err != nil {
			return m, err
		}
		m.Waves = append(m.Waves, wv)
	}
	return m, nil
}

// LevelEvent carries an opaque, event-specific tail beyond its envelope —
// the script content itself is out of this codec's scope.
type LevelEvent struct {
	EventType uint8
	Tick      uint32
	Data      []byte
}

func (m LevelEvent) Marshal() []byte {
	w := NewWriter(5 + len(m.Data))
	w.Uint8(m.EventType)
	w.Uint32(m.Tick)
	w.Bytes(m.Data)
	return w.Result()
}

func UnmarshalLevelEvent(p []byte) (LevelEvent, error) {
	r := NewReader(p)
	var m LevelEvent
	var err error
	if m.EventType, err = r.Uint8(); err != nil {
		return m, err
	}
	if m.Tick, err = r.Uint32(); err != nil {
		return m, err
	}
	m.Data, err = r.Bytes(r.Remaining())
	return m, err
}

type GameStart struct{}

func (GameStart) Marshal() []byte { return nil }

func UnmarshalGameStart(p []byte) (GameStart, error) { return GameStart{}, nil }

type GameEnd struct {
	Reason uint8
}

func (m GameEnd) Marshal() []byte {
	w := NewWriter(1)
	w.Uint8(m.Reason)
	return w.Result()
}

func UnmarshalGameEnd(p []byte) (GameEnd, error) {
	r := NewReader(p)
	reason, err := r.Uint8()
	return GameEnd{Reason: reason}, err
}

type PlayerDisconnected struct {
	PlayerID uint32
}

func (m PlayerDisconnected) Marshal() []byte {
	w := NewWriter(4)
	w.Uint32(m.PlayerID)
	return w.Result()
}

func UnmarshalPlayerDisconnected(p []byte) (PlayerDisconnected, error) {
	r := NewReader(p)
	id, err := r.Uint32()
	return PlayerDisconnected{PlayerID: id}, err
}

// CountdownTick reports seconds remaining before a room's GameStart — the
// producer supplemented from original_source/ (SPEC_FULL.md §4).
type CountdownTick struct {
	SecondsRemaining uint8
}

func (m CountdownTick) Marshal() []byte {
	w := NewWriter(1)
	w.Uint8(m.SecondsRemaining)
	return w.Result()
}

func UnmarshalCountdownTick(p []byte) (CountdownTick, error) {
	r := NewReader(p)
	s, err := r.Uint8()
	return CountdownTick{SecondsRemaining: s}, err
}

// --- Lobby ---------------------------------------------------------

type ListRooms struct{}

func (ListRooms) Marshal() []byte { return nil }

func UnmarshalListRooms(p []byte) (ListRooms, error) { return ListRooms{}, nil }

// RoomSummary is one catalog entry inside a RoomList payload.
type RoomSummary struct {
	RoomID     uint32
	Name       string
	PlayerCnt  uint8
	Capacity   uint8
	State      uint8
	Visibility uint8
	Difficulty uint8
}

type RoomList struct {
	Rooms []RoomSummary
}

func (m RoomList) Marshal() []byte {
	w := NewWriter(2 + len(m.Rooms)*10)
	w.Uint16(uint16(len(m.Rooms)))
	for _, rm := range m.Rooms {
		w.Uint32(rm.RoomID)
		w.String8(rm.Name)
		w.Uint8(rm.PlayerCnt)
		w.Uint8(rm.Capacity)
		w.Uint8(rm.State)
		w.Uint8(rm.Visibility)
		w.Uint8(rm.Difficulty)
	}
	return w.Result()
}

func UnmarshalRoomList(p []byte) (RoomList, error) {
	r := NewReader(p)
	var m RoomList
	count, err := r.Uint16()
	if err != nil {
		return m, err
	}
	m.Rooms = make([]RoomSummary, 0, count)
	for i := uint16(0); i < count; i++ {
		var rm RoomSummary
		if rm.RoomID, err = r.Uint32(); err != nil {
			return m, err
		}
		if rm.Name, err = r.String8(); err != nil {
			return m, err
		}
		if rm.PlayerCnt, err = r.Uint8(); err != nil {
			return m, err
		}
		if rm.Capacity, err = r.Uint8(); err != nil {
			return m, err
		}
		if rm.State, err = r.Uint8(); err != nil {
			return m, err
		}
		if rm.Visibility, err = r.Uint8(); err != nil {
			return m, err
		}
		if rm.Difficulty, err = r.Uint8(); err != nil {
			return m, err
		}
		m.Rooms = append(m.Rooms, rm)
	}
	return m, nil
}

type CreateRoom struct {
	Name         string
	Capacity     uint8
	Visibility   uint8
	PasswordHash string
	Difficulty   uint8
}

func (m CreateRoom) Marshal() []byte {
	w := NewWriter(4 + len(m.Name) + len(m.PasswordHash))
	w.String8(m.Name)
	w.Uint8(m.Capacity)
	w.Uint8(m.Visibility)
	w.String8(m.PasswordHash)
	w.Uint8(m.Difficulty)
	return w.Result()
}

func UnmarshalCreateRoom(p []byte) (CreateRoom, error) {
	r := NewReader(p)
	var m CreateRoom
	var err error
	if m.Name, err = r.String8(); err != nil {
		return m, err
	}
	if m.Capacity, err = r.Uint8(); err != nil {
		return m, err
	}
	if m.Visibility, err = r.Uint8(); err != nil {
		return m, err
	}
	if m.PasswordHash, err = r.String8(); err != nil {
		return m, err
	}
	m.Difficulty, err = r.Uint8()
	return m, err
}

type RoomCreated struct {
	RoomID uint32
	Port   uint16
}

func (m RoomCreated) Marshal() []byte {
	w := NewWriter(6)
	w.Uint32(m.RoomID)
	w.Uint16(m.Port)
	return w.Result()
}

func UnmarshalRoomCreated(p []byte) (RoomCreated, error) {
	r := NewReader(p)
	var m RoomCreated
	var err error
	if m.RoomID, err = r.Uint32(); err != nil {
		return m, err
	}
	m.Port, err = r.Uint16()
	return m, err
}

type JoinRoom struct {
	RoomID       uint32
	PasswordHash string
}

func (m JoinRoom) Marshal() []byte {
	w := NewWriter(5 + len(m.PasswordHash))
	w.Uint32(m.RoomID)
	w.String8(m.PasswordHash)
	return w.Result()
}

func UnmarshalJoinRoom(p []byte) (JoinRoom, error) {
	r := NewReader(p)
	var m JoinRoom
	var err error
	if m.RoomID, err = r.Uint32(); err != nil {
		return m, err
	}
	m.PasswordHash, err = r.String8()
	return m, err
}

type JoinSuccess struct {
	RoomID uint32
	Port   uint16
}

func (m JoinSuccess) Marshal() []byte {
	w := NewWriter(6)
	w.Uint32(m.RoomID)
	w.Uint16(m.Port)
	return w.Result()
}

func UnmarshalJoinSuccess(p []byte) (JoinSuccess, error) {
	r := NewReader(p)
	var m JoinSuccess
	var err error
	if m.RoomID, err = r.Uint32(); err != nil {
		return m, err
	}
	m.Port, err = r.Uint16()
	return m, err
}

type JoinFailed struct {
	Reason string
}

func (m JoinFailed) Marshal() []byte {
	w := NewWriter(1 + len(m.Reason))
	w.String8(m.Reason)
	return w.Result()
}

func UnmarshalJoinFailed(p []byte) (JoinFailed, error) {
	r := NewReader(p)
	s, err := r.String8()
	return JoinFailed{Reason: s}, err
}

type LeaveRoom struct{}

func (LeaveRoom) Marshal() []byte { return nil }

func UnmarshalLeaveRoom(p []byte) (LeaveRoom, error) { return LeaveRoom{}, nil }

type KickPlayer struct {
	PlayerID uint32
}

func (m KickPlayer) Marshal() []byte {
	w := NewWriter(4)
	w.Uint32(m.PlayerID)
	return w.Result()
}

func UnmarshalKickPlayer(p []byte) (KickPlayer, error) {
	r := NewReader(p)
	id, err := r.Uint32()
	return KickPlayer{PlayerID: id}, err
}

type PlayerSummary struct {
	PlayerID uint32
	Name     string
	Ready    bool
}

type PlayerList struct {
	Players []PlayerSummary
}

func (m PlayerList) Marshal() []byte {
	w := NewWriter(2 + len(m.Players)*6)
	w.Uint16(uint16(len(m.Players)))
	for _, p := range m.Players {
		w.Uint32(p.PlayerID)
		w.String8(p.Name)
		if p.Ready {
			w.Uint8(1)
		} else {
			w.Uint8(0)
		}
	}
	return w.Result()
}

func UnmarshalPlayerList(p []byte) (PlayerList, error) {
	r := NewReader(p)
	var m PlayerList
	count, err := r.Uint16()
	if err != nil {
		return m, err
	}
	m.Players = make([]PlayerSummary, 0, count)
	for i := uint16(0); i < count; i++ {
		var ps PlayerSummary
		if ps.PlayerID, err = r.Uint32(); err != nil {
			return m, err
		}
		if ps.Name, err = r.String8(); err != nil {
			return m, err
		}
		ready, err2 := r.Uint8()
		if err2 != nil {
			return m, err2
		}
		ps.Ready = ready != 0
		m.Players = append(m.Players, ps)
	}
	return m, nil
}

type ForceStart struct{}

func (ForceStart) Marshal() []byte { return nil }

func UnmarshalForceStart(p []byte) (ForceStart, error) { return ForceStart{}, nil }

type RoomGameStarting struct {
	CountdownSeconds uint8
}

func (m RoomGameStarting) Marshal() []byte {
	w := NewWriter(1)
	w.Uint8(m.CountdownSeconds)
	return w.Result()
}

func UnmarshalRoomGameStarting(p []byte) (RoomGameStarting, error) {
	r := NewReader(p)
	s, err := r.Uint8()
	return RoomGameStarting{CountdownSeconds: s}, err
}

type PlayerKicked struct {
	Reason string
}

func (m PlayerKicked) Marshal() []byte {
	w := NewWriter(1 + len(m.Reason))
	w.String8(m.Reason)
	return w.Result()
}

func UnmarshalPlayerKicked(p []byte) (PlayerKicked, error) {
	r := NewReader(p)
	s, err := r.String8()
	return PlayerKicked{Reason: s}, err
}

type Chat struct {
	From string
	Text string
}

func (m Chat) Marshal() []byte {
	w := NewWriter(3 + len(m.From) + len(m.Text))
	w.String8(m.From)
	w.String16(m.Text)
	return w.Result()
}

func UnmarshalChat(p []byte) (Chat, error) {
	r := NewReader(p)
	var m Chat
	var err error
	if m.From, err = r.String8(); err != nil {
		return m, err
	}
	m.Text, err = r.String16()
	return m, err
}

// --- Auth ---------------------------------------------------------

type LoginRequest struct {
	Username, Password string
}

func (m LoginRequest) Marshal() []byte {
	w := NewWriter(2 + len(m.Username) + len(m.Password))
	w.String8(m.Username)
	w.String8(m.Password)
	return w.Result()
}

func UnmarshalLoginRequest(p []byte) (LoginRequest, error) {
	r := NewReader(p)
	var m LoginRequest
	var err error
	if m.Username, err = r.String8(); err != nil {
		return m, err
	}
	m.Password, err = r.String8()
	return m, err
}

type LoginResponse struct {
	Success bool
	Reason  string
}

func (m LoginResponse) Marshal() []byte {
	w := NewWriter(2 + len(m.Reason))
	if m.Success {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
	w.String8(m.Reason)
	return w.Result()
}

func UnmarshalLoginResponse(p []byte) (LoginResponse, error) {
	r := NewReader(p)
	var m LoginResponse
	ok, err := r.Uint8()
	if err != nil {
		return m, err
	}
	m.Success = ok != 0
	m.Reason, err = r.String8()
	return m, err
}

type RegisterRequest struct {
	Username, Password string
}

func (m RegisterRequest) Marshal() []byte {
	w := NewWriter(2 + len(m.Username) + len(m.Password))
	w.String8(m.Username)
	w.String8(m.Password)
	return w.Result()
}

func UnmarshalRegisterRequest(p []byte) (RegisterRequest, error) {
	r := NewReader(p)
	var m RegisterRequest
	var err error
	if m.Username, err = r.String8(); err != nil {
		return m, err
	}
	m.Password, err = r.String8()
	return m, err
}

type RegisterResponse struct {
	Success bool
	Reason  string
}

func (m RegisterResponse) Marshal() []byte {
	w := NewWriter(2 + len(m.Reason))
	if m.Success {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
	w.String8(m.Reason)
	return w.Result()
}

func UnmarshalRegisterResponse(p []byte) (RegisterResponse, error) {
	r := NewReader(p)
	var m RegisterResponse
	ok, err := r.Uint8()
	if err != nil {
		return m, err
	}
	m.Success = ok != 0
	m.Reason, err = r.String8()
	return m, err
}

type ChangePasswordRequest struct {
	OldPassword, NewPassword string
}

func (m ChangePasswordRequest) Marshal() []byte {
	w := NewWriter(2 + len(m.OldPassword) + len(m.NewPassword))
	w.String8(m.OldPassword)
	w.String8(m.NewPassword)
	return w.Result()
}

func UnmarshalChangePasswordRequest(p []byte) (ChangePasswordRequest, error) {
	r := NewReader(p)
	var m ChangePasswordRequest
	var err error
	if m.OldPassword, err = r.String8(); err != nil {
		return m, err
	}
	m.NewPassword, err = r.String8()
	return m, err
}

type ChangePasswordResponse struct {
	Success bool
	Reason  string
}

func (m ChangePasswordResponse) Marshal() []byte {
	w := NewWriter(2 + len(m.Reason))
	if m.Success {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
	w.String8(m.Reason)
	return w.Result()
}

func UnmarshalChangePasswordResponse(p []byte) (ChangePasswordResponse, error) {
	r := NewReader(p)
	var m ChangePasswordResponse
	ok, err := r.Uint8()
	if err != nil {
		return m, err
	}
	m.Success = ok != 0
	m.Reason, err = r.String8()
	return m, err
}

type AuthRequired struct{}

func (AuthRequired) Marshal() []byte { return nil }

func UnmarshalAuthRequired(p []byte) (AuthRequired, error) { return AuthRequired{}, nil }

type GetStatsRequest struct{}

func (GetStatsRequest) Marshal() []byte { return nil }

func UnmarshalGetStatsRequest(p []byte) (GetStatsRequest, error) { return GetStatsRequest{}, nil }

type GetStatsResponse struct {
	GamesPlayed uint32
	HighScore   uint32
	TotalKills  uint32
}

func (m GetStatsResponse) Marshal() []byte {
	w := NewWriter(12)
	w.Uint32(m.GamesPlayed)
	w.Uint32(m.HighScore)
	w.Uint32(m.TotalKills)
	return w.Result()
}

func UnmarshalGetStatsResponse(p []byte) (GetStatsResponse, error) {
	r := NewReader(p)
	var m GetStatsResponse
	var err error
	if m.GamesPlayed, err = r.Uint32(); err != nil {
		return m, err
	}
	if m.HighScore, err = r.Uint32(); err != nil {
		return m, err
	}
	m.TotalKills, err = r.Uint32()
	return m, err
}

// --- Broadcast / lifecycle -------------------------------------------

type ServerBroadcast struct {
	Text string
}

func (m ServerBroadcast) Marshal() []byte {
	w := NewWriter(2 + len(m.Text))
	w.String16(m.Text)
	return w.Result()
}

func UnmarshalServerBroadcast(p []byte) (ServerBroadcast, error) {
	r := NewReader(p)
	s, err := r.String16()
	return ServerBroadcast{Text: s}, err
}

type ServerDisconnect struct {
	Reason string
}

func (m ServerDisconnect) Marshal() []byte {
	w := NewWriter(1 + len(m.Reason))
	w.String8(m.Reason)
	return w.Result()
}

func UnmarshalServerDisconnect(p []byte) (ServerDisconnect, error) {
	r := NewReader(p)
	s, err := r.String8()
	return ServerDisconnect{Reason: s}, err
}
