package server

import (
	"encoding/json"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/parlour/internal/games"
	"github.com/lox/parlour/internal/games/catalog"
	"github.com/lox/parlour/internal/protocol"
	"github.com/lox/parlour/internal/roomcode"
)

// Client is one connected transport endpoint as the hub sees it.
// Connections implement it; hub tests use fakes.
type Client interface {
	Sender
	UserID() string
	SetUserID(id string)
}

// Hub is the top-level event dispatcher. A single mutex serializes all
// mutations, which gives every room a totally ordered stream of events.
type Hub struct {
	mu     sync.Mutex
	logger *log.Logger
	cfg    *Config
	rng    *rand.Rand

	users      *Registry
	rooms      map[string]*Room
	challenges *ChallengeService
	ai         *AIDriver
	codes      *roomcode.Generator
}

// NewHub wires the registry, challenge service and AI driver together.
func NewHub(cfg *Config, logger *log.Logger, clock quartz.Clock, rng *rand.Rand) *Hub {
	h := &Hub{
		logger:     logger.WithPrefix("hub"),
		cfg:        cfg,
		rng:        rng,
		users:      NewRegistry(),
		rooms:      make(map[string]*Room),
		challenges: NewChallengeService(clock, cfg.ChallengeTTL()),
		codes:      roomcode.NewGenerator(rng),
	}
	minDelay, maxDelay := cfg.AIDelayBounds()
	h.ai = NewAIDriver(clock, rng, logger, minDelay, maxDelay, h.runBotMove)
	return h
}

// HandleMessage dispatches one client event under the hub lock.
func (h *Hub) HandleMessage(c Client, msg *protocol.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.logger.Debug("event", "event", msg.Event, "user", c.UserID())

	switch msg.Event {
	case protocol.EventUserConnect:
		h.handleUserConnect(c, msg.Data)
	case protocol.EventCreateRoom:
		h.handleCreateRoom(c, msg.Data)
	case protocol.EventJoinRoom:
		h.handleJoinRoom(c, msg.Data)
	case protocol.EventStartGame:
		h.handleStartGame(c, msg.Data)
	case protocol.EventMakeMove:
		h.handleMakeMove(c, msg.Data)
	case protocol.EventRequestState:
		h.handleRequestState(c, msg.Data)
	case protocol.EventRequestRematch:
		h.handleRequestRematch(c, msg.Data)
	case protocol.EventSendChallenge:
		h.handleSendChallenge(c, msg.Data)
	case protocol.EventAcceptChallenge:
		h.handleAcceptChallenge(c, msg.Data)
	case protocol.EventDeclineChallenge:
		h.handleDeclineChallenge(c, msg.Data)
	case protocol.EventLeaveRoom:
		h.handleLeaveRoom(c, msg.Data)
	default:
		h.logger.Debug("unknown event ignored", "event", msg.Event)
	}
}

// HandleDisconnect cleans up after a closed connection: pending
// challenges are cancelled, the room sees the departure, presence is
// broadcast.
func (h *Hub) HandleDisconnect(c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := c.UserID()
	if id == "" {
		return
	}
	h.challenges.CancelFor(id)

	user, ok := h.users.Get(id)
	if !ok {
		return
	}
	if room, ok := h.rooms[user.RoomCode]; ok {
		h.removeFromRoom(user, room)
	}
	h.users.Remove(id)
	h.broadcastExcept(id, protocol.EventUserLeft, protocol.UserLeft{ID: id, Name: user.Name})
	h.logger.Info("user left", "name", user.Name, "online", h.users.Len())
}

func (h *Hub) handleUserConnect(c Client, data json.RawMessage) {
	var payload protocol.UserConnect
	if err := json.Unmarshal(data, &payload); err != nil || payload.Name == "" {
		h.send(c, protocol.EventNameError, protocol.NameError{Message: "Name required"})
		return
	}
	if c.UserID() != "" {
		h.send(c, protocol.EventNameError, protocol.NameError{Message: "Already connected"})
		return
	}

	user := &User{ID: uuid.NewString(), Name: payload.Name, Sender: c}
	if err := h.users.Add(user); err != nil {
		h.send(c, protocol.EventNameError, protocol.NameError{Message: err.Error()})
		return
	}
	c.SetUserID(user.ID)

	h.send(c, protocol.EventNameAccepted, protocol.NameAccepted{ID: user.ID, Name: user.Name})
	h.send(c, protocol.EventUserList, protocol.UserList{Users: h.users.Snapshot(user.ID)})
	h.broadcastExcept(user.ID, protocol.EventUserJoined, user.Info())
	h.logger.Info("user joined", "name", user.Name, "online", h.users.Len())
}

func (h *Hub) handleCreateRoom(c Client, data json.RawMessage) {
	user, ok := h.userFor(c)
	if !ok {
		h.send(c, protocol.EventJoinError, protocol.JoinError{Message: "Connect before creating a room"})
		return
	}
	var payload protocol.CreateRoom
	if err := json.Unmarshal(data, &payload); err != nil {
		h.send(c, protocol.EventJoinError, protocol.JoinError{Message: "Malformed payload"})
		return
	}
	info, ok := catalog.Lookup(payload.GameType)
	if !ok {
		h.send(c, protocol.EventJoinError, protocol.JoinError{Message: "Unknown game type: " + payload.GameType})
		return
	}
	if user.RoomCode != "" {
		h.send(c, protocol.EventJoinError, protocol.JoinError{Message: "Leave your current room first"})
		return
	}

	room := h.createRoom(user, info)
	h.send(c, protocol.EventRoomCreated, protocol.RoomCreated{
		RoomCode:   room.Code,
		GameType:   room.GameType,
		MaxPlayers: room.MaxPlayers,
	})
}

func (h *Hub) handleJoinRoom(c Client, data json.RawMessage) {
	user, ok := h.userFor(c)
	if !ok {
		h.send(c, protocol.EventJoinError, protocol.JoinError{Message: "Connect before joining a room"})
		return
	}
	var payload protocol.JoinRoom
	if err := json.Unmarshal(data, &payload); err != nil {
		h.send(c, protocol.EventJoinError, protocol.JoinError{Message: "Malformed payload"})
		return
	}
	room, ok := h.rooms[payload.RoomCode]
	if !ok {
		h.send(c, protocol.EventJoinError, protocol.JoinError{Message: "Room not found"})
		return
	}
	if user.RoomCode != "" {
		h.send(c, protocol.EventJoinError, protocol.JoinError{Message: "Leave your current room first"})
		return
	}

	if err := room.Join(Seat{ID: user.ID, Name: user.Name, Kind: SeatHuman}); err != nil {
		h.send(c, protocol.EventJoinError, protocol.JoinError{Message: joinErrorMessage(err)})
		return
	}
	user.RoomCode = room.Code

	h.eachHuman(room, func(_ Seat, u *User) {
		h.send(u.Sender, protocol.EventPlayerJoined, protocol.PlayerJoined{
			RoomCode:   room.Code,
			PlayerID:   user.ID,
			PlayerName: user.Name,
			Players:    room.SeatInfos(),
		})
	})
}

func (h *Hub) handleStartGame(c Client, data json.RawMessage) {
	user, room, ok := h.roomFor(c, data)
	if !ok {
		return
	}
	if user.ID != room.HostID {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "Only the host can start the game"})
		return
	}
	var payload protocol.StartGame
	_ = json.Unmarshal(data, &payload)

	aiCount := 0
	if room.Lobby {
		aiCount = payload.AICount
	}
	if err := room.Start(aiCount, h.rng); err != nil {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: joinErrorMessage(err)})
		return
	}
	h.beginGame(room)
}

func (h *Hub) handleMakeMove(c Client, data json.RawMessage) {
	user, room, ok := h.roomFor(c, data)
	if !ok {
		return
	}
	var payload protocol.MakeMove
	if err := json.Unmarshal(data, &payload); err != nil {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "Malformed payload"})
		return
	}
	engine := room.Engine()
	if engine == nil {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "Game has not started"})
		return
	}

	res := engine.MakeMove(user.ID, payload.Move)
	if !res.Valid {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: res.Message})
		return
	}
	h.afterMove(room, user.ID, payload.Move, res)
}

func (h *Hub) handleRequestState(c Client, data json.RawMessage) {
	user, room, ok := h.roomFor(c, data)
	if !ok {
		return
	}
	var state any
	if engine := room.Engine(); engine != nil {
		state = engine.StateFor(user.ID)
	}
	h.send(c, protocol.EventStateResponse, protocol.StateResponse{
		RoomCode:  room.Code,
		Players:   room.SeatInfos(),
		GameState: state,
	})
}

func (h *Hub) handleRequestRematch(c Client, data json.RawMessage) {
	user, room, ok := h.roomFor(c, data)
	if !ok {
		return
	}
	restarted, err := room.Rematch(user.ID, h.rng)
	if err != nil {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: joinErrorMessage(err)})
		return
	}

	h.eachHuman(room, func(_ Seat, u *User) {
		h.send(u.Sender, protocol.EventRematchRequested, protocol.RematchRequested{
			RoomCode: room.Code,
			PlayerID: user.ID,
		})
	})
	if restarted {
		h.beginGame(room)
	}
}

func (h *Hub) handleSendChallenge(c Client, data json.RawMessage) {
	user, ok := h.userFor(c)
	if !ok {
		return
	}
	var payload protocol.SendChallenge
	if err := json.Unmarshal(data, &payload); err != nil {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "Malformed payload"})
		return
	}
	if _, ok := catalog.Lookup(payload.GameType); !ok {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "Unknown game type: " + payload.GameType})
		return
	}
	target, ok := h.users.Get(payload.ToID)
	if !ok {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "User not found"})
		return
	}

	ch, err := h.challenges.Send(user.ID, target.ID, payload.GameType)
	if err != nil {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: joinErrorMessage(err)})
		return
	}
	h.send(target.Sender, protocol.EventChallengeReceived, protocol.ChallengeReceived{
		ChallengeID: ch.ID,
		FromID:      user.ID,
		FromName:    user.Name,
		GameType:    ch.GameType,
	})
}

func (h *Hub) handleAcceptChallenge(c Client, data json.RawMessage) {
	user, ok := h.userFor(c)
	if !ok {
		return
	}
	var payload protocol.ChallengeResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "Malformed payload"})
		return
	}
	ch, err := h.challenges.Accept(payload.ChallengeID, user.ID)
	if err != nil {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: joinErrorMessage(err)})
		return
	}
	challenger, ok := h.users.Get(ch.FromID)
	if !ok {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "Challenger is no longer connected"})
		return
	}
	if user.RoomCode != "" {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "Leave your current room first"})
		return
	}
	if challenger.RoomCode != "" {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "Challenger is already in a room"})
		return
	}

	info, _ := catalog.Lookup(ch.GameType)
	room := h.createRoom(challenger, info)
	if err := room.Join(Seat{ID: user.ID, Name: user.Name, Kind: SeatHuman}); err != nil {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: joinErrorMessage(err)})
		return
	}
	user.RoomCode = room.Code

	accepted := protocol.ChallengeAccepted{
		ChallengeID: ch.ID,
		RoomCode:    room.Code,
		GameType:    room.GameType,
	}
	h.send(challenger.Sender, protocol.EventChallengeAccepted, accepted)
	h.send(user.Sender, protocol.EventChallengeAccepted, accepted)

	if room.Lobby {
		ready := protocol.GameLobbyReady{
			RoomCode:   room.Code,
			GameType:   room.GameType,
			MaxPlayers: room.MaxPlayers,
		}
		h.send(challenger.Sender, protocol.EventGameLobbyReady, ready)
		h.send(user.Sender, protocol.EventGameLobbyReady, ready)
		return
	}

	if err := room.Start(0, h.rng); err != nil {
		h.logger.Error("failed to start room", "room", room.Code, "error", err)
		return
	}
	h.beginGame(room)
}

func (h *Hub) handleDeclineChallenge(c Client, data json.RawMessage) {
	user, ok := h.userFor(c)
	if !ok {
		return
	}
	var payload protocol.ChallengeResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "Malformed payload"})
		return
	}
	ch, err := h.challenges.Decline(payload.ChallengeID, user.ID)
	if err != nil {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: joinErrorMessage(err)})
		return
	}
	if challenger, ok := h.users.Get(ch.FromID); ok {
		h.send(challenger.Sender, protocol.EventChallengeDeclined, protocol.ChallengeDeclined{
			ChallengeID: ch.ID,
			ByID:        user.ID,
		})
	}
}

func (h *Hub) handleLeaveRoom(c Client, data json.RawMessage) {
	user, room, ok := h.roomFor(c, data)
	if !ok {
		return
	}
	h.removeFromRoom(user, room)
}

// createRoom allocates a unique live code and indexes the room.
func (h *Hub) createRoom(host *User, info catalog.Info) *Room {
	code := h.codes.Generate()
	for _, exists := h.rooms[code]; exists; _, exists = h.rooms[code] {
		code = h.codes.Generate()
	}
	maxPlayers := h.cfg.MaxPlayersFor(info.Type, info.MaxPlayers)
	room := NewRoom(code, info.Type, Seat{ID: host.ID, Name: host.Name, Kind: SeatHuman},
		maxPlayers, info.Lobby, info.New, info.Bot)
	h.rooms[code] = room
	host.RoomCode = code
	h.logger.Info("room created", "room", code, "game", info.Type, "host", host.Name)
	return room
}

// beginGame marks every human in-game and sends each their own view.
func (h *Hub) beginGame(room *Room) {
	h.eachHuman(room, func(seat Seat, u *User) {
		u.RoomCode = room.Code
		if _, ok := h.users.SetStatus(u.ID, protocol.StatusInGame, room.GameType); ok {
			h.broadcastExcept(u.ID, protocol.EventUserStatus, protocol.UserStatus{
				ID: u.ID, Status: protocol.StatusInGame, GameType: room.GameType,
			})
		}
	})
	engine := room.Engine()
	h.eachHuman(room, func(seat Seat, u *User) {
		h.send(u.Sender, protocol.EventGameStart, protocol.GameStart{
			RoomCode:  room.Code,
			GameType:  room.GameType,
			Players:   room.SeatInfos(),
			GameState: engine.StateFor(seat.ID),
		})
	})
	h.ai.Schedule(room)
	h.logger.Info("game started", "room", room.Code, "game", room.GameType, "seats", len(room.Seats()))
}

// afterMove broadcasts the accepted move with per-viewer state, then
// either announces game over or hands the turn to the AI driver.
func (h *Hub) afterMove(room *Room, actorID string, move json.RawMessage, res games.MoveResult) {
	engine := room.Engine()
	h.eachHuman(room, func(seat Seat, u *User) {
		h.send(u.Sender, protocol.EventMoveMade, protocol.MoveMade{
			RoomCode:  room.Code,
			PlayerID:  actorID,
			Move:      move,
			Result:    res,
			GameState: engine.StateFor(seat.ID),
		})
	})

	if res.GameOver {
		h.eachHuman(room, func(seat Seat, u *User) {
			h.send(u.Sender, protocol.EventGameOver, protocol.GameOver{
				RoomCode:  room.Code,
				Winners:   res.Winners,
				GameState: engine.StateFor(seat.ID),
			})
		})
		h.logger.Info("game over", "room", room.Code, "winners", res.Winners)
		return
	}
	h.ai.Schedule(room)
}

// runBotMove is the AI driver's re-entry point, called from a fired
// timer.
func (h *Hub) runBotMove(roomCode, botID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ai.Forget(roomCode, botID)
	room, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	move, ok := h.ai.PickMove(room, botID)
	if !ok {
		return
	}
	res := room.Engine().MakeMove(botID, move)
	if !res.Valid {
		h.logger.Error("bot move rejected", "room", roomCode, "bot", botID, "message", res.Message)
		return
	}
	h.afterMove(room, botID, move, res)
}

// removeFromRoom handles both voluntary leaves and disconnects. The
// engine sees the departure; peers are notified; the room closes when
// too few humans remain to carry it.
func (h *Hub) removeFromRoom(user *User, room *Room) {
	playing := room.Engine() != nil
	wasHost := user.ID == room.HostID

	room.RemoveSeat(user.ID)
	h.users.SetStatus(user.ID, protocol.StatusAvailable, "")
	h.broadcastExcept(user.ID, protocol.EventUserStatus, protocol.UserStatus{
		ID: user.ID, Status: protocol.StatusAvailable,
	})

	if playing {
		h.eachHuman(room, func(_ Seat, u *User) {
			h.send(u.Sender, protocol.EventOpponentDisconnected, protocol.OpponentDisconnected{
				RoomCode:   room.Code,
				PlayerID:   user.ID,
				PlayerName: user.Name,
			})
		})
	}

	// Lobby games carry on with one human against the bots; everything
	// else needs two humans. A host abandoning a waiting room strands
	// it, so it closes too.
	minHumans := 2
	if room.Lobby {
		minHumans = 1
	}
	switch {
	case room.HumanCount() == 0:
		h.closeRoom(room)
	case playing && room.HumanCount() < minHumans:
		h.closeRoom(room)
	case !playing && wasHost:
		h.eachHuman(room, func(_ Seat, u *User) {
			h.send(u.Sender, protocol.EventOpponentDisconnected, protocol.OpponentDisconnected{
				RoomCode:   room.Code,
				PlayerID:   user.ID,
				PlayerName: user.Name,
			})
		})
		h.closeRoom(room)
	case playing:
		h.ai.Schedule(room)
	}
}

// closeRoom releases every remaining human back to available and drops
// the room from the index. Fired AI timers then find nothing to do.
func (h *Hub) closeRoom(room *Room) {
	h.eachHuman(room, func(_ Seat, u *User) {
		h.users.SetStatus(u.ID, protocol.StatusAvailable, "")
		h.broadcastExcept(u.ID, protocol.EventUserStatus, protocol.UserStatus{
			ID: u.ID, Status: protocol.StatusAvailable,
		})
	})
	room.Close()
	delete(h.rooms, room.Code)
	h.logger.Info("room closed", "room", room.Code)
}

// userFor resolves the registered user behind a connection.
func (h *Hub) userFor(c Client) (*User, bool) {
	if c.UserID() == "" {
		return nil, false
	}
	return h.users.Get(c.UserID())
}

// roomFor resolves user and room for room-scoped events, emitting the
// error taxonomy on failure.
func (h *Hub) roomFor(c Client, data json.RawMessage) (*User, *Room, bool) {
	user, ok := h.userFor(c)
	if !ok {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "Connect first"})
		return nil, nil, false
	}
	var payload struct {
		RoomCode string `json:"roomCode"`
	}
	_ = json.Unmarshal(data, &payload)
	if payload.RoomCode == "" {
		payload.RoomCode = user.RoomCode
	}
	room, ok := h.rooms[payload.RoomCode]
	if !ok {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "Room not found"})
		return nil, nil, false
	}
	if room.SeatByID(user.ID) == nil {
		h.send(c, protocol.EventInvalidMove, protocol.InvalidMove{Message: "You are not in this room"})
		return nil, nil, false
	}
	return user, room, true
}

// eachHuman visits every human seat that maps to a registered user.
func (h *Hub) eachHuman(room *Room, fn func(seat Seat, u *User)) {
	for _, seat := range room.Seats() {
		if seat.Kind != SeatHuman {
			continue
		}
		if u, ok := h.users.Get(seat.ID); ok {
			fn(seat, u)
		}
	}
}

// broadcastExcept sends to every registered user but one.
func (h *Hub) broadcastExcept(excludeID, event string, payload any) {
	h.users.Each(func(u *User) {
		if u.ID == excludeID {
			return
		}
		h.send(u.Sender, event, payload)
	})
}

// send delivers one event, logging rather than surfacing failures.
func (h *Hub) send(s Sender, event string, payload any) {
	msg, err := protocol.NewMessage(event, payload)
	if err != nil {
		h.logger.Error("failed to marshal payload", "event", event, "error", err)
		return
	}
	s.Send(msg)
}

// joinErrorMessage maps room and challenge errors to the messages the
// client shows.
func joinErrorMessage(err error) string {
	switch err {
	case ErrRoomFull:
		return "Room is full"
	case ErrRoomClosed:
		return "Room is closed"
	case ErrRoomPlaying:
		return "Game already in progress"
	case ErrRoomNotStarted:
		return "Game has not started"
	case ErrNotEnoughSeats:
		return "Need at least 2 players to start"
	case ErrNotInRoom:
		return "You are not in this room"
	case ErrNotHost:
		return "Only the host can start the game"
	case ErrChallengeNotFound:
		return "Challenge not found or expired"
	case ErrChallengeDuplicate:
		return "You already have a pending challenge for this game"
	case ErrChallengeNotYours:
		return "Challenge is not addressed to you"
	default:
		return err.Error()
	}
}
