// Package protocol defines the wire contract: every message is an
// event name plus one JSON payload. Moves are tagged unions keyed by
// "type" and pass through the hub opaquely; only engines decode them.
package protocol

import "encoding/json"

// Message is the envelope carried over the websocket in both
// directions.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewMessage wraps a payload in an envelope. Marshal failures are
// programmer errors (payload structs are all marshalable).
func NewMessage(event string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Event: event, Data: data}, nil
}

// Client -> server events.
const (
	EventUserConnect      = "user-connect"
	EventCreateRoom       = "create-room"
	EventJoinRoom         = "join-room"
	EventStartGame        = "start-game"
	EventMakeMove         = "make-move"
	EventRequestState     = "request-state"
	EventRequestRematch   = "request-rematch"
	EventSendChallenge    = "send-challenge"
	EventAcceptChallenge  = "accept-challenge"
	EventDeclineChallenge = "decline-challenge"
	EventLeaveRoom        = "leave-room"
)

// Server -> client events.
const (
	EventNameAccepted         = "name-accepted"
	EventNameError            = "name-error"
	EventUserList             = "user-list"
	EventUserJoined           = "user-joined"
	EventUserLeft             = "user-left"
	EventUserStatus           = "user-status"
	EventRoomCreated          = "room-created"
	EventPlayerJoined         = "player-joined"
	EventJoinError            = "join-error"
	EventGameLobbyReady       = "game-lobby-ready"
	EventGameStart            = "game-start"
	EventMoveMade             = "move-made"
	EventInvalidMove          = "invalid-move"
	EventGameOver             = "game-over"
	EventStateResponse        = "state-response"
	EventRematchRequested     = "rematch-requested"
	EventChallengeReceived    = "challenge-received"
	EventChallengeAccepted    = "challenge-accepted"
	EventChallengeDeclined    = "challenge-declined"
	EventOpponentDisconnected = "opponent-disconnected"
)

// User statuses.
const (
	StatusAvailable = "available"
	StatusInGame    = "in-game"
)

// Client -> server payloads.

type UserConnect struct {
	Name string `json:"name"`
}

type CreateRoom struct {
	GameType   string `json:"gameType"`
	PlayerName string `json:"playerName"`
}

type JoinRoom struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type StartGame struct {
	RoomCode string `json:"roomCode"`
	AICount  int    `json:"aiCount,omitempty"`
}

type MakeMove struct {
	RoomCode string          `json:"roomCode"`
	Move     json.RawMessage `json:"move"`
}

type RequestState struct {
	RoomCode string `json:"roomCode"`
}

type RequestRematch struct {
	RoomCode string `json:"roomCode"`
}

type LeaveRoom struct {
	RoomCode string `json:"roomCode"`
}

type SendChallenge struct {
	ToID     string `json:"toId"`
	GameType string `json:"gameType"`
}

type ChallengeResponse struct {
	ChallengeID string `json:"challengeId"`
}

// Server -> client payloads.

type NameAccepted struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NameError struct {
	Message string `json:"message"`
}

// UserInfo is one entry in presence broadcasts and the user list.
type UserInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	GameType string `json:"gameType,omitempty"`
}

type UserList struct {
	Users []UserInfo `json:"users"`
}

type UserLeft struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserStatus struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	GameType string `json:"gameType,omitempty"`
}

type RoomCreated struct {
	RoomCode   string `json:"roomCode"`
	GameType   string `json:"gameType"`
	MaxPlayers int    `json:"maxPlayers"`
}

// SeatInfo is one seat as seen on the wire.
type SeatInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"` // human or bot
	Difficulty string `json:"difficulty,omitempty"`
}

type PlayerJoined struct {
	RoomCode   string     `json:"roomCode"`
	PlayerID   string     `json:"playerId"`
	PlayerName string     `json:"playerName"`
	Players    []SeatInfo `json:"players"`
}

type JoinError struct {
	Message string `json:"message"`
}

type GameLobbyReady struct {
	RoomCode   string `json:"roomCode"`
	GameType   string `json:"gameType"`
	MaxPlayers int    `json:"maxPlayers"`
}

type GameStart struct {
	RoomCode  string     `json:"roomCode"`
	GameType  string     `json:"gameType"`
	Players   []SeatInfo `json:"players"`
	GameState any        `json:"gameState"`
}

type MoveMade struct {
	RoomCode  string          `json:"roomCode"`
	PlayerID  string          `json:"playerId"`
	Move      json.RawMessage `json:"move"`
	Result    any             `json:"result"`
	GameState any             `json:"gameState"`
}

type InvalidMove struct {
	Message string `json:"message"`
}

type GameOver struct {
	RoomCode  string   `json:"roomCode"`
	Winners   []string `json:"winners"`
	GameState any      `json:"gameState"`
}

type StateResponse struct {
	RoomCode  string     `json:"roomCode"`
	Players   []SeatInfo `json:"players"`
	GameState any        `json:"gameState"`
}

type RematchRequested struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type ChallengeReceived struct {
	ChallengeID string `json:"challengeId"`
	FromID      string `json:"fromId"`
	FromName    string `json:"fromName"`
	GameType    string `json:"gameType"`
}

type ChallengeAccepted struct {
	ChallengeID string `json:"challengeId"`
	RoomCode    string `json:"roomCode"`
	GameType    string `json:"gameType"`
}

type ChallengeDeclined struct {
	ChallengeID string `json:"challengeId"`
	ByID        string `json:"byId"`
}

type OpponentDisconnected struct {
	RoomCode   string `json:"roomCode"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}
