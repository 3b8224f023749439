package server

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
	"github.com/lox/parlour/internal/protocol"
)

// Seat kinds.
const (
	SeatHuman = "human"
	SeatBot   = "bot"
)

// Room lifecycle errors, surfaced to clients via join-error and
// invalid-move payloads.
var (
	ErrRoomClosed     = errors.New("room is closed")
	ErrRoomFull       = errors.New("room is full")
	ErrRoomPlaying    = errors.New("game already in progress")
	ErrRoomNotStarted = errors.New("game has not started")
	ErrNotEnoughSeats = errors.New("need at least 2 players to start")
	ErrNotInRoom      = errors.New("you are not in this room")
	ErrNotHost        = errors.New("only the host can start the game")
)

// Seat is one player slot: a human user or a bot.
type Seat struct {
	ID         string
	Name       string
	Kind       string
	Difficulty string
}

// Info projects the seat onto the wire.
func (s Seat) Info() protocol.SeatInfo {
	return protocol.SeatInfo{ID: s.ID, Name: s.Name, Kind: s.Kind, Difficulty: s.Difficulty}
}

// Room wraps one engine instance with its ordered seats, host and
// rematch votes. Not goroutine-safe; the hub serializes access.
type Room struct {
	Code       string
	GameType   string
	HostID     string
	MaxPlayers int
	Lobby      bool

	seats        []Seat
	engine       games.Game
	constructor  games.Constructor
	bot          games.BotPolicy
	rematchVotes map[string]bool
	closed       bool
}

// NewRoom creates a waiting room with the host in seat 0.
func NewRoom(code, gameType string, host Seat, maxPlayers int, lobby bool,
	constructor games.Constructor, bot games.BotPolicy) *Room {
	return &Room{
		Code:         code,
		GameType:     gameType,
		HostID:       host.ID,
		MaxPlayers:   maxPlayers,
		Lobby:        lobby,
		seats:        []Seat{host},
		constructor:  constructor,
		bot:          bot,
		rematchVotes: make(map[string]bool),
	}
}

// Join appends a seat to a waiting room.
func (r *Room) Join(seat Seat) error {
	switch {
	case r.closed:
		return ErrRoomClosed
	case r.engine != nil:
		return ErrRoomPlaying
	case len(r.seats) >= r.MaxPlayers:
		return ErrRoomFull
	}
	r.seats = append(r.seats, seat)
	return nil
}

// botDifficulties is the cycle assigned to host-requested lobby bots.
var botDifficulties = []string{games.DifficultyEasy, games.DifficultyMedium, games.DifficultyHard}

// Start fills the requested bot seats and instantiates the engine with
// the ordered seat list.
func (r *Room) Start(aiCount int, rng *rand.Rand) error {
	if r.closed {
		return ErrRoomClosed
	}
	if r.engine != nil {
		return ErrRoomPlaying
	}

	for i := 0; i < aiCount && len(r.seats) < r.MaxPlayers; i++ {
		difficulty := botDifficulties[i%len(botDifficulties)]
		r.seats = append(r.seats, Seat{
			ID:         fmt.Sprintf("%s-bot-%d", r.Code, i+1),
			Name:       fmt.Sprintf("Bot %d (%s)", i+1, difficulty),
			Kind:       SeatBot,
			Difficulty: difficulty,
		})
	}
	if len(r.seats) < 2 {
		return ErrNotEnoughSeats
	}

	r.engine = r.constructor(r.PlayerIDs(), rng)
	return nil
}

// Rematch records one vote. It returns true when every human seat has
// voted, at which point the engine is rebuilt from the same seat list
// and the votes clear.
func (r *Room) Rematch(playerID string, rng *rand.Rand) (restarted bool, err error) {
	if r.closed {
		return false, ErrRoomClosed
	}
	if r.engine == nil {
		return false, ErrRoomNotStarted
	}
	if seat := r.SeatByID(playerID); seat == nil || seat.Kind != SeatHuman {
		return false, ErrNotInRoom
	}

	r.rematchVotes[playerID] = true
	for _, seat := range r.seats {
		if seat.Kind == SeatHuman && !r.rematchVotes[seat.ID] {
			return false, nil
		}
	}

	r.rematchVotes = make(map[string]bool)
	r.engine = r.constructor(r.PlayerIDs(), rng)
	return true, nil
}

// RemoveSeat drops a seat and forwards the removal to the engine.
func (r *Room) RemoveSeat(playerID string) {
	for i, seat := range r.seats {
		if seat.ID == playerID {
			r.seats = append(r.seats[:i], r.seats[i+1:]...)
			break
		}
	}
	delete(r.rematchVotes, playerID)
	if r.engine != nil {
		r.engine.RemovePlayer(playerID)
	}
}

// Close marks the room terminal.
func (r *Room) Close() {
	r.closed = true
	r.engine = nil
}

// Closed reports whether the room has been closed.
func (r *Room) Closed() bool {
	return r.closed
}

// Engine returns the running engine, or nil while waiting.
func (r *Room) Engine() games.Game {
	return r.engine
}

// Bot returns the game's bot policy.
func (r *Room) Bot() games.BotPolicy {
	return r.bot
}

// SeatByID finds a seat.
func (r *Room) SeatByID(playerID string) *Seat {
	for i := range r.seats {
		if r.seats[i].ID == playerID {
			return &r.seats[i]
		}
	}
	return nil
}

// Seats returns the ordered seat list.
func (r *Room) Seats() []Seat {
	return r.seats
}

// SeatInfos projects all seats onto the wire.
func (r *Room) SeatInfos() []protocol.SeatInfo {
	out := make([]protocol.SeatInfo, len(r.seats))
	for i, seat := range r.seats {
		out[i] = seat.Info()
	}
	return out
}

// PlayerIDs returns seat ids in turn order.
func (r *Room) PlayerIDs() []string {
	out := make([]string, len(r.seats))
	for i, seat := range r.seats {
		out[i] = seat.ID
	}
	return out
}

// HumanCount returns the number of human seats.
func (r *Room) HumanCount() int {
	n := 0
	for _, seat := range r.seats {
		if seat.Kind == SeatHuman {
			n++
		}
	}
	return n
}
