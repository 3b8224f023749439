// Package tictactoe implements the 3x3 grid game. The first player is
// X and always moves first.
package tictactoe

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// Type is the game tag used on the wire.
const Type = "tictactoe"

// Marks placed on the board.
const (
	MarkX = "X"
	MarkO = "O"
)

// Engine is the authoritative tic-tac-toe state machine.
type Engine struct {
	players []string
	board   [3][3]string
	current int
	moves   int

	gameOver bool
	winner   string
	line     [][2]int
}

// New creates a game. The first player id plays X.
func New(playerIDs []string, _ *rand.Rand) games.Game {
	return &Engine{players: append([]string(nil), playerIDs...)}
}

type move struct {
	Type string `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

func (e *Engine) markFor(playerID string) string {
	if len(e.players) > 0 && e.players[0] == playerID {
		return MarkX
	}
	return MarkO
}

// MakeMove places a mark. Invalid moves mutate nothing.
func (e *Engine) MakeMove(playerID string, raw json.RawMessage) games.MoveResult {
	var m move
	if err := json.Unmarshal(raw, &m); err != nil {
		return games.Invalid("Malformed move")
	}
	if m.Type != "place" {
		return games.Invalid(fmt.Sprintf("Unknown move type %q", m.Type))
	}
	if e.gameOver {
		return games.Invalid("The game is over")
	}
	if e.playerIndex(playerID) == -1 {
		return games.Invalid("You are not in this game")
	}
	if e.players[e.current] != playerID {
		return games.Invalid("Not your turn")
	}
	if m.Row < 0 || m.Row > 2 || m.Col < 0 || m.Col > 2 {
		return games.Invalid("Cell out of range")
	}
	if e.board[m.Row][m.Col] != "" {
		return games.Invalid("That cell is taken")
	}

	e.board[m.Row][m.Col] = e.markFor(playerID)
	e.moves++

	if line, ok := e.winningLine(); ok {
		e.gameOver = true
		e.winner = playerID
		e.line = line
		return games.MoveResult{Valid: true, GameOver: true, Winners: []string{playerID}}
	}
	if e.moves == 9 {
		e.gameOver = true
		return games.MoveResult{Valid: true, GameOver: true}
	}

	e.current = (e.current + 1) % len(e.players)
	return games.OK()
}

var lines = [][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

func (e *Engine) winningLine() ([][2]int, bool) {
	for _, l := range lines {
		a := e.board[l[0][0]][l[0][1]]
		if a == "" {
			continue
		}
		if a == e.board[l[1][0]][l[1][1]] && a == e.board[l[2][0]][l[2][1]] {
			return [][2]int{l[0], l[1], l[2]}, true
		}
	}
	return nil, false
}

// State is the full board; there is nothing to redact.
type State struct {
	GameType        string            `json:"gameType"`
	Board           [3][3]string      `json:"board"`
	Players         []string          `json:"players"`
	Marks           map[string]string `json:"marks"`
	CurrentPlayerID string            `json:"currentPlayerId,omitempty"`
	GameOver        bool              `json:"gameOver"`
	Winner          string            `json:"winner,omitempty"`
	WinningLine     [][2]int          `json:"winningLine,omitempty"`
}

// StateFor returns the same snapshot for every viewer.
func (e *Engine) StateFor(string) any {
	s := State{
		GameType: Type,
		Board:    e.board,
		Players:  append([]string(nil), e.players...),
		Marks:    map[string]string{},
		GameOver: e.gameOver,
		Winner:   e.winner,
	}
	for _, id := range e.players {
		s.Marks[id] = e.markFor(id)
	}
	if !e.gameOver && e.current < len(e.players) {
		s.CurrentPlayerID = e.players[e.current]
	}
	if e.line != nil {
		s.WinningLine = append([][2]int(nil), e.line...)
	}
	return s
}

// RemovePlayer forfeits the game to the remaining player.
func (e *Engine) RemovePlayer(playerID string) {
	idx := e.playerIndex(playerID)
	if idx == -1 || e.gameOver {
		return
	}
	e.gameOver = true
	for _, id := range e.players {
		if id != playerID {
			e.winner = id
		}
	}
}

// PendingActors names the player to move.
func (e *Engine) PendingActors() []string {
	if e.gameOver {
		return nil
	}
	return []string{e.players[e.current]}
}

func (e *Engine) playerIndex(id string) int {
	for i, p := range e.players {
		if p == id {
			return i
		}
	}
	return -1
}
