// Package connectfour implements the 7x6 drop-disc game. The first
// player is red and always moves first.
package connectfour

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// Type is the game tag used on the wire.
const Type = "connectfour"

// Board dimensions.
const (
	Rows = 6
	Cols = 7
)

// Disc colours.
const (
	Red    = "red"
	Yellow = "yellow"
)

// Engine is the authoritative connect-four state machine. Row 0 is the
// top of the board; discs fall to the highest free row index.
type Engine struct {
	players []string
	board   [Rows][Cols]string
	current int
	discs   int

	gameOver bool
	winner   string
	line     [][2]int
}

// New creates a game. The first player id plays red.
func New(playerIDs []string, _ *rand.Rand) games.Game {
	return &Engine{players: append([]string(nil), playerIDs...)}
}

type move struct {
	Type   string `json:"type"`
	Column int    `json:"column"`
}

func (e *Engine) colourFor(playerID string) string {
	if len(e.players) > 0 && e.players[0] == playerID {
		return Red
	}
	return Yellow
}

// MakeMove drops a disc into a column. Invalid moves mutate nothing.
func (e *Engine) MakeMove(playerID string, raw json.RawMessage) games.MoveResult {
	var m move
	if err := json.Unmarshal(raw, &m); err != nil {
		return games.Invalid("Malformed move")
	}
	if m.Type != "drop" {
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
	if m.Column < 0 || m.Column >= Cols {
		return games.Invalid("Column out of range")
	}

	row := e.dropRow(m.Column)
	if row == -1 {
		return games.Invalid("That column is full")
	}

	e.board[row][m.Column] = e.colourFor(playerID)
	e.discs++

	if line, ok := e.winningLineThrough(row, m.Column); ok {
		e.gameOver = true
		e.winner = playerID
		e.line = line
		return games.MoveResult{Valid: true, GameOver: true, Winners: []string{playerID}}.
			With("row", row).With("column", m.Column)
	}
	if e.discs == Rows*Cols {
		e.gameOver = true
		return games.MoveResult{Valid: true, GameOver: true}
	}

	e.current = (e.current + 1) % len(e.players)
	return games.OK().With("row", row).With("column", m.Column)
}

// dropRow finds the landing row for a column, or -1 when full.
func (e *Engine) dropRow(col int) int {
	for row := Rows - 1; row >= 0; row-- {
		if e.board[row][col] == "" {
			return row
		}
	}
	return -1
}

var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// winningLineThrough looks for four in a row through the given cell.
func (e *Engine) winningLineThrough(row, col int) ([][2]int, bool) {
	colour := e.board[row][col]
	for _, d := range directions {
		cells := [][2]int{{row, col}}
		for _, sign := range []int{1, -1} {
			for step := 1; step < 4; step++ {
				r := row + d[0]*step*sign
				c := col + d[1]*step*sign
				if r < 0 || r >= Rows || c < 0 || c >= Cols || e.board[r][c] != colour {
					break
				}
				cells = append(cells, [2]int{r, c})
			}
		}
		if len(cells) >= 4 {
			return cells, true
		}
	}
	return nil, false
}

// State is the full board; there is nothing to redact.
type State struct {
	GameType        string             `json:"gameType"`
	Board           [Rows][Cols]string `json:"board"`
	Players         []string           `json:"players"`
	Colours         map[string]string  `json:"colours"`
	CurrentPlayerID string             `json:"currentPlayerId,omitempty"`
	GameOver        bool               `json:"gameOver"`
	Winner          string             `json:"winner,omitempty"`
	WinningLine     [][2]int           `json:"winningLine,omitempty"`
}

// StateFor returns the same snapshot for every viewer.
func (e *Engine) StateFor(string) any {
	s := State{
		GameType: Type,
		Board:    e.board,
		Players:  append([]string(nil), e.players...),
		Colours:  map[string]string{},
		GameOver: e.gameOver,
		Winner:   e.winner,
	}
	for _, id := range e.players {
		s.Colours[id] = e.colourFor(id)
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
	if e.playerIndex(playerID) == -1 || e.gameOver {
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
