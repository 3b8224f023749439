// Package checkers implements English draughts on the dark squares of
// an 8x8 board: mandatory captures, chain jumps and king promotion.
package checkers

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// Type is the game tag used on the wire.
const Type = "checkers"

// Size is the board edge length.
const Size = 8

// Piece codes as they appear in the state. Lowercase is a man,
// uppercase a king. Red sits at the bottom (rows 5-7) and moves up.
const (
	RedMan    = "r"
	RedKing   = "R"
	BlackMan  = "b"
	BlackKing = "B"
)

// Engine is the authoritative checkers state machine.
type Engine struct {
	players [2]string
	board   [Size][Size]string
	current int

	// chainFrom locks the turn to a piece mid capture chain.
	chainFrom *[2]int

	gameOver bool
	winner   string
}

// New creates a game. The first player id plays red and moves first.
func New(playerIDs []string, _ *rand.Rand) games.Game {
	e := &Engine{}
	copy(e.players[:], playerIDs)
	for c := 0; c < Size; c++ {
		for r := 0; r < 3; r++ {
			if (r+c)%2 == 1 {
				e.board[r][c] = BlackMan
			}
		}
		for r := 5; r < Size; r++ {
			if (r+c)%2 == 1 {
				e.board[r][c] = RedMan
			}
		}
	}
	return e
}

type move struct {
	Type    string `json:"type"`
	FromRow int    `json:"fromRow"`
	FromCol int    `json:"fromCol"`
	ToRow   int    `json:"toRow"`
	ToCol   int    `json:"toCol"`
}

// Move is one legal piece movement, exposed in the per-viewer state so
// clients and bots can offer choices without reimplementing the rules.
type Move struct {
	FromRow int  `json:"fromRow"`
	FromCol int  `json:"fromCol"`
	ToRow   int  `json:"toRow"`
	ToCol   int  `json:"toCol"`
	Capture bool `json:"capture"`
}

func (e *Engine) ownerOf(code string) int {
	switch code {
	case RedMan, RedKing:
		return 0
	case BlackMan, BlackKing:
		return 1
	default:
		return -1
	}
}

func isKing(code string) bool {
	return code == RedKing || code == BlackKing
}

// MakeMove applies one movement. Invalid moves mutate nothing.
func (e *Engine) MakeMove(playerID string, raw json.RawMessage) games.MoveResult {
	var m move
	if err := json.Unmarshal(raw, &m); err != nil {
		return games.Invalid("Malformed move")
	}
	if m.Type != "move" {
		return games.Invalid(fmt.Sprintf("Unknown move type %q", m.Type))
	}
	if e.gameOver {
		return games.Invalid("The game is over")
	}
	idx := e.playerIndex(playerID)
	if idx == -1 {
		return games.Invalid("You are not in this game")
	}
	if idx != e.current {
		return games.Invalid("Not your turn")
	}

	if !onBoard(m.FromRow, m.FromCol) || !onBoard(m.ToRow, m.ToCol) {
		return games.Invalid("Square out of range")
	}
	piece := e.board[m.FromRow][m.FromCol]
	if e.ownerOf(piece) != idx {
		return games.Invalid("No piece of yours on that square")
	}
	if e.chainFrom != nil && (e.chainFrom[0] != m.FromRow || e.chainFrom[1] != m.FromCol) {
		return games.Invalid("You must continue jumping with the same piece")
	}

	legal := e.legalMoves(idx)
	var chosen *Move
	for i := range legal {
		l := legal[i]
		if l.FromRow == m.FromRow && l.FromCol == m.FromCol && l.ToRow == m.ToRow && l.ToCol == m.ToCol {
			chosen = &l
			break
		}
	}
	if chosen == nil {
		for _, l := range legal {
			if l.Capture {
				return games.Invalid("You must capture")
			}
		}
		return games.Invalid("Illegal move")
	}

	e.board[m.ToRow][m.ToCol] = piece
	e.board[m.FromRow][m.FromCol] = ""
	if chosen.Capture {
		capR := (m.FromRow + m.ToRow) / 2
		capC := (m.FromCol + m.ToCol) / 2
		e.board[capR][capC] = ""
	}

	promoted := false
	if !isKing(piece) {
		if idx == 0 && m.ToRow == 0 {
			e.board[m.ToRow][m.ToCol] = RedKing
			promoted = true
		}
		if idx == 1 && m.ToRow == Size-1 {
			e.board[m.ToRow][m.ToCol] = BlackKing
			promoted = true
		}
	}

	// A capture chain continues with the same piece unless the move
	// promoted, which ends the turn.
	if chosen.Capture && !promoted && len(e.jumpsFrom(m.ToRow, m.ToCol)) > 0 {
		e.chainFrom = &[2]int{m.ToRow, m.ToCol}
		return games.OK().With("capture", true).With("chain", true)
	}

	e.chainFrom = nil
	e.current = 1 - e.current

	// No pieces or no moves loses.
	if len(e.legalMoves(e.current)) == 0 {
		e.gameOver = true
		e.winner = playerID
		return games.MoveResult{Valid: true, GameOver: true, Winners: []string{playerID}}
	}

	res := games.OK()
	if chosen.Capture {
		res = res.With("capture", true)
	}
	if promoted {
		res = res.With("promoted", true)
	}
	return res
}

func onBoard(r, c int) bool {
	return r >= 0 && r < Size && c >= 0 && c < Size
}

// rowDirections returns the row deltas a piece may move in.
func (e *Engine) rowDirections(piece string) []int {
	if isKing(piece) {
		return []int{-1, 1}
	}
	if e.ownerOf(piece) == 0 {
		return []int{-1} // red moves up
	}
	return []int{1}
}

// jumpsFrom lists the captures available to the piece on (r, c).
func (e *Engine) jumpsFrom(r, c int) []Move {
	piece := e.board[r][c]
	owner := e.ownerOf(piece)
	if owner == -1 {
		return nil
	}
	var out []Move
	for _, dr := range e.rowDirections(piece) {
		for _, dc := range []int{-1, 1} {
			midR, midC := r+dr, c+dc
			toR, toC := r+2*dr, c+2*dc
			if !onBoard(toR, toC) || e.board[toR][toC] != "" {
				continue
			}
			mid := e.board[midR][midC]
			if mid != "" && e.ownerOf(mid) != owner {
				out = append(out, Move{FromRow: r, FromCol: c, ToRow: toR, ToCol: toC, Capture: true})
			}
		}
	}
	return out
}

// stepsFrom lists the non-capturing moves for the piece on (r, c).
func (e *Engine) stepsFrom(r, c int) []Move {
	piece := e.board[r][c]
	if e.ownerOf(piece) == -1 {
		return nil
	}
	var out []Move
	for _, dr := range e.rowDirections(piece) {
		for _, dc := range []int{-1, 1} {
			toR, toC := r+dr, c+dc
			if onBoard(toR, toC) && e.board[toR][toC] == "" {
				out = append(out, Move{FromRow: r, FromCol: c, ToRow: toR, ToCol: toC})
			}
		}
	}
	return out
}

// legalMoves lists every legal move for a player, honouring mandatory
// capture and any in-progress chain.
func (e *Engine) legalMoves(idx int) []Move {
	if e.chainFrom != nil && idx == e.current {
		return e.jumpsFrom(e.chainFrom[0], e.chainFrom[1])
	}

	var jumps, steps []Move
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if e.ownerOf(e.board[r][c]) != idx {
				continue
			}
			jumps = append(jumps, e.jumpsFrom(r, c)...)
			steps = append(steps, e.stepsFrom(r, c)...)
		}
	}
	if len(jumps) > 0 {
		return jumps
	}
	return steps
}

// State is the full board plus the mover's legal moves; checkers has
// no hidden information.
type State struct {
	GameType        string              `json:"gameType"`
	Board           [Size][Size]string  `json:"board"`
	Players         []string            `json:"players"`
	Colours         map[string]string   `json:"colours"`
	CurrentPlayerID string              `json:"currentPlayerId,omitempty"`
	LegalMoves      []Move              `json:"legalMoves,omitempty"`
	ChainFrom       *[2]int             `json:"chainFrom,omitempty"`
	GameOver        bool                `json:"gameOver"`
	Winner          string              `json:"winner,omitempty"`
}

// StateFor returns the same snapshot for every viewer, with legal
// moves included only for the player to act.
func (e *Engine) StateFor(viewerID string) any {
	s := State{
		GameType: Type,
		Board:    e.board,
		Players:  append([]string(nil), e.players[:]...),
		Colours: map[string]string{
			e.players[0]: "red",
			e.players[1]: "black",
		},
		GameOver: e.gameOver,
		Winner:   e.winner,
	}
	if !e.gameOver {
		s.CurrentPlayerID = e.players[e.current]
		if viewerID == s.CurrentPlayerID {
			s.LegalMoves = e.legalMoves(e.current)
		}
	}
	if e.chainFrom != nil {
		chain := *e.chainFrom
		s.ChainFrom = &chain
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
