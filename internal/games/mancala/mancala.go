// Package mancala implements two-rank mancala (Kalah rules): sowing
// counter-clockwise, an extra turn for ending in your own store, and
// captures when the last stone lands in an empty pit on your side.
package mancala

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// Type is the game tag used on the wire.
const Type = "mancala"

// Board layout: indices 0-5 are the first player's pits, 6 their
// store, 7-12 the second player's pits, 13 their store.
const (
	PitsPerSide = 6
	BoardSize   = 14
	store0      = 6
	store1      = 13
)

// startingStones per pit.
const startingStones = 4

// Engine is the authoritative mancala state machine.
type Engine struct {
	players [2]string
	pits    [BoardSize]int
	current int

	gameOver bool
	winner   string // empty on a tie
}

// New sets up the opening position.
func New(playerIDs []string, _ *rand.Rand) games.Game {
	e := &Engine{}
	copy(e.players[:], playerIDs)
	for i := 0; i < BoardSize; i++ {
		if i != store0 && i != store1 {
			e.pits[i] = startingStones
		}
	}
	return e
}

type move struct {
	Type string `json:"type"`
	Pit  int    `json:"pit"` // 0-5, relative to the mover's side
}

func (e *Engine) storeOf(idx int) int {
	if idx == 0 {
		return store0
	}
	return store1
}

func (e *Engine) pitIndex(idx, pit int) int {
	if idx == 0 {
		return pit
	}
	return 7 + pit
}

// MakeMove sows from one of the mover's pits. Invalid moves mutate
// nothing.
func (e *Engine) MakeMove(playerID string, raw json.RawMessage) games.MoveResult {
	var m move
	if err := json.Unmarshal(raw, &m); err != nil {
		return games.Invalid("Malformed move")
	}
	if m.Type != "sow" {
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
	if m.Pit < 0 || m.Pit >= PitsPerSide {
		return games.Invalid("Pit out of range")
	}

	from := e.pitIndex(idx, m.Pit)
	stones := e.pits[from]
	if stones == 0 {
		return games.Invalid("That pit is empty")
	}

	e.pits[from] = 0
	pos := from
	skip := e.storeOf(1 - idx)
	for stones > 0 {
		pos = (pos + 1) % BoardSize
		if pos == skip {
			continue
		}
		e.pits[pos]++
		stones--
	}

	res := games.OK()
	extraTurn := pos == e.storeOf(idx)

	// Capture: last stone into an empty pit on the mover's side takes
	// that stone plus the opposite pit.
	if !extraTurn && e.sideOf(pos) == idx && e.pits[pos] == 1 {
		opposite := 12 - pos
		if e.pits[opposite] > 0 {
			captured := e.pits[pos] + e.pits[opposite]
			e.pits[pos] = 0
			e.pits[opposite] = 0
			e.pits[e.storeOf(idx)] += captured
			res = res.With("captured", captured)
		}
	}

	if e.sideEmpty(0) || e.sideEmpty(1) {
		e.sweep()
		return e.finish(res)
	}

	if extraTurn {
		return res.With("extraTurn", true)
	}
	e.current = 1 - e.current
	return res
}

// sideOf maps a board index to the side owning it, or -1 for stores.
func (e *Engine) sideOf(pos int) int {
	switch {
	case pos >= 0 && pos < store0:
		return 0
	case pos > store0 && pos < store1:
		return 1
	default:
		return -1
	}
}

func (e *Engine) sideEmpty(idx int) bool {
	for pit := 0; pit < PitsPerSide; pit++ {
		if e.pits[e.pitIndex(idx, pit)] > 0 {
			return false
		}
	}
	return true
}

// sweep moves each side's remaining stones into its own store at game
// end.
func (e *Engine) sweep() {
	for idx := 0; idx < 2; idx++ {
		for pit := 0; pit < PitsPerSide; pit++ {
			i := e.pitIndex(idx, pit)
			e.pits[e.storeOf(idx)] += e.pits[i]
			e.pits[i] = 0
		}
	}
}

func (e *Engine) finish(res games.MoveResult) games.MoveResult {
	e.gameOver = true
	var winners []string
	switch {
	case e.pits[store0] > e.pits[store1]:
		e.winner = e.players[0]
		winners = []string{e.winner}
	case e.pits[store1] > e.pits[store0]:
		e.winner = e.players[1]
		winners = []string{e.winner}
	default:
		winners = append(winners, e.players[:]...)
	}
	out := games.MoveResult{Valid: true, GameOver: true, Winners: winners, Fields: res.Fields}
	return out
}

// State is the full board; mancala has no hidden information.
type State struct {
	GameType        string         `json:"gameType"`
	Pits            [BoardSize]int `json:"pits"`
	Players         []string       `json:"players"`
	Stores          map[string]int `json:"stores"`
	CurrentPlayerID string         `json:"currentPlayerId,omitempty"`
	GameOver        bool           `json:"gameOver"`
	Winner          string         `json:"winner,omitempty"`
}

// StateFor returns the same snapshot for every viewer.
func (e *Engine) StateFor(string) any {
	s := State{
		GameType: Type,
		Pits:     e.pits,
		Players:  append([]string(nil), e.players[:]...),
		Stores: map[string]int{
			e.players[0]: e.pits[store0],
			e.players[1]: e.pits[store1],
		},
		GameOver: e.gameOver,
		Winner:   e.winner,
	}
	if !e.gameOver {
		s.CurrentPlayerID = e.players[e.current]
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
	e.winner = e.players[1-idx]
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
