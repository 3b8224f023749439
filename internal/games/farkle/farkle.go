// Package farkle implements the Farkle dice engine: push-your-luck
// scoring to 10,000 with hot dice and turn-ending farkles. The compound
// keep-and-roll / keep-and-bank moves exist so a hot-dice sequence is a
// single atomic step; nothing can observe or interleave between the
// keep and the follow-up.
package farkle

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"
	"sort"

	"github.com/lox/parlour/internal/games"
)

// Type is the game tag used on the wire.
const Type = "farkle"

// Target is the winning score.
const Target = 10000

// Engine is the authoritative Farkle state machine.
type Engine struct {
	players []string
	scores  map[string]int
	rng     *rand.Rand

	dice       [6]int // 0 = not rolled this turn
	kept       map[int]bool
	turnScore  int
	hasRolled  bool // this dice set has been rolled; cleared by hot dice
	turnRolled bool // any roll this turn; banking needs one
	mustKeep   bool
	current    int

	gameOver bool
	winner   string
}

// New creates an engine with the given players in turn order.
func New(playerIDs []string, rng *rand.Rand) games.Game {
	e := &Engine{
		players: append([]string(nil), playerIDs...),
		scores:  make(map[string]int, len(playerIDs)),
		kept:    make(map[int]bool),
		rng:     rng,
	}
	for _, id := range playerIDs {
		e.scores[id] = 0
	}
	return e
}

type move struct {
	Type    string `json:"type"`
	Indices []int  `json:"indices,omitempty"`
}

// MakeMove applies one of roll, keep, bank, keep-and-roll or
// keep-and-bank.
func (e *Engine) MakeMove(playerID string, raw json.RawMessage) games.MoveResult {
	var m move
	if err := json.Unmarshal(raw, &m); err != nil {
		return games.Invalid("Malformed move")
	}
	if e.gameOver {
		return games.Invalid("The game is over")
	}
	if playerID != e.currentPlayer() {
		return games.Invalid("Not your turn")
	}

	switch m.Type {
	case "roll":
		return e.roll()
	case "keep":
		return e.keep(m.Indices)
	case "bank":
		return e.bank()
	case "keep-and-roll":
		return e.compound(m.Indices, (*Engine).roll)
	case "keep-and-bank":
		return e.compound(m.Indices, (*Engine).bank)
	default:
		return games.Invalid(fmt.Sprintf("Unknown move type %q", m.Type))
	}
}

func (e *Engine) roll() games.MoveResult {
	if e.mustKeep {
		return games.Invalid("Keep at least one scoring die before rolling again")
	}

	active := e.activeIndices()
	for _, i := range active {
		e.dice[i] = e.rng.IntN(6) + 1
	}
	e.hasRolled = true
	e.turnRolled = true

	values := activeValues(e.dice, active)
	if !hasScoringDice(values) {
		// Farkle: the turn score is gone and the turn ends.
		e.turnScore = 0
		e.advanceTurn()
		return games.OK().With("farkle", true)
	}

	if score := Score(values); score > 0 {
		// Every active die scores: auto-keep the lot, which always
		// fills all six slots and triggers hot dice.
		e.turnScore += score
		e.resetDice()
		return games.OK().With("hotDice", true).With("score", score)
	}

	e.mustKeep = true
	return games.OK()
}

func (e *Engine) keep(indices []int) games.MoveResult {
	if !e.hasRolled {
		return games.Invalid("Roll before keeping dice")
	}
	if len(indices) == 0 {
		return games.Invalid("Select at least one die to keep")
	}

	seen := map[int]bool{}
	values := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= 6 {
			return games.Invalid(fmt.Sprintf("Die index %d out of range", i))
		}
		if e.kept[i] || e.dice[i] == 0 {
			return games.Invalid(fmt.Sprintf("Die %d is not in play", i))
		}
		if seen[i] {
			return games.Invalid(fmt.Sprintf("Die %d selected twice", i))
		}
		seen[i] = true
		values = append(values, e.dice[i])
	}

	score := Score(values)
	if score == 0 {
		return games.Invalid("Selection does not score")
	}

	for _, i := range indices {
		e.kept[i] = true
	}
	e.turnScore += score
	e.mustKeep = false

	result := games.OK().With("score", score)
	if len(e.kept) == 6 {
		e.resetDice()
		result = result.With("hotDice", true)
	}
	return result
}

func (e *Engine) bank() games.MoveResult {
	if !e.turnRolled {
		return games.Invalid("Roll before banking")
	}

	// Greedy bank: sweep up any remaining active dice that score so the
	// player doesn't have to keep first.
	banked := 0
	if selection := greedySelection(e.dice, e.activeIndices()); len(selection) > 0 {
		if score := Score(activeValues(e.dice, selection)); score > 0 {
			banked = score
		}
	}
	if e.turnScore+banked == 0 {
		return games.Invalid("Nothing to bank")
	}

	player := e.currentPlayer()
	e.scores[player] += e.turnScore + banked
	if e.scores[player] >= Target {
		e.scores[player] = Target
		e.gameOver = true
		e.winner = player
		return games.MoveResult{Valid: true, GameOver: true, Winners: []string{player},
			Fields: map[string]any{"banked": e.turnScore + banked}}
	}

	total := e.turnScore + banked
	e.turnScore = 0
	e.advanceTurn()
	return games.OK().With("banked", total)
}

// compound runs a keep followed by a second step as one atomic move. A
// failed keep fails the whole move with no mutation; the keep itself
// only mutates after full validation, so no rollback is needed.
func (e *Engine) compound(indices []int, then func(*Engine) games.MoveResult) games.MoveResult {
	keepResult := e.keep(indices)
	if !keepResult.Valid {
		return keepResult
	}
	result := then(e)
	if !result.Valid {
		// The keep stands; the follow-up was illegal (e.g. bank with
		// nothing scored is impossible here, roll after keep is always
		// legal). Surface the keep's outcome.
		return keepResult
	}
	for k, v := range keepResult.Fields {
		if _, exists := result.Fields[k]; !exists {
			result = result.With(k, v)
		}
	}
	return result
}

// StateFor returns the shared snapshot; Farkle has no hidden
// information so every viewer sees the same thing.
func (e *Engine) StateFor(viewerID string) any {
	kept := make([]int, 0, len(e.kept))
	for i := range e.kept {
		kept = append(kept, i)
	}
	sort.Ints(kept)

	return State{
		GameType:        Type,
		Players:         append([]string(nil), e.players...),
		Scores:          copyScores(e.scores),
		Dice:            e.dice,
		KeptIndices:     kept,
		TurnScore:       e.turnScore,
		HasRolled:       e.hasRolled,
		MustKeep:        e.mustKeep,
		CurrentPlayerID: e.currentPlayer(),
		Target:          Target,
		GameOver:        e.gameOver,
		Winner:          e.winner,
	}
}

// State is the per-viewer snapshot.
type State struct {
	GameType        string         `json:"gameType"`
	Players         []string       `json:"players"`
	Scores          map[string]int `json:"scores"`
	Dice            [6]int         `json:"dice"`
	KeptIndices     []int          `json:"keptIndices"`
	TurnScore       int            `json:"turnScore"`
	HasRolled       bool           `json:"hasRolled"`
	MustKeep        bool           `json:"mustKeep"`
	CurrentPlayerID string         `json:"currentPlayerId"`
	Target          int            `json:"target"`
	GameOver        bool           `json:"gameOver"`
	Winner          string         `json:"winner,omitempty"`
}

// RemovePlayer drops a player mid-game. The departing player's turn
// ends immediately; a sole survivor wins.
func (e *Engine) RemovePlayer(playerID string) {
	idx := -1
	for i, id := range e.players {
		if id == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	wasCurrent := e.currentPlayer() == playerID
	e.players = append(e.players[:idx], e.players[idx+1:]...)
	delete(e.scores, playerID)
	if idx < e.current {
		e.current--
	}
	if e.current >= len(e.players) {
		e.current = 0
	}
	if wasCurrent {
		e.turnScore = 0
		e.turnRolled = false
		e.resetDice()
	}

	if len(e.players) == 1 && !e.gameOver {
		e.gameOver = true
		e.winner = e.players[0]
	}
}

// PendingActors returns the player expected to move.
func (e *Engine) PendingActors() []string {
	if e.gameOver || len(e.players) == 0 {
		return nil
	}
	return []string{e.currentPlayer()}
}

func (e *Engine) currentPlayer() string {
	if len(e.players) == 0 {
		return ""
	}
	return e.players[e.current]
}

func (e *Engine) advanceTurn() {
	e.resetDice()
	e.turnScore = 0
	e.turnRolled = false
	if len(e.players) > 0 {
		e.current = (e.current + 1) % len(e.players)
	}
}

// resetDice clears the table for a fresh set of six. Used for hot dice
// and between turns; the next roll is on all six dice.
func (e *Engine) resetDice() {
	e.dice = [6]int{}
	e.kept = make(map[int]bool)
	e.hasRolled = false
	e.mustKeep = false
}

func (e *Engine) activeIndices() []int {
	var active []int
	for i := 0; i < 6; i++ {
		if !e.kept[i] {
			active = append(active, i)
		}
	}
	return active
}

func copyScores(scores map[string]int) map[string]int {
	out := make(map[string]int, len(scores))
	for k, v := range scores {
		out[k] = v
	}
	return out
}
