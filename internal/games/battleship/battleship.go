// Package battleship implements the two-phase ship game: secret fleet
// placement on a 10x10 grid, then alternating fire with hit-again
// turns. Opponents see only their tracking grid until ships sink.
package battleship

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// Type is the game tag used on the wire.
const Type = "battleship"

// Size is the grid edge length.
const Size = 10

// Phases.
const (
	PhaseSetup  = "setup"
	PhaseBattle = "battle"
)

// Fleet is the set of ships each side places, by name and length.
var Fleet = []struct {
	Name   string
	Length int
}{
	{"carrier", 5},
	{"battleship", 4},
	{"cruiser", 3},
	{"submarine", 3},
	{"destroyer", 2},
}

// ship is one placed vessel.
type ship struct {
	name       string
	length     int
	row, col   int
	horizontal bool
	hits       int
}

func (s *ship) cells() [][2]int {
	out := make([][2]int, s.length)
	for i := 0; i < s.length; i++ {
		if s.horizontal {
			out[i] = [2]int{s.row, s.col + i}
		} else {
			out[i] = [2]int{s.row + i, s.col}
		}
	}
	return out
}

func (s *ship) sunk() bool {
	return s.hits >= s.length
}

// side is one player's half of the board.
type side struct {
	id        string
	ships     []*ship
	ready     bool
	shots     map[[2]int]bool // cells this side has fired at
	shipCells map[[2]int]*ship
}

// Engine is the authoritative battleship state machine.
type Engine struct {
	sides   [2]*side
	phase   string
	current int

	gameOver bool
	winner   string
}

// New creates a game in the setup phase.
func New(playerIDs []string, _ *rand.Rand) games.Game {
	e := &Engine{phase: PhaseSetup}
	for i := 0; i < 2 && i < len(playerIDs); i++ {
		e.sides[i] = &side{
			id:        playerIDs[i],
			shots:     map[[2]int]bool{},
			shipCells: map[[2]int]*ship{},
		}
	}
	return e
}

type move struct {
	Type       string `json:"type"`
	Ship       string `json:"ship,omitempty"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Horizontal bool   `json:"horizontal,omitempty"`
}

// MakeMove applies one move. Invalid moves mutate nothing.
func (e *Engine) MakeMove(playerID string, raw json.RawMessage) games.MoveResult {
	var m move
	if err := json.Unmarshal(raw, &m); err != nil {
		return games.Invalid("Malformed move")
	}
	if e.gameOver {
		return games.Invalid("The game is over")
	}
	me := e.sideOf(playerID)
	if me == nil {
		return games.Invalid("You are not in this game")
	}

	switch m.Type {
	case "place-ship":
		return e.placeShip(me, m)
	case "confirm-setup":
		return e.confirmSetup(me)
	case "fire":
		return e.fire(me, m.Row, m.Col)
	default:
		return games.Invalid(fmt.Sprintf("Unknown move type %q", m.Type))
	}
}

func (e *Engine) placeShip(me *side, m move) games.MoveResult {
	if e.phase != PhaseSetup {
		return games.Invalid("Ships cannot move once the battle starts")
	}
	if me.ready {
		return games.Invalid("Your fleet is already confirmed")
	}

	length := 0
	for _, f := range Fleet {
		if f.Name == m.Ship {
			length = f.Length
		}
	}
	if length == 0 {
		return games.Invalid(fmt.Sprintf("Unknown ship %q", m.Ship))
	}

	placed := &ship{name: m.Ship, length: length, row: m.Row, col: m.Col, horizontal: m.Horizontal}
	for _, cell := range placed.cells() {
		if cell[0] < 0 || cell[0] >= Size || cell[1] < 0 || cell[1] >= Size {
			return games.Invalid("Ship does not fit on the grid")
		}
		if other, taken := me.shipCells[cell]; taken && other.name != m.Ship {
			return games.Invalid("Ships cannot overlap")
		}
	}

	// Re-placing a ship picks it up first.
	me.removeShip(m.Ship)
	me.ships = append(me.ships, placed)
	for _, cell := range placed.cells() {
		me.shipCells[cell] = placed
	}
	return games.OK().With("ship", m.Ship)
}

func (s *side) removeShip(name string) {
	for i, sh := range s.ships {
		if sh.name == name {
			for _, cell := range sh.cells() {
				delete(s.shipCells, cell)
			}
			s.ships = append(s.ships[:i], s.ships[i+1:]...)
			return
		}
	}
}

func (e *Engine) confirmSetup(me *side) games.MoveResult {
	if e.phase != PhaseSetup {
		return games.Invalid("The battle has already started")
	}
	if len(me.ships) < len(Fleet) {
		return games.Invalid("All ships must be placed")
	}
	if me.ready {
		return games.Invalid("Your fleet is already confirmed")
	}
	me.ready = true

	if e.sides[0] != nil && e.sides[0].ready && e.sides[1] != nil && e.sides[1].ready {
		e.phase = PhaseBattle
		e.current = 0
	}
	return games.OK().With("ready", true)
}

func (e *Engine) fire(me *side, row, col int) games.MoveResult {
	if e.phase != PhaseBattle {
		return games.Invalid("The battle has not started")
	}
	if e.sides[e.current] != me {
		return games.Invalid("Not your turn")
	}
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return games.Invalid("Shot off the grid")
	}
	cell := [2]int{row, col}
	if me.shots[cell] {
		return games.Invalid("You already fired at that square")
	}

	me.shots[cell] = true
	them := e.opponent(me)

	target, hit := them.shipCells[cell]
	res := games.OK().With("hit", hit).With("row", row).With("col", col)
	if hit {
		target.hits++
		if target.sunk() {
			res = res.With("sunk", target.name)
		}
		if them.allSunk() {
			e.gameOver = true
			e.winner = me.id
			return games.MoveResult{
				Valid: true, GameOver: true, Winners: []string{me.id},
				Fields: res.Fields,
			}
		}
		// A hit grants another shot.
		return res
	}

	e.current = 1 - e.current
	return res
}

func (s *side) allSunk() bool {
	for _, sh := range s.ships {
		if !sh.sunk() {
			return false
		}
	}
	return len(s.ships) > 0
}

func (e *Engine) sideOf(id string) *side {
	for _, s := range e.sides {
		if s != nil && s.id == id {
			return s
		}
	}
	return nil
}

func (e *Engine) opponent(me *side) *side {
	if e.sides[0] == me {
		return e.sides[1]
	}
	return e.sides[0]
}

// ShipView is a placed ship as seen by its owner, or by the opponent
// once it has sunk.
type ShipView struct {
	Name       string `json:"name"`
	Length     int    `json:"length"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Horizontal bool   `json:"horizontal"`
	Hits       int    `json:"hits"`
	Sunk       bool   `json:"sunk"`
}

// Shot is one fired cell and its outcome.
type Shot struct {
	Row int  `json:"row"`
	Col int  `json:"col"`
	Hit bool `json:"hit"`
}

// State is the per-viewer snapshot: the viewer's own fleet, both shot
// records, and only the sunk portion of the opponent's fleet.
type State struct {
	GameType        string     `json:"gameType"`
	Phase           string     `json:"phase"`
	Players         []string   `json:"players"`
	MyShips         []ShipView `json:"myShips"`
	MyShots         []Shot     `json:"myShots"`
	OpponentShots   []Shot     `json:"opponentShots"`
	OpponentSunk    []ShipView `json:"opponentSunk"`
	OpponentReady   bool       `json:"opponentReady"`
	Ready           bool       `json:"ready"`
	CurrentPlayerID string     `json:"currentPlayerId,omitempty"`
	GameOver        bool       `json:"gameOver"`
	Winner          string     `json:"winner,omitempty"`
}

// StateFor projects the board for one viewer. Opponent ship positions
// leak only through sunk ships; when the game ends everything is open.
func (e *Engine) StateFor(viewerID string) any {
	s := State{
		GameType: Type,
		Phase:    e.phase,
		GameOver: e.gameOver,
		Winner:   e.winner,
	}
	for _, sd := range e.sides {
		if sd != nil {
			s.Players = append(s.Players, sd.id)
		}
	}

	me := e.sideOf(viewerID)
	var them *side
	if me != nil {
		them = e.opponent(me)
		s.Ready = me.ready
		for _, sh := range me.ships {
			s.MyShips = append(s.MyShips, viewShip(sh))
		}
		s.MyShots = shotRecord(me, them)
	}
	if them != nil {
		s.OpponentReady = them.ready
		s.OpponentShots = shotRecord(them, me)
		for _, sh := range them.ships {
			if sh.sunk() || e.gameOver {
				s.OpponentSunk = append(s.OpponentSunk, viewShip(sh))
			}
		}
	}
	if e.phase == PhaseBattle && !e.gameOver {
		s.CurrentPlayerID = e.sides[e.current].id
	}
	return s
}

func viewShip(sh *ship) ShipView {
	return ShipView{
		Name:       sh.name,
		Length:     sh.length,
		Row:        sh.row,
		Col:        sh.col,
		Horizontal: sh.horizontal,
		Hits:       sh.hits,
		Sunk:       sh.sunk(),
	}
}

// shotRecord lists shooter's shots annotated with hits against target.
func shotRecord(shooter, target *side) []Shot {
	if shooter == nil {
		return nil
	}
	var out []Shot
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			cell := [2]int{r, c}
			if !shooter.shots[cell] {
				continue
			}
			hit := false
			if target != nil {
				_, hit = target.shipCells[cell]
			}
			out = append(out, Shot{Row: r, Col: c, Hit: hit})
		}
	}
	return out
}

// RemovePlayer forfeits the game to the remaining player.
func (e *Engine) RemovePlayer(playerID string) {
	me := e.sideOf(playerID)
	if me == nil || e.gameOver {
		return
	}
	e.gameOver = true
	if them := e.opponent(me); them != nil {
		e.winner = them.id
	}
}

// PendingActors names whoever still owes a move: both sides during
// setup, the shooter during battle.
func (e *Engine) PendingActors() []string {
	if e.gameOver {
		return nil
	}
	if e.phase == PhaseSetup {
		var out []string
		for _, sd := range e.sides {
			if sd != nil && !sd.ready {
				out = append(out, sd.id)
			}
		}
		return out
	}
	return []string{e.sides[e.current].id}
}
