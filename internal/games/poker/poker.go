// Package poker implements the dealer's-choice poker engine: five-card
// draw, seven-card stud, Texas hold'em and follow-the-queen, with
// optional wild cards, side pots and bluff-preserving redaction.
package poker

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/deck"
	"github.com/lox/parlour/internal/games"
	"github.com/lox/parlour/internal/poker/eval"
	"github.com/lox/parlour/internal/poker/pot"
)

// Type is the game tag used on the wire.
const Type = "poker"

// Table stakes.
const (
	StartingChips = 1000
	Ante          = 1
	SmallBlind    = 1
	BigBlind      = 2
	MinBet        = 5
)

// Variants selectable by the dealer each hand.
const (
	VariantDraw        = "five-card-draw"
	VariantStud        = "seven-card-stud"
	VariantHoldem      = "texas-holdem"
	VariantFollowQueen = "follow-the-queen"
)

// Hand phases.
const (
	PhaseVariantSelect = "variant-select"
	PhaseWildSelect    = "wild-select"
	PhaseAnte          = "ante"
	PhaseBetting       = "betting"
	PhaseDraw          = "draw"
	PhaseSettlement    = "settlement"
)

// player is one seat's private hand state.
type player struct {
	id         string
	chips      int
	hand       []deck.Card
	bet        int // this betting round
	totalBet   int // this hand
	folded     bool
	allIn      bool
	hasActed   bool
	eliminated bool

	handResult *eval.Result
	result     string // "win", "split", "lose" or ""
	payout     int
}

// Engine is the authoritative poker state machine for one table.
type Engine struct {
	players []*player
	rng     *rand.Rand
	pm      *pot.Manager

	phase        string
	variant      string
	wilds        []string // dealer's selection for this hand
	activeWilds  []string // wilds plus follow-the-queen promotions
	lastCardDown bool
	queenPending bool

	deck      *deck.Deck
	community []deck.Card

	dealerIndex  int
	turn         int
	bettingRound int
	currentBet   int
	minRaise     int

	wonByFold bool
	handOver  bool
	pots      []pot.Pot

	gameOver bool
	winner   string
}

// New creates a table with every player at the starting stack, waiting
// for the dealer to choose the first variant.
func New(playerIDs []string, rng *rand.Rand) games.Game {
	e := &Engine{
		rng:          rng,
		pm:           pot.NewManager(),
		phase:        PhaseVariantSelect,
		lastCardDown: true,
		minRaise:     MinBet,
	}
	for _, id := range playerIDs {
		e.players = append(e.players, &player{id: id, chips: StartingChips})
	}
	return e
}

type move struct {
	Type         string   `json:"type"`
	Variant      string   `json:"variant,omitempty"`
	Wilds        []string `json:"wilds,omitempty"`
	LastCardDown *bool    `json:"lastCardDown,omitempty"`
	Amount       int      `json:"amount,omitempty"`
	Indices      []int    `json:"indices,omitempty"`
}

// MakeMove applies one poker move. Invalid moves mutate nothing.
func (e *Engine) MakeMove(playerID string, raw json.RawMessage) games.MoveResult {
	var m move
	if err := json.Unmarshal(raw, &m); err != nil {
		return games.Invalid("Malformed move")
	}
	if e.gameOver {
		return games.Invalid("The game is over")
	}
	p := e.playerByID(playerID)
	if p == nil {
		return games.Invalid("You are not seated at this table")
	}
	if p.eliminated {
		return games.Invalid("You have been eliminated")
	}

	switch m.Type {
	case "choose-variant":
		return e.chooseVariant(p, m.Variant)
	case "choose-wilds":
		return e.chooseWilds(p, m.Wilds, m.LastCardDown)
	case "buy-in":
		return e.buyIn(p)
	case "check", "call", "raise", "fold", "allin":
		return e.bettingMove(p, m)
	case "discard":
		return e.discard(p, m.Indices)
	case "stand-pat":
		return e.standPat(p)
	case "next-hand":
		return e.nextHand(p)
	default:
		return games.Invalid(fmt.Sprintf("Unknown move type %q", m.Type))
	}
}

func (e *Engine) chooseVariant(p *player, variant string) games.MoveResult {
	if e.phase != PhaseVariantSelect {
		return games.Invalid("Not choosing a variant right now")
	}
	if p != e.dealer() {
		return games.Invalid("Only the dealer chooses the variant")
	}
	switch variant {
	case VariantDraw, VariantStud, VariantHoldem, VariantFollowQueen:
	default:
		return games.Invalid(fmt.Sprintf("Unknown variant %q", variant))
	}

	e.variant = variant
	if variant == VariantHoldem {
		e.phase = PhaseAnte
	} else {
		e.phase = PhaseWildSelect
	}
	return games.OK().With("variant", variant)
}

func (e *Engine) chooseWilds(p *player, wilds []string, lastCardDown *bool) games.MoveResult {
	if e.phase != PhaseWildSelect {
		return games.Invalid("Not choosing wilds right now")
	}
	if p != e.dealer() {
		return games.Invalid("Only the dealer chooses wild cards")
	}

	e.wilds = append([]string(nil), wilds...)
	e.activeWilds = append([]string(nil), wilds...)
	if lastCardDown != nil {
		e.lastCardDown = *lastCardDown
	}
	e.phase = PhaseAnte
	return games.OK()
}

func (e *Engine) nextHand(p *player) games.MoveResult {
	if e.phase != PhaseSettlement {
		return games.Invalid("The hand is still in progress")
	}

	// Broke players leave the game before the next deal.
	for _, pl := range e.players {
		if !pl.eliminated && pl.chips == 0 {
			pl.eliminated = true
		}
	}

	remaining := e.nonEliminated()
	if len(remaining) == 1 {
		e.gameOver = true
		e.winner = remaining[0].id
		return games.MoveResult{Valid: true, GameOver: true, Winners: []string{e.winner}}
	}

	e.dealerIndex = e.nextNonEliminated(e.dealerIndex)
	e.resetHand()
	return games.OK()
}

// resetHand clears per-hand state for a fresh deal.
func (e *Engine) resetHand() {
	for _, p := range e.players {
		p.hand = nil
		p.bet = 0
		p.totalBet = 0
		p.folded = false
		p.allIn = false
		p.hasActed = false
		p.handResult = nil
		p.result = ""
		p.payout = 0
	}
	e.phase = PhaseVariantSelect
	e.variant = ""
	e.wilds = nil
	e.activeWilds = nil
	e.lastCardDown = true
	e.queenPending = false
	e.deck = nil
	e.community = nil
	e.bettingRound = 0
	e.currentBet = 0
	e.minRaise = MinBet
	e.wonByFold = false
	e.handOver = false
	e.pots = nil
	e.pm.Reset()
}

// RemovePlayer folds and eliminates a departing player. A hand reduced
// to one live player ends immediately, won by fold.
func (e *Engine) RemovePlayer(playerID string) {
	p := e.playerByID(playerID)
	if p == nil || p.eliminated {
		return
	}

	inHand := e.handInProgress() && !p.folded
	wasCurrent := e.isActingPhase() && e.currentActor() == p
	if inHand {
		p.folded = true
		e.pm.RecordFold(p.id)
	}
	p.eliminated = true

	if e.handInProgress() {
		live := e.livePlayers()
		if len(live) == 1 {
			e.awardByFold(live[0])
		} else if wasCurrent && e.phase == PhaseDraw {
			e.advanceDraw(p)
		} else if wasCurrent {
			e.afterAction(p)
		}
	}

	remaining := e.nonEliminated()
	if len(remaining) == 1 && !e.gameOver {
		e.gameOver = true
		e.winner = remaining[0].id
	}
}

// PendingActors reports who the table is waiting on. Between hands the
// dealer drives; during betting and draw it is the single current
// actor.
func (e *Engine) PendingActors() []string {
	if e.gameOver {
		return nil
	}
	switch e.phase {
	case PhaseVariantSelect, PhaseWildSelect, PhaseAnte, PhaseSettlement:
		if d := e.dealer(); d != nil {
			return []string{d.id}
		}
		return nil
	case PhaseBetting, PhaseDraw:
		if p := e.currentActor(); p != nil {
			return []string{p.id}
		}
		return nil
	default:
		return nil
	}
}

// Seat and turn helpers.

func (e *Engine) playerByID(id string) *player {
	for _, p := range e.players {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (e *Engine) dealer() *player {
	if len(e.players) == 0 {
		return nil
	}
	return e.players[e.dealerSeat()]
}

// dealerSeat resolves the dealer button to a live seat, skipping a
// dealer who left between hands.
func (e *Engine) dealerSeat() int {
	if !e.players[e.dealerIndex].eliminated {
		return e.dealerIndex
	}
	return e.nextNonEliminated(e.dealerIndex)
}

func (e *Engine) currentActor() *player {
	if e.turn < 0 || e.turn >= len(e.players) {
		return nil
	}
	return e.players[e.turn]
}

func (e *Engine) isActingPhase() bool {
	return e.phase == PhaseBetting || e.phase == PhaseDraw
}

func (e *Engine) handInProgress() bool {
	return e.phase == PhaseBetting || e.phase == PhaseDraw
}

// nextNonEliminated returns the index of the next non-eliminated seat
// after from, wrapping.
func (e *Engine) nextNonEliminated(from int) int {
	for i := 1; i <= len(e.players); i++ {
		idx := (from + i) % len(e.players)
		if !e.players[idx].eliminated {
			return idx
		}
	}
	return from
}

// nonEliminated returns players still in the game.
func (e *Engine) nonEliminated() []*player {
	var out []*player
	for _, p := range e.players {
		if !p.eliminated {
			out = append(out, p)
		}
	}
	return out
}

// livePlayers returns players still contesting the current hand.
func (e *Engine) livePlayers() []*player {
	var out []*player
	for _, p := range e.players {
		if !p.eliminated && !p.folded && p.hand != nil {
			out = append(out, p)
		}
	}
	return out
}

// canAct reports whether a player can still take betting actions.
func (p *player) canAct() bool {
	return !p.eliminated && !p.folded && !p.allIn && p.hand != nil
}

func (e *Engine) countCanAct() int {
	n := 0
	for _, p := range e.players {
		if p.canAct() {
			n++
		}
	}
	return n
}

// seatIndex returns p's index in the seat list.
func (e *Engine) seatIndex(p *player) int {
	for i, q := range e.players {
		if q == p {
			return i
		}
	}
	return -1
}

// advanceTurnFrom moves the turn to the next player who can act,
// starting after seat index from.
func (e *Engine) advanceTurnFrom(from int) {
	for i := 1; i <= len(e.players); i++ {
		idx := (from + i) % len(e.players)
		if e.players[idx].canAct() {
			e.turn = idx
			return
		}
	}
	e.turn = -1
}
