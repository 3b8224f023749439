// Package blackjack implements multi-seat blackjack against a house
// dealer: betting, hit/stand/double, dealer hits to 17 including soft
// 17, naturals pay 3:2.
package blackjack

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/deck"
	"github.com/lox/parlour/internal/games"
)

// Type is the game tag used on the wire.
const Type = "blackjack"

// Table stakes.
const (
	StartingChips = 100
	MinBet        = 1
)

// Round phases.
const (
	PhaseBetting    = "betting"
	PhaseActing     = "acting"
	PhaseSettlement = "settlement"
)

// Hand results.
const (
	ResultWin       = "win"
	ResultLose      = "lose"
	ResultPush      = "push"
	ResultBlackjack = "blackjack"
)

// player is one seat at the table.
type player struct {
	id         string
	chips      int
	bet        int
	hand       []deck.Card
	stood      bool
	doubled    bool
	eliminated bool
	result     string
	payout     int
}

// Engine is the authoritative blackjack state machine.
type Engine struct {
	players []*player
	rng     *rand.Rand
	deck    *deck.Deck

	phase  string
	dealer []deck.Card
	turn   int

	gameOver bool
}

// New seats every player with the starting stack, waiting for bets.
func New(playerIDs []string, rng *rand.Rand) games.Game {
	e := &Engine{rng: rng, phase: PhaseBetting, turn: -1}
	for _, id := range playerIDs {
		e.players = append(e.players, &player{id: id, chips: StartingChips})
	}
	return e
}

type move struct {
	Type   string `json:"type"`
	Amount int    `json:"amount,omitempty"`
}

// MakeMove applies one blackjack move. Invalid moves mutate nothing.
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
		return games.Invalid("You are not at this table")
	}
	if p.eliminated {
		return games.Invalid("You are out of chips")
	}

	switch m.Type {
	case "bet":
		return e.placeBet(p, m.Amount)
	case "hit":
		return e.hit(p)
	case "stand":
		return e.stand(p)
	case "double":
		return e.double(p)
	case "next-round":
		return e.nextRound()
	default:
		return games.Invalid(fmt.Sprintf("Unknown move type %q", m.Type))
	}
}

func (e *Engine) placeBet(p *player, amount int) games.MoveResult {
	if e.phase != PhaseBetting {
		return games.Invalid("Bets are closed")
	}
	if p.bet > 0 {
		return games.Invalid("You have already bet")
	}
	if amount < MinBet {
		return games.Invalid(fmt.Sprintf("Minimum bet is %d", MinBet))
	}
	if amount > p.chips {
		return games.Invalid("Insufficient chips")
	}

	p.chips -= amount
	p.bet = amount

	for _, pl := range e.active() {
		if pl.bet == 0 {
			return games.OK()
		}
	}
	e.deal()
	return games.OK()
}

// deal gives everyone two cards, the dealer one up and one down, and
// opens the acting phase.
func (e *Engine) deal() {
	if e.deck == nil {
		e.deck = deck.NewDeck(e.rng)
	}
	for _, pl := range e.active() {
		pl.hand = e.deck.DealN(2)
	}
	e.dealer = []deck.Card{e.deck.MustDeal(), e.deck.MustDeal().Down()}
	e.phase = PhaseActing
	e.turn = -1
	e.advanceTurn()
}

// advanceTurn finds the next player still owed a decision, or runs the
// dealer out when none remain.
func (e *Engine) advanceTurn() {
	for i := e.turn + 1; i < len(e.players); i++ {
		pl := e.players[i]
		if pl.eliminated || pl.stood || pl.bet == 0 {
			continue
		}
		// A natural 21 has no decisions to make.
		if isBlackjack(pl.hand) || handTotal(pl.hand) >= 21 {
			pl.stood = true
			continue
		}
		e.turn = i
		return
	}
	e.turn = -1
	e.playDealer()
}

func (e *Engine) hit(p *player) games.MoveResult {
	if res, ok := e.checkActing(p); !ok {
		return res
	}
	p.hand = append(p.hand, e.deck.MustDeal())
	total := handTotal(p.hand)
	if total >= 21 {
		p.stood = true
		e.turn--
		e.advanceTurn()
		if total > 21 {
			return games.OK().With("busted", true).With("total", total)
		}
	}
	return games.OK().With("total", total)
}

func (e *Engine) stand(p *player) games.MoveResult {
	if res, ok := e.checkActing(p); !ok {
		return res
	}
	p.stood = true
	e.turn--
	e.advanceTurn()
	return games.OK()
}

func (e *Engine) double(p *player) games.MoveResult {
	if res, ok := e.checkActing(p); !ok {
		return res
	}
	if len(p.hand) != 2 {
		return games.Invalid("You can only double on your first two cards")
	}
	if p.chips < p.bet {
		return games.Invalid("Insufficient chips to double")
	}

	p.chips -= p.bet
	p.bet *= 2
	p.doubled = true
	p.hand = append(p.hand, e.deck.MustDeal())
	p.stood = true
	total := handTotal(p.hand)
	e.turn--
	e.advanceTurn()
	res := games.OK().With("total", total)
	if total > 21 {
		res = res.With("busted", true)
	}
	return res
}

func (e *Engine) checkActing(p *player) (games.MoveResult, bool) {
	if e.phase != PhaseActing {
		return games.Invalid("Not in the acting phase"), false
	}
	if e.turn < 0 || e.players[e.turn] != p {
		return games.Invalid("Not your turn"), false
	}
	return games.MoveResult{}, true
}

// playDealer reveals the hole card, draws to 17 (hitting soft 17), and
// settles every bet.
func (e *Engine) playDealer() {
	for i := range e.dealer {
		e.dealer[i] = e.dealer[i].Up()
	}
	for {
		total := handTotal(e.dealer)
		if total > 17 || (total == 17 && !isSoft(e.dealer)) {
			break
		}
		e.dealer = append(e.dealer, e.deck.MustDeal())
	}

	dealerTotal := handTotal(e.dealer)
	dealerBust := dealerTotal > 21
	dealerBlackjack := isBlackjack(e.dealer)

	for _, pl := range e.active() {
		if pl.bet == 0 {
			continue
		}
		total := handTotal(pl.hand)
		switch {
		case total > 21:
			pl.result = ResultLose
		case isBlackjack(pl.hand) && !dealerBlackjack:
			pl.result = ResultBlackjack
			pl.payout = pl.bet + pl.bet*3/2
		case dealerBlackjack && !isBlackjack(pl.hand):
			pl.result = ResultLose
		case dealerBust || total > dealerTotal:
			pl.result = ResultWin
			pl.payout = pl.bet * 2
		case total == dealerTotal:
			pl.result = ResultPush
			pl.payout = pl.bet
		default:
			pl.result = ResultLose
		}
		pl.chips += pl.payout
	}
	e.phase = PhaseSettlement
}

// nextRound clears the table for fresh bets. Broke players are
// eliminated; the game ends when nobody can bet.
func (e *Engine) nextRound() games.MoveResult {
	if e.phase != PhaseSettlement {
		return games.Invalid("The round is still in progress")
	}
	for _, pl := range e.players {
		if !pl.eliminated && pl.chips < MinBet {
			pl.eliminated = true
		}
		pl.bet = 0
		pl.hand = nil
		pl.stood = false
		pl.doubled = false
		pl.result = ""
		pl.payout = 0
	}
	e.dealer = nil
	e.deck = nil
	e.turn = -1

	if len(e.active()) == 0 {
		e.gameOver = true
		return games.MoveResult{Valid: true, GameOver: true}
	}
	e.phase = PhaseBetting
	return games.OK()
}

func (e *Engine) active() []*player {
	var out []*player
	for _, pl := range e.players {
		if !pl.eliminated {
			out = append(out, pl)
		}
	}
	return out
}

// handTotal values aces as 11 when that does not bust.
func handTotal(hand []deck.Card) int {
	total, aces := 0, 0
	for _, c := range hand {
		r := c.Rank()
		switch {
		case r == 14:
			total++
			aces++
		case r > 10:
			total += 10
		default:
			total += r
		}
	}
	if aces > 0 && total+10 <= 21 {
		total += 10
	}
	return total
}

// isSoft reports whether an ace is currently counting as 11.
func isSoft(hand []deck.Card) bool {
	total, hasAce := 0, false
	for _, c := range hand {
		r := c.Rank()
		switch {
		case r == 14:
			total++
			hasAce = true
		case r > 10:
			total += 10
		default:
			total += r
		}
	}
	return hasAce && total+10 <= 21
}

func isBlackjack(hand []deck.Card) bool {
	return len(hand) == 2 && handTotal(hand) == 21
}

// PlayerView is one seat as any viewer sees it; blackjack hands are
// public.
type PlayerView struct {
	ID      string      `json:"id"`
	Chips   int         `json:"chips"`
	Bet     int         `json:"bet"`
	Hand    []deck.Card `json:"hand,omitempty"`
	Total   int         `json:"total,omitempty"`
	Stood   bool        `json:"stood"`
	Doubled bool        `json:"doubled"`
	Out     bool        `json:"isEliminated"`
	Result  string      `json:"result,omitempty"`
	Payout  int         `json:"payout,omitempty"`
}

// State is the per-viewer snapshot; only the dealer's hole card is
// hidden before the dealer plays.
type State struct {
	GameType        string       `json:"gameType"`
	Phase           string       `json:"phase"`
	Dealer          []deck.Card  `json:"dealer,omitempty"`
	DealerTotal     int          `json:"dealerTotal,omitempty"`
	Players         []PlayerView `json:"players"`
	CurrentPlayerID string       `json:"currentPlayerId,omitempty"`
	GameOver        bool         `json:"gameOver"`
}

// StateFor projects the table. The dealer's hole card shows as a back
// until settlement.
func (e *Engine) StateFor(string) any {
	s := State{
		GameType: Type,
		Phase:    e.phase,
		GameOver: e.gameOver,
	}
	for _, c := range e.dealer {
		if c.FaceDown && e.phase == PhaseActing {
			s.Dealer = append(s.Dealer, deck.Back())
		} else {
			s.Dealer = append(s.Dealer, c.Up())
		}
	}
	if e.phase == PhaseSettlement {
		s.DealerTotal = handTotal(e.dealer)
	}
	for _, pl := range e.players {
		v := PlayerView{
			ID:      pl.id,
			Chips:   pl.chips,
			Bet:     pl.bet,
			Hand:    append([]deck.Card(nil), pl.hand...),
			Stood:   pl.stood,
			Doubled: pl.doubled,
			Out:     pl.eliminated,
			Result:  pl.result,
			Payout:  pl.payout,
		}
		if len(pl.hand) > 0 {
			v.Total = handTotal(pl.hand)
		}
		s.Players = append(s.Players, v)
	}
	if e.phase == PhaseActing && e.turn >= 0 {
		s.CurrentPlayerID = e.players[e.turn].id
	}
	return s
}

// RemovePlayer folds a departing player out of the round.
func (e *Engine) RemovePlayer(playerID string) {
	p := e.playerByID(playerID)
	if p == nil || p.eliminated {
		return
	}
	wasCurrent := e.phase == PhaseActing && e.turn >= 0 && e.players[e.turn] == p
	p.eliminated = true
	p.stood = true

	if wasCurrent {
		e.turn--
		e.advanceTurn()
	} else if e.phase == PhaseBetting {
		// The round may now be waiting on nobody.
		active := e.active()
		if len(active) > 0 {
			allBet := true
			for _, pl := range active {
				if pl.bet == 0 {
					allBet = false
				}
			}
			if allBet {
				e.deal()
			}
		}
	}
	if len(e.active()) == 0 {
		e.gameOver = true
	}
}

// PendingActors lists who the table waits on: bettors, then the acting
// seat, then anyone to start the next round.
func (e *Engine) PendingActors() []string {
	if e.gameOver {
		return nil
	}
	switch e.phase {
	case PhaseBetting:
		var out []string
		for _, pl := range e.active() {
			if pl.bet == 0 {
				out = append(out, pl.id)
			}
		}
		return out
	case PhaseActing:
		if e.turn >= 0 {
			return []string{e.players[e.turn].id}
		}
		return nil
	case PhaseSettlement:
		if active := e.active(); len(active) > 0 {
			return []string{active[0].id}
		}
		return nil
	default:
		return nil
	}
}

func (e *Engine) playerByID(id string) *player {
	for _, p := range e.players {
		if p.id == id {
			return p
		}
	}
	return nil
}
