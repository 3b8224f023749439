package poker

import (
	"fmt"

	"github.com/lox/parlour/internal/games"
)

// bettingMove validates and applies check/call/raise/fold/allin.
func (e *Engine) bettingMove(p *player, m move) games.MoveResult {
	if e.phase != PhaseBetting {
		return games.Invalid("No betting round in progress")
	}
	if e.currentActor() != p {
		return games.Invalid("Not your turn")
	}

	switch m.Type {
	case "check":
		if e.currentBet != p.bet {
			return games.Invalid(fmt.Sprintf("Cannot check, %d to call", e.currentBet-p.bet))
		}
		p.hasActed = true

	case "call":
		owed := e.currentBet - p.bet
		if owed <= 0 {
			return games.Invalid("Nothing to call, check instead")
		}
		e.commit(p, owed) // commit caps at remaining chips and flags all-in
		p.hasActed = true

	case "raise":
		if m.Amount < e.minRaise {
			return games.Invalid(fmt.Sprintf("Minimum raise is %d", e.minRaise))
		}
		owed := e.currentBet - p.bet
		if m.Amount+owed > p.chips {
			return games.Invalid("Insufficient chips for that raise")
		}
		e.commit(p, owed+m.Amount)
		e.currentBet += m.Amount
		e.minRaise = maxInt(MinBet, m.Amount)
		e.reopenAction(p)
		p.hasActed = true

	case "fold":
		p.folded = true
		e.pm.RecordFold(p.id)
		p.hasActed = true
		if live := e.livePlayers(); len(live) == 1 {
			e.awardByFold(live[0])
			return games.OK().With("wonByFold", true)
		}

	case "allin":
		if p.chips == 0 {
			return games.Invalid("No chips left")
		}
		total := p.chips
		newLevel := p.bet + total
		raisedBy := newLevel - e.currentBet
		e.commit(p, total)
		if raisedBy >= e.minRaise {
			// Big enough to count as a raise: re-opens the action.
			e.currentBet = newLevel
			e.minRaise = maxInt(MinBet, raisedBy)
			e.reopenAction(p)
		}
		// A short all-in over the top only calls: the bet level is
		// unchanged, nobody re-acts, and the excess builds a side pot.
		p.hasActed = true
	}

	e.afterAction(p)
	return games.OK()
}

// reopenAction clears hasActed for everyone but the aggressor so they
// get another turn.
func (e *Engine) reopenAction(aggressor *player) {
	for _, pl := range e.players {
		if pl != aggressor && pl.canAct() {
			pl.hasActed = false
		}
	}
}

// afterAction advances the turn and closes the round when every live
// player has acted and matched the current bet.
func (e *Engine) afterAction(p *player) {
	if e.phase != PhaseBetting {
		return
	}
	if e.roundComplete() {
		e.advanceStreet()
		return
	}
	e.advanceTurnFrom(e.seatIndex(p))
	if e.currentActor() == nil {
		e.advanceStreet()
	}
}

// roundComplete reports whether the betting round is settled.
func (e *Engine) roundComplete() bool {
	for _, pl := range e.players {
		if !pl.canAct() {
			continue
		}
		if !pl.hasActed || pl.bet != e.currentBet {
			return false
		}
	}
	return true
}

// awardByFold ends the hand with everyone but winner folded. The
// winner's cards are never revealed.
func (e *Engine) awardByFold(winner *player) {
	total := e.pm.TotalPot()
	winner.chips += total
	winner.payout = total
	winner.result = "win"
	for _, pl := range e.players {
		if pl != winner && !pl.eliminated && pl.hand != nil {
			pl.result = "lose"
		}
	}
	e.wonByFold = true
	e.pots = e.pm.CalculatePots()
	e.phase = PhaseSettlement
	e.handOver = true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
