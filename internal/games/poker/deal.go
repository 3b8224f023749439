package poker

import (
	"github.com/lox/parlour/internal/deck"
	"github.com/lox/parlour/internal/games"
	"github.com/lox/parlour/internal/poker/eval"
)

// buyIn collects antes or posts blinds, deals the initial cards and
// opens the first betting round. Any seated player may trigger it.
func (e *Engine) buyIn(p *player) games.MoveResult {
	if e.phase != PhaseAnte {
		return games.Invalid("Not collecting antes right now")
	}
	if e.variant == "" {
		return games.Invalid("The dealer has not chosen a variant")
	}

	active := e.nonEliminated()
	ids := make([]string, 0, len(active))
	for _, pl := range active {
		ids = append(ids, pl.id)
	}
	e.pm.SetPlayers(ids)

	jokers := 0
	for _, w := range e.wilds {
		if w == eval.WildJokers {
			jokers = 2
		}
	}
	e.deck = deck.NewDeckWithJokers(e.rng, jokers)

	if e.variant == VariantHoldem {
		e.postBlinds(active)
	} else {
		for _, pl := range active {
			e.commit(pl, min(Ante, pl.chips))
		}
		// Antes seed the pot but do not count toward the betting round.
		for _, pl := range active {
			pl.bet = 0
		}
	}

	e.dealInitial(active)
	e.bettingRound = 1
	e.phase = PhaseBetting
	e.setOpener()
	e.maybeSkipBetting()
	return games.OK()
}

// postBlinds posts the small and big blind. Heads-up, the dealer is the
// small blind.
func (e *Engine) postBlinds(active []*player) {
	var sbIdx int
	if len(active) == 2 {
		sbIdx = e.dealerSeat()
	} else {
		sbIdx = e.nextNonEliminated(e.dealerSeat())
	}
	bbIdx := e.nextNonEliminated(sbIdx)

	sb := e.players[sbIdx]
	bb := e.players[bbIdx]
	e.commit(sb, min(SmallBlind, sb.chips))
	e.commit(bb, min(BigBlind, bb.chips))
	e.currentBet = BigBlind
	e.minRaise = MinBet
}

// commit moves chips from a player into the pot and flags all-ins.
func (e *Engine) commit(p *player, amount int) {
	if amount > p.chips {
		amount = p.chips
	}
	p.chips -= amount
	p.bet += amount
	p.totalBet += amount
	e.pm.RecordBet(p.id, amount)
	if p.chips == 0 {
		p.allIn = true
		e.pm.RecordAllIn(p.id)
	}
}

// dealInitial deals the variant's opening cards.
func (e *Engine) dealInitial(active []*player) {
	switch e.variant {
	case VariantDraw:
		for _, pl := range active {
			pl.hand = e.deck.DealN(5)
		}
	case VariantHoldem:
		for _, pl := range active {
			pl.hand = e.deck.DealN(2)
		}
	case VariantStud, VariantFollowQueen:
		for _, pl := range active {
			pl.hand = append(pl.hand,
				e.deck.MustDeal().Down(),
				e.deck.MustDeal().Down())
		}
		// Third street is dealt face-up one at a time so
		// follow-the-queen promotions land in deal order.
		for _, pl := range active {
			e.dealUpCard(pl)
		}
		e.queenPending = false
	}
}

// dealUpCard deals one face-up card, applying follow-the-queen: a
// face-up queen makes the rank of the next face-up card in the same
// deal round wild for the rest of the hand.
func (e *Engine) dealUpCard(p *player) {
	card := e.deck.MustDeal().Up()
	if e.variant == VariantFollowQueen {
		if e.queenPending && !card.IsJoker() {
			e.activeWilds = append(e.activeWilds, string(card.Value))
			e.queenPending = false
		}
		if card.Value == deck.Queen {
			e.queenPending = true
		}
	}
	p.hand = append(p.hand, card)
}

// advanceStreet moves the hand to its next stage after a betting round
// completes.
func (e *Engine) advanceStreet() {
	switch e.variant {
	case VariantDraw:
		if e.bettingRound == 1 {
			for _, pl := range e.players {
				pl.hasActed = false
			}
			e.phase = PhaseDraw
			e.advanceTurnFrom(e.dealerSeat())
			if e.currentActor() == nil {
				// Nobody can draw (everyone all-in): straight to showdown.
				e.showdown()
			}
			return
		}
		e.showdown()

	case VariantStud, VariantFollowQueen:
		if e.bettingRound >= 5 {
			e.showdown()
			return
		}
		street := e.bettingRound + 3 // rounds 1..4 deal streets 4..7
		down := street == 7 && e.lastCardDown
		for _, pl := range e.livePlayers() {
			if down {
				pl.hand = append(pl.hand, e.deck.MustDeal().Down())
			} else {
				e.dealUpCard(pl)
			}
		}
		// A queen as the last up card of a round promotes nothing: the
		// pending flag covers that deal round only.
		e.queenPending = false
		e.startBettingRound()

	case VariantHoldem:
		switch e.bettingRound {
		case 1:
			e.deck.Burn()
			e.community = append(e.community, e.deck.DealN(3)...)
		case 2, 3:
			e.deck.Burn()
			e.community = append(e.community, e.deck.MustDeal())
		default:
			e.showdown()
			return
		}
		e.startBettingRound()
	}
}

// startBettingRound opens the next betting round, or fast-forwards the
// hand when too few players can still act.
func (e *Engine) startBettingRound() {
	e.bettingRound++
	e.currentBet = 0
	e.minRaise = MinBet
	for _, pl := range e.players {
		pl.bet = 0
		pl.hasActed = false
	}
	e.phase = PhaseBetting
	e.setOpener()
	e.maybeSkipBetting()
}

// maybeSkipBetting runs out the remaining streets when betting is
// impossible (fewer than two players can act and nothing to call).
func (e *Engine) maybeSkipBetting() {
	if e.phase != PhaseBetting {
		return
	}
	if e.countCanAct() >= 2 {
		return
	}
	// A single player with chips has nobody to bet against once the
	// blinds are matched; with an outstanding bet they still owe a
	// call, so let them act.
	if p := e.currentActor(); p != nil && e.currentBet > p.bet {
		return
	}
	e.advanceStreet()
}

// setOpener picks the first player to act for the current round.
func (e *Engine) setOpener() {
	switch {
	case e.variant == VariantHoldem && e.bettingRound == 1:
		// Pre-flop action starts left of the big blind; heads-up the
		// dealer (small blind) acts first.
		if len(e.nonEliminated()) == 2 {
			if e.dealer().canAct() {
				e.turn = e.dealerSeat()
			} else {
				e.advanceTurnFrom(e.dealerSeat())
			}
			return
		}
		sb := e.nextNonEliminated(e.dealerSeat())
		bb := e.nextNonEliminated(sb)
		e.advanceTurnFrom(bb)

	case e.variant == VariantStud || e.variant == VariantFollowQueen:
		e.turn = e.studOpener()

	default:
		e.advanceTurnFrom(e.dealerSeat())
	}
}

// studOpener finds the seat showing the strongest face-up cards.
func (e *Engine) studOpener() int {
	best := -1
	var bestRes eval.Result
	for i, pl := range e.players {
		if !pl.canAct() {
			continue
		}
		var up []deck.Card
		for _, c := range pl.hand {
			if !c.FaceDown {
				up = append(up, c)
			}
		}
		res := eval.EvaluatePartial(up)
		if best == -1 || eval.Compare(res, bestRes) > 0 {
			best = i
			bestRes = res
		}
	}
	return best
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
