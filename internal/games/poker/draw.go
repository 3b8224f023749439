package poker

import (
	"fmt"

	"github.com/lox/parlour/internal/deck"
	"github.com/lox/parlour/internal/games"
	"github.com/lox/parlour/internal/poker/eval"
)

// discard replaces up to three cards (four when keeping an ace or a
// wild) during the draw phase of five-card draw.
func (e *Engine) discard(p *player, indices []int) games.MoveResult {
	if e.phase != PhaseDraw {
		return games.Invalid("No draw phase in progress")
	}
	if e.currentActor() != p {
		return games.Invalid("Not your turn")
	}

	seen := map[int]bool{}
	for _, i := range indices {
		if i < 0 || i >= len(p.hand) {
			return games.Invalid(fmt.Sprintf("Card index %d out of range", i))
		}
		if seen[i] {
			return games.Invalid(fmt.Sprintf("Card index %d repeated", i))
		}
		seen[i] = true
	}

	limit := 3
	if len(indices) == 4 && e.keepsAceOrWild(p, seen) {
		limit = 4
	}
	if len(indices) > limit {
		return games.Invalid(fmt.Sprintf("Cannot discard more than %d cards", limit))
	}

	kept := make([]deck.Card, 0, len(p.hand))
	for i, c := range p.hand {
		if !seen[i] {
			kept = append(kept, c)
		}
	}
	p.hand = append(kept, e.deck.DealN(len(indices))...)
	p.hasActed = true

	e.advanceDraw(p)
	return games.OK().With("drew", len(indices))
}

// standPat keeps the hand as dealt.
func (e *Engine) standPat(p *player) games.MoveResult {
	if e.phase != PhaseDraw {
		return games.Invalid("No draw phase in progress")
	}
	if e.currentActor() != p {
		return games.Invalid("Not your turn")
	}
	p.hasActed = true
	e.advanceDraw(p)
	return games.OK()
}

// keepsAceOrWild reports whether the cards not being discarded include
// an ace or a wild card, which unlocks the four-card discard.
func (e *Engine) keepsAceOrWild(p *player, discarding map[int]bool) bool {
	for i, c := range p.hand {
		if discarding[i] {
			continue
		}
		if c.Value == deck.Ace || eval.IsWild(c, e.activeWilds) {
			return true
		}
	}
	return false
}

// advanceDraw moves to the next player yet to draw, or opens the second
// betting round once everyone has acted.
func (e *Engine) advanceDraw(p *player) {
	for i := 1; i <= len(e.players); i++ {
		idx := (e.seatIndex(p) + i) % len(e.players)
		pl := e.players[idx]
		if pl.canAct() && !pl.hasActed {
			e.turn = idx
			return
		}
	}
	e.startBettingRound()
}
