package poker

import (
	"github.com/lox/parlour/internal/deck"
	"github.com/lox/parlour/internal/poker/eval"
	"github.com/lox/parlour/internal/poker/pot"
)

// showdown evaluates every live hand, carves the contributions into
// pots and pays them out.
func (e *Engine) showdown() {
	live := e.livePlayers()
	results := make(map[string]eval.Result, len(live))
	for _, pl := range live {
		res, err := e.evaluateFor(pl)
		if err != nil {
			// Malformed hands are a programmer error; treat as the
			// weakest possible holding rather than crash the table.
			res = eval.Result{}
		}
		pl.handResult = &res
		results[pl.id] = res
	}

	e.pots = e.pm.CalculatePots()
	for _, pt := range e.pots {
		winners := potWinners(pt, results)
		for id, amount := range pot.Split(pt.Amount, winners) {
			if pl := e.playerByID(id); pl != nil {
				pl.chips += amount
				pl.payout += amount
			}
		}
		for _, id := range winners {
			pl := e.playerByID(id)
			if pl == nil {
				continue
			}
			if len(winners) > 1 {
				if pl.result == "" {
					pl.result = "split"
				}
			} else {
				pl.result = "win"
			}
		}
	}
	for _, pl := range live {
		if pl.result == "" {
			pl.result = "lose"
		}
	}

	e.phase = PhaseSettlement
	e.handOver = true
}

// evaluateFor ranks a player's best hand for the current variant.
func (e *Engine) evaluateFor(pl *player) (eval.Result, error) {
	switch e.variant {
	case VariantHoldem:
		cards := make([]deck.Card, 0, len(pl.hand)+len(e.community))
		cards = append(cards, pl.hand...)
		cards = append(cards, e.community...)
		return eval.EvaluateBest(faceUp(cards))
	case VariantStud, VariantFollowQueen:
		return eval.EvaluateBestWithWilds(faceUp(pl.hand), e.activeWilds)
	default:
		return eval.EvaluateWithWilds(faceUp(pl.hand), e.activeWilds)
	}
}

// faceUp strips FaceDown flags so evaluation sees plain cards.
func faceUp(cards []deck.Card) []deck.Card {
	out := make([]deck.Card, len(cards))
	for i, c := range cards {
		out[i] = c.Up()
	}
	return out
}

// potWinners finds the best hand(s) among a pot's eligible players.
func potWinners(pt pot.Pot, results map[string]eval.Result) []string {
	var winners []string
	var best eval.Result
	for _, id := range pt.Eligible {
		res, ok := results[id]
		if !ok {
			continue
		}
		if len(winners) == 0 {
			winners = []string{id}
			best = res
			continue
		}
		switch cmp := eval.Compare(res, best); {
		case cmp > 0:
			winners = []string{id}
			best = res
		case cmp == 0:
			winners = append(winners, id)
		}
	}
	return winners
}
