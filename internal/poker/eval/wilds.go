package eval

import (
	"fmt"

	"github.com/lox/parlour/internal/deck"
)

// Wild specifications understood by IsWild. Anything else is treated as
// a literal rank ("2", "7", "Q", ...), which is how Follow-the-Queen
// promotes ranks mid-hand.
const (
	WildJokers       = "jokers"
	WildOneEyedJacks = "one-eyed-jacks"
	WildSuicideKing  = "suicide-king"
	WildDeuces       = "deuces"
)

// IsWild reports whether card matches any wild specification in wilds.
func IsWild(card deck.Card, wilds []string) bool {
	for _, w := range wilds {
		switch w {
		case WildJokers:
			if card.IsJoker() {
				return true
			}
		case WildOneEyedJacks:
			// The one-eyed jacks are J♠ and J♥.
			if card.Value == deck.Jack && (card.Suit == deck.Spades || card.Suit == deck.Hearts) {
				return true
			}
		case WildSuicideKing:
			if card.Value == deck.King && card.Suit == deck.Hearts {
				return true
			}
		case WildDeuces:
			if card.Value == deck.Two {
				return true
			}
		default:
			if string(card.Value) == w {
				return true
			}
		}
	}
	return false
}

// EvaluateWithWilds ranks five cards with wild substitution: each wild
// card stands in for whatever card maximises the hand.
//
// The strategy splits on the wild count. Zero passes through. Four or
// five wilds are closed-form five of a kind. Three wilds reduce to case
// analysis on the two natural cards. One or two wilds are cheap enough
// to substitute exhaustively over the 52-card universe.
func EvaluateWithWilds(cards []deck.Card, wilds []string) (Result, error) {
	if len(cards) != 5 {
		return Result{}, fmt.Errorf("%w: want 5 cards, got %d", ErrInvalidInput, len(cards))
	}

	var naturals []deck.Card
	wildCount := 0
	for _, c := range cards {
		if IsWild(c, wilds) {
			wildCount++
		} else {
			naturals = append(naturals, c)
		}
	}

	switch wildCount {
	case 0:
		return Evaluate(cards)
	case 5:
		return newResult(FiveOfAKind, 14), nil
	case 4:
		return newResult(FiveOfAKind, naturals[0].Rank()), nil
	case 3:
		return evalThreeWilds(naturals[0], naturals[1]), nil
	default:
		return evalExhaustive(naturals, wildCount)
	}
}

// evalThreeWilds ranks three wilds plus two naturals analytically.
// A pair of naturals makes five of a kind; same-suited naturals that
// fit a straight-flush window make the best such straight flush; the
// fallback is quads of the higher natural.
func evalThreeWilds(a, b deck.Card) Result {
	ra, rb := a.Rank(), b.Rank()
	if ra < rb {
		a, b = b, a
		ra, rb = rb, ra
	}
	if ra == rb {
		return newResult(FiveOfAKind, ra)
	}
	if a.Suit == b.Suit {
		if high, ok := bestStraightWindow(ra, rb); ok {
			if high == 14 {
				return newResult(RoyalFlush, high)
			}
			return newResult(StraightFlush, high)
		}
	}
	return newResult(FourOfAKind, ra, rb)
}

// bestStraightWindow finds the highest 5-card straight containing both
// ranks, including the wheel where the ace plays low.
func bestStraightWindow(ra, rb int) (int, bool) {
	inWindow := func(r, high int) bool {
		if high == 5 && r == 14 {
			return true // ace plays low in the wheel
		}
		return r >= high-4 && r <= high
	}
	for high := 14; high >= 5; high-- {
		if inWindow(ra, high) && inWindow(rb, high) {
			return high, true
		}
	}
	return 0, false
}

// evalExhaustive tries every substitution of the wilds over the full
// 52-card universe. Duplicates are allowed: a wild may mirror a card
// already in the hand, which is what makes wild five-of-a-kinds
// possible.
func evalExhaustive(naturals []deck.Card, wildCount int) (Result, error) {
	universe := make([]deck.Card, 0, 52)
	for _, suit := range deck.Suits {
		for _, value := range deck.Values {
			universe = append(universe, deck.New(suit, value))
		}
	}

	hand := make([]deck.Card, 5)
	copy(hand, naturals)

	var best Result
	found := false

	var try func(slot int) error
	try = func(slot int) error {
		if slot == 5 {
			res, err := Evaluate(hand)
			if err != nil {
				return err
			}
			if !found || Compare(res, best) > 0 {
				best = res
				found = true
			}
			return nil
		}
		for _, sub := range universe {
			hand[slot] = sub
			if err := try(slot + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := try(len(naturals)); err != nil {
		return Result{}, err
	}
	return best, nil
}

// EvaluateBestWithWilds ranks the best five of n >= 5 cards with wild
// substitution applied per subset.
func EvaluateBestWithWilds(cards []deck.Card, wilds []string) (Result, error) {
	if len(cards) < 5 {
		return Result{}, fmt.Errorf("%w: want at least 5 cards, got %d", ErrInvalidInput, len(cards))
	}
	if len(wilds) == 0 {
		return EvaluateBest(cards)
	}
	if len(cards) == 5 {
		return EvaluateWithWilds(cards, wilds)
	}

	var best Result
	found := false
	var err error
	forEachSubset(cards, func(hand []deck.Card) {
		res, evalErr := EvaluateWithWilds(hand, wilds)
		if evalErr != nil {
			err = evalErr
			return
		}
		if !found || Compare(res, best) > 0 {
			best = res
			found = true
		}
	})
	if err != nil {
		return Result{}, err
	}
	return best, nil
}

// PlayerHand pairs a player id with the cards they can make a hand
// from, in showdown order.
type PlayerHand struct {
	ID    string
	Cards []deck.Card
}

// DetermineWinners evaluates every hand and returns the ids that hold
// the best one (several on an exact tie) along with the winning result.
func DetermineWinners(hands []PlayerHand, wilds []string) ([]string, Result, error) {
	if len(hands) == 0 {
		return nil, Result{}, fmt.Errorf("%w: no hands", ErrInvalidInput)
	}

	var winners []string
	var best Result
	for i, h := range hands {
		res, err := EvaluateBestWithWilds(h.Cards, wilds)
		if err != nil {
			return nil, Result{}, err
		}
		if i == 0 {
			winners = []string{h.ID}
			best = res
			continue
		}
		switch cmp := Compare(res, best); {
		case cmp > 0:
			winners = []string{h.ID}
			best = res
		case cmp == 0:
			winners = append(winners, h.ID)
		}
	}
	return winners, best, nil
}
