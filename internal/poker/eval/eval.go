// Package eval ranks poker hands. All functions are pure: equal inputs
// produce equal outputs and nothing here touches global state, so the
// package is safe to call from any goroutine.
package eval

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lox/parlour/internal/deck"
)

// ErrInvalidInput is returned when a hand has the wrong number of cards.
var ErrInvalidInput = errors.New("eval: invalid input")

// Evaluate ranks exactly five cards. Jokers must already have been
// substituted; see EvaluateWithWilds.
func Evaluate(cards []deck.Card) (Result, error) {
	if len(cards) != 5 {
		return Result{}, fmt.Errorf("%w: want 5 cards, got %d", ErrInvalidInput, len(cards))
	}

	ranks := make([]int, 5)
	for i, c := range cards {
		r := c.Rank()
		if r < 2 || r > 14 {
			return Result{}, fmt.Errorf("%w: unrankable card %s", ErrInvalidInput, c)
		}
		ranks[i] = r
	}

	counts := map[int]int{}
	for _, r := range ranks {
		counts[r]++
	}

	flush := true
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			flush = false
			break
		}
	}

	straightHigh, isStraight := straightHighCard(counts)

	// Group ranks by multiplicity, then order groups by (count, rank)
	// descending so tiebreakers fall out naturally.
	type group struct{ rank, count int }
	groups := make([]group, 0, len(counts))
	for r, c := range counts {
		groups = append(groups, group{r, c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	switch {
	case groups[0].count == 5:
		return newResult(FiveOfAKind, groups[0].rank), nil
	case isStraight && flush && straightHigh == 14:
		return newResult(RoyalFlush, straightHigh), nil
	case isStraight && flush:
		return newResult(StraightFlush, straightHigh), nil
	case groups[0].count == 4:
		return newResult(FourOfAKind, groups[0].rank, groups[1].rank), nil
	case groups[0].count == 3 && groups[1].count == 2:
		return newResult(FullHouse, groups[0].rank, groups[1].rank), nil
	case flush:
		return newResult(Flush, descending(ranks)...), nil
	case isStraight:
		return newResult(Straight, straightHigh), nil
	case groups[0].count == 3:
		return newResult(ThreeOfAKind, groups[0].rank, groups[1].rank, groups[2].rank), nil
	case groups[0].count == 2 && groups[1].count == 2:
		return newResult(TwoPair, groups[0].rank, groups[1].rank, groups[2].rank), nil
	case groups[0].count == 2:
		return newResult(OnePair, groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank), nil
	default:
		return newResult(HighCard, descending(ranks)...), nil
	}
}

// straightHighCard reports whether the rank multiset forms a straight
// and, if so, its high card. The wheel (A-2-3-4-5) reports 5.
func straightHighCard(counts map[int]int) (int, bool) {
	if len(counts) != 5 {
		return 0, false
	}
	low, high := 15, 0
	for r := range counts {
		if r < low {
			low = r
		}
		if r > high {
			high = r
		}
	}
	if high-low == 4 {
		return high, true
	}
	// Wheel: A,2,3,4,5.
	if counts[14] == 1 && counts[2] == 1 && counts[3] == 1 && counts[4] == 1 && counts[5] == 1 {
		return 5, true
	}
	return 0, false
}

func descending(ranks []int) []int {
	out := append([]int(nil), ranks...)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// EvaluateBest ranks the best five-card hand among n >= 5 cards by
// trying every 5-subset.
func EvaluateBest(cards []deck.Card) (Result, error) {
	if len(cards) < 5 {
		return Result{}, fmt.Errorf("%w: want at least 5 cards, got %d", ErrInvalidInput, len(cards))
	}
	if len(cards) == 5 {
		return Evaluate(cards)
	}

	var best Result
	found := false
	var err error
	forEachSubset(cards, func(hand []deck.Card) {
		res, evalErr := Evaluate(hand)
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

// forEachSubset invokes fn with every 5-card subset of cards.
func forEachSubset(cards []deck.Card, fn func([]deck.Card)) {
	n := len(cards)
	hand := make([]deck.Card, 5)
	var recurse func(start, depth int)
	recurse = func(start, depth int) {
		if depth == 5 {
			fn(hand)
			return
		}
		for i := start; i <= n-(5-depth); i++ {
			hand[depth] = cards[i]
			recurse(i+1, depth+1)
		}
	}
	recurse(0, 0)
}
