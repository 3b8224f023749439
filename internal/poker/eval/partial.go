package eval

import (
	"sort"

	"github.com/lox/parlour/internal/deck"
)

// EvaluatePartial ranks an incomplete hand of 1-4 cards. Stud uses it
// to find the betting opener from the face-up cards only, so cards are
// taken literally (no wild substitution) and only pair-type ranks can
// arise.
func EvaluatePartial(cards []deck.Card) Result {
	counts := map[int]int{}
	for _, c := range cards {
		counts[c.Rank()]++
	}

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

	tiebreakers := make([]int, 0, len(groups))
	for _, g := range groups {
		tiebreakers = append(tiebreakers, g.rank)
	}

	switch {
	case len(groups) == 0:
		return newResult(HighCard)
	case groups[0].count == 4:
		return newResult(FourOfAKind, tiebreakers...)
	case groups[0].count == 3:
		return newResult(ThreeOfAKind, tiebreakers...)
	case groups[0].count == 2 && len(groups) > 1 && groups[1].count == 2:
		return newResult(TwoPair, tiebreakers...)
	case groups[0].count == 2:
		return newResult(OnePair, tiebreakers...)
	default:
		return newResult(HighCard, tiebreakers...)
	}
}
