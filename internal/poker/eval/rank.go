package eval

// HandRank orders poker hand categories from weakest to strongest.
// FiveOfAKind outranks a royal flush and is only reachable with wild
// cards in play.
type HandRank int

const (
	HighCard HandRank = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
	FiveOfAKind
)

// String returns the display name of the rank.
func (r HandRank) String() string {
	switch r {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	case FiveOfAKind:
		return "Five of a Kind"
	default:
		return "Unknown"
	}
}

// Result is the outcome of evaluating a hand. Tiebreakers is a
// descending list of the card ranks that disambiguate hands of equal
// rank; its layout depends on the rank (e.g. two pair lists high pair,
// low pair, kicker).
type Result struct {
	Rank        HandRank `json:"rank"`
	Name        string   `json:"name"`
	Tiebreakers []int    `json:"tiebreakers"`
}

func newResult(rank HandRank, tiebreakers ...int) Result {
	return Result{Rank: rank, Name: rank.String(), Tiebreakers: tiebreakers}
}

// Compare orders two results: positive when a beats b, negative when b
// beats a, zero on an exact tie. Lexicographic over (rank, tiebreakers).
func Compare(a, b Result) int {
	if a.Rank != b.Rank {
		return int(a.Rank) - int(b.Rank)
	}
	n := len(a.Tiebreakers)
	if len(b.Tiebreakers) < n {
		n = len(b.Tiebreakers)
	}
	for i := 0; i < n; i++ {
		if a.Tiebreakers[i] != b.Tiebreakers[i] {
			return a.Tiebreakers[i] - b.Tiebreakers[i]
		}
	}
	return len(a.Tiebreakers) - len(b.Tiebreakers)
}
