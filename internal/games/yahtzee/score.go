package yahtzee

// Category names as they appear on the wire.
const (
	CatOnes   = "ones"
	CatTwos   = "twos"
	CatThrees = "threes"
	CatFours  = "fours"
	CatFives  = "fives"
	CatSixes  = "sixes"

	CatThreeOfAKind  = "three-of-a-kind"
	CatFourOfAKind   = "four-of-a-kind"
	CatFullHouse     = "full-house"
	CatSmallStraight = "small-straight"
	CatLargeStraight = "large-straight"
	CatYahtzee       = "yahtzee"
	CatChance        = "chance"
)

// UpperCategories count toward the 63-point bonus threshold.
var UpperCategories = []string{CatOnes, CatTwos, CatThrees, CatFours, CatFives, CatSixes}

// Categories lists the full card in display order.
var Categories = []string{
	CatOnes, CatTwos, CatThrees, CatFours, CatFives, CatSixes,
	CatThreeOfAKind, CatFourOfAKind, CatFullHouse,
	CatSmallStraight, CatLargeStraight, CatYahtzee, CatChance,
}

// Fixed-value category scores.
const (
	fullHousePoints     = 25
	smallStraightPoints = 30
	largeStraightPoints = 40
)

func validCategory(category string) bool {
	for _, cat := range Categories {
		if cat == category {
			return true
		}
	}
	return false
}

// ScoreCategory rates the dice against one category. A roll that does
// not qualify scores zero, which is how a player scratches.
func ScoreCategory(category string, dice [DiceCount]int) int {
	counts := [7]int{}
	sum := 0
	for _, d := range dice {
		counts[d]++
		sum += d
	}

	switch category {
	case CatOnes, CatTwos, CatThrees, CatFours, CatFives, CatSixes:
		face := upperFace(category)
		return counts[face] * face
	case CatThreeOfAKind:
		if maxCount(counts) >= 3 {
			return sum
		}
	case CatFourOfAKind:
		if maxCount(counts) >= 4 {
			return sum
		}
	case CatFullHouse:
		if hasFullHouse(counts) {
			return fullHousePoints
		}
	case CatSmallStraight:
		if runLength(counts) >= 4 {
			return smallStraightPoints
		}
	case CatLargeStraight:
		if runLength(counts) >= 5 {
			return largeStraightPoints
		}
	case CatYahtzee:
		if maxCount(counts) == DiceCount {
			return YahtzeePoints
		}
	case CatChance:
		return sum
	}
	return 0
}

func upperFace(category string) int {
	for i, cat := range UpperCategories {
		if cat == category {
			return i + 1
		}
	}
	return 0
}

func maxCount(counts [7]int) int {
	best := 0
	for face := 1; face <= 6; face++ {
		if counts[face] > best {
			best = counts[face]
		}
	}
	return best
}

func hasFullHouse(counts [7]int) bool {
	three, two := false, false
	for face := 1; face <= 6; face++ {
		switch counts[face] {
		case 3:
			three = true
		case 2:
			two = true
		}
	}
	return three && two
}

// runLength returns the longest run of consecutive faces present.
func runLength(counts [7]int) int {
	best, run := 0, 0
	for face := 1; face <= 6; face++ {
		if counts[face] > 0 {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

func isYahtzee(dice [DiceCount]int) bool {
	counts := [7]int{}
	for _, d := range dice {
		counts[d]++
	}
	return maxCount(counts) == DiceCount
}
