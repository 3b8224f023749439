package farkle

// Score rates a selection of dice values. It returns 0 unless every die
// in the selection participates in a scoring combination, which is what
// makes a keep atomic: you cannot smuggle dead dice into a selection.
func Score(values []int) int {
	if len(values) == 0 {
		return 0
	}

	counts := [7]int{}
	for _, v := range values {
		if v < 1 || v > 6 {
			return 0
		}
		counts[v]++
	}

	score := 0
	for face := 1; face <= 6; face++ {
		c := counts[face]
		if c == 0 {
			continue
		}
		if c >= 3 {
			base := face * 100
			if face == 1 {
				base = 1000
			}
			// Four, five, six of a kind double the triple each step.
			score += base << (c - 3)
			continue
		}
		switch face {
		case 1:
			score += 100 * c
		case 5:
			score += 50 * c
		default:
			// A face with no contribution poisons the whole selection.
			return 0
		}
	}

	if special := sixDiceSpecial(counts, len(values)); special > score {
		return special
	}
	return score
}

// sixDiceSpecial scores the whole-roll combinations: a 1-6 straight,
// three pairs, or four of a kind plus a pair, each worth 1500.
func sixDiceSpecial(counts [7]int, n int) int {
	if n != 6 {
		return 0
	}
	pairs, quads, straight := 0, 0, true
	for face := 1; face <= 6; face++ {
		switch counts[face] {
		case 2:
			pairs++
		case 4:
			quads++
		}
		if counts[face] != 1 {
			straight = false
		}
	}
	if straight || pairs == 3 || (quads == 1 && pairs == 1) {
		return 1500
	}
	return 0
}

// hasScoringDice reports whether any subset of values scores, i.e. the
// roll is not a farkle.
func hasScoringDice(values []int) bool {
	counts := [7]int{}
	for _, v := range values {
		if v >= 1 && v <= 6 {
			counts[v]++
		}
	}
	if counts[1] > 0 || counts[5] > 0 {
		return true
	}
	for face := 2; face <= 6; face++ {
		if counts[face] >= 3 {
			return true
		}
	}
	return sixDiceSpecial(counts, len(values)) > 0
}

// greedySelection returns the indices (into dice) of the maximal
// scoring subset of the given active dice: every multiple-of-a-kind
// face plus loose ones and fives. Used by bank's auto-score and by the
// bot.
func greedySelection(dice [6]int, active []int) []int {
	counts := [7]int{}
	for _, i := range active {
		counts[dice[i]]++
	}

	// Whole-set specials beat any partial selection.
	if sixDiceSpecial(counts, len(active)) > 0 {
		if Score(activeValues(dice, active)) >= 1500 {
			return append([]int(nil), active...)
		}
	}

	var indices []int
	for _, i := range active {
		face := dice[i]
		if counts[face] >= 3 || face == 1 || face == 5 {
			indices = append(indices, i)
		}
	}
	return indices
}

func activeValues(dice [6]int, active []int) []int {
	values := make([]int, 0, len(active))
	for _, i := range active {
		values = append(values, dice[i])
	}
	return values
}
