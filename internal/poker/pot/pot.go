// Package pot tracks per-player contributions to a poker hand and
// splits them into a main pot and side pots at showdown.
package pot

import "sort"

// Pot is one pot awarded at showdown. Eligible lists the player ids who
// can win it, in seating order.
type Pot struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligiblePlayerIds"`
}

// Manager accumulates contributions for a single hand. It is owned by
// the poker engine and reset between hands.
type Manager struct {
	order         []string
	contributions map[string]int
	folded        map[string]bool
	allIn         map[string]bool
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	m := &Manager{}
	m.Reset()
	return m
}

// SetPlayers fixes the seating order used for eligibility lists and
// clears all hand state.
func (m *Manager) SetPlayers(ids []string) {
	m.Reset()
	m.order = append([]string(nil), ids...)
}

// Reset clears contributions, folds and all-ins for a new hand.
func (m *Manager) Reset() {
	m.contributions = make(map[string]int)
	m.folded = make(map[string]bool)
	m.allIn = make(map[string]bool)
}

// RecordBet adds amount to a player's total contribution for the hand.
func (m *Manager) RecordBet(id string, amount int) {
	if amount > 0 {
		m.contributions[id] += amount
	}
}

// RecordFold marks a player folded. Their chips stay in the pot.
func (m *Manager) RecordFold(id string) {
	m.folded[id] = true
}

// RecordAllIn marks a player all-in, capping what they can win from
// deeper-stacked opponents.
func (m *Manager) RecordAllIn(id string) {
	m.allIn[id] = true
}

// TotalPot returns the sum of all contributions.
func (m *Manager) TotalPot() int {
	total := 0
	for _, c := range m.contributions {
		total += c
	}
	return total
}

// CalculatePots splits the contributions into pots. Each distinct
// all-in level among live players caps a pot; anything contributed
// above the highest level forms the final pot. Folded chips are
// absorbed into whichever pot their level feeds.
func (m *Manager) CalculatePots() []Pot {
	levels := m.allInLevels()

	var pots []Pot
	prev := 0
	for _, level := range levels {
		pot := Pot{}
		for _, id := range m.order {
			c := m.contributions[id] - prev
			if c <= 0 {
				continue
			}
			if c > level-prev {
				c = level - prev
			}
			pot.Amount += c
		}
		for _, id := range m.order {
			if !m.folded[id] && m.contributions[id] >= level {
				pot.Eligible = append(pot.Eligible, id)
			}
		}
		if pot.Amount > 0 && len(pot.Eligible) > 0 {
			pots = append(pots, pot)
		}
		prev = level
	}

	// Whatever exceeds the highest all-in level is contested only by
	// players still able to bet past it.
	top := Pot{}
	for _, id := range m.order {
		if c := m.contributions[id] - prev; c > 0 {
			top.Amount += c
		}
	}
	for _, id := range m.order {
		if !m.folded[id] && m.contributions[id] > prev {
			top.Eligible = append(top.Eligible, id)
		}
	}
	if top.Amount > 0 && len(top.Eligible) > 0 {
		pots = append(pots, top)
	}

	// Folded-only chips with no pot to land in (everyone live is all-in
	// below them) get absorbed into the first pot so no chips vanish.
	if leak := m.TotalPot() - totalOf(pots); leak > 0 && len(pots) > 0 {
		pots[0].Amount += leak
	}

	if len(pots) == 0 && m.TotalPot() > 0 {
		// Degenerate hand: everyone folded. The whole pot goes to the
		// remaining players in order (the engine treats the sole
		// survivor as the winner).
		pot := Pot{Amount: m.TotalPot()}
		for _, id := range m.order {
			if !m.folded[id] {
				pot.Eligible = append(pot.Eligible, id)
			}
		}
		pots = append(pots, pot)
	}

	return pots
}

// allInLevels returns the sorted distinct contribution totals of live
// all-in players.
func (m *Manager) allInLevels() []int {
	seen := map[int]bool{}
	var levels []int
	for id, isAllIn := range m.allIn {
		if !isAllIn || m.folded[id] {
			continue
		}
		c := m.contributions[id]
		if c > 0 && !seen[c] {
			seen[c] = true
			levels = append(levels, c)
		}
	}
	sort.Ints(levels)
	return levels
}

func totalOf(pots []Pot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}

// Split divides amount among winners by integer division, assigning any
// remainder to the first winner. Stable rather than fair, which keeps
// it testable.
func Split(amount int, winners []string) map[string]int {
	payouts := make(map[string]int, len(winners))
	if len(winners) == 0 {
		return payouts
	}
	share := amount / len(winners)
	for _, id := range winners {
		payouts[id] = share
	}
	payouts[winners[0]] += amount - share*len(winners)
	return payouts
}
