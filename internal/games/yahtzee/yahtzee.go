// Package yahtzee implements the standard 13-category Yahtzee
// scorecard: three rolls per turn with held dice, category selection
// locks a score (zero included), a 35-point upper bonus at 63, and 100
// per extra yahtzee after the first.
package yahtzee

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/parlour/internal/games"
)

// Type is the game tag used on the wire.
const Type = "yahtzee"

// Turn and bonus constants.
const (
	DiceCount    = 5
	RollsPerTurn = 3

	UpperBonusAt      = 63
	UpperBonus        = 35
	YahtzeePoints     = 50
	ExtraYahtzeeBonus = 100
)

// card is one player's scorecard. A category maps to its locked score
// once chosen; absent means still open.
type card struct {
	scores       map[string]int
	yahtzeeBonus int
}

// Engine is the authoritative yahtzee state machine.
type Engine struct {
	players []string
	cards   map[string]*card
	rng     *rand.Rand

	dice      [DiceCount]int // 0 = not rolled this turn
	rollsUsed int
	current   int

	gameOver bool
	winner   string // empty on a tie
}

// New creates an engine with the given players in turn order.
func New(playerIDs []string, rng *rand.Rand) games.Game {
	e := &Engine{
		players: append([]string(nil), playerIDs...),
		cards:   make(map[string]*card, len(playerIDs)),
		rng:     rng,
	}
	for _, id := range playerIDs {
		e.cards[id] = &card{scores: make(map[string]int, len(Categories))}
	}
	return e
}

type move struct {
	Type     string `json:"type"`
	Keep     []int  `json:"keep,omitempty"`
	Category string `json:"category,omitempty"`
}

// MakeMove applies a roll (with held dice) or a category selection.
func (e *Engine) MakeMove(playerID string, raw json.RawMessage) games.MoveResult {
	var m move
	if err := json.Unmarshal(raw, &m); err != nil {
		return games.Invalid("Malformed move")
	}
	if e.gameOver {
		return games.Invalid("The game is over")
	}
	if playerID != e.currentPlayer() {
		return games.Invalid("Not your turn")
	}

	switch m.Type {
	case "roll":
		return e.roll(m.Keep)
	case "score":
		return e.scoreCategory(m.Category)
	default:
		return games.Invalid(fmt.Sprintf("Unknown move type %q", m.Type))
	}
}

func (e *Engine) roll(keep []int) games.MoveResult {
	if e.rollsUsed >= RollsPerTurn {
		return games.Invalid("No rolls left; choose a category")
	}

	held := map[int]bool{}
	for _, i := range keep {
		if i < 0 || i >= DiceCount {
			return games.Invalid(fmt.Sprintf("Die index %d out of range", i))
		}
		if e.dice[i] == 0 {
			return games.Invalid(fmt.Sprintf("Die %d has not been rolled", i))
		}
		held[i] = true
	}
	if len(held) == DiceCount {
		return games.Invalid("Re-roll at least one die")
	}

	for i := 0; i < DiceCount; i++ {
		if !held[i] {
			e.dice[i] = e.rng.IntN(6) + 1
		}
	}
	e.rollsUsed++
	return games.OK().With("dice", e.dice).With("rollsLeft", RollsPerTurn-e.rollsUsed)
}

func (e *Engine) scoreCategory(category string) games.MoveResult {
	if e.rollsUsed == 0 {
		return games.Invalid("Roll before scoring")
	}
	if !validCategory(category) {
		return games.Invalid(fmt.Sprintf("Unknown category %q", category))
	}
	c := e.cards[e.currentPlayer()]
	if _, done := c.scores[category]; done {
		return games.Invalid("Category already scored")
	}

	res := games.OK().With("category", category)

	// Every yahtzee after a scored 50 earns a bonus, whatever category
	// absorbs the roll. Checked before the lock so scoring the yahtzee
	// box itself never triggers it.
	if isYahtzee(e.dice) {
		if pts, ok := c.scores[CatYahtzee]; ok && pts == YahtzeePoints {
			c.yahtzeeBonus += ExtraYahtzeeBonus
			res = res.With("yahtzeeBonus", ExtraYahtzeeBonus)
		}
	}

	points := ScoreCategory(category, e.dice)
	c.scores[category] = points
	res = res.With("points", points)

	if e.allCardsComplete() {
		return e.finish(res)
	}
	e.advanceTurn()
	return res
}

func (e *Engine) allCardsComplete() bool {
	for _, id := range e.players {
		if len(e.cards[id].scores) < len(Categories) {
			return false
		}
	}
	return true
}

func (e *Engine) finish(res games.MoveResult) games.MoveResult {
	e.gameOver = true
	best := -1
	var winners []string
	for _, id := range e.players {
		total := e.cards[id].total()
		switch {
		case total > best:
			best = total
			winners = []string{id}
		case total == best:
			winners = append(winners, id)
		}
	}
	if len(winners) == 1 {
		e.winner = winners[0]
	}
	return games.MoveResult{Valid: true, GameOver: true, Winners: winners, Fields: res.Fields}
}

func (c *card) upperTotal() int {
	total := 0
	for _, cat := range UpperCategories {
		total += c.scores[cat]
	}
	return total
}

func (c *card) total() int {
	total := c.yahtzeeBonus
	for _, pts := range c.scores {
		total += pts
	}
	if c.upperTotal() >= UpperBonusAt {
		total += UpperBonus
	}
	return total
}

// Scorecard is the wire form of one player's card.
type Scorecard struct {
	Scores       map[string]int `json:"scores"`
	UpperTotal   int            `json:"upperTotal"`
	UpperBonus   int            `json:"upperBonus"`
	YahtzeeBonus int            `json:"yahtzeeBonus"`
	Total        int            `json:"total"`
}

// State is the shared snapshot; yahtzee has no hidden information.
type State struct {
	GameType        string               `json:"gameType"`
	Players         []string             `json:"players"`
	Scorecards      map[string]Scorecard `json:"scorecards"`
	Dice            [DiceCount]int       `json:"dice"`
	RollsUsed       int                  `json:"rollsUsed"`
	RollsLeft       int                  `json:"rollsLeft"`
	CurrentPlayerID string               `json:"currentPlayerId"`
	GameOver        bool                 `json:"gameOver"`
	Winner          string               `json:"winner,omitempty"`
}

// StateFor returns the same snapshot for every viewer.
func (e *Engine) StateFor(string) any {
	s := State{
		GameType:        Type,
		Players:         append([]string(nil), e.players...),
		Scorecards:      make(map[string]Scorecard, len(e.players)),
		Dice:            e.dice,
		RollsUsed:       e.rollsUsed,
		RollsLeft:       RollsPerTurn - e.rollsUsed,
		CurrentPlayerID: e.currentPlayer(),
		GameOver:        e.gameOver,
		Winner:          e.winner,
	}
	for _, id := range e.players {
		c := e.cards[id]
		scores := make(map[string]int, len(c.scores))
		for cat, pts := range c.scores {
			scores[cat] = pts
		}
		bonus := 0
		if c.upperTotal() >= UpperBonusAt {
			bonus = UpperBonus
		}
		s.Scorecards[id] = Scorecard{
			Scores:       scores,
			UpperTotal:   c.upperTotal(),
			UpperBonus:   bonus,
			YahtzeeBonus: c.yahtzeeBonus,
			Total:        c.total(),
		}
	}
	return s
}

// RemovePlayer drops a player mid-game. Their card leaves the standings;
// a sole survivor wins.
func (e *Engine) RemovePlayer(playerID string) {
	idx := -1
	for i, id := range e.players {
		if id == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	wasCurrent := e.currentPlayer() == playerID
	e.players = append(e.players[:idx], e.players[idx+1:]...)
	delete(e.cards, playerID)
	if idx < e.current {
		e.current--
	}
	if e.current >= len(e.players) {
		e.current = 0
	}
	if wasCurrent {
		e.dice = [DiceCount]int{}
		e.rollsUsed = 0
	}

	if e.gameOver || len(e.players) == 0 {
		return
	}
	if len(e.players) == 1 {
		e.gameOver = true
		e.winner = e.players[0]
		return
	}
	// The departure may have completed the round.
	if e.allCardsComplete() {
		e.finish(games.OK())
	}
}

// PendingActors returns the player expected to move.
func (e *Engine) PendingActors() []string {
	if e.gameOver || len(e.players) == 0 {
		return nil
	}
	return []string{e.currentPlayer()}
}

func (e *Engine) currentPlayer() string {
	if len(e.players) == 0 {
		return ""
	}
	return e.players[e.current]
}

func (e *Engine) advanceTurn() {
	e.dice = [DiceCount]int{}
	e.rollsUsed = 0
	if len(e.players) > 0 {
		e.current = (e.current + 1) % len(e.players)
	}
}
