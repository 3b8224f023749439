package server

import (
	"encoding/json"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/parlour/internal/games"
)

// AIDriver schedules bot moves for rooms whose current actor is a bot
// seat. Moves are produced from the bot's own StateFor view and
// submitted through the same path as human moves.
//
// Every method except the timer callback runs under the hub lock; the
// timer callback re-enters the hub through run, which re-acquires it.
type AIDriver struct {
	clock    quartz.Clock
	rng      *rand.Rand
	logger   *log.Logger
	minDelay time.Duration
	maxDelay time.Duration

	// run re-enters the hub with the lock held and applies the move.
	run func(roomCode, botID string)

	// scheduled dedupes timers per room/bot.
	scheduled map[string]bool
}

// NewAIDriver creates a driver. Delays jitter within [minDelay,
// maxDelay], stretched at higher difficulties.
func NewAIDriver(clock quartz.Clock, rng *rand.Rand, logger *log.Logger,
	minDelay, maxDelay time.Duration, run func(roomCode, botID string)) *AIDriver {
	return &AIDriver{
		clock:     clock,
		rng:       rng,
		logger:    logger.WithPrefix("ai"),
		minDelay:  minDelay,
		maxDelay:  maxDelay,
		run:       run,
		scheduled: make(map[string]bool),
	}
}

// Schedule inspects the room's pending actors and starts one timer per
// bot seat that is owed a move and has none in flight.
func (d *AIDriver) Schedule(room *Room) {
	engine := room.Engine()
	if room.Closed() || engine == nil {
		return
	}
	for _, actorID := range engine.PendingActors() {
		seat := room.SeatByID(actorID)
		if seat == nil || seat.Kind != SeatBot {
			continue
		}
		key := room.Code + "/" + seat.ID
		if d.scheduled[key] {
			continue
		}
		d.scheduled[key] = true

		roomCode, botID := room.Code, seat.ID
		d.clock.AfterFunc(d.delayFor(seat.Difficulty), func() {
			d.run(roomCode, botID)
		})
	}
}

// Forget clears the in-flight marker so the next Schedule can arm a
// fresh timer.
func (d *AIDriver) Forget(roomCode, botID string) {
	delete(d.scheduled, roomCode+"/"+botID)
}

// PickMove re-validates the room and asks the bot policy for a move.
// The room may have closed or moved past this bot while the timer was
// pending; both are quiet no-ops.
func (d *AIDriver) PickMove(room *Room, botID string) (json.RawMessage, bool) {
	engine := room.Engine()
	if room.Closed() || engine == nil {
		return nil, false
	}
	stillPending := false
	for _, id := range engine.PendingActors() {
		if id == botID {
			stillPending = true
		}
	}
	if !stillPending {
		return nil, false
	}
	seat := room.SeatByID(botID)
	if seat == nil {
		return nil, false
	}

	move, ok := room.Bot()(engine.StateFor(botID), botID, seat.Difficulty, d.rng)
	if !ok {
		d.logger.Warn("bot produced no move", "room", room.Code, "bot", botID)
		return nil, false
	}
	return move, true
}

func (d *AIDriver) delayFor(difficulty string) time.Duration {
	window := d.maxDelay - d.minDelay
	delay := d.minDelay
	if window > 0 {
		delay += time.Duration(d.rng.Int64N(int64(window)))
	}
	switch difficulty {
	case games.DifficultyMedium:
		delay = delay * 6 / 5
	case games.DifficultyHard:
		delay = delay * 3 / 2
	}
	return delay
}
