package wingo

import (
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/model"
)

// periodIDLayout renders a start time as a sortable, time-derived period id.
const periodIDLayout = "20060102150405"

// PeriodGenerator materializes batches of future rounds, each with its
// outcome already drawn.
type PeriodGenerator struct {
	log    *slog.Logger
	rounds RoundStore
	result *ResultGenerator
	now    func() time.Time
}

func NewPeriodGenerator(log *slog.Logger, rounds RoundStore, result *ResultGenerator) *PeriodGenerator {
	return &PeriodGenerator{
		log:    log,
		rounds: rounds,
		result: result,
		now:    time.Now,
	}
}

// GenerateFuturePeriods appends count consecutive rounds for the game type.
// The sequence continues strictly after the newest existing round, so
// repeated calls never produce overlapping or duplicate start times; a tail
// that already lies in the past is abandoned and the sequence restarts from
// the current time.
func (g *PeriodGenerator) GenerateFuturePeriods(gameType config.GameType, count int) error {
	const op = "wingo.generator.GenerateFuturePeriods"

	if count < 1 {
		return fmt.Errorf("%s: count must be at least 1, got %d", op, count)
	}

	duration := gameType.Duration()
	if duration <= 0 {
		return fmt.Errorf("%s: unknown game type %q", op, gameType)
	}

	start := g.now().Truncate(time.Second)

	last, err := g.rounds.FindLatestStartTime(gameType)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if last != nil {
		if next := last.Add(duration); next.After(start) {
			start = next
		}
	}

	rounds := make([]model.Round, 0, count)

	for i := 0; i < count; i++ {
		startTime := start.Add(time.Duration(i) * duration)
		number, color := g.result.Draw()

		rounds = append(rounds, model.Round{
			GameType:     gameType,
			PeriodID:     startTime.UTC().Format(periodIDLayout),
			ResultNumber: number,
			ResultColor:  color,
			StartTime:    startTime,
			EndTime:      startTime.Add(duration),
			Revealed:     false,
		})
	}

	if err = g.rounds.SaveRoundBatch(rounds); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	g.log.Info("future periods generated",
		slog.String("game_type", string(gameType)),
		slog.Int("count", count),
		slog.String("first_period", rounds[0].PeriodID))

	return nil
}
