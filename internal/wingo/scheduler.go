package wingo

import (
	"context"
	"time"

	"golang.org/x/exp/slog"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/model"
	"go-wingo/internal/lib/logger/sl"
)

// runLoop drives one game type for the process lifetime: find the earliest
// unrevealed round, wait for its end time, reveal it through the conditional
// gate, settle it. The persisted rounds are the only scheduling state, so
// the loop resumes correctly after a restart with no recovery logic.
//
// No failure terminates the loop; a failed step is logged and retried on a
// later iteration, which the reveal and settlement gates make safe.
func (e *Engine) runLoop(ctx context.Context, gameType config.GameType) {
	const op = "wingo.scheduler.runLoop"

	defer e.wg.Done()

	log := e.log.With(
		slog.String("op", op),
		slog.String("game_type", string(gameType)),
	)

	log.Info("scheduler loop started", sl.Duration("duration", gameType.Duration()))

	// a revealed round whose settlement did not complete; retried before
	// the next round is considered
	var unsettled *model.Round

	for {
		if ctx.Err() != nil {
			log.Info("scheduler loop stopped")

			return
		}

		if unsettled != nil {
			if err := e.settler.Settle(*unsettled); err != nil {
				log.Error("settlement retry failed", sl.Err(err))

				e.sleep(ctx, e.retryDelay)

				continue
			}

			unsettled = nil
		}

		round, err := e.rounds.FindEarliestUnrevealed(gameType)
		if err != nil {
			log.Error("failed to find next round", sl.Err(err))

			e.sleep(ctx, e.retryDelay)

			continue
		}

		if round == nil {
			// exhausted queue is not an error, it triggers a refill
			if err = e.generator.GenerateFuturePeriods(gameType, e.cfg.RefillBatchSize); err != nil {
				log.Error("failed to refill rounds", sl.Err(err))

				e.sleep(ctx, e.retryDelay)
			}

			continue
		}

		// a non-positive wait means the deadline was missed (restart lag,
		// clock drift); the round is revealed immediately
		if wait := round.EndTime.Sub(e.now()); wait > 0 {
			if !e.sleep(ctx, wait) {
				continue
			}
		}

		revealed, err := e.rounds.MarkRevealed(round.ID)
		if err != nil {
			log.Error("failed to reveal round", sl.Err(err))

			e.sleep(ctx, e.retryDelay)

			continue
		}

		if !revealed {
			// lost the reveal gate to another instance, which now owns
			// settlement for this round
			continue
		}

		round.Revealed = true

		log.Info("round revealed",
			slog.String("period_id", round.PeriodID),
			slog.Int("result_number", round.ResultNumber),
			slog.String("result_color", string(round.ResultColor)))

		e.publishReveal(*round)

		if err = e.settler.Settle(*round); err != nil {
			log.Error("settlement incomplete, will retry", sl.Err(err))

			unsettled = round
		}
	}
}

// sleep waits for d or until cancellation; reports whether the full wait
// elapsed.
func (e *Engine) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
