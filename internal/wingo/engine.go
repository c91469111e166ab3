package wingo

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/handlers/event"
	"go-wingo/internal/http-server/handlers/job"
	"go-wingo/internal/http-server/handlers/user/balance"
	"go-wingo/internal/http-server/model"
)

const defaultRetryDelay = 5 * time.Second

// Engine owns one scheduling loop per configured game type. The loops share
// no in-process state; all coordination goes through the stores, so a crash
// resumes from persisted rounds alone.
type Engine struct {
	log       *slog.Logger
	cfg       config.Wingo
	rounds    RoundStore
	generator *PeriodGenerator
	settler   *SettlementProcessor
	pusher    *event.PusherEvent

	wg         sync.WaitGroup
	now        func() time.Time
	retryDelay time.Duration
}

// NewEngine wires the engine from its stores. A nil rnd seeds the result
// generator from the clock; pusherClient may be nil to disable events.
func NewEngine(
	log *slog.Logger,
	cfg config.Wingo,
	rounds RoundStore,
	bets BetStore,
	users UserStore,
	balance balance.Interface,
	pusherClient *event.PusherEvent,
	rnd *rand.Rand) *Engine {
	result := NewResultGenerator(cfg.ResultPolicy, rnd)

	return &Engine{
		log:        log,
		cfg:        cfg,
		rounds:     rounds,
		generator:  NewPeriodGenerator(log, rounds, result),
		settler:    NewSettlementProcessor(log, bets, users, balance),
		pusher:     pusherClient,
		now:        time.Now,
		retryDelay: defaultRetryDelay,
	}
}

// Start seeds an initial batch for every game type that has no rounds yet,
// then launches the scheduling loops. The loops run until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	const op = "wingo.engine.Start"

	for _, gameType := range config.GameTypes() {
		last, err := e.rounds.FindLatestStartTime(gameType)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if last == nil {
			if err = e.generator.GenerateFuturePeriods(gameType, e.cfg.StartupBatchSize); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}

		e.wg.Add(1)

		go e.runLoop(ctx, gameType)
	}

	return nil
}

// Wait blocks until every loop has observed cancellation and exited.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) publishReveal(round model.Round) {
	if e.pusher == nil {
		return
	}

	job.Dispatch(&job.RevealEventJob{
		Event: e.pusher,
		EventMessage: event.Message{
			Channel: "wingo-channel",
			Event:   "round-revealed",
			Data: map[string]interface{}{
				"game_type":     string(round.GameType),
				"period_id":     round.PeriodID,
				"result_number": round.ResultNumber,
				"result_color":  string(round.ResultColor),
			},
		},
	}, 0)
}
