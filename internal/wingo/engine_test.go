package wingo

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/handlers/event"
	"go-wingo/internal/http-server/handlers/job"
	"go-wingo/internal/http-server/model"
)

func newTestEngine(rounds RoundStore, store *memStore, bal *fakeBalance) *Engine {
	log := discardLogger()
	result := NewResultGenerator(config.PolicyUniform, rand.New(rand.NewSource(1)))

	return &Engine{
		log:        log,
		cfg:        config.Wingo{StartupBatchSize: 4, RefillBatchSize: 3, ResultPolicy: config.PolicyUniform},
		rounds:     rounds,
		generator:  NewPeriodGenerator(log, rounds, result),
		settler:    NewSettlementProcessor(log, store, store, bal),
		now:        time.Now,
		retryDelay: time.Millisecond,
	}
}

func TestEngine_StartSeedsAndStops(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	engine := newTestEngine(store, store, newFakeBalance())

	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, engine.Start(ctx))

	for _, gameType := range config.GameTypes() {
		require.Len(t, store.roundsFor(gameType), 4, "game type %s not seeded", gameType)
	}

	cancel()

	done := make(chan struct{})
	go func() {
		engine.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loops did not stop after cancellation")
	}
}

func TestEngine_StartKeepsExistingRounds(t *testing.T) {
	t.Parallel()

	store := newMemStore()

	// a surviving schedule from before a restart must not be reseeded
	for _, gameType := range config.GameTypes() {
		store.addRound(roundAt(gameType, time.Now().Add(time.Minute), 1))
	}

	engine := newTestEngine(store, store, newFakeBalance())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, engine.Start(ctx))

	for _, gameType := range config.GameTypes() {
		require.Len(t, store.roundsFor(gameType), 1)
	}

	cancel()
	engine.Wait()
}

func TestRunLoop_RevealsAndSettlesOverdueRound(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	bal := newFakeBalance()
	engine := newTestEngine(store, store, bal)

	// a round whose deadline passed while the process was down
	start := time.Now().Add(-2 * time.Minute).Truncate(time.Second)
	roundID := store.addRound(roundAt(config.Wingo60s, start, 7))

	store.addUser(1, 1, nil)
	betID := store.addBet(model.Bet{
		UserID:   1,
		PeriodID: start.UTC().Format("20060102150405"),
		GameType: config.Wingo60s,
		BetType:  config.BetNumber,
		BetValue: "7",
		Amount:   decimal.NewFromInt(100),
		Status:   model.BetPending,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine.wg.Add(1)
	go engine.runLoop(ctx, config.Wingo60s)

	require.Eventually(t, func() bool {
		return store.round(roundID).Revealed && store.bet(betID).Status == model.BetSettled
	}, 2*time.Second, 5*time.Millisecond, "overdue round was not revealed and settled")

	require.True(t, bal.total(1).Equal(decimal.NewFromInt(900)))

	// the exhausted queue was refilled with future rounds
	require.Eventually(t, func() bool {
		return len(store.roundsFor(config.Wingo60s)) == 4
	}, 2*time.Second, 5*time.Millisecond, "queue was not refilled")

	cancel()
	engine.Wait()
}

func TestRunLoop_RetriesFailedSettlement(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	bal := newFakeBalance()
	engine := newTestEngine(store, store, bal)

	start := time.Now().Add(-time.Minute).Truncate(time.Second)
	roundID := store.addRound(roundAt(config.Wingo60s, start, 7))

	store.addUser(1, 1, nil)
	betID := store.addBet(model.Bet{
		UserID:   1,
		PeriodID: start.UTC().Format("20060102150405"),
		GameType: config.Wingo60s,
		BetType:  config.BetNumber,
		BetValue: "7",
		Amount:   decimal.NewFromInt(100),
		Status:   model.BetPending,
	})

	store.mu.Lock()
	store.settleErrFor[betID] = errors.New("lock wait timeout")
	store.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine.wg.Add(1)
	go engine.runLoop(ctx, config.Wingo60s)

	// let the first settlement attempt fail, then clear the fault
	require.Eventually(t, func() bool {
		return store.round(roundID).Revealed
	}, 2*time.Second, 5*time.Millisecond)

	store.mu.Lock()
	delete(store.settleErrFor, betID)
	store.mu.Unlock()

	require.Eventually(t, func() bool {
		return store.bet(betID).Status == model.BetSettled
	}, 2*time.Second, 5*time.Millisecond, "settlement was not retried")

	require.True(t, bal.total(1).Equal(decimal.NewFromInt(900)))

	cancel()
	engine.Wait()
}

func TestPublishReveal_DoesNotStallOnBackedUpQueue(t *testing.T) {
	job.Init(1)

	// no workers are running, so the queue stays full
	job.Queue <- &job.RevealEventJob{}

	store := newMemStore()
	engine := newTestEngine(store, store, newFakeBalance())
	engine.pusher = event.NewPusherEvent(discardLogger(), nil)

	done := make(chan struct{})

	go func() {
		engine.publishReveal(roundAt(config.Wingo60s, time.Now().Truncate(time.Second), 7))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("reveal publish blocked the scheduler's goroutine")
	}
}

// gateLostStore simulates losing the reveal gate to another instance: the
// round flips to revealed in storage, but this caller's conditional update
// reports zero rows.
type gateLostStore struct {
	*memStore
}

func (s *gateLostStore) MarkRevealed(roundID int64) (bool, error) {
	if _, err := s.memStore.MarkRevealed(roundID); err != nil {
		return false, err
	}

	return false, nil
}

func TestRunLoop_LostRevealGateSkipsSettlement(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	bal := newFakeBalance()
	engine := newTestEngine(&gateLostStore{memStore: store}, store, bal)

	start := time.Now().Add(-time.Minute).Truncate(time.Second)
	store.addRound(roundAt(config.Wingo60s, start, 7))

	store.addUser(1, 1, nil)
	betID := store.addBet(model.Bet{
		UserID:   1,
		PeriodID: start.UTC().Format("20060102150405"),
		GameType: config.Wingo60s,
		BetType:  config.BetNumber,
		BetValue: "7",
		Amount:   decimal.NewFromInt(100),
		Status:   model.BetPending,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine.wg.Add(1)
	go engine.runLoop(ctx, config.Wingo60s)

	// the loop moves on to refilling instead of settling the lost round
	require.Eventually(t, func() bool {
		return len(store.roundsFor(config.Wingo60s)) == 4
	}, 2*time.Second, 5*time.Millisecond)

	require.Equal(t, model.BetPending, store.bet(betID).Status)
	require.Equal(t, 0, bal.calls)

	cancel()
	engine.Wait()
}
