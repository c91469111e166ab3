package wingo

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/model"
)

// memStore is an in-memory stand-in for the repositories, with the same
// conditional-update semantics as the MySQL implementations.
type memStore struct {
	mu     sync.Mutex
	nextID int64

	rounds map[int64]*model.Round
	bets   map[int64]*model.Bet
	users  map[int64]*model.User

	findRoundErr error
	settleErrFor map[int64]error
}

func newMemStore() *memStore {
	return &memStore{
		rounds:       make(map[int64]*model.Round),
		bets:         make(map[int64]*model.Bet),
		users:        make(map[int64]*model.User),
		settleErrFor: make(map[int64]error),
	}
}

func (s *memStore) FindEarliestUnrevealed(gameType config.GameType) (*model.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findRoundErr != nil {
		return nil, s.findRoundErr
	}

	var earliest *model.Round

	for _, round := range s.rounds {
		if round.GameType != gameType || round.Revealed {
			continue
		}

		if earliest == nil || round.StartTime.Before(earliest.StartTime) {
			earliest = round
		}
	}

	if earliest == nil {
		return nil, nil
	}

	copied := *earliest

	return &copied, nil
}

func (s *memStore) FindLatestStartTime(gameType config.GameType) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *time.Time

	for _, round := range s.rounds {
		if round.GameType != gameType {
			continue
		}

		if latest == nil || round.StartTime.After(*latest) {
			t := round.StartTime
			latest = &t
		}
	}

	return latest, nil
}

func (s *memStore) SaveRoundBatch(rounds []model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, round := range rounds {
		s.nextID++
		round.ID = s.nextID
		copied := round
		s.rounds[round.ID] = &copied
	}

	return nil
}

func (s *memStore) MarkRevealed(roundID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return false, errors.New("round not found")
	}

	if round.Revealed {
		return false, nil
	}

	round.Revealed = true

	return true, nil
}

func (s *memStore) FindPendingBets(periodID string, gameType config.GameType) ([]model.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bets []model.Bet

	for _, bet := range s.bets {
		if bet.PeriodID == periodID && bet.GameType == gameType && bet.Status == model.BetPending {
			bets = append(bets, *bet)
		}
	}

	sort.Slice(bets, func(i, j int) bool { return bets[i].ID < bets[j].ID })

	return bets, nil
}

func (s *memStore) SettleBet(betID int64, win bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.settleErrFor[betID]; ok {
		return false, err
	}

	bet, ok := s.bets[betID]
	if !ok {
		return false, errors.New("bet not found")
	}

	if bet.Status != model.BetPending {
		return false, nil
	}

	bet.Status = model.BetSettled
	bet.Win = win

	return true, nil
}

func (s *memStore) FindUserByID(userID int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, nil
	}

	copied := *user

	return &copied, nil
}

func (s *memStore) addUser(id int64, vipTier int, referrerID *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[id] = &model.User{ID: id, VIPTier: vipTier, ReferrerID: referrerID}
}

func (s *memStore) addBet(bet model.Bet) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	bet.ID = s.nextID
	if bet.Status == "" {
		bet.Status = model.BetPending
	}
	s.bets[bet.ID] = &bet

	return bet.ID
}

func (s *memStore) addRound(round model.Round) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	round.ID = s.nextID
	s.rounds[round.ID] = &round

	return round.ID
}

func (s *memStore) bet(id int64) model.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.bets[id]
}

func (s *memStore) round(id int64) model.Round {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.rounds[id]
}

func (s *memStore) roundsFor(gameType config.GameType) []model.Round {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rounds []model.Round

	for _, round := range s.rounds {
		if round.GameType == gameType {
			rounds = append(rounds, *round)
		}
	}

	sort.Slice(rounds, func(i, j int) bool { return rounds[i].StartTime.Before(rounds[j].StartTime) })

	return rounds
}

// fakeBalance records credits and debits by user.
type fakeBalance struct {
	mu       sync.Mutex
	incomes  map[int64]decimal.Decimal
	calls    int
	failWith error
}

func newFakeBalance() *fakeBalance {
	return &fakeBalance{incomes: make(map[int64]decimal.Decimal)}
}

func (f *fakeBalance) Income(userID int64, amount decimal.Decimal, _ config.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}

	f.calls++
	f.incomes[userID] = f.incomes[userID].Add(amount)

	return nil
}

func (f *fakeBalance) Outcome(int64, decimal.Decimal, config.Game) error {
	return nil
}

func (f *fakeBalance) total(userID int64) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.incomes[userID]
}
