package wingo

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/slog"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/handlers/user/balance"
	"go-wingo/internal/http-server/model"
	"go-wingo/internal/lib/logger/sl"
)

// SettlementProcessor resolves every pending bet against a revealed round.
// Safe to invoke more than once for the same round: the pending -> settled
// transition is a single-use gate, so only the first invocation credits.
type SettlementProcessor struct {
	log     *slog.Logger
	bets    BetStore
	users   UserStore
	balance balance.Interface
}

func NewSettlementProcessor(
	log *slog.Logger,
	bets BetStore,
	users UserStore,
	balance balance.Interface) *SettlementProcessor {
	return &SettlementProcessor{
		log:     log,
		bets:    bets,
		users:   users,
		balance: balance,
	}
}

// Settle processes the round's pending bets. The pending set is snapshotted
// up front, so a bet inserted against the round mid-settlement is never
// half-processed. Per-bet failures do not abort the batch; an error is
// returned when any bet was left pending, and a retry is safe.
func (p *SettlementProcessor) Settle(round model.Round) error {
	const op = "wingo.settlement.Settle"

	log := p.log.With(
		slog.String("op", op),
		slog.String("game_type", string(round.GameType)),
		slog.String("period_id", round.PeriodID),
	)

	bets, err := p.bets.FindPendingBets(round.PeriodID, round.GameType)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var failed int

	for _, bet := range bets {
		if err = p.settleBet(log, round, bet); err != nil {
			failed++

			log.Error("failed to settle bet", slog.Int64("bet_id", bet.ID), sl.Err(err))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%s: %d of %d bets not settled", op, failed, len(bets))
	}

	log.Info("round settled", slog.Int("bets", len(bets)))

	return nil
}

func (p *SettlementProcessor) settleBet(log *slog.Logger, round model.Round, bet model.Bet) error {
	const op = "wingo.settlement.settleBet"

	win := IsWinningBet(bet, round)

	claimed, err := p.bets.SettleBet(bet.ID, win)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !claimed {
		// already settled by an earlier invocation
		return nil
	}

	user, err := p.users.FindUserByID(bet.UserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if user == nil {
		log.Warn("bettor not found, payout skipped",
			slog.Int64("bet_id", bet.ID),
			slog.Int64("user_id", bet.UserID))

		return nil
	}

	if win {
		payout := bet.Amount.Mul(config.VIPMultiplier(user.VIPTier))

		if err = p.balance.Income(user.ID, payout, config.GameWingo); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	// the direct referrer earns commission on the wager, win or lose
	if user.ReferrerID != nil {
		if err = p.payCommission(log, bet, *user.ReferrerID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

func (p *SettlementProcessor) payCommission(log *slog.Logger, bet model.Bet, referrerID int64) error {
	const op = "wingo.settlement.payCommission"

	referrer, err := p.users.FindUserByID(referrerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if referrer == nil {
		log.Warn("referrer not found, commission skipped",
			slog.Int64("bet_id", bet.ID),
			slog.Int64("referrer_id", referrerID))

		return nil
	}

	commission := bet.Amount.Mul(config.CommissionRate(referrer.VIPTier))

	if err = p.balance.Income(referrer.ID, commission, config.GameWingo); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// IsWinningBet matches a bet against a round's result. Number bets need an
// exact match, color bets membership in the result's color group, bigsmall
// bets the right side of the split at 5.
func IsWinningBet(bet model.Bet, round model.Round) bool {
	switch bet.BetType {
	case config.BetNumber:
		return bet.BetValue == strconv.Itoa(round.ResultNumber)
	case config.BetColor:
		return config.Color(bet.BetValue) == round.ResultColor
	case config.BetBigSmall:
		if round.ResultNumber >= 5 {
			return bet.BetValue == "big"
		}

		return bet.BetValue == "small"
	}

	return false
}
