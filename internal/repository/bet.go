package repository

import (
	"fmt"
	"time"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/handlers/mysql"
	"go-wingo/internal/http-server/model"
)

type BetRepository struct {
	dbhandler *mysql.Handler
}

func NewBetRepository(dbhandler *mysql.Handler) *BetRepository {
	return &BetRepository{dbhandler: dbhandler}
}

func (repo *BetRepository) SaveBet(bet model.Bet) (int64, error) {
	const op = "repository.bet.SaveBet"

	now := time.Now()

	const query = "INSERT INTO wingo_bets" +
		"(user_id, period_id, game_type, bet_type, bet_value, amount, status, win, created_at, updated_at) " +
		"VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

	res, err := repo.dbhandler.PrepareAndExecute(query,
		bet.UserID, bet.PeriodID, string(bet.GameType), string(bet.BetType), bet.BetValue,
		bet.Amount, string(model.BetPending), false, now, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// FindPendingBets snapshots every pending bet placed against the round.
func (repo *BetRepository) FindPendingBets(periodID string, gameType config.GameType) ([]model.Bet, error) {
	const op = "repository.bet.FindPendingBets"

	const query = "SELECT id, user_id, period_id, game_type, bet_type, bet_value, amount, status, win " +
		"FROM wingo_bets WHERE period_id = ? AND game_type = ? AND status = ? ORDER BY id ASC"

	rows, err := repo.dbhandler.PrepareAndQuery(query, periodID, string(gameType), string(model.BetPending))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bets []model.Bet

	for rows.Next() {
		var bet model.Bet

		err = rows.Scan(
			&bet.ID, &bet.UserID, &bet.PeriodID, &bet.GameType, &bet.BetType,
			&bet.BetValue, &bet.Amount, &bet.Status, &bet.Win)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		bets = append(bets, bet)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bets, nil
}

// SettleBet transitions a bet pending -> settled. The guard on the current
// status is the single-use settlement gate: a bet that is no longer pending
// reports false and must be skipped by the caller.
func (repo *BetRepository) SettleBet(betID int64, win bool) (bool, error) {
	const op = "repository.bet.SettleBet"

	now := time.Now()

	const query = "UPDATE wingo_bets SET status = ?, win = ?, updated_at = ? WHERE id = ? AND status = ?"

	res, err := repo.dbhandler.PrepareAndExecute(query,
		string(model.BetSettled), win, now, betID, string(model.BetPending))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected == 1, nil
}

func (repo *BetRepository) FindBetsByUser(userID int64, limit int) ([]model.Bet, error) {
	const op = "repository.bet.FindBetsByUser"

	const query = "SELECT id, user_id, period_id, game_type, bet_type, bet_value, amount, status, win " +
		"FROM wingo_bets WHERE user_id = ? ORDER BY id DESC LIMIT ?"

	rows, err := repo.dbhandler.PrepareAndQuery(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bets []model.Bet

	for rows.Next() {
		var bet model.Bet

		err = rows.Scan(
			&bet.ID, &bet.UserID, &bet.PeriodID, &bet.GameType, &bet.BetType,
			&bet.BetValue, &bet.Amount, &bet.Status, &bet.Win)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		bets = append(bets, bet)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bets, nil
}
