package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/handlers/mysql"
	"go-wingo/internal/http-server/model"
)

type RoundRepository struct {
	dbhandler *mysql.Handler
}

func NewRoundRepository(dbhandler *mysql.Handler) *RoundRepository {
	return &RoundRepository{dbhandler: dbhandler}
}

const roundColumns = "id, game_type, period_id, result_number, result_color, start_time, end_time, revealed"

// FindEarliestUnrevealed returns the unrevealed round with the smallest
// start time, or nil when the queue for the game type is exhausted.
func (repo *RoundRepository) FindEarliestUnrevealed(gameType config.GameType) (*model.Round, error) {
	const op = "repository.round.FindEarliestUnrevealed"

	const query = "SELECT " + roundColumns + " FROM wingo_periods " +
		"WHERE game_type = ? AND revealed = 0 ORDER BY start_time ASC LIMIT 1"

	row, err := repo.dbhandler.PrepareAndQueryRow(query, string(gameType))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	round, err := scanRound(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return round, nil
}

// FindUpcoming returns up to limit unrevealed rounds ordered by start time.
func (repo *RoundRepository) FindUpcoming(gameType config.GameType, limit int) ([]model.Round, error) {
	const op = "repository.round.FindUpcoming"

	const query = "SELECT " + roundColumns + " FROM wingo_periods " +
		"WHERE game_type = ? AND revealed = 0 ORDER BY start_time ASC LIMIT ?"

	rows, err := repo.dbhandler.PrepareAndQuery(query, string(gameType), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectRounds(rows, op)
}

// FindLatestStartTime returns the start time of the newest round for the game
// type, revealed or not, or nil when no rounds exist yet.
func (repo *RoundRepository) FindLatestStartTime(gameType config.GameType) (*time.Time, error) {
	const op = "repository.round.FindLatestStartTime"

	const query = "SELECT start_time FROM wingo_periods " +
		"WHERE game_type = ? ORDER BY start_time DESC LIMIT 1"

	row, err := repo.dbhandler.PrepareAndQueryRow(query, string(gameType))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var startTime time.Time

	err = row.Scan(&startTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &startTime, nil
}

func (repo *RoundRepository) SaveRoundBatch(rounds []model.Round) error {
	const op = "repository.round.SaveRoundBatch"

	if len(rounds) == 0 {
		return nil
	}

	now := time.Now()

	placeholders := make([]string, 0, len(rounds))
	args := make([]interface{}, 0, len(rounds)*10)

	for _, round := range rounds {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			string(round.GameType), round.PeriodID, round.ResultNumber, string(round.ResultColor),
			round.StartTime, round.EndTime, round.Revealed, now, now)
	}

	query := "INSERT INTO wingo_periods" +
		"(game_type, period_id, result_number, result_color, start_time, end_time, revealed, created_at, updated_at) " +
		"VALUES " + strings.Join(placeholders, ", ")

	_, err := repo.dbhandler.PrepareAndExecute(query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MarkRevealed flips revealed exactly once. The guard on revealed = 0 is the
// reveal gate: a second caller observes zero affected rows and backs off.
func (repo *RoundRepository) MarkRevealed(roundID int64) (bool, error) {
	const op = "repository.round.MarkRevealed"

	now := time.Now()

	const query = "UPDATE wingo_periods SET revealed = 1, updated_at = ? WHERE id = ? AND revealed = 0"

	res, err := repo.dbhandler.PrepareAndExecute(query, now, roundID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected == 1, nil
}

func (repo *RoundRepository) FindRecentRevealed(gameType config.GameType, limit int) ([]model.Round, error) {
	const op = "repository.round.FindRecentRevealed"

	const query = "SELECT " + roundColumns + " FROM wingo_periods " +
		"WHERE game_type = ? AND revealed = 1 ORDER BY start_time DESC LIMIT ?"

	rows, err := repo.dbhandler.PrepareAndQuery(query, string(gameType), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectRounds(rows, op)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRound(row rowScanner) (*model.Round, error) {
	round := &model.Round{}

	err := row.Scan(
		&round.ID, &round.GameType, &round.PeriodID, &round.ResultNumber,
		&round.ResultColor, &round.StartTime, &round.EndTime, &round.Revealed)
	if err != nil {
		return nil, err
	}

	return round, nil
}

func collectRounds(rows *sql.Rows, op string) ([]model.Round, error) {
	var rounds []model.Round

	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		rounds = append(rounds, *round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rounds, nil
}
