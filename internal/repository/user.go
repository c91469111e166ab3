package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/handlers/mysql"
	"go-wingo/internal/http-server/model"
)

type UserRepository struct {
	dbhandler *mysql.Handler
}

func NewUserRepository(dbhandler *mysql.Handler) *UserRepository {
	return &UserRepository{dbhandler: dbhandler}
}

func (repo *UserRepository) FindUserByID(userID int64) (*model.User, error) {
	const op = "repository.user.FindUserByID"

	const query = "SELECT id, uuid, balance, vip_tier, referrer_id FROM users WHERE id = ?"

	row, err := repo.dbhandler.PrepareAndQueryRow(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return scanUser(row, op)
}

func (repo *UserRepository) FindUserByUUID(uuid string) (*model.User, error) {
	const op = "repository.user.FindUserByUUID"

	const query = "SELECT id, uuid, balance, vip_tier, referrer_id FROM users WHERE uuid = ?"

	row, err := repo.dbhandler.PrepareAndQueryRow(query, uuid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return scanUser(row, op)
}

// IncomeToUserBalance credits the balance with a single atomic increment.
// It never reads the balance first, so it stays correct when other
// subsystems mutate the same row concurrently.
func (repo *UserRepository) IncomeToUserBalance(userID int64, amount decimal.Decimal) error {
	const op = "repository.user.IncomeToUserBalance"

	now := time.Now()

	const query = "UPDATE users SET balance = balance + ?, updated_at = ? WHERE id = ?"

	_, err := repo.dbhandler.PrepareAndExecute(query, amount, now, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// OutcomeFromUserBalance debits the balance atomically, guarded on the
// current balance covering the amount. Reports false when it does not.
func (repo *UserRepository) OutcomeFromUserBalance(userID int64, amount decimal.Decimal) (bool, error) {
	const op = "repository.user.OutcomeFromUserBalance"

	now := time.Now()

	const query = "UPDATE users SET balance = balance - ?, updated_at = ? WHERE id = ? AND balance >= ?"

	res, err := repo.dbhandler.PrepareAndExecute(query, amount, now, userID, amount)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected == 1, nil
}

func (repo *UserRepository) CreateUserBalanceTransaction(
	userID int64,
	amount decimal.Decimal,
	balanceType config.BalanceType,
	game config.Game,
) error {
	const op = "repository.user.CreateUserBalanceTransaction"

	now := time.Now()

	const query = "INSERT INTO user_balance_transactions(user_id, value, type, module, created_at, updated_at) " +
		"VALUES(?, ?, ?, ?, ?, ?)"

	_, err := repo.dbhandler.PrepareAndExecute(query, userID, amount, string(balanceType), string(game), now, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func scanUser(row *sql.Row, op string) (*model.User, error) {
	user := &model.User{}

	var referrerID sql.NullInt64

	err := row.Scan(&user.ID, &user.UUID, &user.Balance, &user.VIPTier, &referrerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if referrerID.Valid {
		user.ReferrerID = &referrerID.Int64
	}

	return user, nil
}
