package balance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/handlers/event"
	"go-wingo/internal/lib/converter"
	"go-wingo/internal/repository"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// Balance applies money movements to user accounts. Every movement is one
// atomic increment plus an audit row; the event publish is best-effort and
// never fails the movement.
type Balance struct {
	userRep *repository.UserRepository
	log     *slog.Logger
	pusher  *event.PusherEvent
}

type Interface interface {
	Income(userID int64, amount decimal.Decimal, game config.Game) error
	Outcome(userID int64, amount decimal.Decimal, game config.Game) error
}

func NewBalance(
	userRep *repository.UserRepository,
	log *slog.Logger,
	pusherClient *event.PusherEvent) *Balance {
	return &Balance{
		userRep: userRep,
		log:     log,
		pusher:  pusherClient,
	}
}

func (b *Balance) Income(userID int64, amount decimal.Decimal, game config.Game) error {
	const op = "handlers.user.balance.Income"

	if err := b.userRep.IncomeToUserBalance(userID, amount); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := b.userRep.CreateUserBalanceTransaction(userID, amount, config.Income, game); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	b.log.Info("user balance credited",
		slog.Int64("user_id", userID),
		slog.String("amount", converter.ConvertAmountDecimalToString(amount)),
		slog.String("module", string(game)))

	b.publish(userID, amount, config.Income, game)

	return nil
}

func (b *Balance) Outcome(userID int64, amount decimal.Decimal, game config.Game) error {
	const op = "handlers.user.balance.Outcome"

	debited, err := b.userRep.OutcomeFromUserBalance(userID, amount)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !debited {
		return ErrInsufficientBalance
	}

	if err = b.userRep.CreateUserBalanceTransaction(userID, amount, config.Outcome, game); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	b.log.Info("user balance debited",
		slog.Int64("user_id", userID),
		slog.String("amount", converter.ConvertAmountDecimalToString(amount)),
		slog.String("module", string(game)))

	b.publish(userID, amount, config.Outcome, game)

	return nil
}

func (b *Balance) publish(userID int64, amount decimal.Decimal, balanceType config.BalanceType, game config.Game) {
	if b.pusher == nil {
		return
	}

	message := event.Message{
		Channel: "balance-channel",
		Event:   fmt.Sprintf("%s-event", balanceType),
		Data: map[string]interface{}{
			"user_id":        userID,
			"amount":         converter.ConvertAmountDecimalToString(amount),
			"operation_type": string(balanceType),
			"module":         string(game),
		},
	}

	if err := b.pusher.TriggerEvent(message); err != nil {
		b.log.Error("failed to publish balance event")
	}
}
