package model

import (
	"time"

	"github.com/shopspring/decimal"

	"go-wingo/internal/config"
)

type BetStatus string

const (
	BetPending BetStatus = "pending"
	BetSettled BetStatus = "settled"
)

type Bet struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	PeriodID  string          `json:"period_id"`
	GameType  config.GameType `json:"game_type"`
	BetType   config.BetType  `json:"bet_type"`
	BetValue  string          `json:"bet_value"`
	Amount    decimal.Decimal `json:"amount"`
	Status    BetStatus       `json:"status"`
	Win       bool            `json:"win"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
