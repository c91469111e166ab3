package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is the slice of the account record the engine touches. Balance is the
// only field the engine ever writes, and only through atomic increments.
type User struct {
	ID         int64           `json:"id"`
	UUID       uuid.UUID       `json:"uuid"`
	Balance    decimal.Decimal `json:"balance"`
	VIPTier    int             `json:"vip_tier"`
	ReferrerID *int64          `json:"referrer_id,omitempty"`
}
