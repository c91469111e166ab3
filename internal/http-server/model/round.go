package model

import (
	"time"

	"go-wingo/internal/config"
)

// Round is one pre-generated betting cycle. The outcome is assigned at
// creation time and only disclosed when Revealed flips to true; once revealed
// the row is immutable.
type Round struct {
	ID           int64           `json:"id"`
	GameType     config.GameType `json:"game_type"`
	PeriodID     string          `json:"period_id"`
	ResultNumber int             `json:"result_number"`
	ResultColor  config.Color    `json:"result_color"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	Revealed     bool            `json:"revealed"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
