package wingo

import (
	"time"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/model"
)

// RoundStore is the slice of round storage the engine depends on. The
// MarkRevealed guard and the earliest-unrevealed query are the engine's only
// sources of truth; no scheduling state lives in memory.
type RoundStore interface {
	FindEarliestUnrevealed(gameType config.GameType) (*model.Round, error)
	FindLatestStartTime(gameType config.GameType) (*time.Time, error)
	SaveRoundBatch(rounds []model.Round) error
	MarkRevealed(roundID int64) (bool, error)
}

type BetStore interface {
	FindPendingBets(periodID string, gameType config.GameType) ([]model.Bet, error)
	SettleBet(betID int64, win bool) (bool, error)
}

type UserStore interface {
	FindUserByID(userID int64) (*model.User, error)
}
