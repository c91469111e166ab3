package save

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"golang.org/x/exp/slog"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/handlers/user/balance"
	"go-wingo/internal/http-server/model"
	resp "go-wingo/internal/lib/api/response"
	"go-wingo/internal/lib/converter"
	"go-wingo/internal/lib/logger/sl"
)

type Request struct {
	UserUUID string  `json:"user_uuid" validate:"required,uuid"`
	BetType  string  `json:"bet_type" validate:"required,oneof=number color bigsmall"`
	BetValue string  `json:"bet_value" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

type Response struct {
	resp.Response
	BetID    int64  `json:"bet_id,omitempty"`
	PeriodID string `json:"period_id,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.28.2 --name=BetSaver
type BetSaver interface {
	SaveBet(bet model.Bet) (int64, error)
}

type CurrentRoundFinder interface {
	FindEarliestUnrevealed(gameType config.GameType) (*model.Round, error)
}

type UserFinder interface {
	FindUserByUUID(uuid string) (*model.User, error)
}

// Bet accepts wagers against the current unrevealed round of a game type.
// A bet can only ever target an unrevealed round: the target is the
// earliest unrevealed round, and the lookup is cached no longer than that
// round's own end time.
type Bet struct {
	log       *slog.Logger
	validator *validator.Validate
	rounds    CurrentRoundFinder
	betSaver  BetSaver
	userRep   UserFinder
	balance   balance.Interface
	cache     *cache.Cache
}

func NewBet(
	log *slog.Logger,
	rounds CurrentRoundFinder,
	betSaver BetSaver,
	userRep UserFinder,
	balance balance.Interface) *Bet {
	return &Bet{
		log:       log,
		validator: validator.New(),
		rounds:    rounds,
		betSaver:  betSaver,
		userRep:   userRep,
		balance:   balance,
		cache:     cache.New(time.Minute, 5*time.Minute),
	}
}

func (b *Bet) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.wingo.bet.save.New"

		log := b.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		gameType := config.GameType(chi.URLParam(r, "gameType"))
		if !gameType.Valid() {
			render.JSON(w, r, resp.Error("unknown game type", http.StatusBadRequest))

			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err := b.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		betValue, ok := normalizeBetValue(config.BetType(req.BetType), req.BetValue)
		if !ok {
			render.JSON(w, r, resp.Error("invalid bet value", http.StatusBadRequest))

			return
		}

		round, err := b.currentRound(gameType)
		if err != nil {
			log.Error("failed to find current round", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to find current round", http.StatusInternalServerError))

			return
		}

		if round == nil {
			render.JSON(w, r, resp.Error("betting is closed", http.StatusConflict))

			return
		}

		user, err := b.userRep.FindUserByUUID(req.UserUUID)
		if err != nil {
			log.Error("failed to find user", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to find user", http.StatusInternalServerError))

			return
		}

		if user == nil {
			render.JSON(w, r, resp.Error("user not found", http.StatusNotFound))

			return
		}

		amount := converter.ConvertAmountFloatToDecimal(req.Amount)

		if err = b.balance.Outcome(user.ID, amount, config.GameWingo); err != nil {
			if errors.Is(err, balance.ErrInsufficientBalance) {
				render.JSON(w, r, resp.Error("insufficient balance", http.StatusPaymentRequired))

				return
			}

			log.Error("failed to debit user balance", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to debit user balance", http.StatusInternalServerError))

			return
		}

		bet := model.Bet{
			UserID:   user.ID,
			PeriodID: round.PeriodID,
			GameType: gameType,
			BetType:  config.BetType(req.BetType),
			BetValue: betValue,
			Amount:   amount,
			Status:   model.BetPending,
		}

		id, err := b.betSaver.SaveBet(bet)
		if err != nil {
			log.Error("failed to save bet", sl.Err(err))

			// the wager was already debited; put it back
			if refundErr := b.balance.Income(user.ID, amount, config.GameWingo); refundErr != nil {
				log.Error("failed to refund debited wager", sl.Err(refundErr))
			}

			render.JSON(w, r, resp.Error("failed to save bet", http.StatusInternalServerError))

			return
		}

		log.Info("bet saved",
			slog.Int64("bet_id", id),
			slog.String("period_id", round.PeriodID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			BetID:    id,
			PeriodID: round.PeriodID,
		})
	}
}

// currentRound resolves the earliest unrevealed round, serving repeat
// lookups from cache until that round's end time passes.
func (b *Bet) currentRound(gameType config.GameType) (*model.Round, error) {
	key := "current_round:" + string(gameType)

	if cached, found := b.cache.Get(key); found {
		return cached.(*model.Round), nil
	}

	round, err := b.rounds.FindEarliestUnrevealed(gameType)
	if err != nil {
		return nil, err
	}

	if round == nil {
		return nil, nil
	}

	if ttl := time.Until(round.EndTime); ttl > 0 {
		b.cache.Set(key, round, ttl)
	}

	return round, nil
}

// normalizeBetValue validates the bet value for the bet type and returns it
// in the canonical form settlement matches results against. Number values go
// through Atoi, so "07" is stored as "7".
func normalizeBetValue(betType config.BetType, betValue string) (string, bool) {
	switch betType {
	case config.BetNumber:
		n, err := strconv.Atoi(betValue)
		if err != nil || n < 0 || n > 9 {
			return "", false
		}

		return strconv.Itoa(n), true
	case config.BetColor:
		color := config.Color(betValue)

		if color == config.Green || color == config.Red || color == config.Violet {
			return betValue, true
		}
	case config.BetBigSmall:
		if betValue == "big" || betValue == "small" {
			return betValue, true
		}
	}

	return "", false
}
