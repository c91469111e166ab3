package preview

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/exp/slog"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/model"
	resp "go-wingo/internal/lib/api/response"
	"go-wingo/internal/lib/logger/sl"
)

type UpcomingProvider interface {
	FindUpcoming(gameType config.GameType, limit int) ([]model.Round, error)
}

// Preview exposes the next two unrevealed rounds, outcome included. The
// route must sit behind the admin gate: results are pre-drawn and private
// until reveal.
type Preview struct {
	log    *slog.Logger
	rounds UpcomingProvider
}

type Response struct {
	resp.Response
	CurrentPeriod *model.Round `json:"current_period"`
	NextPeriod    *model.Round `json:"next_period"`
}

func NewPreview(log *slog.Logger, rounds UpcomingProvider) *Preview {
	return &Preview{
		log:    log,
		rounds: rounds,
	}
}

func (p *Preview) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.wingo.preview.New"

		log := p.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		gameType := config.GameType(chi.URLParam(r, "gameType"))
		if !gameType.Valid() {
			render.JSON(w, r, resp.Error("unknown game type", http.StatusBadRequest))

			return
		}

		upcoming, err := p.rounds.FindUpcoming(gameType, 2)
		if err != nil {
			log.Error("failed to find upcoming rounds", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to find upcoming rounds", http.StatusInternalServerError))

			return
		}

		response := Response{Response: resp.OK()}

		if len(upcoming) > 0 {
			response.CurrentPeriod = &upcoming[0]
		}

		if len(upcoming) > 1 {
			response.NextPeriod = &upcoming[1]
		}

		render.JSON(w, r, response)
	}
}
