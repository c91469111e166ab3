package history

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/exp/slog"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/model"
	resp "go-wingo/internal/lib/api/response"
	"go-wingo/internal/lib/logger/sl"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type RevealedProvider interface {
	FindRecentRevealed(gameType config.GameType, limit int) ([]model.Round, error)
}

// History returns recently revealed rounds, newest first. Revealed rounds
// are immutable, so the listing is safe to expose publicly.
type History struct {
	log    *slog.Logger
	rounds RevealedProvider
}

type Response struct {
	resp.Response
	Periods []model.Round `json:"periods"`
}

func NewHistory(log *slog.Logger, rounds RevealedProvider) *History {
	return &History{
		log:    log,
		rounds: rounds,
	}
}

func (h *History) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.wingo.history.New"

		log := h.log.With(slog.String("op", op))

		gameType := config.GameType(chi.URLParam(r, "gameType"))
		if !gameType.Valid() {
			render.JSON(w, r, resp.Error("unknown game type", http.StatusBadRequest))

			return
		}

		limit := defaultLimit

		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > maxLimit {
				render.JSON(w, r, resp.Error("invalid limit", http.StatusBadRequest))

				return
			}

			limit = parsed
		}

		rounds, err := h.rounds.FindRecentRevealed(gameType, limit)
		if err != nil {
			log.Error("failed to find revealed rounds", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to find revealed rounds", http.StatusInternalServerError))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Periods:  rounds,
		})
	}
}
