package preview

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/model"
)

type fakeRounds struct {
	rounds []model.Round
	err    error

	gotGameType config.GameType
	gotLimit    int
}

func (f *fakeRounds) FindUpcoming(gameType config.GameType, limit int) ([]model.Round, error) {
	f.gotGameType = gameType
	f.gotLimit = limit

	if f.err != nil {
		return nil, f.err
	}

	if limit < len(f.rounds) {
		return f.rounds[:limit], nil
	}

	return f.rounds, nil
}

func upcomingRounds(n int) []model.Round {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	duration := config.Wingo60s.Duration()

	rounds := make([]model.Round, 0, n)

	for i := 0; i < n; i++ {
		s := start.Add(time.Duration(i) * duration)

		rounds = append(rounds, model.Round{
			ID:           int64(i + 1),
			GameType:     config.Wingo60s,
			PeriodID:     s.UTC().Format("20060102150405"),
			ResultNumber: i,
			ResultColor:  config.NumberColors[i],
			StartTime:    s,
			EndTime:      s.Add(duration),
		})
	}

	return rounds
}

func getPreview(t *testing.T, rounds *fakeRounds, gameType string) Response {
	t.Helper()

	handler := NewPreview(slog.New(slog.NewTextHandler(io.Discard, nil)), rounds).New()

	router := chi.NewRouter()
	router.Get("/wingo/{gameType}/preview", handler)

	req := httptest.NewRequest(http.MethodGet, "/wingo/"+gameType+"/preview", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	var response Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

	return response
}

func TestPreview_ReturnsNextTwoRounds(t *testing.T) {
	t.Parallel()

	rounds := &fakeRounds{rounds: upcomingRounds(3)}

	response := getPreview(t, rounds, "60s")

	require.Equal(t, http.StatusOK, response.Status)
	require.Equal(t, config.Wingo60s, rounds.gotGameType)
	require.Equal(t, 2, rounds.gotLimit)

	require.NotNil(t, response.CurrentPeriod)
	require.NotNil(t, response.NextPeriod)
	require.Equal(t, "20260314120000", response.CurrentPeriod.PeriodID)
	require.Equal(t, "20260314120100", response.NextPeriod.PeriodID)

	// the preview includes the pre-drawn outcome
	require.Equal(t, 0, response.CurrentPeriod.ResultNumber)
	require.Equal(t, config.Violet, response.CurrentPeriod.ResultColor)
}

func TestPreview_SingleRoundLeft(t *testing.T) {
	t.Parallel()

	response := getPreview(t, &fakeRounds{rounds: upcomingRounds(1)}, "60s")

	require.Equal(t, http.StatusOK, response.Status)
	require.NotNil(t, response.CurrentPeriod)
	require.Nil(t, response.NextPeriod)
}

func TestPreview_NoRounds(t *testing.T) {
	t.Parallel()

	response := getPreview(t, &fakeRounds{}, "60s")

	require.Equal(t, http.StatusOK, response.Status)
	require.Nil(t, response.CurrentPeriod)
	require.Nil(t, response.NextPeriod)
}

func TestPreview_UnknownGameType(t *testing.T) {
	t.Parallel()

	response := getPreview(t, &fakeRounds{}, "45s")

	require.Equal(t, http.StatusBadRequest, response.Status)
	require.Equal(t, "unknown game type", response.Error)
}

func TestPreview_StorageError(t *testing.T) {
	t.Parallel()

	response := getPreview(t, &fakeRounds{err: errors.New("connection refused")}, "60s")

	require.Equal(t, http.StatusInternalServerError, response.Status)
	require.Equal(t, "failed to find upcoming rounds", response.Error)
}
