package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/nate-sepich/par6/internal/infrastructure/repository/memory"
	"github.com/nate-sepich/par6/internal/platform/id"
	"github.com/nate-sepich/par6/internal/usecase"
)

const testJobToken = "job-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	users := memory.NewUserRepository()
	sessions := memory.NewSessionRepository()
	scores := memory.NewScoreRepository()
	tournaments := memory.NewTournamentRepository()
	idGen := id.NewRandomGenerator()

	userSvc := usecase.NewUserService(users, sessions, idGen, nil, nil)
	scoreSvc := usecase.NewScoreService(users, scores, tournaments, nil, idGen, nil, nil)
	tournamentSvc := usecase.NewTournamentService(users, scores, tournaments, idGen, nil, nil)
	penaltySvc := usecase.NewPenaltyService(scores, scoreSvc, nil, nil, 2)

	handler := NewHandler(userSvc, scoreSvc, tournamentSvc, penaltySvc, nil)
	return NewRouter(handler, userSvc, nil, []string{"*"}, testJobToken)
}

func doJSON(t *testing.T, router http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, sonic.Unmarshal(envelope.Data, dst))
}

func registerTestUser(t *testing.T, router http.Handler, handle string) (userID, token string) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/v1/users", "", `{"handle":"`+handle+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res registerUserResponse
	decodeData(t, rec, &res)
	require.True(t, res.Created)
	require.NotEmpty(t, res.SessionToken)
	return res.UserID, res.SessionToken
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ScoreRoundTrip(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	_, token := registerTestUser(t, router, "alice")

	// Unauthenticated submissions are rejected before reaching the handler.
	rec := doJSON(t, router, http.MethodPost, "/v1/scores", "", `{"puzzle_date":"2026-03-01","status":"solved","guesses_used":3}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/v1/scores", token, `{"puzzle_date":"2026-03-01","status":"solved","guesses_used":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var submitted scoreDTO
	decodeData(t, rec, &submitted)
	require.Equal(t, -1, submitted.GolfScore)
	require.Equal(t, "solved", submitted.Status)

	rec = doJSON(t, router, http.MethodGet, "/v1/leaderboard?start_date=2026-03-01&end_date=2026-03-07", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var board leaderboardDTO
	decodeData(t, rec, &board)
	require.Len(t, board.Entries, 1)
	require.Equal(t, "alice", board.Entries[0].Handle)
	require.Equal(t, 1, board.Entries[0].Position)
	require.Equal(t, -1, board.Entries[0].TotalGolfScore)
}

func TestRouter_SubmitScoreValidation(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	_, token := registerTestUser(t, router, "alice")

	cases := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"unknown field", `{"puzzle_date":"2026-03-01","status":"solved","guesses_used":3,"bogus":true}`},
		{"missing date", `{"status":"solved","guesses_used":3}`},
		{"guesses out of range", `{"puzzle_date":"2026-03-01","status":"solved","guesses_used":7}`},
		{"bad status", `{"puzzle_date":"2026-03-01","status":"won","guesses_used":3}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/v1/scores", token, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_TournamentFlow(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	_, creatorToken := registerTestUser(t, router, "alice")
	_, joinerToken := registerTestUser(t, router, "bobby")

	rec := doJSON(t, router, http.MethodPost, "/v1/tournaments", creatorToken,
		`{"name":"March Open","start_date":"2026-03-01","duration_days":9}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created tournamentDTO
	decodeData(t, rec, &created)
	require.Equal(t, "2026-03-09", created.EndDate)
	require.NotEmpty(t, created.ID)

	rec = doJSON(t, router, http.MethodPost, "/v1/tournaments/"+created.ID+"/join", joinerToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/v1/tournaments/"+created.ID, joinerToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The creator cannot abandon their own tournament.
	rec = doJSON(t, router, http.MethodDelete, "/v1/tournaments/"+created.ID+"/leave", creatorToken, "")
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodDelete, "/v1/tournaments/"+created.ID+"/leave", joinerToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_InternalJobs(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/daily-penalties", strings.NewReader(`{"puzzle_date":"2026-03-01"}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		PuzzleDate       string `json:"puzzle_date"`
		PenaltiesApplied int    `json:"penalties_applied"`
	}
	decodeData(t, rec, &result)
	require.Equal(t, "2026-03-01", result.PuzzleDate)
	require.Equal(t, 0, result.PenaltiesApplied)

	// Wrong token never reaches the job handler.
	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/expire-tournaments", nil)
	req.Header.Set("X-Internal-Job-Token", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
