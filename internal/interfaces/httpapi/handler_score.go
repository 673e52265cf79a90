package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nate-sepich/par6/internal/domain/score"
	"github.com/nate-sepich/par6/internal/usecase"
)

const (
	defaultScoreWindowDays       = 30
	defaultLeaderboardWindowDays = 7
)

func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitScore")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req submitScoreRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	submitted, err := h.scoreService.Submit(ctx, usecase.SubmitScoreInput{
		UserID:      principal.UserID,
		PuzzleDate:  req.PuzzleDate,
		Status:      score.Status(req.Status),
		GuessesUsed: req.GuessesUsed,
		SourceText:  req.SourceText,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit score failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoreToDTO(submitted))
}

func (h *Handler) ListMyScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyScores")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	startDate, endDate := dateRangeFromQuery(r, defaultScoreWindowDays)
	scores, err := h.scoreService.ListMine(ctx, principal.UserID, startDate, endDate)
	if err != nil {
		h.logger.WarnContext(ctx, "list scores failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoresToDTO(scores))
}

func (h *Handler) ListPlayerScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerScores")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	targetID := strings.TrimSpace(r.PathValue("userID"))
	startDate, endDate := dateRangeFromQuery(r, defaultScoreWindowDays)
	scores, err := h.scoreService.ListPlayer(ctx, principal.UserID, targetID, startDate, endDate)
	if err != nil {
		h.logger.WarnContext(ctx, "list player scores failed",
			"viewer_id", principal.UserID,
			"player_id", targetID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoresToDTO(scores))
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	startDate, endDate := dateRangeFromQuery(r, defaultLeaderboardWindowDays)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.scoreService.Leaderboard(ctx, startDate, endDate, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardEntryDTO, 0, len(entries))
	for i, e := range entries {
		items = append(items, leaderboardEntryDTO{
			Position:       i + 1,
			UserID:         e.UserID,
			Handle:         e.Handle,
			TotalGolfScore: e.TotalGolfScore,
			RoundsPlayed:   e.RoundsPlayed,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardDTO{
		StartDate: startDate,
		EndDate:   endDate,
		Entries:   items,
	})
}

type submitScoreRequest struct {
	PuzzleDate  string `json:"puzzle_date" validate:"required"`
	Status      string `json:"status" validate:"omitempty,oneof=solved dnf"`
	GuessesUsed *int   `json:"guesses_used" validate:"omitempty,min=1,max=6"`
	SourceText  string `json:"source_text" validate:"max=1000"`
}

type scoreDTO struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	PuzzleDate   string `json:"puzzle_date"`
	Status       string `json:"status"`
	GuessesUsed  *int   `json:"guesses_used,omitempty"`
	GolfScore    int    `json:"golf_score"`
	Type         string `json:"type"`
	CreatedAtUTC string `json:"created_at_utc"`
	UpdatedAtUTC string `json:"updated_at_utc"`
}

type leaderboardDTO struct {
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	Entries   []leaderboardEntryDTO `json:"entries"`
}

type leaderboardEntryDTO struct {
	Position       int    `json:"position"`
	UserID         string `json:"user_id"`
	Handle         string `json:"handle"`
	TotalGolfScore int    `json:"total_golf_score"`
	RoundsPlayed   int    `json:"rounds_played"`
}

func scoreToDTO(s score.Score) scoreDTO {
	return scoreDTO{
		ID:           s.ID,
		UserID:       s.UserID,
		PuzzleDate:   s.PuzzleDate,
		Status:       string(s.Status),
		GuessesUsed:  s.GuessesUsed,
		GolfScore:    s.GolfScore,
		Type:         string(s.Type),
		CreatedAtUTC: s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC: s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func scoresToDTO(scores []score.Score) []scoreDTO {
	items := make([]scoreDTO, 0, len(scores))
	for _, s := range scores {
		items = append(items, scoreToDTO(s))
	}
	return items
}
