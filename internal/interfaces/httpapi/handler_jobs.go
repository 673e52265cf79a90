package httpapi

import "net/http"

// Job bodies are optional; an empty body means "run for today".
type dailyPenaltiesJobRequest struct {
	PuzzleDate string `json:"puzzle_date"`
}

type expireTournamentsJobRequest struct {
	Today string `json:"today"`
}

func (h *Handler) RunDailyPenaltiesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunDailyPenaltiesJob")
	defer span.End()

	var req dailyPenaltiesJobRequest
	if err := h.decodeOptionalBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.penaltyService.ApplyDailyPenalties(ctx, req.PuzzleDate)
	if err != nil {
		h.logger.ErrorContext(ctx, "daily penalties job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"puzzle_date":       result.PuzzleDate,
		"active_users":      result.ActiveUsers,
		"penalties_applied": result.PenaltiesApplied,
		"failed":            result.Failed,
	})
}

func (h *Handler) RunExpireTournamentsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunExpireTournamentsJob")
	defer span.End()

	var req expireTournamentsJobRequest
	if err := h.decodeOptionalBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	ended, err := h.tournamentService.AutoExpireSweep(ctx, req.Today)
	if err != nil {
		h.logger.ErrorContext(ctx, "expire tournaments job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"ended_count":          len(ended),
		"ended_tournament_ids": ended,
	})
}
