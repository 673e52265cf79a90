package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nate-sepich/par6/internal/domain/tournament"
	"github.com/nate-sepich/par6/internal/usecase"
)

func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTournament")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createTournamentRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.tournamentService.Create(ctx, usecase.CreateTournamentInput{
		Name:         req.Name,
		StartDate:    req.StartDate,
		DurationDays: req.DurationDays,
		Type:         tournament.Type(req.Type),
		CreatedBy:    principal.UserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create tournament failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, tournamentToDTO(created))
}

func (h *Handler) ListMyTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyTournaments")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	summaries, err := h.tournamentService.ListMine(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list tournaments failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summariesToDTO(summaries))
}

func (h *Handler) ListPublicTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPublicTournaments")
	defer span.End()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	summaries, err := h.tournamentService.ListPublic(ctx, viewerID(ctx), limit, offset)
	if err != nil {
		h.logger.WarnContext(ctx, "list public tournaments failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summariesToDTO(summaries))
}

func (h *Handler) SearchPublicTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchPublicTournaments")
	defer span.End()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	summaries, err := h.tournamentService.SearchPublic(ctx, viewerID(ctx), query, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "search public tournaments failed", "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summariesToDTO(summaries))
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournament")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	summary, err := h.tournamentService.Get(ctx, tournamentID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get tournament failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summaryToDTO(summary))
}

func (h *Handler) JoinTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinTournament")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	ref := strings.TrimSpace(r.PathValue("tournamentID"))
	joined, err := h.tournamentService.Join(ctx, ref, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "join tournament failed", "ref", ref, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(joined))
}

func (h *Handler) LeaveTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveTournament")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	if err := h.tournamentService.Leave(ctx, tournamentID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "leave tournament failed", "tournament_id", tournamentID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "left"})
}

func (h *Handler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTournament")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	if err := h.tournamentService.SoftDelete(ctx, tournamentID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "delete tournament failed", "tournament_id", tournamentID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) EndTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EndTournament")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	results, err := h.tournamentService.End(ctx, tournamentID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "end tournament failed", "tournament_id", tournamentID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, finalResultsToDTO(results))
}

func (h *Handler) GetTournamentResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournamentResults")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	results, err := h.tournamentService.FinalResults(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "get tournament results failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, finalResultsToDTO(results))
}

// viewerID is best-effort: public listing routes work without auth, but a
// logged-in caller still gets is_current_user flags.
func viewerID(ctx context.Context) string {
	if principal, ok := principalFromContext(ctx); ok {
		return principal.UserID
	}
	return ""
}

type createTournamentRequest struct {
	Name         string `json:"name" validate:"required,min=3,max=100"`
	StartDate    string `json:"start_date" validate:"required"`
	DurationDays int    `json:"duration_days" validate:"required,oneof=9 18"`
	Type         string `json:"type" validate:"omitempty,oneof=public private"`
}

type tournamentDTO struct {
	ID           string   `json:"id"`
	JoinCode     string   `json:"join_code"`
	Name         string   `json:"name"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	DurationDays int      `json:"duration_days"`
	CreatedBy    string   `json:"created_by"`
	Participants []string `json:"participants"`
	Status       string   `json:"status"`
	Type         string   `json:"type"`
	IsActive     bool     `json:"is_active"`
	WinnerUserID string   `json:"winner_user_id,omitempty"`
	EndedAtUTC   string   `json:"ended_at_utc,omitempty"`
}

type standingDTO struct {
	Position      int    `json:"position"`
	UserID        string `json:"user_id"`
	Handle        string `json:"handle"`
	TotalScore    int    `json:"total_score"`
	CompletedDays int    `json:"completed_days"`
	IsCurrentUser bool   `json:"is_current_user"`
}

type tournamentSummaryDTO struct {
	Tournament        tournamentDTO `json:"tournament"`
	Standings         []standingDTO `json:"standings"`
	UserParticipating bool          `json:"user_participating"`
	TotalParticipants int           `json:"total_participants"`
}

type finalResultsDTO struct {
	Tournament        tournamentDTO `json:"tournament"`
	Winner            *standingDTO  `json:"winner,omitempty"`
	FinalStandings    []standingDTO `json:"final_standings"`
	EndedAtUTC        string        `json:"ended_at_utc"`
	TotalParticipants int           `json:"total_participants"`
	CompletedDays     int           `json:"completed_days"`
}

func tournamentToDTO(t tournament.Tournament) tournamentDTO {
	dto := tournamentDTO{
		ID:           t.ID,
		JoinCode:     joinCode(t.ID),
		Name:         t.Name,
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		DurationDays: t.DurationDays,
		CreatedBy:    t.CreatedBy,
		Participants: append([]string(nil), t.Participants...),
		Status:       string(t.Status),
		Type:         string(t.Type),
		IsActive:     t.IsActive,
		WinnerUserID: t.WinnerUserID,
	}
	if t.EndedAt != nil {
		dto.EndedAtUTC = t.EndedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func standingsToDTO(standings []tournament.Standing) []standingDTO {
	items := make([]standingDTO, 0, len(standings))
	for _, s := range standings {
		items = append(items, standingDTO{
			Position:      s.Position,
			UserID:        s.UserID,
			Handle:        s.Handle,
			TotalScore:    s.TotalScore,
			CompletedDays: s.CompletedDays,
			IsCurrentUser: s.IsCurrentUser,
		})
	}
	return items
}

func summaryToDTO(s tournament.Summary) tournamentSummaryDTO {
	return tournamentSummaryDTO{
		Tournament:        tournamentToDTO(s.Tournament),
		Standings:         standingsToDTO(s.Standings),
		UserParticipating: s.UserParticipating,
		TotalParticipants: s.TotalParticipants,
	}
}

func summariesToDTO(summaries []tournament.Summary) []tournamentSummaryDTO {
	items := make([]tournamentSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, summaryToDTO(s))
	}
	return items
}

func finalResultsToDTO(r tournament.FinalResults) finalResultsDTO {
	dto := finalResultsDTO{
		Tournament:        tournamentToDTO(r.Tournament),
		FinalStandings:    standingsToDTO(r.FinalStandings),
		TotalParticipants: r.TotalParticipants,
		CompletedDays:     r.CompletedDays,
	}
	if r.Winner != nil {
		winner := standingDTO{
			Position:      r.Winner.Position,
			UserID:        r.Winner.UserID,
			Handle:        r.Winner.Handle,
			TotalScore:    r.Winner.TotalScore,
			CompletedDays: r.Winner.CompletedDays,
			IsCurrentUser: r.Winner.IsCurrentUser,
		}
		dto.Winner = &winner
	}
	if !r.EndedAt.IsZero() {
		dto.EndedAtUTC = r.EndedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func joinCode(id string) string {
	if len(id) <= tournament.JoinCodeMaxLen {
		return id
	}
	return id[:tournament.JoinCodeMaxLen]
}
