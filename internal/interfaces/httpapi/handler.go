package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/nate-sepich/par6/internal/domain/score"
	"github.com/nate-sepich/par6/internal/platform/logging"
	"github.com/nate-sepich/par6/internal/usecase"
)

type Handler struct {
	userService       *usecase.UserService
	scoreService      *usecase.ScoreService
	tournamentService *usecase.TournamentService
	penaltyService    *usecase.PenaltyService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	userService *usecase.UserService,
	scoreService *usecase.ScoreService,
	tournamentService *usecase.TournamentService,
	penaltyService *usecase.PenaltyService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Handler{
		userService:       userService,
		scoreService:      scoreService,
		tournamentService: tournamentService,
		penaltyService:    penaltyService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterUser")
	defer span.End()

	var req registerUserRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.userService.Register(ctx, req.Handle)
	if err != nil {
		h.logger.WarnContext(ctx, "register user failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, registerUserResponse{
		UserID:       result.User.ID,
		Handle:       result.User.Handle,
		SessionToken: result.SessionToken,
		ExpiresAtUTC: result.ExpiresAt.UTC().Format(time.RFC3339),
		Created:      result.Created,
	})
}

func (h *Handler) decodeBody(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// decodeOptionalBody is decodeBody for endpoints where an empty body is a
// valid "use the defaults" request.
func (h *Handler) decodeOptionalBody(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// dateRangeFromQuery reads start_date/end_date, defaulting to the trailing
// window ending today when both are absent.
func dateRangeFromQuery(r *http.Request, defaultDays int) (string, string) {
	startDate := strings.TrimSpace(r.URL.Query().Get("start_date"))
	endDate := strings.TrimSpace(r.URL.Query().Get("end_date"))
	if startDate == "" && endDate == "" {
		today := time.Now().UTC()
		endDate = today.Format(score.DateLayout)
		startDate = today.AddDate(0, 0, -(defaultDays - 1)).Format(score.DateLayout)
	}
	return startDate, endDate
}

type registerUserRequest struct {
	Handle string `json:"handle" validate:"required,min=3,max=24"`
}

type registerUserResponse struct {
	UserID       string `json:"user_id"`
	Handle       string `json:"handle"`
	SessionToken string `json:"session_token"`
	ExpiresAtUTC string `json:"expires_at_utc"`
	Created      bool   `json:"created"`
}
