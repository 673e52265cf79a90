package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/nate-sepich/par6/internal/domain/score"
	"github.com/nate-sepich/par6/internal/platform/logging"
)

const (
	// ActivityWindowDays is how far back a user's last score may be for the
	// user to still count as active.
	ActivityWindowDays = 7

	defaultPenaltyWorkers = 8
)

// penaltyInserter is the slice of ScoreService the batch needs.
type penaltyInserter interface {
	InsertPenalty(ctx context.Context, userID, puzzleDate string) (bool, error)
}

// PenaltyService runs the daily no-show batch: every user active in the
// trailing window who has no score for the day gets a DNF penalty.
type PenaltyService struct {
	scores   score.Repository
	inserter penaltyInserter
	logger   *logging.Logger
	now      func() time.Time
	workers  int
}

func NewPenaltyService(
	scores score.Repository,
	inserter penaltyInserter,
	logger *logging.Logger,
	now func() time.Time,
	workers int,
) *PenaltyService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if workers <= 0 {
		workers = defaultPenaltyWorkers
	}
	return &PenaltyService{
		scores:   scores,
		inserter: inserter,
		logger:   logger,
		now:      now,
		workers:  workers,
	}
}

// PenaltyRunResult summarizes one batch run.
type PenaltyRunResult struct {
	PuzzleDate       string
	ActiveUsers      int
	PenaltiesApplied int
	Failed           int
}

// ApplyDailyPenalties runs the batch for the given puzzle date (today when
// empty). The insert is conditional on no score existing, so re-running the
// batch for the same date applies nothing.
func (s *PenaltyService) ApplyDailyPenalties(ctx context.Context, puzzleDate string) (PenaltyRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "PenaltyService.ApplyDailyPenalties")
	defer span.End()

	if strings.TrimSpace(puzzleDate) == "" {
		puzzleDate = s.now().UTC().Format(score.DateLayout)
	}
	puzzleDate, err := score.ParseDate(puzzleDate)
	if err != nil {
		return PenaltyRunResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	day, _ := time.Parse(score.DateLayout, puzzleDate)
	windowStart := day.AddDate(0, 0, -ActivityWindowDays).Format(score.DateLayout)

	rows, err := s.scores.ListInRange(ctx, windowStart, puzzleDate)
	if err != nil {
		return PenaltyRunResult{}, fmt.Errorf("list recent scores: %w", err)
	}

	active := make(map[string]struct{})
	scoredToday := make(map[string]struct{})
	for _, row := range rows {
		active[row.UserID] = struct{}{}
		if row.PuzzleDate == puzzleDate {
			scoredToday[row.UserID] = struct{}{}
		}
	}

	missed := make([]string, 0, len(active))
	for userID := range active {
		if _, ok := scoredToday[userID]; !ok {
			missed = append(missed, userID)
		}
	}
	sort.Strings(missed)

	result := PenaltyRunResult{
		PuzzleDate:  puzzleDate,
		ActiveUsers: len(active),
	}
	if len(missed) == 0 {
		s.logger.InfoContext(ctx, "penalty batch: nothing to apply", "puzzle_date", puzzleDate)
		return result, nil
	}

	workerPool, err := ants.NewPool(s.workers)
	if err != nil {
		return PenaltyRunResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var applied, failed atomic.Int32
	var wg sync.WaitGroup
	for _, userID := range missed {
		userID := userID
		wg.Add(1)
		if err := workerPool.Submit(func() {
			defer wg.Done()
			inserted, err := s.inserter.InsertPenalty(ctx, userID, puzzleDate)
			if err != nil {
				failed.Add(1)
				s.logger.ErrorContext(ctx, "penalty insert failed",
					"user_id", userID,
					"puzzle_date", puzzleDate,
					"error", err,
				)
				return
			}
			if inserted {
				applied.Add(1)
			}
		}); err != nil {
			wg.Done()
			failed.Add(1)
			s.logger.ErrorContext(ctx, "penalty task submit failed", "user_id", userID, "error", err)
		}
	}
	wg.Wait()

	result.PenaltiesApplied = int(applied.Load())
	result.Failed = int(failed.Load())

	s.logger.InfoContext(ctx, "penalty batch finished",
		"puzzle_date", puzzleDate,
		"active_users", result.ActiveUsers,
		"penalties_applied", result.PenaltiesApplied,
		"failed", result.Failed,
	)
	return result, nil
}
