package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nate-sepich/par6/internal/domain/score"
	"github.com/nate-sepich/par6/internal/domain/tournament"
	"github.com/nate-sepich/par6/internal/domain/user"
	"github.com/nate-sepich/par6/internal/platform/cache"
	"github.com/nate-sepich/par6/internal/platform/id"
	"github.com/nate-sepich/par6/internal/platform/logging"
	"github.com/nate-sepich/par6/internal/platform/shareparse"
)

const (
	// DefaultLeaderboardLimit caps leaderboard responses when the caller
	// does not ask for less.
	DefaultLeaderboardLimit = 50

	leaderboardCachePrefix = "leaderboard:"
	penaltySourceText      = "Busy Bunker - Missed Day"
)

// ScoreService owns the score ledger: submissions, per-player reads, the
// global leaderboard and the penalty insert used by the daily batch.
type ScoreService struct {
	users       user.Repository
	scores      score.Repository
	tournaments tournament.Repository
	cache       *cache.Store
	idGen       id.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewScoreService(
	users user.Repository,
	scores score.Repository,
	tournaments tournament.Repository,
	cacheStore *cache.Store,
	idGen id.Generator,
	logger *logging.Logger,
	now func() time.Time,
) *ScoreService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &ScoreService{
		users:       users,
		scores:      scores,
		tournaments: tournaments,
		cache:       cacheStore,
		idGen:       idGen,
		logger:      logger,
		now:         now,
	}
}

// SubmitScoreInput is a score submission. Status and GuessesUsed may be
// left empty when SourceText carries a pasted Wordle share; the header is
// parsed instead.
type SubmitScoreInput struct {
	UserID      string
	PuzzleDate  string
	Status      score.Status
	GuessesUsed *int
	SourceText  string
}

// Submit upserts the score for (user, puzzle date). Resubmission replaces
// the result in place but keeps the original score id and creation time.
// This also intentionally overwrites a batch penalty when a player logs a
// real result after the fact.
func (s *ScoreService) Submit(ctx context.Context, in SubmitScoreInput) (score.Score, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoreService.Submit")
	defer span.End()

	if strings.TrimSpace(in.UserID) == "" {
		return score.Score{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	puzzleDate, err := score.ParseDate(in.PuzzleDate)
	if err != nil {
		return score.Score{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	status := in.Status
	guesses := in.GuessesUsed
	if status == "" && strings.TrimSpace(in.SourceText) != "" {
		parsed, err := shareparse.Parse(in.SourceText)
		if err != nil {
			return score.Score{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if parsed.Solved {
			status = score.StatusSolved
			g := parsed.GuessesUsed
			guesses = &g
		} else {
			status = score.StatusDNF
			guesses = nil
		}
	}

	golfScore, err := score.Golf(status, guesses, false)
	if err != nil {
		return score.Score{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, found, err := s.scores.GetByUserAndDate(ctx, in.UserID, puzzleDate)
	if err != nil {
		return score.Score{}, fmt.Errorf("lookup existing score: %w", err)
	}

	now := s.now().UTC()
	row := score.Score{
		UserID:      in.UserID,
		PuzzleDate:  puzzleDate,
		Status:      status,
		GuessesUsed: guesses,
		GolfScore:   golfScore,
		SourceText:  in.SourceText,
		Type:        score.TypeRegular,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if found {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
	} else {
		newID, err := s.idGen.NewID()
		if err != nil {
			return score.Score{}, fmt.Errorf("generate score id: %w", err)
		}
		row.ID = newID
	}

	if err := s.scores.Upsert(ctx, row); err != nil {
		return score.Score{}, fmt.Errorf("upsert score: %w", err)
	}
	s.invalidateLeaderboard(ctx)

	s.logger.InfoContext(ctx, "score submitted",
		"user_id", in.UserID,
		"puzzle_date", puzzleDate,
		"golf_score", golfScore,
		"overwrite", found,
	)
	return row, nil
}

// ListMine returns the caller's scores in [start, end], oldest first.
func (s *ScoreService) ListMine(ctx context.Context, userID, startDate, endDate string) ([]score.Score, error) {
	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	rows, err := s.scores.ListByUserInRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return rows, nil
}

// ListPlayer returns another player's scores. Allowed when viewing yourself
// or someone you share a tournament with.
func (s *ScoreService) ListPlayer(ctx context.Context, viewerID, targetID, startDate, endDate string) ([]score.Score, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoreService.ListPlayer")
	defer span.End()

	if strings.TrimSpace(targetID) == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if viewerID != targetID {
		shared, err := s.sharesTournament(ctx, viewerID, targetID)
		if err != nil {
			return nil, err
		}
		if !shared {
			return nil, fmt.Errorf("%w: no shared tournament with player", ErrForbidden)
		}
	}

	if _, found, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, fmt.Errorf("lookup player: %w", err)
	} else if !found {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, targetID)
	}

	return s.ListMine(ctx, targetID, startDate, endDate)
}

// Leaderboard aggregates total golf score and rounds played per user over a
// date range. Lower totals rank first; rounds played breaks ties in favor of
// the busier player. Results are cached briefly.
func (s *ScoreService) Leaderboard(ctx context.Context, startDate, endDate string, limit int) ([]score.LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoreService.Leaderboard")
	defer span.End()

	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > DefaultLeaderboardLimit {
		limit = DefaultLeaderboardLimit
	}

	load := func(ctx context.Context) (any, error) {
		return s.buildLeaderboard(ctx, start, end, limit)
	}

	if s.cache == nil {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return v.([]score.LeaderboardEntry), nil
	}

	key := fmt.Sprintf("%s%s:%s:%d", leaderboardCachePrefix, start, end, limit)
	v, err := s.cache.GetOrLoad(ctx, key, load)
	if err != nil {
		return nil, err
	}
	return v.([]score.LeaderboardEntry), nil
}

func (s *ScoreService) buildLeaderboard(ctx context.Context, start, end string, limit int) ([]score.LeaderboardEntry, error) {
	rows, err := s.scores.ListInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}

	totals := make(map[string]*score.LeaderboardEntry)
	for _, row := range rows {
		e, ok := totals[row.UserID]
		if !ok {
			e = &score.LeaderboardEntry{UserID: row.UserID}
			totals[row.UserID] = e
		}
		e.TotalGolfScore += row.GolfScore
		e.RoundsPlayed++
	}

	entries := make([]score.LeaderboardEntry, 0, len(totals))
	for userID, e := range totals {
		u, found, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("lookup user %s: %w", userID, err)
		}
		if !found {
			continue
		}
		e.Handle = u.Handle
		entries = append(entries, *e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalGolfScore != entries[j].TotalGolfScore {
			return entries[i].TotalGolfScore < entries[j].TotalGolfScore
		}
		if entries[i].RoundsPlayed != entries[j].RoundsPlayed {
			return entries[i].RoundsPlayed > entries[j].RoundsPlayed
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// InsertPenalty writes a missed-day penalty unless any score already exists
// for the pair. Returns true when a penalty was actually inserted.
func (s *ScoreService) InsertPenalty(ctx context.Context, userID, puzzleDate string) (bool, error) {
	puzzleDate, err := score.ParseDate(puzzleDate)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	newID, err := s.idGen.NewID()
	if err != nil {
		return false, fmt.Errorf("generate score id: %w", err)
	}

	now := s.now().UTC()
	inserted, err := s.scores.InsertIfAbsent(ctx, score.Score{
		ID:         newID,
		UserID:     userID,
		PuzzleDate: puzzleDate,
		Status:     score.StatusDNF,
		GolfScore:  score.PenaltyGolfScore,
		SourceText: penaltySourceText,
		Type:       score.TypePenalty,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return false, fmt.Errorf("insert penalty: %w", err)
	}
	if inserted {
		s.invalidateLeaderboard(ctx)
	}
	return inserted, nil
}

func (s *ScoreService) sharesTournament(ctx context.Context, viewerID, targetID string) (bool, error) {
	list, err := s.tournaments.ListByParticipant(ctx, viewerID)
	if err != nil {
		return false, fmt.Errorf("list viewer tournaments: %w", err)
	}
	for _, t := range list {
		if t.HasParticipant(targetID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *ScoreService) invalidateLeaderboard(ctx context.Context) {
	if s.cache != nil {
		s.cache.DeletePrefix(ctx, leaderboardCachePrefix)
	}
}

func parseDateRange(startDate, endDate string) (string, string, error) {
	start, err := score.ParseDate(startDate)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	end, err := score.ParseDate(endDate)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if end < start {
		return "", "", fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}
	return start, end, nil
}
