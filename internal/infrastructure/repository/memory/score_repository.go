package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nate-sepich/par6/internal/domain/score"
)

// ScoreRepository is the in-memory ledger. One entry per (user, date); the
// map key enforces uniqueness and the single lock makes upsert and the
// conditional insert atomic.
type ScoreRepository struct {
	mu    sync.RWMutex
	items map[string]score.Score
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{items: make(map[string]score.Score)}
}

func scoreKey(userID, puzzleDate string) string {
	return userID + "|" + puzzleDate
}

func (r *ScoreRepository) GetByUserAndDate(_ context.Context, userID, puzzleDate string) (score.Score, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[scoreKey(userID, puzzleDate)]
	if !ok {
		return score.Score{}, false, nil
	}
	return cloneScore(s), true, nil
}

func (r *ScoreRepository) Upsert(_ context.Context, s score.Score) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[scoreKey(s.UserID, s.PuzzleDate)] = cloneScore(s)
	return nil
}

func (r *ScoreRepository) InsertIfAbsent(_ context.Context, s score.Score) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := scoreKey(s.UserID, s.PuzzleDate)
	if _, exists := r.items[key]; exists {
		return false, nil
	}
	r.items[key] = cloneScore(s)
	return true, nil
}

func (r *ScoreRepository) ListByUserInRange(_ context.Context, userID, startDate, endDate string) ([]score.Score, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []score.Score
	for _, s := range r.items {
		if s.UserID != userID {
			continue
		}
		if s.PuzzleDate < startDate || s.PuzzleDate > endDate {
			continue
		}
		out = append(out, cloneScore(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PuzzleDate < out[j].PuzzleDate })
	return out, nil
}

func (r *ScoreRepository) ListInRange(_ context.Context, startDate, endDate string) ([]score.Score, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []score.Score
	for _, s := range r.items {
		if s.PuzzleDate < startDate || s.PuzzleDate > endDate {
			continue
		}
		out = append(out, cloneScore(s))
	}
	return out, nil
}

func cloneScore(s score.Score) score.Score {
	out := s
	if s.GuessesUsed != nil {
		g := *s.GuessesUsed
		out.GuessesUsed = &g
	}
	return out
}
