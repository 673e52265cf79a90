package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nate-sepich/par6/internal/domain/score"
)

func TestPenaltyService_AppliesToActiveUsersWhoMissedTheDay(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedUser(t, "played", "alice")
	env.seedUser(t, "missed", "bob")
	env.seedUser(t, "stale", "carol")

	submit := func(userID, date string) {
		t.Helper()
		_, err := env.scoreSvc.Submit(context.Background(), SubmitScoreInput{
			UserID: userID, PuzzleDate: date, Status: score.StatusSolved, GuessesUsed: intPtr(4),
		})
		require.NoError(t, err)
	}

	// Active in the window and scored today.
	submit("played", "2026-03-10")
	// Active in the window but no score today.
	submit("missed", "2026-03-05")
	// Last score outside the 7-day window: no longer active.
	submit("stale", "2026-03-01")

	run, err := env.penaltySvc.ApplyDailyPenalties(context.Background(), "2026-03-10")
	require.NoError(t, err)
	require.Equal(t, "2026-03-10", run.PuzzleDate)
	require.Equal(t, 2, run.ActiveUsers)
	require.Equal(t, 1, run.PenaltiesApplied)
	require.Equal(t, 0, run.Failed)

	penalty, found, err := env.scores.GetByUserAndDate(context.Background(), "missed", "2026-03-10")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, score.StatusDNF, penalty.Status)
	require.Equal(t, score.TypePenalty, penalty.Type)
	require.Equal(t, score.PenaltyGolfScore, penalty.GolfScore)
	require.Nil(t, penalty.GuessesUsed)

	_, found, err = env.scores.GetByUserAndDate(context.Background(), "stale", "2026-03-10")
	require.NoError(t, err)
	require.False(t, found)
}

func TestPenaltyService_RerunAppliesNothing(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedUser(t, "missed", "bob")

	_, err := env.scoreSvc.Submit(context.Background(), SubmitScoreInput{
		UserID: "missed", PuzzleDate: "2026-03-09", Status: score.StatusSolved, GuessesUsed: intPtr(4),
	})
	require.NoError(t, err)

	first, err := env.penaltySvc.ApplyDailyPenalties(context.Background(), "2026-03-10")
	require.NoError(t, err)
	require.Equal(t, 1, first.PenaltiesApplied)

	second, err := env.penaltySvc.ApplyDailyPenalties(context.Background(), "2026-03-10")
	require.NoError(t, err)
	require.Equal(t, 0, second.PenaltiesApplied)
	require.Equal(t, 0, second.Failed)
}

func TestPenaltyService_RejectsBadDate(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	_, err := env.penaltySvc.ApplyDailyPenalties(context.Background(), "not-a-date")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPenaltyService_EmptyDateDefaultsToToday(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedUser(t, "missed", "bob")

	// Clock is 2026-03-01; seed activity on the day before.
	_, err := env.scoreSvc.Submit(context.Background(), SubmitScoreInput{
		UserID: "missed", PuzzleDate: "2026-02-28", Status: score.StatusSolved, GuessesUsed: intPtr(4),
	})
	require.NoError(t, err)

	run, err := env.penaltySvc.ApplyDailyPenalties(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "2026-03-01", run.PuzzleDate)
	require.Equal(t, 1, run.PenaltiesApplied)
}
