package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nate-sepich/par6/internal/domain/score"
	"github.com/nate-sepich/par6/internal/domain/tournament"
)

func TestTournamentService_CreateSetsInclusiveEndDate(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedUser(t, "u1", "alice")

	short, err := env.tournamentSvc.Create(context.Background(), CreateTournamentInput{
		Name: "Front Nine", StartDate: "2026-03-01", DurationDays: tournament.DurationShort, CreatedBy: "u1",
	})
	require.NoError(t, err)
	require.Equal(t, "2026-03-09", short.EndDate)
	require.Equal(t, tournament.StatusActive, short.Status)
	require.Equal(t, tournament.TypePrivate, short.Type)
	require.Equal(t, []string{"u1"}, short.Participants)

	long, err := env.tournamentSvc.Create(context.Background(), CreateTournamentInput{
		Name: "Full Round", StartDate: "2026-03-01", DurationDays: tournament.DurationLong, Type: tournament.TypePublic, CreatedBy: "u1",
	})
	require.NoError(t, err)
	require.Equal(t, "2026-03-18", long.EndDate)
	require.Equal(t, tournament.TypePublic, long.Type)
}

func TestTournamentService_CreateValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	cases := []CreateTournamentInput{
		{Name: "ab", StartDate: "2026-03-01", DurationDays: 9, CreatedBy: "u1"},
		{Name: "Valid Name", StartDate: "bad-date", DurationDays: 9, CreatedBy: "u1"},
		{Name: "Valid Name", StartDate: "2026-03-01", DurationDays: 10, CreatedBy: "u1"},
		{Name: "Valid Name", StartDate: "2026-03-01", DurationDays: 9, Type: "open", CreatedBy: "u1"},
	}
	for i, in := range cases {
		_, err := env.tournamentSvc.Create(context.Background(), in)
		require.ErrorIs(t, err, ErrInvalidInput, "case %d", i)
	}
}

func TestTournamentService_JoinByPrefix(t *testing.T) {
	t.Parallel()
	env := newTestEnv("aabbccdd11223344aabbccdd11223344", "aabbccddffffffffffffffffffffffff", "99887766554433221100998877665544")
	env.seedUser(t, "u1", "alice")
	env.seedUser(t, "u2", "bob")

	first, err := env.tournamentSvc.Create(context.Background(), CreateTournamentInput{
		Name: "First", StartDate: "2026-03-01", DurationDays: 9, CreatedBy: "u1",
	})
	require.NoError(t, err)
	_, err = env.tournamentSvc.Create(context.Background(), CreateTournamentInput{
		Name: "Second", StartDate: "2026-03-01", DurationDays: 9, CreatedBy: "u1",
	})
	require.NoError(t, err)
	third, err := env.tournamentSvc.Create(context.Background(), CreateTournamentInput{
		Name: "Third", StartDate: "2026-03-01", DurationDays: 9, CreatedBy: "u1",
	})
	require.NoError(t, err)

	// Unique prefix resolves regardless of case.
	joined, err := env.tournamentSvc.Join(context.Background(), "99887766", "u2")
	require.NoError(t, err)
	require.Equal(t, third.ID, joined.ID)
	require.True(t, joined.HasParticipant("u2"))

	// Prefix shared by two tournaments is rejected, not guessed at.
	_, err = env.tournamentSvc.Join(context.Background(), "aabbccdd", "u2")
	require.ErrorIs(t, err, ErrAmbiguousCode)

	// No match at all.
	_, err = env.tournamentSvc.Join(context.Background(), "ffffffff", "u2")
	require.ErrorIs(t, err, ErrNotFound)

	// Longer than a join code: treated as a full id.
	joined, err = env.tournamentSvc.Join(context.Background(), first.ID, "u2")
	require.NoError(t, err)
	require.Equal(t, first.ID, joined.ID)

	// Joining twice is a no-op, not an error.
	again, err := env.tournamentSvc.Join(context.Background(), first.ID, "u2")
	require.NoError(t, err)
	require.Equal(t, 2, len(again.Participants))
}

func TestTournamentService_LeaveRules(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedUser(t, "u1", "alice")
	env.seedUser(t, "u2", "bob")

	created, err := env.tournamentSvc.Create(context.Background(), CreateTournamentInput{
		Name: "March Open", StartDate: "2026-03-01", DurationDays: 9, CreatedBy: "u1",
	})
	require.NoError(t, err)
	_, err = env.tournamentSvc.Join(context.Background(), created.ID, "u2")
	require.NoError(t, err)

	err = env.tournamentSvc.Leave(context.Background(), created.ID, "u1")
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.tournamentSvc.Leave(context.Background(), created.ID, "u2"))

	err = env.tournamentSvc.Leave(context.Background(), created.ID, "u2")
	require.ErrorIs(t, err, ErrNotParticipant)

	err = env.tournamentSvc.Leave(context.Background(), "missing-tournament-id", "u2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTournamentService_SoftDeleteHidesEverywhere(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedUser(t, "u1", "alice")
	env.seedUser(t, "u2", "bob")

	created, err := env.tournamentSvc.Create(context.Background(), CreateTournamentInput{
		Name: "Doomed", StartDate: "2026-03-01", DurationDays: 9, Type: tournament.TypePublic, CreatedBy: "u1",
	})
	require.NoError(t, err)

	err = env.tournamentSvc.SoftDelete(context.Background(), created.ID, "u2")
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.tournamentSvc.SoftDelete(context.Background(), created.ID, "u1"))

	_, err = env.tournamentSvc.Get(context.Background(), created.ID, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	mine, err := env.tournamentSvc.ListMine(context.Background(), "u1")
	require.NoError(t, err)
	require.Empty(t, mine)

	public, err := env.tournamentSvc.ListPublic(context.Background(), "u1", 0, 0)
	require.NoError(t, err)
	require.Empty(t, public)

	// Deleting twice reports not found.
	err = env.tournamentSvc.SoftDelete(context.Background(), created.ID, "u1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTournamentService_StandingsOrdering(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedUser(t, "u1", "alice")
	env.seedUser(t, "u2", "bob")
	env.seedUser(t, "u3", "carol")

	created, err := env.tournamentSvc.Create(context.Background(), CreateTournamentInput{
		Name: "March Open", StartDate: "2026-03-01", DurationDays: 9, CreatedBy: "u1",
	})
	require.NoError(t, err)
	for _, userID := range []string{"u2", "u3"} {
		_, err = env.tournamentSvc.Join(context.Background(), created.ID, userID)
		require.NoError(t, err)
	}

	submit := func(userID, date string, guesses int) {
		t.Helper()
		_, err := env.scoreSvc.Submit(context.Background(), SubmitScoreInput{
			UserID: userID, PuzzleDate: date, Status: score.StatusSolved, GuessesUsed: intPtr(guesses),
		})
		require.NoError(t, err)
	}

	// u1: +5 over 2 days. u2: +5 over 3 days. u3: +3 over 1 day.
	submit("u1", "2026-03-01", 6)
	submit("u1", "2026-03-02", 6)
	submit("u2", "2026-03-01", 6)
	submit("u2", "2026-03-02", 6)
	submit("u2", "2026-03-03", 5)
	submit("u3", "2026-03-01", 6)
	submit("u3", "2026-03-02", 5)

	standings, err := env.tournamentSvc.Standings(context.Background(), created.ID, "u2")
	require.NoError(t, err)
	require.Len(t, standings, 3)

	require.Equal(t, "u3", standings[0].UserID)
	require.Equal(t, 3, standings[0].TotalScore)
	require.Equal(t, 1, standings[0].Position)

	// Tie on total score: more completed days wins.
	require.Equal(t, "u2", standings[1].UserID)
	require.Equal(t, 2, standings[1].Position)
	require.True(t, standings[1].IsCurrentUser)
	require.Equal(t, "u1", standings[2].UserID)
	require.Equal(t, 3, standings[2].Position)
}

func TestTournamentService_EndLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedUser(t, "u1", "alice")
	env.seedUser(t, "u2", "bob")

	created, err := env.tournamentSvc.Create(context.Background(), CreateTournamentInput{
		Name: "March Open", StartDate: "2026-03-01", DurationDays: 9, CreatedBy: "u1",
	})
	require.NoError(t, err)
	_, err = env.tournamentSvc.Join(context.Background(), created.ID, "u2")
	require.NoError(t, err)

	_, err = env.scoreSvc.Submit(context.Background(), SubmitScoreInput{
		UserID: "u2", PuzzleDate: "2026-03-01", Status: score.StatusSolved, GuessesUsed: intPtr(1),
	})
	require.NoError(t, err)

	// Results are unavailable while the tournament runs.
	_, err = env.tournamentSvc.FinalResults(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrStillActive)

	// Only the creator may end it.
	_, err = env.tournamentSvc.End(context.Background(), created.ID, "u2")
	require.ErrorIs(t, err, ErrForbidden)

	final, err := env.tournamentSvc.End(context.Background(), created.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, final.Winner)
	require.Equal(t, "u2", final.Winner.UserID)
	require.Equal(t, 2, final.TotalParticipants)
	require.False(t, final.Tournament.IsActive)

	// Ending twice reports the terminal state.
	_, err = env.tournamentSvc.End(context.Background(), created.ID, "u1")
	require.ErrorIs(t, err, ErrAlreadyEnded)

	results, err := env.tournamentSvc.FinalResults(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, results.Winner)
	require.Equal(t, "u2", results.Winner.UserID)
	require.Equal(t, final.EndedAt, results.EndedAt)
}

// failingMarkEnded makes one tournament un-endable to prove the sweep skips
// failures instead of aborting.
type failingMarkEnded struct {
	tournament.Repository
	failID string
}

func (r *failingMarkEnded) MarkEnded(ctx context.Context, id string, endedAt time.Time, winnerUserID string) (bool, error) {
	if id == r.failID {
		return false, fmt.Errorf("storage unavailable")
	}
	return r.Repository.MarkEnded(ctx, id, endedAt, winnerUserID)
}

func TestTournamentService_AutoExpireSweep(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedUser(t, "u1", "alice")

	mkTournament := func(name, startDate string) tournament.Tournament {
		t.Helper()
		created, err := env.tournamentSvc.Create(context.Background(), CreateTournamentInput{
			Name: name, StartDate: startDate, DurationDays: 9, CreatedBy: "u1",
		})
		require.NoError(t, err)
		return created
	}

	expired1 := mkTournament("Expired One", "2026-02-01")
	expired2 := mkTournament("Expired Two", "2026-02-10")
	running := mkTournament("Still Running", "2026-03-01")

	svc := NewTournamentService(
		env.users,
		env.scores,
		&failingMarkEnded{Repository: env.tournaments, failID: expired1.ID},
		env.idGen,
		nil,
		env.clock.Now,
	)

	ended, err := svc.AutoExpireSweep(context.Background(), "2026-03-05")
	require.NoError(t, err)
	require.Equal(t, []string{expired2.ID}, ended)

	// The healthy expired tournament is now closed; the running one is not.
	got, found, err := env.tournaments.GetByID(context.Background(), expired2.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, got.IsActive)

	got, found, err = env.tournaments.GetByID(context.Background(), running.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, got.IsActive)
}

func TestTournamentService_SearchPublic(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedUser(t, "u1", "alice")

	_, err := env.tournamentSvc.Create(context.Background(), CreateTournamentInput{
		Name: "Spring Invitational", StartDate: "2026-03-01", DurationDays: 9, Type: tournament.TypePublic, CreatedBy: "u1",
	})
	require.NoError(t, err)
	_, err = env.tournamentSvc.Create(context.Background(), CreateTournamentInput{
		Name: "Secret League", StartDate: "2026-03-01", DurationDays: 9, CreatedBy: "u1",
	})
	require.NoError(t, err)

	found, err := env.tournamentSvc.SearchPublic(context.Background(), "u1", "invit", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Spring Invitational", found[0].Tournament.Name)

	// Private tournaments never show up in search.
	none, err := env.tournamentSvc.SearchPublic(context.Background(), "u1", "secret", 0)
	require.NoError(t, err)
	require.Empty(t, none)

	_, err = env.tournamentSvc.SearchPublic(context.Background(), "u1", "  ", 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}
