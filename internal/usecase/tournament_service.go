package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/nate-sepich/par6/internal/domain/score"
	"github.com/nate-sepich/par6/internal/domain/tournament"
	"github.com/nate-sepich/par6/internal/domain/user"
	"github.com/nate-sepich/par6/internal/platform/id"
	"github.com/nate-sepich/par6/internal/platform/logging"
)

const (
	tournamentNameMinLen = 3
	tournamentNameMaxLen = 100

	// DefaultPublicListLimit bounds public tournament listings.
	DefaultPublicListLimit = 20

	joinCodeMatchLimit = 5
)

// TournamentService owns the tournament registry, standings and lifecycle.
type TournamentService struct {
	users  user.Repository
	scores score.Repository
	repo   tournament.Repository
	idGen  id.Generator
	logger *logging.Logger
	now    func() time.Time
}

func NewTournamentService(
	users user.Repository,
	scores score.Repository,
	repo tournament.Repository,
	idGen id.Generator,
	logger *logging.Logger,
	now func() time.Time,
) *TournamentService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &TournamentService{
		users:  users,
		scores: scores,
		repo:   repo,
		idGen:  idGen,
		logger: logger,
		now:    now,
	}
}

type CreateTournamentInput struct {
	Name         string
	StartDate    string
	DurationDays int
	Type         tournament.Type
	CreatedBy    string
}

// Create registers a tournament with the creator as sole participant. The
// end date is inclusive: a 9-day tournament starting on the 1st ends on
// the 9th.
func (s *TournamentService) Create(ctx context.Context, in CreateTournamentInput) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.Create")
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if len(name) < tournamentNameMinLen || len(name) > tournamentNameMaxLen {
		return tournament.Tournament{}, fmt.Errorf("%w: name must be %d-%d characters", ErrInvalidInput, tournamentNameMinLen, tournamentNameMaxLen)
	}
	startDate, err := score.ParseDate(in.StartDate)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !tournament.ValidDuration(in.DurationDays) {
		return tournament.Tournament{}, fmt.Errorf("%w: duration must be %d or %d days", ErrInvalidInput, tournament.DurationShort, tournament.DurationLong)
	}

	kind := in.Type
	if kind == "" {
		kind = tournament.TypePrivate
	}
	if kind != tournament.TypePublic && kind != tournament.TypePrivate {
		return tournament.Tournament{}, fmt.Errorf("%w: type must be public or private", ErrInvalidInput)
	}

	newID, err := s.idGen.NewID()
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("generate tournament id: %w", err)
	}

	start, _ := time.Parse(score.DateLayout, startDate)
	t := tournament.Tournament{
		ID:           newID,
		Name:         name,
		StartDate:    startDate,
		EndDate:      start.AddDate(0, 0, in.DurationDays-1).Format(score.DateLayout),
		DurationDays: in.DurationDays,
		CreatedBy:    in.CreatedBy,
		Participants: []string{in.CreatedBy},
		CreatedAt:    s.now().UTC(),
		IsActive:     true,
		Status:       tournament.StatusActive,
		Type:         kind,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return tournament.Tournament{}, fmt.Errorf("create tournament: %w", err)
	}

	s.logger.InfoContext(ctx, "tournament created",
		"tournament_id", t.ID,
		"start_date", t.StartDate,
		"end_date", t.EndDate,
		"type", string(t.Type),
	)
	return t, nil
}

// Join adds the user by full tournament id or a short id-prefix join code.
// A code matching more than one tournament is rejected rather than guessed
// at. Joining twice is a no-op.
func (s *TournamentService) Join(ctx context.Context, ref, userID string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.Join")
	defer span.End()

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament id or join code is required", ErrInvalidInput)
	}

	t, err := s.resolve(ctx, ref)
	if err != nil {
		return tournament.Tournament{}, err
	}

	if err := s.repo.AddParticipant(ctx, t.ID, userID, s.now().UTC()); err != nil {
		return tournament.Tournament{}, fmt.Errorf("add participant: %w", err)
	}
	if !t.HasParticipant(userID) {
		t.Participants = append(t.Participants, userID)
	}

	s.logger.InfoContext(ctx, "tournament joined", "tournament_id", t.ID, "user_id", userID)
	return t, nil
}

// Leave removes the user. The creator cannot leave; ownership does not
// transfer.
func (s *TournamentService) Leave(ctx context.Context, tournamentID, userID string) error {
	t, found, err := s.repo.GetByID(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("lookup tournament: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
	}
	if t.CreatedBy == userID {
		return fmt.Errorf("%w: creator cannot leave their own tournament", ErrForbidden)
	}

	removed, err := s.repo.RemoveParticipant(ctx, tournamentID, userID)
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	if !removed {
		return fmt.Errorf("%w: user %s", ErrNotParticipant, userID)
	}
	return nil
}

// SoftDelete hides the tournament from every listing and lookup. Creator
// only. Score rows are left untouched.
func (s *TournamentService) SoftDelete(ctx context.Context, tournamentID, userID string) error {
	t, found, err := s.repo.GetByID(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("lookup tournament: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
	}
	if t.CreatedBy != userID {
		return fmt.Errorf("%w: only the creator can delete a tournament", ErrForbidden)
	}

	deleted, err := s.repo.SoftDelete(ctx, tournamentID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("soft delete tournament: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
	}

	s.logger.InfoContext(ctx, "tournament deleted", "tournament_id", tournamentID)
	return nil
}

// Get returns one tournament with live standings from the viewer's seat.
func (s *TournamentService) Get(ctx context.Context, tournamentID, viewerID string) (tournament.Summary, error) {
	t, found, err := s.repo.GetByID(ctx, tournamentID)
	if err != nil {
		return tournament.Summary{}, fmt.Errorf("lookup tournament: %w", err)
	}
	if !found {
		return tournament.Summary{}, fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
	}
	return s.summarize(ctx, t, viewerID)
}

// ListMine returns summaries for every tournament the user participates in.
func (s *TournamentService) ListMine(ctx context.Context, userID string) ([]tournament.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.ListMine")
	defer span.End()

	list, err := s.repo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return s.summarizeAll(ctx, list, userID)
}

// ListPublic pages through open tournaments.
func (s *TournamentService) ListPublic(ctx context.Context, viewerID string, limit, offset int) ([]tournament.Summary, error) {
	if limit <= 0 || limit > DefaultPublicListLimit {
		limit = DefaultPublicListLimit
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.repo.ListPublic(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list public tournaments: %w", err)
	}
	return s.summarizeAll(ctx, list, viewerID)
}

// SearchPublic finds open tournaments by name substring.
func (s *TournamentService) SearchPublic(ctx context.Context, viewerID, query string, limit int) ([]tournament.Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > DefaultPublicListLimit {
		limit = DefaultPublicListLimit
	}
	list, err := s.repo.SearchPublic(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search public tournaments: %w", err)
	}
	return s.summarizeAll(ctx, list, viewerID)
}

// Standings computes the live ranking. Lower total golf score ranks first;
// more completed days breaks ties, then user id keeps the order stable.
func (s *TournamentService) Standings(ctx context.Context, tournamentID, viewerID string) ([]tournament.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.Standings")
	defer span.End()

	t, found, err := s.repo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("lookup tournament: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
	}
	return s.computeStandings(ctx, t, viewerID)
}

// End closes the tournament and records the winner. Creator only. The
// underlying write is conditional on the tournament still being active, so
// concurrent End calls produce exactly one winner.
func (s *TournamentService) End(ctx context.Context, tournamentID, requesterID string) (tournament.FinalResults, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.End")
	defer span.End()

	t, found, err := s.repo.GetByID(ctx, tournamentID)
	if err != nil {
		return tournament.FinalResults{}, fmt.Errorf("lookup tournament: %w", err)
	}
	if !found {
		return tournament.FinalResults{}, fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
	}
	if t.CreatedBy != requesterID {
		return tournament.FinalResults{}, fmt.Errorf("%w: only the creator can end a tournament", ErrForbidden)
	}
	if !t.IsActive {
		return tournament.FinalResults{}, fmt.Errorf("%w: tournament %s", ErrAlreadyEnded, tournamentID)
	}

	standings, err := s.computeStandings(ctx, t, requesterID)
	if err != nil {
		return tournament.FinalResults{}, err
	}

	var winner *tournament.Standing
	winnerID := ""
	if len(standings) > 0 {
		winner = &standings[0]
		winnerID = winner.UserID
	}

	endedAt := s.now().UTC()
	ended, err := s.repo.MarkEnded(ctx, t.ID, endedAt, winnerID)
	if err != nil {
		return tournament.FinalResults{}, fmt.Errorf("mark tournament ended: %w", err)
	}
	if !ended {
		return tournament.FinalResults{}, fmt.Errorf("%w: tournament %s", ErrAlreadyEnded, tournamentID)
	}

	t.IsActive = false
	t.Status = tournament.StatusEnded
	t.EndedAt = &endedAt
	t.WinnerUserID = winnerID

	s.logger.InfoContext(ctx, "tournament ended",
		"tournament_id", t.ID,
		"winner_user_id", winnerID,
		"participants", len(t.Participants),
	)

	return tournament.FinalResults{
		Tournament:        t,
		Winner:            winner,
		FinalStandings:    standings,
		EndedAt:           endedAt,
		TotalParticipants: len(t.Participants),
		CompletedDays:     t.DurationDays,
	}, nil
}

// FinalResults reports an ended tournament: standings recomputed live,
// winner and end time as persisted by End.
func (s *TournamentService) FinalResults(ctx context.Context, tournamentID string) (tournament.FinalResults, error) {
	t, found, err := s.repo.GetByID(ctx, tournamentID)
	if err != nil {
		return tournament.FinalResults{}, fmt.Errorf("lookup tournament: %w", err)
	}
	if !found {
		return tournament.FinalResults{}, fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
	}
	if t.IsActive {
		return tournament.FinalResults{}, fmt.Errorf("%w: tournament %s has not ended", ErrStillActive, tournamentID)
	}

	standings, err := s.computeStandings(ctx, t, t.CreatedBy)
	if err != nil {
		return tournament.FinalResults{}, err
	}

	var winner *tournament.Standing
	for i := range standings {
		if standings[i].UserID == t.WinnerUserID {
			winner = &standings[i]
			break
		}
	}
	if winner == nil && len(standings) > 0 {
		winner = &standings[0]
	}

	endedAt := time.Time{}
	if t.EndedAt != nil {
		endedAt = *t.EndedAt
	}

	return tournament.FinalResults{
		Tournament:        t,
		Winner:            winner,
		FinalStandings:    standings,
		EndedAt:           endedAt,
		TotalParticipants: len(t.Participants),
		CompletedDays:     t.DurationDays,
	}, nil
}

// AutoExpireSweep ends every active tournament whose end date has passed,
// acting as each creator. One bad tournament does not stop the sweep; its
// failure is logged and the rest proceed. Returns the ids that were ended.
func (s *TournamentService) AutoExpireSweep(ctx context.Context, today string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.AutoExpireSweep")
	defer span.End()

	if strings.TrimSpace(today) == "" {
		today = s.now().UTC().Format(score.DateLayout)
	}
	today, err := score.ParseDate(today)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	expired, err := s.repo.ListActiveEndedBefore(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list expired tournaments: %w", err)
	}

	ended := make([]string, 0, len(expired))
	for _, t := range expired {
		if _, err := s.End(ctx, t.ID, t.CreatedBy); err != nil {
			s.logger.WarnContext(ctx, "auto-expire failed, skipping tournament",
				"tournament_id", t.ID,
				"error", err,
			)
			continue
		}
		ended = append(ended, t.ID)
	}

	s.logger.InfoContext(ctx, "auto-expire sweep finished",
		"candidates", len(expired),
		"ended", len(ended),
	)
	return ended, nil
}

func (s *TournamentService) resolve(ctx context.Context, ref string) (tournament.Tournament, error) {
	if len(ref) <= tournament.JoinCodeMaxLen {
		matches, err := s.repo.FindByIDPrefix(ctx, strings.ToLower(ref), joinCodeMatchLimit)
		if err != nil {
			return tournament.Tournament{}, fmt.Errorf("resolve join code: %w", err)
		}
		switch len(matches) {
		case 0:
			return tournament.Tournament{}, fmt.Errorf("%w: no tournament matches code %s", ErrNotFound, ref)
		case 1:
			return matches[0], nil
		default:
			return tournament.Tournament{}, fmt.Errorf("%w: code %s", ErrAmbiguousCode, ref)
		}
	}

	t, found, err := s.repo.GetByID(ctx, ref)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("lookup tournament: %w", err)
	}
	if !found {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament %s", ErrNotFound, ref)
	}
	return t, nil
}

func (s *TournamentService) summarize(ctx context.Context, t tournament.Tournament, viewerID string) (tournament.Summary, error) {
	standings, err := s.computeStandings(ctx, t, viewerID)
	if err != nil {
		return tournament.Summary{}, err
	}
	return tournament.Summary{
		Tournament:        t,
		Standings:         standings,
		UserParticipating: t.HasParticipant(viewerID),
		TotalParticipants: len(t.Participants),
	}, nil
}

func (s *TournamentService) summarizeAll(ctx context.Context, list []tournament.Tournament, viewerID string) ([]tournament.Summary, error) {
	out := make([]tournament.Summary, 0, len(list))
	for _, t := range list {
		summary, err := s.summarize(ctx, t, viewerID)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

type participantTally struct {
	userID        string
	handle        string
	totalScore    int
	completedDays int
	missing       bool
}

// computeStandings fans the per-participant ledger reads out over a worker
// pool; each participant needs a user lookup plus a ranged score scan.
func (s *TournamentService) computeStandings(ctx context.Context, t tournament.Tournament, viewerID string) ([]tournament.Standing, error) {
	p := pool.NewWithResults[participantTally]().WithContext(ctx).WithMaxGoroutines(8)
	for _, userID := range t.Participants {
		userID := userID
		p.Go(func(ctx context.Context) (participantTally, error) {
			u, found, err := s.users.GetByID(ctx, userID)
			if err != nil {
				return participantTally{}, fmt.Errorf("lookup participant %s: %w", userID, err)
			}
			if !found {
				return participantTally{missing: true}, nil
			}

			rows, err := s.scores.ListByUserInRange(ctx, userID, t.StartDate, t.EndDate)
			if err != nil {
				return participantTally{}, fmt.Errorf("list participant scores: %w", err)
			}

			tally := participantTally{userID: userID, handle: u.Handle}
			for _, row := range rows {
				tally.totalScore += row.GolfScore
				tally.completedDays++
			}
			return tally, nil
		})
	}

	tallies, err := p.Wait()
	if err != nil {
		return nil, err
	}

	standings := make([]tournament.Standing, 0, len(tallies))
	for _, tally := range tallies {
		if tally.missing {
			continue
		}
		standings = append(standings, tournament.Standing{
			UserID:        tally.userID,
			Handle:        tally.handle,
			TotalScore:    tally.totalScore,
			CompletedDays: tally.completedDays,
			IsCurrentUser: tally.userID == viewerID,
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].TotalScore != standings[j].TotalScore {
			return standings[i].TotalScore < standings[j].TotalScore
		}
		if standings[i].CompletedDays != standings[j].CompletedDays {
			return standings[i].CompletedDays > standings[j].CompletedDays
		}
		return standings[i].UserID < standings[j].UserID
	})
	for i := range standings {
		standings[i].Position = i + 1
	}
	return standings, nil
}
