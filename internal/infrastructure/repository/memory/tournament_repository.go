package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nate-sepich/par6/internal/domain/tournament"
)

// TournamentRepository keeps tournaments and the by-participant index under
// one lock, so participant changes stay atomic with the index.
type TournamentRepository struct {
	mu            sync.RWMutex
	items         map[string]tournament.Tournament
	byParticipant map[string]map[string]struct{}
}

func NewTournamentRepository() *TournamentRepository {
	return &TournamentRepository{
		items:         make(map[string]tournament.Tournament),
		byParticipant: make(map[string]map[string]struct{}),
	}
}

func (r *TournamentRepository) Create(_ context.Context, t tournament.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[t.ID] = cloneTournament(t)
	for _, userID := range t.Participants {
		r.indexLocked(userID, t.ID)
	}
	return nil
}

func (r *TournamentRepository) GetByID(_ context.Context, id string) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok || t.DeletedAt != nil {
		return tournament.Tournament{}, false, nil
	}
	return cloneTournament(t), true, nil
}

func (r *TournamentRepository) FindByIDPrefix(_ context.Context, prefix string, limit int) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix = strings.ToLower(prefix)
	var out []tournament.Tournament
	for _, t := range r.items {
		if t.DeletedAt != nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(t.ID), prefix) {
			out = append(out, cloneTournament(t))
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TournamentRepository) AddParticipant(_ context.Context, tournamentID, userID string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[tournamentID]
	if !ok || t.DeletedAt != nil {
		return nil
	}
	if !t.HasParticipant(userID) {
		t.Participants = append(append([]string(nil), t.Participants...), userID)
		r.items[tournamentID] = t
	}
	r.indexLocked(userID, tournamentID)
	return nil
}

func (r *TournamentRepository) RemoveParticipant(_ context.Context, tournamentID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[tournamentID]
	if !ok || t.DeletedAt != nil || !t.HasParticipant(userID) {
		return false, nil
	}

	kept := make([]string, 0, len(t.Participants)-1)
	for _, id := range t.Participants {
		if id != userID {
			kept = append(kept, id)
		}
	}
	t.Participants = kept
	r.items[tournamentID] = t

	if set, ok := r.byParticipant[userID]; ok {
		delete(set, tournamentID)
		if len(set) == 0 {
			delete(r.byParticipant, userID)
		}
	}
	return true, nil
}

func (r *TournamentRepository) ListByParticipant(_ context.Context, userID string) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []tournament.Tournament
	for tournamentID := range r.byParticipant[userID] {
		t, ok := r.items[tournamentID]
		if !ok || t.DeletedAt != nil {
			continue
		}
		out = append(out, cloneTournament(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TournamentRepository) ListPublic(_ context.Context, limit, offset int) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []tournament.Tournament
	for _, t := range r.items {
		if t.DeletedAt != nil || t.Type != tournament.TypePublic {
			continue
		}
		all = append(all, cloneTournament(t))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *TournamentRepository) SearchPublic(_ context.Context, query string, limit int) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(query)
	var out []tournament.Tournament
	for _, t := range r.items {
		if t.DeletedAt != nil || t.Type != tournament.TypePublic {
			continue
		}
		if strings.Contains(strings.ToLower(t.Name), query) {
			out = append(out, cloneTournament(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *TournamentRepository) ListActiveEndedBefore(_ context.Context, date string) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []tournament.Tournament
	for _, t := range r.items {
		if t.DeletedAt != nil || !t.IsActive {
			continue
		}
		if t.EndDate < date {
			out = append(out, cloneTournament(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TournamentRepository) MarkEnded(_ context.Context, id string, endedAt time.Time, winnerUserID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.DeletedAt != nil || !t.IsActive {
		return false, nil
	}
	t.IsActive = false
	t.Status = tournament.StatusEnded
	t.EndedAt = &endedAt
	t.WinnerUserID = winnerUserID
	r.items[id] = t
	return true, nil
}

func (r *TournamentRepository) SoftDelete(_ context.Context, id string, deletedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.DeletedAt != nil {
		return false, nil
	}
	t.IsActive = false
	t.DeletedAt = &deletedAt
	r.items[id] = t
	return true, nil
}

func (r *TournamentRepository) indexLocked(userID, tournamentID string) {
	set, ok := r.byParticipant[userID]
	if !ok {
		set = make(map[string]struct{})
		r.byParticipant[userID] = set
	}
	set[tournamentID] = struct{}{}
}

func cloneTournament(t tournament.Tournament) tournament.Tournament {
	out := t
	out.Participants = append([]string(nil), t.Participants...)
	if t.EndedAt != nil {
		v := *t.EndedAt
		out.EndedAt = &v
	}
	if t.DeletedAt != nil {
		v := *t.DeletedAt
		out.DeletedAt = &v
	}
	return out
}
