package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nate-sepich/par6/internal/domain/user"
	"github.com/nate-sepich/par6/internal/infrastructure/repository/memory"
)

// seqIDGen hands out predictable ids so tests can exercise prefix matching.
type seqIDGen struct {
	mu  sync.Mutex
	ids []string
	n   int
}

func (g *seqIDGen) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.n < len(g.ids) {
		id := g.ids[g.n]
		g.n++
		return id, nil
	}
	g.n++
	return fmt.Sprintf("generated-%04d", g.n), nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{t: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	users       *memory.UserRepository
	sessions    *memory.SessionRepository
	scores      *memory.ScoreRepository
	tournaments *memory.TournamentRepository
	clock       *testClock
	idGen       *seqIDGen

	userSvc       *UserService
	scoreSvc      *ScoreService
	tournamentSvc *TournamentService
	penaltySvc    *PenaltyService
}

func newTestEnv(ids ...string) *testEnv {
	env := &testEnv{
		users:       memory.NewUserRepository(),
		sessions:    memory.NewSessionRepository(),
		scores:      memory.NewScoreRepository(),
		tournaments: memory.NewTournamentRepository(),
		clock:       newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		idGen:       &seqIDGen{ids: ids},
	}
	env.userSvc = NewUserService(env.users, env.sessions, env.idGen, nil, env.clock.Now)
	env.scoreSvc = NewScoreService(env.users, env.scores, env.tournaments, nil, env.idGen, nil, env.clock.Now)
	env.tournamentSvc = NewTournamentService(env.users, env.scores, env.tournaments, env.idGen, nil, env.clock.Now)
	env.penaltySvc = NewPenaltyService(env.scores, env.scoreSvc, nil, env.clock.Now, 4)
	return env
}

func (env *testEnv) seedUser(t *testing.T, id, handle string) {
	t.Helper()
	err := env.users.Create(context.Background(), user.User{
		ID:          id,
		Handle:      handle,
		HandleLower: strings.ToLower(handle),
		CreatedAt:   env.clock.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func intPtr(v int) *int { return &v }
