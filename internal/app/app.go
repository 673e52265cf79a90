package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nate-sepich/par6/internal/config"
	"github.com/nate-sepich/par6/internal/domain/score"
	"github.com/nate-sepich/par6/internal/domain/tournament"
	"github.com/nate-sepich/par6/internal/domain/user"
	"github.com/nate-sepich/par6/internal/infrastructure/repository/memory"
	"github.com/nate-sepich/par6/internal/infrastructure/repository/postgres"
	"github.com/nate-sepich/par6/internal/interfaces/httpapi"
	"github.com/nate-sepich/par6/internal/platform/cache"
	idgen "github.com/nate-sepich/par6/internal/platform/id"
	"github.com/nate-sepich/par6/internal/platform/logging"
	"github.com/nate-sepich/par6/internal/usecase"
)

type repositories struct {
	users       user.Repository
	sessions    user.SessionRepository
	scores      score.Repository
	tournaments tournament.Repository
}

// NewHTTPServer wires repositories, services and the HTTP router. The
// returned cleanup closes backend resources and must run on shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	repos, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var cacheStore *cache.Store
	if cfg.CacheEnabled {
		cacheStore = cache.NewStore(cfg.CacheTTL)
	}

	idGen := idgen.NewRandomGenerator()
	now := time.Now

	userSvc := usecase.NewUserService(repos.users, repos.sessions, idGen, logger, now)
	scoreSvc := usecase.NewScoreService(repos.users, repos.scores, repos.tournaments, cacheStore, idGen, logger, now)
	tournamentSvc := usecase.NewTournamentService(repos.users, repos.scores, repos.tournaments, idGen, logger, now)
	penaltySvc := usecase.NewPenaltyService(repos.scores, scoreSvc, logger, now, cfg.PenaltyWorkerCount)

	handler := httpapi.NewHandler(userSvc, scoreSvc, tournamentSvc, penaltySvc, logger)
	router := httpapi.NewRouter(handler, userSvc, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanupQuietly(cleanup, logger)
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, func() error, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := openDB(cfg)
		if err != nil {
			return repositories{}, nil, fmt.Errorf("open database: %w", err)
		}
		logger.Info("storage backend ready", "backend", cfg.StorageBackend, "db_name", dbNameFromURL(cfg.DBURL))

		return repositories{
			users:       postgres.NewUserRepository(db),
			sessions:    postgres.NewSessionRepository(db),
			scores:      postgres.NewScoreRepository(db),
			tournaments: postgres.NewTournamentRepository(db),
		}, db.Close, nil
	default:
		logger.Info("storage backend ready", "backend", config.StorageMemory)

		return repositories{
			users:       memory.NewUserRepository(),
			sessions:    memory.NewSessionRepository(),
			scores:      memory.NewScoreRepository(),
			tournaments: memory.NewTournamentRepository(),
		}, func() error { return nil }, nil
	}
}

func cleanupQuietly(cleanup func() error, logger *logging.Logger) {
	if cleanup == nil {
		return
	}
	if err := cleanup(); err != nil {
		logger.Warn("cleanup failed", "error", err)
	}
}
