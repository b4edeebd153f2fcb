package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"quizgame-service/internal/config"
	"quizgame-service/internal/domain"
	"quizgame-service/internal/infra/memory"
	pgstore "quizgame-service/internal/infra/postgres"
	"quizgame-service/internal/infra/sqlite"
)

// backends holds the optional external stores named in the config.
type backends struct {
	pool   *pgxpool.Pool
	db     *bun.DB
	sqlite *sqlite.QuizStore
	redis  *redis.Client
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
		b.db = openBun(cfg.Postgres.URL)
	}
	if cfg.SQLite.Path != "" {
		store, err := sqlite.NewQuizStore(cfg.SQLite.Path)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.sqlite = store
	}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return b, nil
}

func openBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (b *backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
	if b.sqlite != nil {
		_ = b.sqlite.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

type quizStore interface {
	memory.QuizLoader
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
}

// quizStore picks the durable quiz store: postgres first, then sqlite.
func (b *backends) quizStore() (quizStore, error) {
	switch {
	case b.pool != nil:
		return pgstore.NewQuizLoader(b.pool), nil
	case b.sqlite != nil:
		return b.sqlite, nil
	default:
		return nil, errors.New("no quiz store configured: set postgres.url or sqlite.path")
	}
}

// quizLoader falls back to the built-in sample quizzes when no store is set.
func (b *backends) quizLoader() memory.QuizLoader {
	store, err := b.quizStore()
	if err != nil {
		slog.Warn("no quiz store configured, serving sample quizzes")
		return memory.NewStaticQuizLoader(sampleQuizzes())
	}
	return store
}

func (b *backends) resultArchive() (*pgstore.ResultArchive, error) {
	if b.db == nil {
		return nil, errors.New("results archive needs postgres.url")
	}
	return pgstore.NewResultArchive(b.db), nil
}

// sampleQuizzes provides a minimal quiz so the service runs without a store.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:   "quiz-1",
			Name: "Warm up",
			Questions: []domain.Question{
				{
					ID:        "q1",
					Prompt:    "What is 2 + 2?",
					TimeLimit: 10,
					Points:    5,
					Options: []domain.Option{
						{ID: "o1", Text: "3", Colour: "red"},
						{ID: "o2", Text: "4", Colour: "green", Correct: true},
						{ID: "o3", Text: "5", Colour: "blue"},
					},
				},
				{
					ID:        "q2",
					Prompt:    "Which of these are primes?",
					TimeLimit: 15,
					Points:    10,
					Options: []domain.Option{
						{ID: "o1", Text: "2", Colour: "red", Correct: true},
						{ID: "o2", Text: "4", Colour: "green"},
						{ID: "o3", Text: "7", Colour: "blue", Correct: true},
					},
				},
			},
		},
	}
}
