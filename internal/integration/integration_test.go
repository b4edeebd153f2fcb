package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quizgame-service/internal/app"
	"quizgame-service/internal/domain"
	pgstore "quizgame-service/internal/infra/postgres"
	pgmigrations "quizgame-service/internal/infra/postgres/migrations"
	infraredis "quizgame-service/internal/infra/redis"
)

func TestGameFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(pgURL))), pgdialect.New())
	defer db.Close()
	migrateDB(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewQuizLoader(pool)
	if err := loader.SaveQuiz(ctx, sampleQuiz()); err != nil {
		t.Fatalf("save quiz: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	archive := pgstore.NewResultArchive(db)
	newService := func() *app.GameService {
		return app.NewGameService(
			infraredis.NewGameStore(redisClient, 5*time.Minute),
			infraredis.NewQuizRepository(redisClient, loader, 5*time.Minute),
			app.WithArchive(archive),
		)
	}
	service := newService()

	gameID, err := service.StartGame(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	alice, err := service.Join(ctx, gameID, "Alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	bob, err := service.Join(ctx, gameID, "Bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	for _, action := range []domain.Action{domain.ActionNextQuestion, domain.ActionSkipCountdown} {
		if err := service.ApplyAction(ctx, gameID, action); err != nil {
			t.Fatalf("%s: %v", action, err)
		}
	}
	if err := service.SubmitAnswer(ctx, bob, 1, []string{"o2"}); err != nil {
		t.Fatalf("submit bob: %v", err)
	}
	if err := service.SubmitAnswer(ctx, alice, 1, []string{"o2"}); err != nil {
		t.Fatalf("submit alice: %v", err)
	}
	for _, action := range []domain.Action{domain.ActionGoToAnswer, domain.ActionGoToFinalResults} {
		if err := service.ApplyAction(ctx, gameID, action); err != nil {
			t.Fatalf("%s: %v", action, err)
		}
	}

	// A second instance on the same Redis sees the stored game.
	results, err := newService().GameResults(ctx, gameID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	lb := results.UsersRankedByScore
	if len(lb) != 2 || lb[0].PlayerName != "Bob" || lb[0].Score != 10 || lb[1].Score != 5 {
		t.Fatalf("expected Bob 10 then Alice 5, got %+v", lb)
	}

	archived, err := archive.Get(ctx, gameID)
	if err != nil {
		t.Fatalf("archived results: %v", err)
	}
	if archived.QuizName != "Maths" || len(archived.Leaderboard) != 2 {
		t.Fatalf("unexpected archived results %+v", archived)
	}
	byQuiz, err := archive.ListByQuiz(ctx, "quiz-1")
	if err != nil || len(byQuiz) != 1 {
		t.Fatalf("expected one archived game, got %d (%v)", len(byQuiz), err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:   "quiz-1",
		Name: "Maths",
		Questions: []domain.Question{
			{
				ID:        "q1",
				Prompt:    "What is 2 + 2?",
				TimeLimit: 60,
				Points:    10,
				Options: []domain.Option{
					{ID: "o1", Text: "3", Correct: false},
					{ID: "o2", Text: "4", Correct: true},
					{ID: "o3", Text: "5", Correct: false},
				},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
