package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"quizgame-service/internal/app"
	"quizgame-service/internal/config"
	"quizgame-service/internal/infra/memory"
	redisstore "quizgame-service/internal/infra/redis"
	transport "quizgame-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		Aliases: []string{"serve"},
		Short:   "Start the quiz game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), flags)
		},
	}
}

func runServer(ctx context.Context, flags *globalFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	log := slog.Default()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := flags.port
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	loader := b.quizLoader()
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	gameTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var quizRepo app.QuizRepository
	var games app.GameRepository
	if b.redis != nil {
		quizRepo = redisstore.NewQuizRepository(b.redis, loader, quizTTL)
		games = redisstore.NewGameStore(b.redis, gameTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
		games = memory.NewGameStore()
	}

	var archive app.ResultArchive = memory.NewResultArchive()
	if pgArchive, err := b.resultArchive(); err == nil {
		archive = pgArchive
	}

	service := app.NewGameService(games, quizRepo,
		app.WithLimits(cfg.Limits()),
		app.WithArchive(archive),
		app.WithLogger(log),
	)
	handler := transport.NewHandler(service,
		transport.WithLogger(log),
		transport.WithPublicURL(cfg.Server.PublicURL),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz game service", "port", finalPort, "redis", b.redis != nil, "postgres", b.db != nil, "sqlite", b.sqlite != nil)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
