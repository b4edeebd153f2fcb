package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"quizgame-service/internal/config"
	"quizgame-service/internal/domain"
	redisstore "quizgame-service/internal/infra/redis"
)

type quizFile struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	ThumbnailURL string         `yaml:"thumbnail_url"`
	Questions    []questionFile `yaml:"questions"`
}

type questionFile struct {
	ID           string       `yaml:"id"`
	Prompt       string       `yaml:"prompt"`
	TimeLimit    int          `yaml:"time_limit"`
	Points       int          `yaml:"points"`
	ThumbnailURL string       `yaml:"thumbnail_url"`
	Options      []optionFile `yaml:"options"`
}

type optionFile struct {
	ID      string `yaml:"id"`
	Text    string `yaml:"text"`
	Colour  string `yaml:"colour"`
	Correct bool   `yaml:"correct"`
}

// NewImportCmd loads quiz YAML files into the configured quiz store.
func NewImportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Import quiz definitions from YAML files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), flags.configPath, args)
		},
	}
}

func runImport(ctx context.Context, configPath string, paths []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}
	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	store, err := b.quizStore()
	if err != nil {
		return err
	}
	var cache *redisstore.QuizRepository
	if b.redis != nil {
		cache = redisstore.NewQuizRepository(b.redis, store, 0)
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		quizzes, err := parseQuizzes(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, quiz := range quizzes {
			if err := store.SaveQuiz(ctx, quiz); err != nil {
				return err
			}
			if cache != nil {
				if err := cache.Invalidate(ctx, quiz.ID); err != nil {
					slog.Warn("invalidate cached quiz failed", "quiz_id", quiz.ID, "error", err)
				}
			}
			slog.Info("quiz imported", "quiz_id", quiz.ID, "questions", len(quiz.Questions), "file", path)
		}
	}
	return nil
}

// parseQuizzes decodes one or more YAML documents into validated quizzes.
func parseQuizzes(r io.Reader) ([]domain.Quiz, error) {
	dec := yaml.NewDecoder(r)
	var out []domain.Quiz
	for {
		var qf quizFile
		err := dec.Decode(&qf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode quiz: %w", err)
		}
		quiz, err := qf.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, quiz)
	}
	if len(out) == 0 {
		return nil, errors.New("no quiz documents found")
	}
	return out, nil
}

func (qf quizFile) toDomain() (domain.Quiz, error) {
	if qf.ID == "" {
		return domain.Quiz{}, errors.New("quiz id is required")
	}
	quiz := domain.Quiz{
		ID:           qf.ID,
		Name:         qf.Name,
		Description:  qf.Description,
		ThumbnailURL: qf.ThumbnailURL,
		Questions:    make([]domain.Question, 0, len(qf.Questions)),
	}
	seenQuestions := map[string]bool{}
	for i, q := range qf.Questions {
		if q.ID == "" || seenQuestions[q.ID] {
			return domain.Quiz{}, fmt.Errorf("quiz %s: question %d needs a unique id", qf.ID, i+1)
		}
		seenQuestions[q.ID] = true
		if q.TimeLimit <= 0 {
			return domain.Quiz{}, fmt.Errorf("quiz %s: question %s needs a positive time_limit", qf.ID, q.ID)
		}
		question := domain.Question{
			ID:           q.ID,
			Prompt:       q.Prompt,
			TimeLimit:    q.TimeLimit,
			Points:       q.Points,
			ThumbnailURL: q.ThumbnailURL,
			Options:      make([]domain.Option, 0, len(q.Options)),
		}
		seenOptions := map[string]bool{}
		for _, o := range q.Options {
			if o.ID == "" || seenOptions[o.ID] {
				return domain.Quiz{}, fmt.Errorf("quiz %s: question %s has a blank or duplicate option id", qf.ID, q.ID)
			}
			seenOptions[o.ID] = true
			question.Options = append(question.Options, domain.Option{ID: o.ID, Text: o.Text, Colour: o.Colour, Correct: o.Correct})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}
