package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"quizgame-service/internal/domain"
)

// QuizStore keeps quiz documents in a local SQLite file. It satisfies the
// memory.QuizLoader and redis.QuizLoader interfaces.
type QuizStore struct {
	db *sql.DB
}

func NewQuizStore(path string) (*QuizStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "quizzes.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &QuizStore{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *QuizStore) Close() error {
	return s.db.Close()
}

func (s *QuizStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS quizzes (
		quiz_id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at_unix INTEGER NOT NULL
	);`)
	return err
}

// SaveQuiz inserts or replaces a quiz document.
func (s *QuizStore) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	if quiz.ID == "" {
		return errors.New("quiz id is required")
	}
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quizzes (quiz_id, data, updated_at_unix) VALUES (?, ?, ?)
		 ON CONFLICT(quiz_id) DO UPDATE SET data = excluded.data, updated_at_unix = excluded.updated_at_unix`,
		quiz.ID, string(data), time.Now().UTC().UnixNano())
	return err
}

func (s *QuizStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM quizzes WHERE quiz_id = ?`, quizID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.Errorf(domain.ErrQuizNotFound, "quiz %s", quizID)
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}
