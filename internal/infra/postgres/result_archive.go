package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"quizgame-service/internal/domain"
)

type gameResultRow struct {
	bun.BaseModel `bun:"table:game_results"`

	GameID     int64               `bun:"game_id,pk"`
	QuizID     string              `bun:"quiz_id,notnull"`
	QuizName   string              `bun:"quiz_name,notnull"`
	Data       domain.FinalResults `bun:"data,type:jsonb,notnull"`
	FinishedAt time.Time           `bun:"finished_at,notnull"`
}

// ResultArchive stores final game results in the game_results table.
type ResultArchive struct {
	db *bun.DB
}

func NewResultArchive(db *bun.DB) *ResultArchive {
	return &ResultArchive{db: db}
}

func (a *ResultArchive) Archive(ctx context.Context, res domain.FinalResults) error {
	row := &gameResultRow{
		GameID:     int64(res.GameID),
		QuizID:     res.QuizID,
		QuizName:   res.QuizName,
		Data:       res,
		FinishedAt: res.FinishedAt,
	}
	_, err := a.db.NewInsert().
		Model(row).
		On("CONFLICT (game_id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("finished_at = EXCLUDED.finished_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("archive game %d: %w", res.GameID, err)
	}
	return nil
}

// Get reads archived results back.
func (a *ResultArchive) Get(ctx context.Context, id domain.GameID) (domain.FinalResults, error) {
	row := new(gameResultRow)
	err := a.db.NewSelect().Model(row).Where("game_id = ?", int64(id)).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.FinalResults{}, domain.Errorf(domain.ErrGameNotFound, "no archived results for game %d", id)
	}
	if err != nil {
		return domain.FinalResults{}, fmt.Errorf("load archived game %d: %w", id, err)
	}
	return row.Data, nil
}

// ListByQuiz returns archived results of a quiz, newest first.
func (a *ResultArchive) ListByQuiz(ctx context.Context, quizID string) ([]domain.FinalResults, error) {
	var rows []gameResultRow
	err := a.db.NewSelect().Model(&rows).Where("quiz_id = ?", quizID).Order("finished_at DESC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list archived games of %s: %w", quizID, err)
	}
	out := make([]domain.FinalResults, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Data)
	}
	return out, nil
}
