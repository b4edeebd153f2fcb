package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"quizgame-service/internal/domain"
)

func TestGameStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewGameStore(newClient(mr), time.Minute)

	id, err := store.NextGameID(ctx)
	if err != nil || id != 1 {
		t.Fatalf("expected game id 1, got %d (%v)", id, err)
	}
	pid, err := store.NextPlayerID(ctx)
	if err != nil || pid != 1 {
		t.Fatalf("expected player id 1, got %d (%v)", pid, err)
	}

	opened := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	g := &domain.Game{
		ID:               id,
		QuizID:           "quiz-1",
		Phase:            domain.PhaseQuestionOpen,
		Active:           true,
		PhaseEnteredAt:   opened,
		AtQuestion:       1,
		LiveQuestion:     1,
		QuestionOpenedAt: []time.Time{opened},
		Snapshot:         sampleQuiz(),
		Players:          []domain.Player{{ID: pid, Name: "Alice", Score: 2.5}},
		Results: []domain.QuestionResult{{
			QuestionID: "q1",
			Submissions: []domain.Submission{{
				PlayerID: pid, PlayerName: "Alice", Answers: domain.AnswerSet{"o2"}, Correct: true, TimeTakenMs: 1200, Seq: 1,
			}},
		}},
		SubmissionSeq: 1,
	}
	if err := store.PutGame(ctx, g); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("quizgame:game:1") || !mr.Exists("quizgame:player:1") {
		t.Fatalf("expected game and player keys to be set")
	}
	if ttl := mr.TTL("quizgame:game:1"); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %s", ttl)
	}

	got, err := store.GetGame(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Phase != domain.PhaseQuestionOpen || got.Players[0].Score != 2.5 {
		t.Fatalf("unexpected game after round trip: %+v", got)
	}
	sub := got.Results[0].Submissions[0]
	if !sub.Answers.Equal(domain.AnswerSet{"o2"}) || sub.Seq != 1 || sub.TimeTakenMs != 1200 {
		t.Fatalf("unexpected submission after round trip: %+v", sub)
	}
	if !got.QuestionOpenedAt[0].Equal(opened) {
		t.Fatalf("expected open time %s, got %s", opened, got.QuestionOpenedAt[0])
	}

	gameID, err := store.GameIDForPlayer(ctx, pid)
	if err != nil || gameID != id {
		t.Fatalf("expected player in game %d, got %d (%v)", id, gameID, err)
	}

	games, err := store.ListGames(ctx, "quiz-1")
	if err != nil || len(games) != 1 || games[0].ID != id {
		t.Fatalf("expected one listed game, got %v (%v)", games, err)
	}
}

func TestGameStoreMissing(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewGameStore(newClient(mr), 0)
	if _, err := store.GetGame(context.Background(), 42); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected game not found, got %v", err)
	}
	if _, err := store.GameIDForPlayer(context.Background(), 42); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected player not found, got %v", err)
	}
	games, err := store.ListGames(context.Background(), "nothing")
	if err != nil || len(games) != 0 {
		t.Fatalf("expected empty list, got %v (%v)", games, err)
	}
}
