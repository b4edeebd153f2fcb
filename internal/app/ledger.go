package app

import (
	"time"

	"quizgame-service/internal/domain"
)

// recordSubmission validates and stores a player's answer for the question
// at position. A later submission from the same player replaces the earlier
// one in place.
func recordSubmission(g *domain.Game, player *domain.Player, position int, ids []string, now time.Time) error {
	answers, err := domain.NewAnswerSet(ids)
	if err != nil {
		return err
	}
	if position < 1 || position > g.NumQuestions() {
		return domain.Errorf(domain.ErrInvalidQuestionPosition, "position %d outside 1..%d", position, g.NumQuestions())
	}
	if g.Phase != domain.PhaseQuestionOpen {
		return domain.Errorf(domain.ErrWrongPhase, "game is in %s state, answers need %s", g.Phase, domain.PhaseQuestionOpen)
	}
	if position != g.AtQuestion {
		return domain.Errorf(domain.ErrWrongQuestion, "game is on question %d", g.AtQuestion)
	}

	live := g.LiveQuestion
	q := g.Snapshot.Questions[live-1]
	for _, id := range answers {
		if !q.HasOption(id) {
			return domain.Errorf(domain.ErrUnknownAnswerID, "%q", id)
		}
	}

	g.SubmissionSeq++
	sub := domain.Submission{
		PlayerID:    player.ID,
		PlayerName:  player.Name,
		Answers:     answers,
		Correct:     answers.Equal(q.CorrectSet()),
		TimeTakenMs: now.Sub(g.QuestionOpenedAt[live-1]).Milliseconds(),
		Seq:         g.SubmissionSeq,
	}

	r := &g.Results[live-1]
	replaced := false
	for i := range r.Submissions {
		if r.Submissions[i].PlayerID == player.ID {
			r.Submissions[i] = sub
			replaced = true
			break
		}
	}
	if !replaced {
		r.Submissions = append(r.Submissions, sub)
	}
	recomputeResult(r, q)
	return nil
}
