package app

import (
	"time"

	"quizgame-service/internal/domain"
)

// machine holds the timing rules of the game state machine. It mutates a
// *domain.Game in place and never touches storage.
type machine struct {
	countdown time.Duration
}

// reconcile applies any time-elapsed transition that is due at now. It never
// fails and reports whether the game changed.
func (m machine) reconcile(g *domain.Game, now time.Time) bool {
	changed := false
	if g.Phase == domain.PhaseQuestionCountdown && now.Sub(g.PhaseEnteredAt) >= m.countdown {
		openQuestion(g, now)
		// Pre-advance: stands in for the advance the next NEXT_QUESTION would do.
		if g.AtQuestion < g.NumQuestions() {
			g.AtQuestion++
		}
		changed = true
	}
	if g.Phase == domain.PhaseQuestionOpen {
		q := liveQuestion(g)
		if now.Sub(g.PhaseEnteredAt) >= time.Duration(q.TimeLimit)*time.Second {
			enter(g, domain.PhaseQuestionClose, now)
			changed = true
		}
	}
	return changed
}

// apply performs an explicit action against the already reconciled game.
// Validation happens before any mutation, so on error g is untouched.
func (m machine) apply(g *domain.Game, action domain.Action, now time.Time) error {
	if g.Phase == domain.PhaseEnd {
		return domain.ErrGameEnded
	}
	switch action {
	case domain.ActionPing:
		return nil
	case domain.ActionEnd:
		enter(g, domain.PhaseEnd, now)
		g.Active = false
		g.AtQuestion = 1
		return nil
	}

	switch {
	case action == domain.ActionNextQuestion && g.Phase == domain.PhaseLobby:
		enter(g, domain.PhaseQuestionCountdown, now)
	case action == domain.ActionNextQuestion && g.Phase == domain.PhaseAnswerShow:
		if g.AtQuestion == g.LiveQuestion && g.AtQuestion < g.NumQuestions() {
			g.AtQuestion++
		}
		enter(g, domain.PhaseQuestionCountdown, now)
	case action == domain.ActionSkipCountdown && g.Phase == domain.PhaseQuestionCountdown:
		openQuestion(g, now)
	case action == domain.ActionGoToAnswer &&
		(g.Phase == domain.PhaseQuestionOpen || g.Phase == domain.PhaseQuestionClose):
		scoreQuestion(g, g.LiveQuestion)
		enter(g, domain.PhaseAnswerShow, now)
	case action == domain.ActionGoToFinalResults && g.Phase == domain.PhaseQuestionClose:
		scoreQuestion(g, g.LiveQuestion)
		enter(g, domain.PhaseFinalResults, now)
		g.AtQuestion = 1
	case action == domain.ActionGoToFinalResults && g.Phase == domain.PhaseAnswerShow:
		enter(g, domain.PhaseFinalResults, now)
		g.AtQuestion = 1
	default:
		return domain.Errorf(domain.ErrInvalidAction, "%s is not allowed in %s state", action, g.Phase)
	}
	return nil
}

func enter(g *domain.Game, phase domain.Phase, now time.Time) {
	g.Phase = phase
	g.PhaseEnteredAt = now
}

func openQuestion(g *domain.Game, now time.Time) {
	enter(g, domain.PhaseQuestionOpen, now)
	g.LiveQuestion = g.AtQuestion
	g.QuestionOpenedAt[g.AtQuestion-1] = now
}

// liveQuestion is the question whose answer window was opened last. Before
// the first opening it falls back to the reported question index.
func liveQuestion(g *domain.Game) domain.Question {
	pos := g.LiveQuestion
	if pos == 0 {
		pos = g.AtQuestion
	}
	return g.Snapshot.Questions[pos-1]
}
