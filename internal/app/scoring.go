package app

import (
	"sort"

	"quizgame-service/internal/domain"
)

// recomputeResult rebuilds the aggregates of r from its ledger. Correctness is
// re-derived against q so the result is a pure function of the ledger.
func recomputeResult(r *domain.QuestionResult, q domain.Question) {
	correctSet := q.CorrectSet()
	var total int64
	for i := range r.Submissions {
		r.Submissions[i].Correct = r.Submissions[i].Answers.Equal(correctSet)
		total += r.Submissions[i].TimeTakenMs
	}

	ordered := correctInOrder(r.Submissions)
	r.PlayersCorrect = make([]string, 0, len(ordered))
	for _, sub := range ordered {
		r.PlayersCorrect = append(r.PlayersCorrect, sub.PlayerName)
	}

	n := len(r.Submissions)
	if n == 0 {
		r.AverageAnswerTimeMs = 0
		r.PercentCorrect = 0
		return
	}
	r.AverageAnswerTimeMs = float64(total) / float64(n)
	r.PercentCorrect = float64(len(ordered)) / float64(n) * 100
}

// correctInOrder returns the correct submissions, first recorded first.
func correctInOrder(subs []domain.Submission) []domain.Submission {
	out := make([]domain.Submission, 0, len(subs))
	for _, s := range subs {
		if s.Correct {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// scoreQuestion awards points for the question at position: the k-th correct
// submitter gains points/k. A question is scored at most once.
func scoreQuestion(g *domain.Game, position int) bool {
	if position < 1 || position > g.NumQuestions() {
		return false
	}
	r := &g.Results[position-1]
	if r.Scored {
		return false
	}
	q := g.Snapshot.Questions[position-1]
	recomputeResult(r, q)

	for k, sub := range correctInOrder(r.Submissions) {
		p, ok := g.Player(sub.PlayerID)
		if !ok {
			continue
		}
		p.Score += float64(q.Points) / float64(k+1)
	}
	r.Scored = true
	g.Leaderboard = rankPlayers(g.Players)
	return true
}

// rankPlayers orders players by score descending; ties keep join order.
func rankPlayers(players []domain.Player) []domain.LeaderboardEntry {
	ranked := append([]domain.Player(nil), players...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for _, p := range ranked {
		entries = append(entries, domain.LeaderboardEntry{PlayerName: p.Name, Score: p.Score})
	}
	return entries
}
