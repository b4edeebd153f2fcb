package app

import "quizgame-service/internal/domain"

// GameStatus is the administrator's view of a game.
type GameStatus struct {
	State        domain.Phase `json:"state"`
	AtQuestion   int          `json:"atQuestion"`
	Players      []string     `json:"players"`
	NumQuestions int          `json:"numQuestions"`
	Metadata     domain.Quiz  `json:"metadata"`
}

// Results carries the ranked leaderboard and the per-question aggregates.
type Results struct {
	UsersRankedByScore []domain.LeaderboardEntry `json:"usersRankedByScore"`
	QuestionResults    []domain.QuestionResult   `json:"questionResults"`
}

// PlayerStatus is what a guest polls while waiting for the next phase.
type PlayerStatus struct {
	State        domain.Phase `json:"state"`
	NumQuestions int          `json:"numQuestions"`
	AtQuestion   int          `json:"atQuestion"`
}

// PlayerOption is an answer option without its correctness flag.
type PlayerOption struct {
	ID     string `json:"answerId"`
	Text   string `json:"answer"`
	Colour string `json:"colour,omitempty"`
}

// PlayerQuestion is the question as shown to guests.
type PlayerQuestion struct {
	QuestionID    string         `json:"questionId"`
	Question      string         `json:"question"`
	TimeLimit     int            `json:"timeLimit"`
	ThumbnailURL  string         `json:"thumbnailUrl,omitempty"`
	Points        int            `json:"points"`
	AnswerOptions []PlayerOption `json:"answerOptions"`
}

// GameList splits a quiz's games into active and ended ids, ascending.
type GameList struct {
	ActiveGames   []domain.GameID `json:"activeGames"`
	InactiveGames []domain.GameID `json:"inactiveGames"`
}

func resultsOf(g *domain.Game) Results {
	out := Results{
		UsersRankedByScore: append([]domain.LeaderboardEntry{}, g.Leaderboard...),
		QuestionResults:    make([]domain.QuestionResult, 0, len(g.Results)),
	}
	for _, r := range g.Results {
		out.QuestionResults = append(out.QuestionResults, r.View())
	}
	return out
}

func playerQuestionOf(q domain.Question) PlayerQuestion {
	out := PlayerQuestion{
		QuestionID:    q.ID,
		Question:      q.Prompt,
		TimeLimit:     q.TimeLimit,
		ThumbnailURL:  q.ThumbnailURL,
		Points:        q.Points,
		AnswerOptions: make([]PlayerOption, 0, len(q.Options)),
	}
	for _, o := range q.Options {
		out.AnswerOptions = append(out.AnswerOptions, PlayerOption{ID: o.ID, Text: o.Text, Colour: o.Colour})
	}
	return out
}
