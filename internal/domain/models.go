package domain

import (
	"fmt"
	"strings"
	"time"
)

type (
	GameID   int
	PlayerID int
)

// Phase is the position of a game in its state machine.
type Phase string

const (
	PhaseLobby             Phase = "LOBBY"
	PhaseQuestionCountdown Phase = "QUESTION_COUNTDOWN"
	PhaseQuestionOpen      Phase = "QUESTION_OPEN"
	PhaseQuestionClose     Phase = "QUESTION_CLOSE"
	PhaseAnswerShow        Phase = "ANSWER_SHOW"
	PhaseFinalResults      Phase = "FINAL_RESULTS"
	PhaseEnd               Phase = "END"
)

// Action is an administrative request to move a game between phases.
type Action string

const (
	ActionNextQuestion     Action = "NEXT_QUESTION"
	ActionSkipCountdown    Action = "SKIP_COUNTDOWN"
	ActionGoToAnswer       Action = "GO_TO_ANSWER"
	ActionGoToFinalResults Action = "GO_TO_FINAL_RESULTS"
	ActionEnd              Action = "END"
	ActionPing             Action = "PING"
)

// ParseAction accepts the wire name of an action, case-insensitively.
func ParseAction(raw string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(raw)))
	switch a {
	case ActionNextQuestion, ActionSkipCountdown, ActionGoToAnswer,
		ActionGoToFinalResults, ActionEnd, ActionPing:
		return a, nil
	}
	return "", Errorf(ErrInvalidAction, "unknown action %q", raw)
}

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id" msgpack:"id"`
	Text    string `json:"text" msgpack:"text"`
	Colour  string `json:"colour,omitempty" msgpack:"colour"`
	Correct bool   `json:"correct" msgpack:"correct"`
}

// Question models a question with one or more correct options.
type Question struct {
	ID           string   `json:"id" msgpack:"id"`
	Prompt       string   `json:"prompt" msgpack:"prompt"`
	TimeLimit    int      `json:"timeLimit" msgpack:"time_limit"` // seconds
	Points       int      `json:"points" msgpack:"points"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty" msgpack:"thumbnail_url"`
	Options      []Option `json:"options" msgpack:"options"`
}

// CorrectSet returns the ids of every option flagged correct.
func (q Question) CorrectSet() AnswerSet {
	ids := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		if o.Correct {
			ids = append(ids, o.ID)
		}
	}
	return newAnswerSetUnchecked(ids)
}

// HasOption reports whether id names one of the question's options.
func (q Question) HasOption(id string) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Quiz is the authored source a game is started from.
type Quiz struct {
	ID           string     `json:"id" msgpack:"id"`
	Name         string     `json:"name" msgpack:"name"`
	Description  string     `json:"description" msgpack:"description"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty" msgpack:"thumbnail_url"`
	Questions    []Question `json:"questions" msgpack:"questions"`
}

// Snapshot returns a deep copy so later edits to q never reach a running game.
func (q Quiz) Snapshot() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]Option(nil), question.Options...)
		out.Questions[i] = question
	}
	return out
}

// Player is a guest joined to a game.
type Player struct {
	ID       PlayerID  `json:"playerId" msgpack:"id"`
	Name     string    `json:"name" msgpack:"name"`
	Score    float64   `json:"score" msgpack:"score"`
	JoinedAt time.Time `json:"joinedAt" msgpack:"joined_at"`
}

// LeaderboardEntry is one ranked row of a game's scoreboard.
type LeaderboardEntry struct {
	PlayerName string  `json:"playerName" msgpack:"player_name"`
	Score      float64 `json:"score" msgpack:"score"`
}

// Submission is a player's latest answer to one question.
type Submission struct {
	PlayerID    PlayerID  `json:"playerId" msgpack:"player_id"`
	PlayerName  string    `json:"name" msgpack:"player_name"`
	Answers     AnswerSet `json:"answerIds" msgpack:"answers"`
	Correct     bool      `json:"answerCorrect" msgpack:"correct"`
	TimeTakenMs int64     `json:"timeTaken" msgpack:"time_taken_ms"`
	Seq         int64     `json:"-" msgpack:"seq"`
}

// QuestionResult aggregates the ledger of one question.
type QuestionResult struct {
	QuestionID          string       `json:"questionId" msgpack:"question_id"`
	PlayersCorrect      []string     `json:"playersCorrect" msgpack:"players_correct"`
	AverageAnswerTimeMs float64      `json:"averageAnswerTime" msgpack:"average_answer_time_ms"`
	PercentCorrect      float64      `json:"percentCorrect" msgpack:"percent_correct"`
	Submissions         []Submission `json:"-" msgpack:"submissions"`
	Scored              bool         `json:"-" msgpack:"scored"`
}

// View strips the ledger, leaving the aggregates a client may see.
func (r QuestionResult) View() QuestionResult {
	return QuestionResult{
		QuestionID:          r.QuestionID,
		PlayersCorrect:      append([]string{}, r.PlayersCorrect...),
		AverageAnswerTimeMs: r.AverageAnswerTimeMs,
		PercentCorrect:      r.PercentCorrect,
	}
}

// Game is one running instance of a quiz.
type Game struct {
	ID                 GameID             `msgpack:"id"`
	QuizID             string             `msgpack:"quiz_id"`
	Phase              Phase              `msgpack:"phase"`
	Active             bool               `msgpack:"active"`
	PhaseEnteredAt     time.Time          `msgpack:"phase_entered_at"`
	AtQuestion         int                `msgpack:"at_question"`
	LiveQuestion       int                `msgpack:"live_question"`
	AutoStartThreshold int                `msgpack:"auto_start_threshold"`
	QuestionOpenedAt   []time.Time        `msgpack:"question_opened_at"`
	Snapshot           Quiz               `msgpack:"snapshot"`
	Players            []Player           `msgpack:"players"`
	Leaderboard        []LeaderboardEntry `msgpack:"leaderboard"`
	Results            []QuestionResult   `msgpack:"results"`
	SubmissionSeq      int64              `msgpack:"submission_seq"`
	CreatedAt          time.Time          `msgpack:"created_at"`
}

// NumQuestions is the length of the game's snapshot.
func (g *Game) NumQuestions() int {
	return len(g.Snapshot.Questions)
}

// Question returns the snapshot question at the 1-based position.
func (g *Game) Question(position int) (Question, error) {
	if position < 1 || position > g.NumQuestions() {
		return Question{}, Errorf(ErrInvalidQuestionPosition, "position %d outside 1..%d", position, g.NumQuestions())
	}
	return g.Snapshot.Questions[position-1], nil
}

// Player finds a player of this game by id.
func (g *Game) Player(id PlayerID) (*Player, bool) {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i], true
		}
	}
	return nil, false
}

// Clone deep-copies the game so stores can hand out independent values.
func (g *Game) Clone() *Game {
	out := *g
	out.QuestionOpenedAt = append([]time.Time(nil), g.QuestionOpenedAt...)
	out.Snapshot = g.Snapshot.Snapshot()
	out.Players = append([]Player(nil), g.Players...)
	out.Leaderboard = append([]LeaderboardEntry(nil), g.Leaderboard...)
	out.Results = make([]QuestionResult, len(g.Results))
	for i, r := range g.Results {
		r.PlayersCorrect = append([]string(nil), r.PlayersCorrect...)
		r.Submissions = append([]Submission(nil), r.Submissions...)
		for j := range r.Submissions {
			r.Submissions[j].Answers = append(AnswerSet(nil), r.Submissions[j].Answers...)
		}
		out.Results[i] = r
	}
	return &out
}

func (g *Game) String() string {
	return fmt.Sprintf("game %d (%s, question %d)", g.ID, g.Phase, g.AtQuestion)
}

// FinalResults is the archived outcome of a game that reached FINAL_RESULTS.
type FinalResults struct {
	GameID      GameID             `json:"gameId"`
	QuizID      string             `json:"quizId"`
	QuizName    string             `json:"quizName"`
	Leaderboard []LeaderboardEntry `json:"usersRankedByScore"`
	Questions   []QuestionResult   `json:"questionResults"`
	FinishedAt  time.Time          `json:"finishedAt"`
}
