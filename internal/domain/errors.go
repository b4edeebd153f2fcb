package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure for callers that map errors onto a transport.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidState
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidState:
		return "InvalidState"
	case KindInvalidInput:
		return "InvalidInput"
	default:
		return "Unknown"
	}
}

// Error is a typed validation failure. Two errors match under errors.Is when
// their codes are equal, so wrapped messages still compare against the sentinels.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// KindOf reports the Kind of the first domain error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// CodeOf returns the code of the first domain error in err's chain, or "".
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

var (
	ErrGameNotFound     = newError(KindNotFound, "GameNotFound", "game not found")
	ErrPlayerNotFound   = newError(KindNotFound, "PlayerNotFound", "player not found")
	ErrQuizNotFound     = newError(KindNotFound, "QuizNotFound", "quiz not found")
	ErrQuestionNotFound = newError(KindNotFound, "QuestionNotFound", "question not found")
	// ErrUnknownAnswerID means a submitted option id is not an option of the question.
	ErrUnknownAnswerID = newError(KindNotFound, "UnknownAnswerId", "answer id is not valid for this question")

	ErrInvalidAction  = newError(KindInvalidState, "InvalidAction", "action not allowed")
	ErrGameEnded      = newError(KindInvalidState, "GameEnded", "game has already ended")
	ErrGameNotInLobby = newError(KindInvalidState, "GameNotInLobby", "game is not in LOBBY state")
	ErrWrongPhase     = newError(KindInvalidState, "WrongPhase", "game is not in the required state")
	ErrWrongQuestion  = newError(KindInvalidState, "WrongQuestion", "game is not currently on this question")

	ErrGameFull                = newError(KindInvalidInput, "GameFull", "game is full")
	ErrInvalidName             = newError(KindInvalidInput, "InvalidName", "name contains invalid characters")
	ErrNameTaken               = newError(KindInvalidInput, "NameTaken", "name already taken in this game")
	ErrInvalidAnswerSet        = newError(KindInvalidInput, "InvalidAnswerSet", "answer set is empty or has duplicates")
	ErrInvalidQuestionPosition = newError(KindInvalidInput, "InvalidQuestionPosition", "question position is not valid for this game")
	ErrInvalidThreshold        = newError(KindInvalidInput, "InvalidThreshold", "autoStartNum is out of bounds")
	ErrQuizEmpty               = newError(KindInvalidInput, "QuizEmpty", "quiz has no questions")
	ErrTooManyActiveGames      = newError(KindInvalidInput, "TooManyActiveGames", "too many active games for this quiz")
)

// Errorf wraps a sentinel with extra context while keeping its identity.
func Errorf(sentinel *Error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
