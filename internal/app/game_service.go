package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"quizgame-service/internal/domain"
)

// GameRepository abstracts how games are stored (in-memory, Redis, etc).
// GetGame must return a value the caller may mutate freely; changes become
// visible only through PutGame. Player ids are unique across all games and
// only increase within one game.
type GameRepository interface {
	NextGameID(ctx context.Context) (domain.GameID, error)
	NextPlayerID(ctx context.Context) (domain.PlayerID, error)
	GetGame(ctx context.Context, id domain.GameID) (*domain.Game, error)
	PutGame(ctx context.Context, g *domain.Game) error
	GameIDForPlayer(ctx context.Context, id domain.PlayerID) (domain.GameID, error)
	ListGames(ctx context.Context, quizID string) ([]*domain.Game, error)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResultArchive keeps the outcome of finished games.
type ResultArchive interface {
	Archive(ctx context.Context, res domain.FinalResults) error
}

// Limits are the tunable bounds of the game rules.
type Limits struct {
	Countdown      time.Duration
	MaxPlayers     int
	MaxActiveGames int
	MaxAutoStart   int
}

// DefaultLimits returns the standard game rules.
func DefaultLimits() Limits {
	return Limits{
		Countdown:      3 * time.Second,
		MaxPlayers:     100,
		MaxActiveGames: 10,
		MaxAutoStart:   50,
	}
}

// GameService contains the game session use cases.
type GameService struct {
	games   GameRepository
	quizzes QuizRepository
	archive ResultArchive
	limits  Limits
	machine machine
	now     func() time.Time
	log     *slog.Logger
	locks   *gameLocks

	rndMu sync.Mutex
	rnd   *rand.Rand

	// startMu serializes StartGame so the active game limit holds.
	startMu sync.Mutex
}

// Option configures a GameService.
type Option func(*GameService)

// WithClock replaces time.Now, mainly for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *GameService) { s.now = now }
}

// WithRand sets the source used for generated player names.
func WithRand(rnd *rand.Rand) Option {
	return func(s *GameService) { s.rnd = rnd }
}

func WithLimits(l Limits) Option {
	return func(s *GameService) { s.limits = l }
}

func WithArchive(a ResultArchive) Option {
	return func(s *GameService) { s.archive = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *GameService) { s.log = l }
}

func NewGameService(games GameRepository, quizzes QuizRepository, opts ...Option) *GameService {
	s := &GameService{
		games:   games,
		quizzes: quizzes,
		limits:  DefaultLimits(),
		now:     time.Now,
		log:     slog.Default(),
		locks:   newGameLocks(),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.machine = machine{countdown: s.limits.Countdown}
	return s
}

// StartGame snapshots the quiz and opens a new game in LOBBY.
func (s *GameService) StartGame(ctx context.Context, quizID string, autoStartThreshold int) (domain.GameID, error) {
	if autoStartThreshold < 0 || autoStartThreshold > s.limits.MaxAutoStart {
		return 0, domain.Errorf(domain.ErrInvalidThreshold, "%d outside 0..%d", autoStartThreshold, s.limits.MaxAutoStart)
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return 0, err
	}
	if len(quiz.Questions) == 0 {
		return 0, domain.Errorf(domain.ErrQuizEmpty, "quiz %s", quizID)
	}

	s.startMu.Lock()
	defer s.startMu.Unlock()

	existing, err := s.games.ListGames(ctx, quizID)
	if err != nil {
		return 0, fmt.Errorf("list games: %w", err)
	}
	active := 0
	for _, g := range existing {
		if g.Phase != domain.PhaseEnd {
			active++
		}
	}
	if active >= s.limits.MaxActiveGames {
		return 0, domain.Errorf(domain.ErrTooManyActiveGames, "quiz %s has %d active games", quizID, active)
	}

	id, err := s.games.NextGameID(ctx)
	if err != nil {
		return 0, fmt.Errorf("allocate game id: %w", err)
	}
	now := s.now()
	snapshot := quiz.Snapshot()
	g := &domain.Game{
		ID:                 id,
		QuizID:             quizID,
		Phase:              domain.PhaseLobby,
		Active:             true,
		PhaseEnteredAt:     now,
		AtQuestion:         1,
		AutoStartThreshold: autoStartThreshold,
		QuestionOpenedAt:   make([]time.Time, len(snapshot.Questions)),
		Snapshot:           snapshot,
		Results:            make([]domain.QuestionResult, len(snapshot.Questions)),
		CreatedAt:          now,
	}
	for i, q := range snapshot.Questions {
		g.Results[i] = domain.QuestionResult{QuestionID: q.ID, PlayersCorrect: []string{}}
	}
	if err := s.games.PutGame(ctx, g); err != nil {
		return 0, fmt.Errorf("store game: %w", err)
	}
	s.log.Info("game started", "game_id", id, "quiz_id", quizID, "questions", len(snapshot.Questions), "auto_start", autoStartThreshold)
	return id, nil
}

// ListGames returns the active and ended games of a quiz.
func (s *GameService) ListGames(ctx context.Context, quizID string) (GameList, error) {
	games, err := s.games.ListGames(ctx, quizID)
	if err != nil {
		return GameList{}, err
	}
	out := GameList{ActiveGames: []domain.GameID{}, InactiveGames: []domain.GameID{}}
	for _, g := range games {
		if g.Phase == domain.PhaseEnd {
			out.InactiveGames = append(out.InactiveGames, g.ID)
		} else {
			out.ActiveGames = append(out.ActiveGames, g.ID)
		}
	}
	sort.Slice(out.ActiveGames, func(i, j int) bool { return out.ActiveGames[i] < out.ActiveGames[j] })
	sort.Slice(out.InactiveGames, func(i, j int) bool { return out.InactiveGames[i] < out.InactiveGames[j] })
	return out, nil
}

// ApplyAction applies an administrative phase transition.
func (s *GameService) ApplyAction(ctx context.Context, gameID domain.GameID, action domain.Action) error {
	var final *domain.FinalResults
	err := s.withGame(ctx, gameID, true, func(g *domain.Game, now time.Time) error {
		if err := s.machine.apply(g, action, now); err != nil {
			return err
		}
		if g.Phase == domain.PhaseFinalResults && action == domain.ActionGoToFinalResults {
			res := resultsOf(g)
			final = &domain.FinalResults{
				GameID:      g.ID,
				QuizID:      g.QuizID,
				QuizName:    g.Snapshot.Name,
				Leaderboard: res.UsersRankedByScore,
				Questions:   res.QuestionResults,
				FinishedAt:  now,
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if final != nil && s.archive != nil {
		if err := s.archive.Archive(ctx, *final); err != nil {
			s.log.Warn("archive results failed", "game_id", gameID, "error", err)
		}
	}
	return nil
}

// GameStatus reports the reconciled phase of a game.
func (s *GameService) GameStatus(ctx context.Context, gameID domain.GameID) (GameStatus, error) {
	var out GameStatus
	err := s.withGame(ctx, gameID, false, func(g *domain.Game, _ time.Time) error {
		names := make([]string, 0, len(g.Players))
		for _, p := range g.Players {
			names = append(names, p.Name)
		}
		sort.Strings(names)
		out = GameStatus{
			State:        g.Phase,
			AtQuestion:   g.AtQuestion,
			Players:      names,
			NumQuestions: g.NumQuestions(),
			Metadata:     g.Snapshot.Snapshot(),
		}
		return nil
	})
	return out, err
}

// GameResults returns the final results; the game must be in FINAL_RESULTS.
func (s *GameService) GameResults(ctx context.Context, gameID domain.GameID) (Results, error) {
	var out Results
	err := s.withGame(ctx, gameID, false, func(g *domain.Game, _ time.Time) error {
		if g.Phase != domain.PhaseFinalResults {
			return domain.Errorf(domain.ErrWrongPhase, "game is in %s state, results need %s", g.Phase, domain.PhaseFinalResults)
		}
		out = resultsOf(g)
		return nil
	})
	return out, err
}

// Join registers a guest in a game's lobby.
func (s *GameService) Join(ctx context.Context, gameID domain.GameID, name string) (domain.PlayerID, error) {
	var id domain.PlayerID
	err := s.withGame(ctx, gameID, true, func(g *domain.Game, now time.Time) error {
		final, err := admitPlayer(g, name, s.limits.MaxPlayers, s.randomName)
		if err != nil {
			return err
		}
		id, err = s.games.NextPlayerID(ctx)
		if err != nil {
			return fmt.Errorf("allocate player id: %w", err)
		}
		s.machine.addPlayer(g, id, final, now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// PlayerStatus reports the phase of the player's game.
func (s *GameService) PlayerStatus(ctx context.Context, playerID domain.PlayerID) (PlayerStatus, error) {
	var out PlayerStatus
	err := s.withPlayer(ctx, playerID, false, func(g *domain.Game, _ *domain.Player, _ time.Time) error {
		out = PlayerStatus{State: g.Phase, NumQuestions: g.NumQuestions(), AtQuestion: g.AtQuestion}
		return nil
	})
	return out, err
}

// QuestionForPlayer returns the current question without correctness flags.
func (s *GameService) QuestionForPlayer(ctx context.Context, playerID domain.PlayerID, position int) (PlayerQuestion, error) {
	var out PlayerQuestion
	err := s.withPlayer(ctx, playerID, false, func(g *domain.Game, _ *domain.Player, _ time.Time) error {
		if _, err := g.Question(position); err != nil {
			return err
		}
		if position != g.AtQuestion {
			return domain.Errorf(domain.ErrWrongQuestion, "game is on question %d", g.AtQuestion)
		}
		switch g.Phase {
		case domain.PhaseLobby, domain.PhaseQuestionCountdown, domain.PhaseFinalResults, domain.PhaseEnd:
			return domain.Errorf(domain.ErrWrongPhase, "no question is shown in %s state", g.Phase)
		}
		out = playerQuestionOf(liveQuestion(g))
		return nil
	})
	return out, err
}

// SubmitAnswer records the player's answer set for the open question.
func (s *GameService) SubmitAnswer(ctx context.Context, playerID domain.PlayerID, position int, answerIDs []string) error {
	return s.withPlayer(ctx, playerID, true, func(g *domain.Game, p *domain.Player, now time.Time) error {
		return recordSubmission(g, p, position, answerIDs, now)
	})
}

// QuestionResult returns the aggregates of one question while answers are shown.
func (s *GameService) QuestionResult(ctx context.Context, playerID domain.PlayerID, position int) (domain.QuestionResult, error) {
	var out domain.QuestionResult
	err := s.withPlayer(ctx, playerID, false, func(g *domain.Game, _ *domain.Player, _ time.Time) error {
		if _, err := g.Question(position); err != nil {
			return err
		}
		if g.Phase != domain.PhaseAnswerShow {
			return domain.Errorf(domain.ErrWrongPhase, "game is in %s state, results need %s", g.Phase, domain.PhaseAnswerShow)
		}
		if position > g.AtQuestion {
			return domain.Errorf(domain.ErrWrongQuestion, "game is on question %d", g.AtQuestion)
		}
		idx := position - 1
		if position == g.AtQuestion && g.LiveQuestion != 0 && g.LiveQuestion != g.AtQuestion {
			idx = g.LiveQuestion - 1
		}
		out = g.Results[idx].View()
		return nil
	})
	return out, err
}

// PlayerResults returns the leaderboard and question results of the player's game.
func (s *GameService) PlayerResults(ctx context.Context, playerID domain.PlayerID) (Results, error) {
	var out Results
	err := s.withPlayer(ctx, playerID, false, func(g *domain.Game, _ *domain.Player, _ time.Time) error {
		out = resultsOf(g)
		return nil
	})
	return out, err
}

// withGame loads the game under its lock, reconciles it, runs fn and stores
// the game when reconciliation changed it or a mutating fn succeeded.
func (s *GameService) withGame(ctx context.Context, id domain.GameID, mutates bool, fn func(g *domain.Game, now time.Time) error) error {
	unlock := s.locks.lock(id)
	defer unlock()

	g, err := s.games.GetGame(ctx, id)
	if err != nil {
		return err
	}
	now := s.now()
	from := g.Phase
	changed := s.machine.reconcile(g, now)
	if changed {
		s.log.Info("game phase reconciled", "game_id", id, "from", from, "to", g.Phase)
	}

	before := g.Phase
	fnErr := fn(g, now)
	if fnErr == nil && mutates {
		changed = true
		if g.Phase != before {
			s.log.Info("game phase changed", "game_id", id, "from", before, "to", g.Phase)
		}
	}
	if changed {
		if err := s.games.PutGame(ctx, g); err != nil {
			return fmt.Errorf("store game: %w", err)
		}
	}
	return fnErr
}

func (s *GameService) withPlayer(ctx context.Context, id domain.PlayerID, mutates bool, fn func(g *domain.Game, p *domain.Player, now time.Time) error) error {
	gameID, err := s.games.GameIDForPlayer(ctx, id)
	if err != nil {
		return err
	}
	return s.withGame(ctx, gameID, mutates, func(g *domain.Game, now time.Time) error {
		p, ok := g.Player(id)
		if !ok {
			return domain.Errorf(domain.ErrPlayerNotFound, "player %d", id)
		}
		return fn(g, p, now)
	})
}

func (s *GameService) randomName() string {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return generateName(s.rnd)
}
