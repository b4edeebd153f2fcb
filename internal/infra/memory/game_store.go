package memory

import (
	"context"
	"sync"

	"quizgame-service/internal/domain"
)

// GameStore is an in-memory implementation of app.GameRepository. It stores
// deep copies so callers never share state with the store.
type GameStore struct {
	mu         sync.RWMutex
	games      map[domain.GameID]*domain.Game
	playerGame map[domain.PlayerID]domain.GameID
	lastGame   domain.GameID
	lastPlayer domain.PlayerID
}

func NewGameStore() *GameStore {
	return &GameStore{
		games:      make(map[domain.GameID]*domain.Game),
		playerGame: make(map[domain.PlayerID]domain.GameID),
	}
}

func (s *GameStore) NextGameID(_ context.Context) (domain.GameID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGame++
	return s.lastGame, nil
}

func (s *GameStore) NextPlayerID(_ context.Context) (domain.PlayerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPlayer++
	return s.lastPlayer, nil
}

func (s *GameStore) GetGame(_ context.Context, id domain.GameID) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, domain.Errorf(domain.ErrGameNotFound, "game %d", id)
	}
	return g.Clone(), nil
}

func (s *GameStore) PutGame(_ context.Context, g *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g.Clone()
	for _, p := range g.Players {
		s.playerGame[p.ID] = g.ID
	}
	return nil
}

func (s *GameStore) GameIDForPlayer(_ context.Context, id domain.PlayerID) (domain.GameID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gameID, ok := s.playerGame[id]
	if !ok {
		return 0, domain.Errorf(domain.ErrPlayerNotFound, "player %d", id)
	}
	return gameID, nil
}

func (s *GameStore) ListGames(_ context.Context, quizID string) ([]*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Game, 0)
	for _, g := range s.games {
		if g.QuizID == quizID {
			out = append(out, g.Clone())
		}
	}
	return out, nil
}
