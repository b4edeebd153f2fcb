package memory

import (
	"context"
	"sync"

	"quizgame-service/internal/domain"
)

// ResultArchive keeps final results in process memory.
type ResultArchive struct {
	mu      sync.RWMutex
	results map[domain.GameID]domain.FinalResults
}

func NewResultArchive() *ResultArchive {
	return &ResultArchive{results: make(map[domain.GameID]domain.FinalResults)}
}

func (a *ResultArchive) Archive(_ context.Context, res domain.FinalResults) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results[res.GameID] = res
	return nil
}

// Get returns the archived results of a game.
func (a *ResultArchive) Get(id domain.GameID) (domain.FinalResults, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res, ok := a.results[id]
	return res, ok
}
