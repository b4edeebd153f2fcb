package app

import (
	"sync"

	"quizgame-service/internal/domain"
)

// gameLocks hands out one mutex per game so operations on a game run one at a
// time while different games proceed independently. An entry is dropped once
// no caller holds or waits on it.
type gameLocks struct {
	mu    sync.Mutex
	locks map[domain.GameID]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[domain.GameID]*gameLock)}
}

func (l *gameLocks) lock(id domain.GameID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &gameLock{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *gameLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
