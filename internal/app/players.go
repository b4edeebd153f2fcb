package app

import (
	"math/rand"
	"regexp"
	"time"

	"quizgame-service/internal/domain"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9 ]+$`)

const (
	nameLetters = "abcdefghijklmnopqrstuvwxyz"
	nameDigits  = "0123456789"
)

// admitPlayer checks whether name may join g and returns the final name,
// generating one when name is blank. It does not mutate g.
func admitPlayer(g *domain.Game, name string, maxPlayers int, gen func() string) (string, error) {
	if g.Phase != domain.PhaseLobby {
		return "", domain.Errorf(domain.ErrGameNotInLobby, "game %d is in %s state", g.ID, g.Phase)
	}
	if len(g.Players) >= maxPlayers {
		return "", domain.Errorf(domain.ErrGameFull, "game %d already has %d players", g.ID, len(g.Players))
	}
	if name == "" {
		name = gen()
	}
	if !validName.MatchString(name) {
		return "", domain.Errorf(domain.ErrInvalidName, "%q", name)
	}
	for _, p := range g.Players {
		if p.Name == name {
			return "", domain.Errorf(domain.ErrNameTaken, "%q", name)
		}
	}
	return name, nil
}

// addPlayer appends the player and runs the lobby auto start check.
func (m machine) addPlayer(g *domain.Game, id domain.PlayerID, name string, now time.Time) {
	autoStart := g.AutoStartThreshold > 0 && len(g.Players)+1 >= g.AutoStartThreshold
	g.Players = append(g.Players, domain.Player{ID: id, Name: name, JoinedAt: now})
	g.Leaderboard = rankPlayers(g.Players)
	if autoStart {
		enter(g, domain.PhaseQuestionCountdown, now)
	}
}

// generateName returns five distinct letters followed by three distinct digits.
func generateName(rnd *rand.Rand) string {
	out := make([]byte, 0, 8)
	for _, i := range rnd.Perm(len(nameLetters))[:5] {
		out = append(out, nameLetters[i])
	}
	for _, i := range rnd.Perm(len(nameDigits))[:3] {
		out = append(out, nameDigits[i])
	}
	return string(out)
}
