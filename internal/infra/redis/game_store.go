package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"quizgame-service/internal/domain"
)

// GameStore keeps games in Redis as msgpack documents.
// Keys:
//
//	quizgame:game:seq, quizgame:player:seq   INCR id sequences
//	quizgame:game:{id}                       msgpack-encoded domain.Game
//	quizgame:player:{id}                     id of the player's game
//	quizgame:quiz:{quizID}:games             SET of game ids started from a quiz
//
// A ttl of zero keeps keys forever; otherwise every write refreshes it.
type GameStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGameStore(client *redis.Client, ttl time.Duration) *GameStore {
	return &GameStore{client: client, ttl: ttl}
}

func (s *GameStore) NextGameID(ctx context.Context) (domain.GameID, error) {
	n, err := s.client.Incr(ctx, "quizgame:game:seq").Result()
	if err != nil {
		return 0, fmt.Errorf("incr game seq: %w", err)
	}
	return domain.GameID(n), nil
}

func (s *GameStore) NextPlayerID(ctx context.Context) (domain.PlayerID, error) {
	n, err := s.client.Incr(ctx, "quizgame:player:seq").Result()
	if err != nil {
		return 0, fmt.Errorf("incr player seq: %w", err)
	}
	return domain.PlayerID(n), nil
}

func (s *GameStore) GetGame(ctx context.Context, id domain.GameID) (*domain.Game, error) {
	raw, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.Errorf(domain.ErrGameNotFound, "game %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get game %d: %w", id, err)
	}
	return decodeGame(raw)
}

func (s *GameStore) PutGame(ctx context.Context, g *domain.Game) error {
	raw, err := msgpack.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game %d: %w", g.ID, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(g.ID), raw, s.ttl)
	indexKey := quizGamesKey(g.QuizID)
	pipe.SAdd(ctx, indexKey, int(g.ID))
	if s.ttl > 0 {
		pipe.Expire(ctx, indexKey, s.ttl)
	}
	for _, p := range g.Players {
		pipe.Set(ctx, playerKey(p.ID), int(g.ID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put game %d: %w", g.ID, err)
	}
	return nil
}

func (s *GameStore) GameIDForPlayer(ctx context.Context, id domain.PlayerID) (domain.GameID, error) {
	n, err := s.client.Get(ctx, playerKey(id)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, domain.Errorf(domain.ErrPlayerNotFound, "player %d", id)
	}
	if err != nil {
		return 0, fmt.Errorf("get player %d: %w", id, err)
	}
	return domain.GameID(n), nil
}

func (s *GameStore) ListGames(ctx context.Context, quizID string) ([]*domain.Game, error) {
	members, err := s.client.SMembers(ctx, quizGamesKey(quizID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list games of %s: %w", quizID, err)
	}
	if len(members) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(members))
	for _, m := range members {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		keys = append(keys, gameKey(domain.GameID(n)))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load games of %s: %w", quizID, err)
	}
	out := make([]*domain.Game, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// expired since it was indexed
			continue
		}
		g, err := decodeGame([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func decodeGame(raw []byte) (*domain.Game, error) {
	var g domain.Game
	if err := msgpack.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	return &g, nil
}

func gameKey(id domain.GameID) string {
	return "quizgame:game:" + strconv.Itoa(int(id))
}

func playerKey(id domain.PlayerID) string {
	return "quizgame:player:" + strconv.Itoa(int(id))
}

func quizGamesKey(quizID string) string {
	return "quizgame:quiz:" + quizID + ":games"
}
