package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ttlGame     = 24 * time.Hour
	recentLimit = 100
)

// redisStore keeps archived games as JSON values with a bounded
// recency index.
type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to redisURL and pings it before returning.
func NewRedisStore(redisURL string) (Store, error) {
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisStore{rdb: rdb}, nil
}

func (s *redisStore) SaveGame(ctx context.Context, g *Game) error {
	if g == nil {
		return nil
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, gameKey(g.RoomID), raw, ttlGame).Err(); err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, recentKey(), g.RoomID)
	pipe.LTrim(ctx, recentKey(), 0, recentLimit-1)
	pipe.Expire(ctx, recentKey(), ttlGame)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *redisStore) GetGame(ctx context.Context, roomID string) (*Game, error) {
	raw, err := s.rdb.Get(ctx, gameKey(roomID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *redisStore) RecentGames(ctx context.Context, limit int) ([]*Game, error) {
	if limit <= 0 || limit > recentLimit {
		limit = recentLimit
	}
	ids, err := s.rdb.LRange(ctx, recentKey(), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	games := make([]*Game, 0, len(ids))
	for _, id := range ids {
		g, gerr := s.GetGame(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		if g != nil {
			games = append(games, g)
		}
	}
	return games, nil
}

func gameKey(roomID string) string { return "archive:game:" + strings.TrimSpace(roomID) }
func recentKey() string            { return "archive:recent" }

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
