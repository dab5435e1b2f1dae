package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"chesscoach/src/logx"
	"chesscoach/src/rating"
)

const (
	statsKeyPrefix = "chesscoach:stats:"
	gamesKeyPrefix = "chesscoach:games:"
)

type RedisStore struct {
	client *redis.Client
	log    logx.Logger
}

func NewRedisStore(addr string, log logx.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect %s: %w", addr, err)
	}
	log.Infof("connected to redis at %s", addr)
	return &RedisStore{client: client, log: log}, nil
}

func (r *RedisStore) Close() error { return r.client.Close() }

func (r *RedisStore) Stats(ctx context.Context, player string) (rating.State, error) {
	v, err := r.client.Get(ctx, statsKeyPrefix+player).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return rating.NewState(DefaultStartRating), nil
		}
		return rating.State{}, err
	}
	var s rating.State
	if err := json.Unmarshal([]byte(v), &s); err != nil {
		return rating.State{}, fmt.Errorf("corrupt stats record for %s: %w", player, err)
	}
	return s, nil
}

func (r *RedisStore) SaveStats(ctx context.Context, player string, s rating.State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, statsKeyPrefix+player, raw, 0).Err()
}

func (r *RedisStore) SaveGame(ctx context.Context, player string, g GameRecord) (string, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.PlayedAt.IsZero() {
		g.PlayedAt = time.Now()
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return "", err
	}
	if err := r.client.LPush(ctx, gamesKeyPrefix+player, raw).Err(); err != nil {
		return "", err
	}
	return g.ID, nil
}

func (r *RedisStore) Games(ctx context.Context, player string) ([]GameRecord, error) {
	raws, err := r.client.LRange(ctx, gamesKeyPrefix+player, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	games := make([]GameRecord, 0, len(raws))
	for _, raw := range raws {
		var g GameRecord
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			r.log.Warnf("skip corrupt game record: %v", err)
			continue
		}
		games = append(games, g)
	}
	return games, nil
}
