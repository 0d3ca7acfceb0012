package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vytor/upsimu/internal/errors"
	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/models"
)

const redisKeyPrefix = "upsimu:attempt:"

// RedisStore keeps attempts in Redis as JSON; Redis expires the keys itself.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient builds a client from the configured address, password and db.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (s *RedisStore) key(id string) string { return redisKeyPrefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_cache")

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		log.Debug("attempt not found: id=%s", id)
		return nil, errors.NewNotFoundError("attempt", id)
	}
	if err != nil {
		log.Error("failed to get attempt %s: %v", id, err)
		return nil, err
	}

	var a models.Attempt
	if err := json.Unmarshal(data, &a); err != nil {
		log.Error("failed to decode attempt %s: %v", id, err)
		return nil, err
	}
	if a.FollowUps == nil {
		a.FollowUps = make(map[models.CoverageState]int)
	}
	return &a, nil
}

func (s *RedisStore) Save(ctx context.Context, a *models.Attempt) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(a.ID), data, s.ttl).Err(); err != nil {
		logger.FromContext(ctx).WithPrefix("attempt_cache").Error("failed to save attempt %s: %v", a.ID, err)
		return err
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// Sweep is a no-op: keys carry their own TTL.
func (s *RedisStore) Sweep(context.Context) (int, error) { return 0, nil }

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
