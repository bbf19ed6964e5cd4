package redisrepo

import (
	"context"

	"github.com/jrsteele09/go-elearn-client/sessions"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ sessions.Repo = (*RedisRepo)(nil)

// RedisRepo stores each session key as a plain Redis string under a common prefix,
// so several CLI hosts can share one session.
type RedisRepo struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) *RedisRepo {
	return &RedisRepo{client: client, prefix: prefix}
}

// Ping checks connectivity
func (r *RedisRepo) Ping(ctx context.Context) error {
	return errors.Wrap(r.client.Ping(ctx).Err(), "RedisRepo.Ping")
}

func (r *RedisRepo) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if err == redis.Nil {
		return "", sessions.ErrKeyNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "RedisRepo.Get")
	}
	return value, nil
}

func (r *RedisRepo) Set(ctx context.Context, key, value string) error {
	return errors.Wrap(r.client.Set(ctx, r.prefix+key, value, 0).Err(), "RedisRepo.Set")
}

func (r *RedisRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.prefix + key
	}
	return errors.Wrap(r.client.Del(ctx, prefixed...).Err(), "RedisRepo.Delete")
}
