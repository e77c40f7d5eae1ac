package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps each slice under "<namespace><key>" in a shared Redis instance.
type Redis struct {
	client    *redis.Client
	namespace string
}

func NewRedis(addr, password string, db int, namespace string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisFromClient(client, namespace), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, namespace string) *Redis {
	return &Redis{client: client, namespace: namespace}
}

func (r *Redis) key(k string) string {
	return r.namespace + k
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// matchPattern is the SCAN MATCH glob for every key under the namespace.
func matchPattern(namespace string) string {
	return globEscaper.Replace(namespace) + "*"
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	if r == nil || r.client == nil {
		return "", false, ErrClosed
	}
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if r == nil || r.client == nil {
		return ErrClosed
	}
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if r == nil || r.client == nil {
		return ErrClosed
	}
	return r.client.Del(ctx, r.key(key)).Err()
}

// Clear deletes every key carrying the namespace prefix.
func (r *Redis) Clear(ctx context.Context) error {
	if r == nil || r.client == nil {
		return ErrClosed
	}
	iter := r.client.Scan(ctx, 0, matchPattern(r.namespace), 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to clear namespace: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan namespace: %w", err)
	}
	if len(batch) > 0 {
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to clear namespace: %w", err)
		}
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return ErrClosed
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
