package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a [Redis] store. TTLs mirror the backend's token
// lifetime conventions so stale credentials age out of the mirror on their
// own.
type RedisOptions struct {
	// Prefix namespaces the three session keys, typically per device or
	// per SSR session ("awqef:sess:<sid>").
	Prefix     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Redis is a [Store] backed by a Redis hashless key triplet. It is the
// server-side mirror used by SSR and middleware gating, where the session
// file of a single client process is not reachable.
//
// Redis instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Redis struct {
	client *redis.Client
	opts   RedisOptions
}

// NewRedis describes the newredis operation and its observable behavior.
func NewRedis(client *redis.Client, opts RedisOptions) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if opts.Prefix == "" {
		opts.Prefix = "awqef:sess"
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = time.Hour
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Redis{client: client, opts: opts}, nil
}

func (r *Redis) key(name string) string {
	return r.opts.Prefix + ":" + name
}

// SaveSession describes the savesession operation and its observable behavior.
func (r *Redis) SaveSession(ctx context.Context, creds Credentials, user []byte) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(KeyAccessToken), creds.AccessToken, r.opts.AccessTTL)
	if creds.RefreshToken != "" {
		pipe.Set(ctx, r.key(KeyRefreshToken), creds.RefreshToken, r.opts.RefreshTTL)
	} else {
		pipe.Del(ctx, r.key(KeyRefreshToken))
	}
	pipe.Set(ctx, r.key(KeyUser), user, r.opts.RefreshTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// SaveUser describes the saveuser operation and its observable behavior.
func (r *Redis) SaveUser(ctx context.Context, user []byte) error {
	exists, err := r.client.Exists(ctx, r.key(KeyAccessToken)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	if err := r.client.Set(ctx, r.key(KeyUser), user, r.opts.RefreshTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Credentials describes the credentials operation and its observable behavior.
func (r *Redis) Credentials(ctx context.Context) (Credentials, error) {
	vals, err := r.client.MGet(ctx, r.key(KeyAccessToken), r.key(KeyRefreshToken)).Result()
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var creds Credentials
	if s, ok := vals[0].(string); ok {
		creds.AccessToken = s
	}
	if s, ok := vals[1].(string); ok {
		creds.RefreshToken = s
	}
	if creds.Empty() {
		return Credentials{}, ErrNotFound
	}
	return creds, nil
}

// User describes the user operation and its observable behavior.
func (r *Redis) User(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(KeyUser)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return data, nil
}

// Clear describes the clear operation and its observable behavior.
func (r *Redis) Clear(ctx context.Context) error {
	// Single multi-key DEL keeps the triplet atomic.
	err := r.client.Del(ctx,
		r.key(KeyAccessToken),
		r.key(KeyRefreshToken),
		r.key(KeyUser),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
