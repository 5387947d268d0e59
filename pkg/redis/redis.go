// Package redis builds go-redis clients.
package redis

import (
	"context"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
	defaultPoolSize     = 10
)

type Option func(*goRedis.Options)

func WithPassword(password string) Option {
	return func(o *goRedis.Options) {
		o.Password = password
	}
}

func WithDB(db int) Option {
	return func(o *goRedis.Options) {
		o.DB = db
	}
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *goRedis.Options) {
		o.DialTimeout = d
	}
}

func WithReadTimeout(d time.Duration) Option {
	return func(o *goRedis.Options) {
		o.ReadTimeout = d
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *goRedis.Options) {
		o.WriteTimeout = d
	}
}

func WithPoolSize(n int) Option {
	return func(o *goRedis.Options) {
		o.PoolSize = n
	}
}

func WithMinIdleConns(n int) Option {
	return func(o *goRedis.Options) {
		o.MinIdleConns = n
	}
}

// New connects to the Redis server at addr and checks it responds.
func New(ctx context.Context, addr string, opts ...Option) (*goRedis.Client, error) {
	const op = "redis.New"

	o := &goRedis.Options{
		Addr:         addr,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		PoolSize:     defaultPoolSize,
	}

	for _, opt := range opts {
		opt(o)
	}

	client := goRedis.NewClient(o)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: failed to connect to redis: %w", op, err)
	}

	return client, nil
}
