package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Namespace prefixes every key this service writes
const Namespace = "review"

// Nil is returned by Get when the key does not exist
const Nil = redis.Nil

// ErrNotInitialized is returned by the package helpers before Init or SetClient
var ErrNotInitialized = errors.New("redis client not initialized")

var client *redis.Client

var pingClient = func(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}

// Init dials url and pings it. A non-empty password overrides the one in the url.
func Init(url, password string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}
	if password != "" {
		opts.Password = password
	}
	if opts.ClientName == "" {
		opts.ClientName = Namespace
	}

	c := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pingClient(ctx, c); err != nil {
		_ = c.Close()
		return err
	}
	client = c
	return nil
}

// SetClient swaps the shared client; tests point it at miniredis
func SetClient(c *redis.Client) {
	client = c
}

func GetClient() *redis.Client {
	return client
}

func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// Key joins parts under the service namespace: Key("idempotency", id) is "review:idempotency:<id>"
func Key(parts ...string) string {
	return Namespace + ":" + strings.Join(parts, ":")
}

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if client == nil {
		return ErrNotInitialized
	}
	return client.Set(ctx, key, value, expiration).Err()
}

func Get(ctx context.Context, key string) (string, error) {
	if client == nil {
		return "", ErrNotInitialized
	}
	return client.Get(ctx, key).Result()
}

func Del(ctx context.Context, key string) error {
	if client == nil {
		return ErrNotInitialized
	}
	return client.Del(ctx, key).Err()
}

// SetNX reports whether the key was set
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if client == nil {
		return false, ErrNotInitialized
	}
	return client.SetNX(ctx, key, value, expiration).Result()
}
