// Package session tracks active login sessions. A session exists only while
// its key is live, so expiry and logout both end it.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/models"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL applies when the configured session TTL is zero.
const DefaultTTL = 24 * time.Hour

// Session is one active login.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// Registry creates, resolves and revokes sessions.
type Registry interface {
	Create(ctx context.Context, userID string) (Session, error)
	// Lookup returns the owner of an active session or models.ErrUnauthenticated.
	Lookup(ctx context.Context, id string) (string, error)
	Revoke(ctx context.Context, id string) error
}

type StoreType string

const (
	RedisStore    StoreType = "redis"
	InMemoryStore StoreType = "inmemory"
)

// NewRegistry returns a Redis registry when Redis is configured, otherwise an
// in-process one suitable for a single instance.
func NewRegistry(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (Registry, StoreType, error) {
	if cfg.Host == "" {
		return NewMemory(ttl), InMemoryStore, nil
	}
	client, err := Conn(ctx, cfg)
	if err != nil {
		return nil, RedisStore, err
	}
	return NewRedis(client, ttl), RedisStore, nil
}

// Conn opens and pings a Redis client.
func Conn(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	port := cfg.Port
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", cfg.Host, port),
		DialTimeout: cfg.Timeout,
		Password:    cfg.Password,
		DB:          cfg.DB,
	})
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if pong != "PONG" {
		_ = client.Close()
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}
	return client, nil
}

var errEmptyID = errors.New("empty session id")

func unauthenticated(err error) error {
	return fmt.Errorf("%w: %w", models.ErrUnauthenticated, err)
}
