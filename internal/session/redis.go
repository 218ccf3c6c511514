package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "newsdesk:session:"

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Create(ctx context.Context, userID string) (Session, error) {
	s := Session{ID: uuid.NewString(), UserID: userID, ExpiresAt: time.Now().Add(r.ttl)}
	if err := r.client.Set(ctx, keyPrefix+s.ID, userID, r.ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return s, nil
}

func (r *Redis) Lookup(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", unauthenticated(errEmptyID)
	}
	userID, err := r.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", unauthenticated(fmt.Errorf("session %s not active", id))
	}
	if err != nil {
		return "", unauthenticated(err)
	}
	return userID, nil
}

func (r *Redis) Revoke(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
