package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound marks an unknown, expired or revoked refresh token.
var ErrSessionNotFound = errors.New("session not found")

// sessionKeyPrefix namespaces refresh-token keys so RevokeAll can find
// every session that belongs to one user.
const sessionKeyPrefix = "session"

// SessionStore tracks refresh tokens. Implementations must make RevokeAll
// effective immediately; a banned user's refresh must fail on the next
// attempt.
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error)
	// Validate returns the owning user's ID, or an error for unknown or
	// expired tokens.
	Validate(ctx context.Context, token string) (uuid.UUID, error)
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

type redisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

// Keys are session:<userID>:<token> with the userID in the value too, so
// both lookup directions work: Validate by token via a secondary index
// key, RevokeAll by user via a prefix scan.
func sessionKey(userID uuid.UUID, token string) string {
	return fmt.Sprintf("%s:%s:%s", sessionKeyPrefix, userID, token)
}

func tokenKey(token string) string {
	return fmt.Sprintf("%s-token:%s", sessionKeyPrefix, token)
}

func (s *redisSessionStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(userID, token), userID.String(), ttl)
	pipe.Set(ctx, tokenKey(token), userID.String(), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

func (s *redisSessionStore) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, tokenKey(token)).Result()
	if err == redis.Nil {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, err
	}

	// The per-user key is the revocation authority; the token index may
	// outlive it briefly if RevokeAll raced a refresh.
	if err := s.client.Get(ctx, sessionKey(userID, token)).Err(); err == redis.Nil {
		return uuid.Nil, ErrSessionNotFound
	} else if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

func (s *redisSessionStore) Revoke(ctx context.Context, token string) error {
	val, err := s.client.Get(ctx, tokenKey(token)).Result()
	if err == redis.Nil {
		// Already gone; revocation is idempotent.
		return nil
	}
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(userID, token))
	pipe.Del(ctx, tokenKey(token))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *redisSessionStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	pattern := fmt.Sprintf("%s:%s:*", sessionKeyPrefix, userID)

	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
		// key layout: session:<userID>:<token>
		token := key[len(sessionKeyPrefix)+1+len(userID.String())+1:]
		pipe.Del(ctx, tokenKey(token))
	}
	_, err := pipe.Exec(ctx)
	return err
}
