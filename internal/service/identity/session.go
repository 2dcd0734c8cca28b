package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Session is the authenticated caller passed explicitly to workflows.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	SubjectID uuid.UUID `json:"subject_id"`
	Name      string    `json:"name"`
	// Phone is set for patients, Email and Specialty for doctors.
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Specialty string    `json:"specialty,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsPatient() bool { return s != nil && s.Role == RolePatient }
func (s *Session) IsDoctor() bool  { return s != nil && s.Role == RoleDoctor }

// SessionStore persists sessions until they expire or are revoked.
type SessionStore interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Touch(ctx context.Context, id uuid.UUID, ttl time.Duration) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

func redisKeySession(id uuid.UUID) string { return "session:" + id.String() }

type redisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

func (r *redisSessionStore) Save(ctx context.Context, s *Session, ttl time.Duration) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, redisKeySession(s.ID), b, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *redisSessionStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	b, err := r.rdb.Get(ctx, redisKeySession(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *redisSessionStore) Touch(ctx context.Context, id uuid.UUID, ttl time.Duration) error {
	ok, err := r.rdb.Expire(ctx, redisKeySession(id), ttl).Result()
	if err != nil {
		return fmt.Errorf("extend session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (r *redisSessionStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.rdb.Del(ctx, redisKeySession(id)).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return n > 0, nil
}
