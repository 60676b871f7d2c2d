package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/plumecms/cloud/internal/auth"
)

const (
	// sessionPrefix is the Redis key prefix for sessions.
	sessionPrefix = "session:"
)

// sessionRecord is the wire form of a session in Redis.
type sessionRecord struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	IssuedAt time.Time `json:"issued_at"`
}

// encodeSession marshals a principal for storage.
func encodeSession(p *auth.Principal, issuedAt time.Time) ([]byte, error) {
	rec := sessionRecord{
		UserID:   p.UserID,
		Email:    p.Email,
		Name:     p.Name,
		IssuedAt: issuedAt,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

// decodeSession unmarshals a stored session into a principal.
// sessionID is the token hash the record was stored under.
func decodeSession(data []byte, sessionID string) (*auth.Principal, error) {
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &auth.Principal{
		UserID:    rec.UserID,
		Email:     rec.Email,
		Name:      rec.Name,
		SessionID: sessionID,
	}, nil
}

// SetSession stores a session under the hash of its token with a TTL.
func (c *Cache) SetSession(ctx context.Context, tokenHash string, p *auth.Principal, ttl time.Duration) error {
	data, err := encodeSession(p, time.Now().UTC())
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionPrefix+tokenHash, data, ttl).Err()
}

// GetSession looks up a session by its token hash.
// Returns nil on a miss; a miss is not an error.
func (c *Cache) GetSession(ctx context.Context, tokenHash string) (*auth.Principal, error) {
	data, err := c.client.Get(ctx, sessionPrefix+tokenHash).Bytes()
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	p, err := decodeSession(data, tokenHash)
	if err != nil {
		// Corrupted entry - treat as miss
		return nil, nil //nolint:nilerr
	}
	return p, nil
}

// DeleteSession revokes a session.
func (c *Cache) DeleteSession(ctx context.Context, tokenHash string) error {
	return c.client.Del(ctx, sessionPrefix+tokenHash).Err()
}
