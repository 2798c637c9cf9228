// Package store persists users, sessions and each user's latest upload.
package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/sheetgraph/internal/table"
)

var (
	// ErrNotFound is returned when a user, session or upload does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSessionExpired is returned by LookupSession for a token past its expiry.
	ErrSessionExpired = errors.New("session expired")
)

// User is a stored account.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	Name         string
	Email        string
	CreatedAt    time.Time
}

// Session maps an opaque token to a user until ExpiresAt.
type Session struct {
	Token     string
	User      User
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Upload is the single table kept per user. A new upload replaces it.
type Upload struct {
	UserID      string
	Table       *table.Table
	RowCount    int
	ContentHash string
	CreatedAt   time.Time
}

// Store is the persistence boundary shared by the demo and server modes.
type Store interface {
	UpsertUser(ctx context.Context, u User) (User, error)
	UserByUsername(ctx context.Context, username string) (User, error)

	CreateSession(ctx context.Context, u User, ttl time.Duration) (Session, error)
	LookupSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	PurgeExpiredSessions(ctx context.Context) (int, error)

	SaveUpload(ctx context.Context, userID string, t *table.Table, contentHash string) error
	LatestUpload(ctx context.Context, userID string) (Upload, error)
	ClearUpload(ctx context.Context, userID string) error

	Close() error
}

// NewToken returns a random 32-byte session token, hex encoded.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
