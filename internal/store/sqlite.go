package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/sheetgraph/internal/table"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// OpenSQLite opens and migrates a store in one step.
func OpenSQLite(path string) (*SQLiteStore, error) {
	s := NewSQLiteStore()
	if err := s.Open(path); err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// --- Users ---

// UpsertUser inserts a user or updates the existing row with the same username.
func (s *SQLiteStore) UpsertUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	_, err := s.exec(ctx,
		`INSERT INTO users (id, username, password_hash, role, name, email, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET
		   password_hash = excluded.password_hash,
		   role = excluded.role,
		   name = excluded.name,
		   email = excluded.email`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.Name, u.Email, millis(time.Now()),
	)
	if err != nil {
		return User{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	return s.UserByUsername(ctx, u.Username)
}

// UserByUsername retrieves a user, including the password hash.
func (s *SQLiteStore) UserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, name, email, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Name, &u.Email, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = fromMillis(created)
	return u, nil
}

// --- Sessions ---

// CreateSession issues a new token for u, valid for ttl.
func (s *SQLiteStore) CreateSession(ctx context.Context, u User, ttl time.Duration) (Session, error) {
	token, err := NewToken()
	if err != nil {
		return Session{}, err
	}
	now := time.Now().UTC()
	sess := Session{
		Token:     token,
		User:      u,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	sess.User.PasswordHash = ""

	_, err = s.exec(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		sess.Token, u.ID, millis(sess.ExpiresAt), millis(sess.CreatedAt),
	)
	if err != nil {
		return Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// LookupSession resolves a token to its session and user.
func (s *SQLiteStore) LookupSession(ctx context.Context, token string) (Session, error) {
	var sess Session
	var expires, created, userCreated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT s.token, s.expires_at, s.created_at,
		        u.id, u.username, u.role, u.name, u.email, u.created_at
		 FROM sessions s JOIN users u ON s.user_id = u.id
		 WHERE s.token = ?`,
		token,
	).Scan(&sess.Token, &expires, &created,
		&sess.User.ID, &sess.User.Username, &sess.User.Role, &sess.User.Name, &sess.User.Email, &userCreated)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	sess.ExpiresAt = fromMillis(expires)
	sess.CreatedAt = fromMillis(created)
	sess.User.CreatedAt = fromMillis(userCreated)

	if !time.Now().Before(sess.ExpiresAt) {
		return Session{}, ErrSessionExpired
	}
	return sess, nil
}

// DeleteSession removes a token. It reports ErrNotFound when nothing matched.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	result, err := s.exec(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeExpiredSessions deletes every session past its expiry.
func (s *SQLiteStore) PurgeExpiredSessions(ctx context.Context) (int, error) {
	result, err := s.exec(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, millis(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

// --- Uploads ---

// SaveUpload replaces the user's stored table.
func (s *SQLiteStore) SaveUpload(ctx context.Context, userID string, t *table.Table, contentHash string) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	_, err = s.exec(ctx,
		`INSERT INTO uploaded_data (user_id, filename, data, row_count, content_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   filename = excluded.filename,
		   data = excluded.data,
		   row_count = excluded.row_count,
		   content_hash = excluded.content_hash,
		   created_at = excluded.created_at`,
		userID, t.SourceName, string(data), t.Len(), contentHash, millis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	return nil
}

// LatestUpload returns the user's stored table.
func (s *SQLiteStore) LatestUpload(ctx context.Context, userID string) (Upload, error) {
	up := Upload{UserID: userID}
	var data string
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT data, row_count, content_hash, created_at FROM uploaded_data WHERE user_id = ?`,
		userID,
	).Scan(&data, &up.RowCount, &up.ContentHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Upload{}, ErrNotFound
	}
	if err != nil {
		return Upload{}, fmt.Errorf("failed to get upload: %w", err)
	}

	var t table.Table
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return Upload{}, fmt.Errorf("failed to decode table: %w", err)
	}
	up.Table = &t
	up.CreatedAt = fromMillis(created)
	return up, nil
}

// ClearUpload deletes the user's stored table, if any.
func (s *SQLiteStore) ClearUpload(ctx context.Context, userID string) error {
	if _, err := s.exec(ctx, `DELETE FROM uploaded_data WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear upload: %w", err)
	}
	return nil
}
