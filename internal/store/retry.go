package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MaxWriteRetries bounds how often a write is repeated while another
// connection holds the database lock.
const MaxWriteRetries = 3

// writeBackoff returns exponential backoff with jitter for attempt n.
func writeBackoff() retry.Backoff {
	b := retry.NewExponential(25 * time.Millisecond)
	b = retry.WithCappedDuration(time.Second, b)
	b = retry.WithJitterPercent(20, b)
	return retry.WithMaxRetries(MaxWriteRetries, b)
}

// isBusy checks if an error is worth retrying.
func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// retryWhen runs fn until it succeeds, fails with an error retryable rejects,
// or the backoff is exhausted. The last error is returned unwrapped.
func retryWhen(ctx context.Context, retryable func(error) bool, fn func(context.Context) error) error {
	return retry.Do(ctx, writeBackoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// exec runs a write statement, retrying while the database is locked.
func (s *SQLiteStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := retryWhen(ctx, isBusy, func(ctx context.Context) error {
		var err error
		res, err = s.db.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}
