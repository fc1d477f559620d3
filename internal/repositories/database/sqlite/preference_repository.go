package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
)

const prefKeyLastExportTime = "last_export_time"

// SQLitePreferenceRepository stores per-book preferences in SQLite.
type SQLitePreferenceRepository struct {
	db *sql.DB
}

func newSQLitePreferenceRepository(db *sql.DB) portsrepo.PreferenceRepository {
	return &SQLitePreferenceRepository{db: db}
}

var _ portsrepo.PreferenceRepository = (*SQLitePreferenceRepository)(nil)

// SetLastExportTime records the timestamp of last export for a book.
func (r *SQLitePreferenceRepository) SetLastExportTime(ctx context.Context, bookUID string, t time.Time) error {
	query := `
		INSERT INTO preferences (book_uid, key, value) VALUES (?, ?, ?)
		ON CONFLICT(book_uid, key) DO UPDATE SET value = excluded.value;
	`
	_, err := connFrom(ctx, r.db).ExecContext(ctx, query,
		bookUID, prefKeyLastExportTime, t.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to set last export time for book %s: %w", bookUID, err)
	}
	return nil
}

// GetLastExportTime returns the stored timestamp, or the zero time when none
// has been recorded yet.
func (r *SQLitePreferenceRepository) GetLastExportTime(ctx context.Context, bookUID string) (time.Time, error) {
	var value string
	err := connFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE book_uid = ? AND key = ?;`,
		bookUID, prefKeyLastExportTime).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last export time for book %s: %w", bookUID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt last export time for book %s: %w", bookUID, err)
	}
	return t, nil
}
