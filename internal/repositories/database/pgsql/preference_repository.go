package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
)

const prefKeyLastExportTime = "last_export_time"

// PgxPreferenceRepository stores per-book preferences in Postgres.
type PgxPreferenceRepository struct {
	pool *pgxpool.Pool
}

func newPgxPreferenceRepository(pool *pgxpool.Pool) portsrepo.PreferenceRepository {
	return &PgxPreferenceRepository{pool: pool}
}

var _ portsrepo.PreferenceRepository = (*PgxPreferenceRepository)(nil)

// SetLastExportTime records the timestamp of last export for a book.
func (r *PgxPreferenceRepository) SetLastExportTime(ctx context.Context, bookUID string, t time.Time) error {
	query := `
		INSERT INTO preferences (book_uid, key, value) VALUES ($1, $2, $3)
		ON CONFLICT (book_uid, key) DO UPDATE SET value = EXCLUDED.value;
	`
	_, err := connFrom(ctx, r.pool).Exec(ctx, query,
		bookUID, prefKeyLastExportTime, t.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to set last export time for book %s: %w", bookUID, err)
	}
	return nil
}

// GetLastExportTime returns the stored timestamp, or the zero time when none
// has been recorded yet.
func (r *PgxPreferenceRepository) GetLastExportTime(ctx context.Context, bookUID string) (time.Time, error) {
	var value string
	err := connFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT value FROM preferences WHERE book_uid = $1 AND key = $2;`,
		bookUID, prefKeyLastExportTime).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
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
