package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gncbooks/gncledger/internal/apperrors"
	"github.com/gncbooks/gncledger/internal/core/domain"
	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
)

// PgxBookRepository persists book records in Postgres.
type PgxBookRepository struct {
	pool *pgxpool.Pool
}

func newPgxBookRepository(pool *pgxpool.Pool) portsrepo.BookRepository {
	return &PgxBookRepository{pool: pool}
}

var _ portsrepo.BookRepository = (*PgxBookRepository)(nil)

// SaveBook inserts or updates a book; the UID is stable across re-imports.
func (r *PgxBookRepository) SaveBook(ctx context.Context, book domain.Book) error {
	query := `
		INSERT INTO books (uid, display_name, root_account_uid, source_uri, last_export_time, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (uid) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			root_account_uid = EXCLUDED.root_account_uid,
			source_uri = EXCLUDED.source_uri,
			modified_at = EXCLUDED.modified_at;
	`
	_, err := connFrom(ctx, r.pool).Exec(ctx, query,
		book.UID, book.DisplayName, book.RootAccountUID, book.SourceURI,
		timePtr(book.LastExportTime), book.CreatedAt, book.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save book %s: %w", book.UID, err)
	}
	return nil
}

// FindBookByUID fetches one book record.
func (r *PgxBookRepository) FindBookByUID(ctx context.Context, uid string) (*domain.Book, error) {
	query := `
		SELECT uid, display_name, root_account_uid, source_uri, last_export_time, created_at, modified_at
		FROM books WHERE uid = $1;
	`
	row := connFrom(ctx, r.pool).QueryRow(ctx, query, uid)
	book, err := scanBook(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: book %s", apperrors.ErrNotFound, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book %s: %w", uid, err)
	}
	return book, nil
}

// ListBooks returns all imported books, newest first.
func (r *PgxBookRepository) ListBooks(ctx context.Context) ([]domain.Book, error) {
	query := `
		SELECT uid, display_name, root_account_uid, source_uri, last_export_time, created_at, modified_at
		FROM books ORDER BY created_at DESC;
	`
	rows, err := connFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *book)
	}
	return books, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*domain.Book, error) {
	var book domain.Book
	var lastExport *time.Time
	err := row.Scan(&book.UID, &book.DisplayName, &book.RootAccountUID, &book.SourceURI,
		&lastExport, &book.CreatedAt, &book.ModifiedAt)
	if err != nil {
		return nil, err
	}
	if lastExport != nil {
		book.LastExportTime = *lastExport
	}
	return &book, nil
}

// timePtr maps the zero time to NULL.
func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
