package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gncbooks/gncledger/internal/apperrors"
	"github.com/gncbooks/gncledger/internal/core/domain"
	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
)

// SQLiteBookRepository persists book records in SQLite.
type SQLiteBookRepository struct {
	db *sql.DB
}

func newSQLiteBookRepository(db *sql.DB) portsrepo.BookRepository {
	return &SQLiteBookRepository{db: db}
}

var _ portsrepo.BookRepository = (*SQLiteBookRepository)(nil)

// SaveBook inserts or updates a book; the UID is stable across re-imports.
func (r *SQLiteBookRepository) SaveBook(ctx context.Context, book domain.Book) error {
	query := `
		INSERT INTO books (uid, display_name, root_account_uid, source_uri, last_export_time, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			display_name = excluded.display_name,
			root_account_uid = excluded.root_account_uid,
			source_uri = excluded.source_uri,
			modified_at = excluded.modified_at;
	`
	_, err := connFrom(ctx, r.db).ExecContext(ctx, query,
		book.UID, book.DisplayName, book.RootAccountUID, book.SourceURI,
		nullTime(book.LastExportTime), book.CreatedAt, book.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save book %s: %w", book.UID, err)
	}
	return nil
}

// FindBookByUID fetches one book record.
func (r *SQLiteBookRepository) FindBookByUID(ctx context.Context, uid string) (*domain.Book, error) {
	query := `
		SELECT uid, display_name, root_account_uid, source_uri, last_export_time, created_at, modified_at
		FROM books WHERE uid = ?;
	`
	row := connFrom(ctx, r.db).QueryRowContext(ctx, query, uid)
	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: book %s", apperrors.ErrNotFound, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book %s: %w", uid, err)
	}
	return book, nil
}

// ListBooks returns all imported books, newest first.
func (r *SQLiteBookRepository) ListBooks(ctx context.Context) ([]domain.Book, error) {
	query := `
		SELECT uid, display_name, root_account_uid, source_uri, last_export_time, created_at, modified_at
		FROM books ORDER BY created_at DESC;
	`
	rows, err := connFrom(ctx, r.db).QueryContext(ctx, query)
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
	var lastExport sql.NullTime
	err := row.Scan(&book.UID, &book.DisplayName, &book.RootAccountUID, &book.SourceURI,
		&lastExport, &book.CreatedAt, &book.ModifiedAt)
	if err != nil {
		return nil, err
	}
	if lastExport.Valid {
		book.LastExportTime = lastExport.Time
	}
	return &book, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
