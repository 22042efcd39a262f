package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/book"
)

const bookColumns = `id, title, author, description, cover_path, buy_url, reading_date, is_deleted, created_at, updated_at`

type BookRepo struct {
	db *sql.DB
}

func NewBookRepo(db *sql.DB) *BookRepo {
	return &BookRepo{db: db}
}

func (r *BookRepo) Create(ctx context.Context, b *book.Book) error {
	query := `
        INSERT INTO books (title, author, description, buy_url, reading_date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, is_deleted, created_at, updated_at
    `
	return r.db.QueryRowContext(ctx, query,
		b.Title, b.Author, b.Description, b.BuyURL, b.ReadingDate,
	).Scan(&b.ID, &b.IsDeleted, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BookRepo) Update(ctx context.Context, id int64, upd book.Update) (*book.Book, error) {
	set := []string{"updated_at = now()"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Title != nil {
		set = append(set, "title = "+arg(*upd.Title))
	}
	if upd.Author != nil {
		set = append(set, "author = "+arg(*upd.Author))
	}
	if upd.Description != nil {
		set = append(set, "description = "+arg(*upd.Description))
	}
	if upd.BuyURL != nil {
		set = append(set, "buy_url = "+arg(*upd.BuyURL))
	}
	if upd.ReadingDate != nil {
		set = append(set, "reading_date = "+arg(*upd.ReadingDate))
	}

	query := fmt.Sprintf(`
        UPDATE books SET %s
        WHERE id = %s AND NOT is_deleted
        RETURNING %s
    `, strings.Join(set, ", "), arg(id), bookColumns)

	b := &book.Book{}
	if err := scanBook(r.db.QueryRowContext(ctx, query, args...), b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, book.ErrBookNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *BookRepo) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE books SET is_deleted = true, updated_at = now()
        WHERE id = $1 AND NOT is_deleted
    `, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

func (r *BookRepo) SetCoverPath(ctx context.Context, id int64, path *string) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE books SET cover_path = $1, updated_at = now()
        WHERE id = $2 AND NOT is_deleted
    `, path, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

func (r *BookRepo) GetByID(ctx context.Context, id int64) (*book.Book, error) {
	b := &book.Book{}
	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1 AND NOT is_deleted`, bookColumns)
	if err := scanBook(r.db.QueryRowContext(ctx, query, id), b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, book.ErrBookNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *BookRepo) ListAll(ctx context.Context) ([]book.Book, error) {
	return r.listBooks(ctx, `WHERE NOT is_deleted ORDER BY title`)
}

func (r *BookRepo) ListRead(ctx context.Context) ([]book.Book, error) {
	return r.listBooks(ctx, `WHERE NOT is_deleted AND reading_date IS NOT NULL ORDER BY reading_date DESC`)
}

func (r *BookRepo) ListUnread(ctx context.Context) ([]book.Book, error) {
	return r.listBooks(ctx, `WHERE NOT is_deleted AND reading_date IS NULL ORDER BY title`)
}

func (r *BookRepo) listBooks(ctx context.Context, clause string) ([]book.Book, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM books %s`, bookColumns, clause))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []book.Book
	for rows.Next() {
		var b book.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner, b *book.Book) error {
	return row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Description, &b.CoverPath,
		&b.BuyURL, &b.ReadingDate, &b.IsDeleted, &b.CreatedAt, &b.UpdatedAt,
	)
}
