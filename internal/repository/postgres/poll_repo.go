package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/book"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/poll"
)

type PollRepo struct {
	db *sql.DB
}

func NewPollRepo(db *sql.DB) *PollRepo {
	return &PollRepo{db: db}
}

func (r *PollRepo) Create(ctx context.Context, p *poll.Poll) error {
	query := `
        INSERT INTO polls (title, expires_at, include_read_books, is_active, created_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	return r.db.QueryRowContext(ctx, query,
		p.Title, p.ExpiresAt, p.IncludeReadBooks, p.IsActive, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *PollRepo) GetByID(ctx context.Context, id int64) (*poll.Poll, error) {
	p := &poll.Poll{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, title, expires_at, include_read_books, is_active, created_by, created_at
        FROM polls WHERE id = $1
    `, id).Scan(
		&p.ID, &p.Title, &p.ExpiresAt, &p.IncludeReadBooks,
		&p.IsActive, &p.CreatedBy, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, poll.ErrPollNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListActive filters on the derived open predicate: active flag set and
// expiration still ahead of the caller's clock reading.
func (r *PollRepo) ListActive(ctx context.Context, now time.Time) ([]poll.Poll, error) {
	return r.listPolls(ctx, `
        SELECT id, title, expires_at, include_read_books, is_active, created_by, created_at
        FROM polls
        WHERE is_active AND expires_at > $1
        ORDER BY expires_at ASC
    `, now)
}

func (r *PollRepo) ListAll(ctx context.Context) ([]poll.Poll, error) {
	return r.listPolls(ctx, `
        SELECT id, title, expires_at, include_read_books, is_active, created_by, created_at
        FROM polls
        ORDER BY created_at DESC
    `)
}

func (r *PollRepo) listPolls(ctx context.Context, query string, args ...any) ([]poll.Poll, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var polls []poll.Poll
	for rows.Next() {
		var p poll.Poll
		if err := rows.Scan(
			&p.ID, &p.Title, &p.ExpiresAt, &p.IncludeReadBooks,
			&p.IsActive, &p.CreatedBy, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

// AddOptions inserts the whole batch in one transaction. The insert only
// sees non-deleted books, so a missing row means the book is unknown or
// already off the shelf; the (poll_id, book_id) unique constraint turns
// duplicates into poll.ErrDuplicateOption.
func (r *PollRepo) AddOptions(ctx context.Context, pollID int64, bookIDs []int64) ([]poll.Option, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM polls WHERE id = $1)`, pollID,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, poll.ErrPollNotFound
	}

	query := `
        INSERT INTO poll_options (poll_id, book_id)
        SELECT $1, id FROM books WHERE id = $2 AND NOT is_deleted
        RETURNING id, created_at
    `

	opts := make([]poll.Option, 0, len(bookIDs))
	for _, bookID := range bookIDs {
		o := poll.Option{PollID: pollID, BookID: bookID}
		err := tx.QueryRowContext(ctx, query, pollID, bookID).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return nil, book.ErrBookNotFound
			case isUniqueViolation(err):
				return nil, poll.ErrDuplicateOption
			case isForeignKeyViolation(err):
				return nil, poll.ErrPollNotFound
			}
			return nil, err
		}
		opts = append(opts, o)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (r *PollRepo) ListOptions(ctx context.Context, pollID int64) ([]poll.OptionWithBook, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT o.id, o.poll_id, o.book_id, o.created_at,
               b.id, b.title, b.author, b.description, b.cover_path,
               b.buy_url, b.reading_date, b.is_deleted, b.created_at, b.updated_at
        FROM poll_options o
        JOIN books b ON b.id = o.book_id
        WHERE o.poll_id = $1
        ORDER BY o.created_at, o.id
    `, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []poll.OptionWithBook
	for rows.Next() {
		var o poll.OptionWithBook
		if err := rows.Scan(
			&o.ID, &o.PollID, &o.BookID, &o.CreatedAt,
			&o.Book.ID, &o.Book.Title, &o.Book.Author, &o.Book.Description, &o.Book.CoverPath,
			&o.Book.BuyURL, &o.Book.ReadingDate, &o.Book.IsDeleted, &o.Book.CreatedAt, &o.Book.UpdatedAt,
		); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}
