package poll

import (
	"context"
	"time"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/book"
)

type Poll struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	ExpiresAt        time.Time `json:"expires_at"`
	IncludeReadBooks bool      `json:"include_read_books"`
	IsActive         bool      `json:"is_active"`
	CreatedBy        string    `json:"created_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// OpenAt reports whether the poll accepts votes at the given instant.
// Openness is derived on every read, never stored: the active flag must
// be set and the expiration must not have passed.
func (p *Poll) OpenAt(now time.Time) bool {
	return p.IsActive && now.Before(p.ExpiresAt)
}

// Option ties a book to a poll as an eligible choice. Unique per
// (poll, book) pair.
type Option struct {
	ID        int64     `json:"id"`
	PollID    int64     `json:"poll_id"`
	BookID    int64     `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OptionWithBook is an option joined with its full book record, the shape
// the voting UI renders.
type OptionWithBook struct {
	Option
	Book book.Book `json:"book"`
}

type Repository interface {
	Create(ctx context.Context, p *Poll) error
	GetByID(ctx context.Context, id int64) (*Poll, error)
	ListActive(ctx context.Context, now time.Time) ([]Poll, error)
	ListAll(ctx context.Context) ([]Poll, error)
	AddOptions(ctx context.Context, pollID int64, bookIDs []int64) ([]Option, error)
	ListOptions(ctx context.Context, pollID int64) ([]OptionWithBook, error)
}
