package book

import (
	"context"
	"io"
	"time"
)

// Book is a catalog entry. A nil ReadingDate means the club has not read
// it yet. Soft-deleted books disappear from listings but stay referenced
// by old poll options and votes.
type Book struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Description *string    `json:"description,omitempty"`
	CoverPath   *string    `json:"-"`
	CoverURL    string     `json:"cover_url,omitempty"`
	BuyURL      *string    `json:"buy_url,omitempty"`
	ReadingDate *time.Time `json:"reading_date,omitempty"`
	IsDeleted   bool       `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Update carries a partial edit; nil fields are left untouched.
type Update struct {
	Title       *string
	Author      *string
	Description *string
	BuyURL      *string
	ReadingDate *time.Time
}

func (u Update) Empty() bool {
	return u.Title == nil && u.Author == nil && u.Description == nil &&
		u.BuyURL == nil && u.ReadingDate == nil
}

type Repository interface {
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, id int64, upd Update) (*Book, error)
	SoftDelete(ctx context.Context, id int64) error
	SetCoverPath(ctx context.Context, id int64, path *string) error
	GetByID(ctx context.Context, id int64) (*Book, error)
	ListAll(ctx context.Context) ([]Book, error)
	ListRead(ctx context.Context) ([]Book, error)
	ListUnread(ctx context.Context) ([]Book, error)
}

// CoverResolver maps a stored cover path to a public URL. Resolution is
// pure string work and must never block or fail a catalog read.
type CoverResolver interface {
	PublicURL(path string) string
}

// CoverStore is the object store holding uploaded cover images.
type CoverStore interface {
	CoverResolver
	Put(ctx context.Context, name string, r io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}
