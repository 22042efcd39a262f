package poll

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/book"
)

var (
	ErrPollNotFound    = errors.New("poll not found")
	ErrTitleRequired   = errors.New("poll title required")
	ErrPastExpiration  = errors.New("poll expiration must be in the future")
	ErrNoBooks         = errors.New("at least one book required")
	ErrDuplicateOption = errors.New("book is already an option of this poll")
)

type Service struct {
	repo   Repository
	covers book.CoverResolver
	now    func() time.Time
}

func NewService(repo Repository, covers book.CoverResolver) *Service {
	return &Service{repo: repo, covers: covers, now: time.Now}
}

// Create validates and stores a new poll. New polls start active; whether
// they accept votes is still re-derived from the expiration on every read.
func (s *Service) Create(ctx context.Context, p *Poll) error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if !p.ExpiresAt.After(s.now()) {
		return ErrPastExpiration
	}
	p.IsActive = true
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id int64) (*Poll, error) {
	return s.repo.GetByID(ctx, id)
}

// ListActive returns open polls, soonest expiration first.
func (s *Service) ListActive(ctx context.Context) ([]Poll, error) {
	return s.repo.ListActive(ctx, s.now())
}

// ListAll returns every poll, newest first. Callers gate this behind the
// admin check; expired and inactive polls are included.
func (s *Service) ListAll(ctx context.Context) ([]Poll, error) {
	return s.repo.ListAll(ctx)
}

// AddOptions attaches books to a poll as eligible choices. Each book must
// exist and not be soft-deleted at this point; a duplicate (poll, book)
// pair rejects the whole batch and leaves existing options untouched.
func (s *Service) AddOptions(ctx context.Context, pollID int64, bookIDs []int64) ([]Option, error) {
	if len(bookIDs) == 0 {
		return nil, ErrNoBooks
	}
	return s.repo.AddOptions(ctx, pollID, bookIDs)
}

// ListOptions returns a poll's options joined with their books, in
// insertion order.
func (s *Service) ListOptions(ctx context.Context, pollID int64) ([]OptionWithBook, error) {
	opts, err := s.repo.ListOptions(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if s.covers != nil {
		for i := range opts {
			if opts[i].Book.CoverPath != nil {
				opts[i].Book.CoverURL = s.covers.PublicURL(*opts[i].Book.CoverPath)
			}
		}
	}
	return opts, nil
}
