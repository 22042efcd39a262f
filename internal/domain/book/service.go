package book

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrTitleRequired  = errors.New("book title required")
	ErrAuthorRequired = errors.New("book author required")
	ErrEmptyUpdate    = errors.New("no fields to update")
)

type Service struct {
	repo   Repository
	covers CoverStore
}

func NewService(repo Repository, covers CoverStore) *Service {
	return &Service{repo: repo, covers: covers}
}

func (s *Service) Create(ctx context.Context, b *Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(b.Author) == "" {
		return ErrAuthorRequired
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return err
	}
	s.resolveCover(b)
	return nil
}

func (s *Service) Update(ctx context.Context, id int64, upd Update) (*Book, error) {
	if upd.Empty() {
		return nil, ErrEmptyUpdate
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, ErrTitleRequired
	}
	if upd.Author != nil && strings.TrimSpace(*upd.Author) == "" {
		return nil, ErrAuthorRequired
	}

	b, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.resolveCover(b)
	return b, nil
}

// SoftDelete hides the book from listings. The row and its cover stay
// around so past poll options and votes keep resolving.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveCover(b)
	return b, nil
}

// ListAll returns every non-deleted book ordered by title.
func (s *Service) ListAll(ctx context.Context) ([]Book, error) {
	books, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.resolveCovers(books)
	return books, nil
}

// ListRead returns books the club has read, most recent first.
func (s *Service) ListRead(ctx context.Context) ([]Book, error) {
	books, err := s.repo.ListRead(ctx)
	if err != nil {
		return nil, err
	}
	s.resolveCovers(books)
	return books, nil
}

// ListUnread returns books still on the to-read shelf, ordered by title.
func (s *Service) ListUnread(ctx context.Context) ([]Book, error) {
	books, err := s.repo.ListUnread(ctx)
	if err != nil {
		return nil, err
	}
	s.resolveCovers(books)
	return books, nil
}

// UploadCover stores a new cover image and points the book at it. The
// previous object, if any, is removed best effort.
func (s *Service) UploadCover(ctx context.Context, id int64, filename string, r io.Reader) (*Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	name := fmt.Sprintf("%d-%s%s", id, uuid.NewString(), ext)

	path, err := s.covers.Put(ctx, name, r)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetCoverPath(ctx, id, &path); err != nil {
		_ = s.covers.Remove(ctx, path)
		return nil, err
	}

	if b.CoverPath != nil {
		_ = s.covers.Remove(ctx, *b.CoverPath)
	}

	b.CoverPath = &path
	s.resolveCover(b)
	return b, nil
}

// RemoveCover detaches and deletes the book's cover image.
func (s *Service) RemoveCover(ctx context.Context, id int64) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.CoverPath == nil {
		return nil
	}

	if err := s.repo.SetCoverPath(ctx, id, nil); err != nil {
		return err
	}
	_ = s.covers.Remove(ctx, *b.CoverPath)
	return nil
}

func (s *Service) resolveCover(b *Book) {
	if b == nil || b.CoverPath == nil || s.covers == nil {
		return
	}
	b.CoverURL = s.covers.PublicURL(*b.CoverPath)
}

func (s *Service) resolveCovers(books []Book) {
	for i := range books {
		s.resolveCover(&books[i])
	}
}
