package role

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrAlreadyGranted = errors.New("role already granted")
	ErrGrantNotFound  = errors.New("role grant not found")
	ErrUserRequired   = errors.New("user id required")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// IsAdmin is the authorization gate every privileged operation passes
// through. An empty identity is never an admin.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.repo.Exists(ctx, userID, BookClubAdmin)
}

func (s *Service) GrantAdmin(ctx context.Context, userID string) (*Grant, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserRequired
	}
	g := &Grant{UserID: userID, Role: BookClubAdmin}
	if err := s.repo.Insert(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) RevokeAdmin(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserRequired
	}
	return s.repo.Delete(ctx, userID, BookClubAdmin)
}

func (s *Service) ListAdmins(ctx context.Context) ([]Grant, error) {
	return s.repo.List(ctx, BookClubAdmin)
}
