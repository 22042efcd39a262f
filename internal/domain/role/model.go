package role

import (
	"context"
	"time"
)

// BookClubAdmin is the only role the service knows about. There is no
// hierarchy and no delegation; a user either holds it or does not.
const BookClubAdmin = "book_club_admin"

type Grant struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	Insert(ctx context.Context, g *Grant) error
	Delete(ctx context.Context, userID, roleName string) error
	Exists(ctx context.Context, userID, roleName string) (bool, error)
	List(ctx context.Context, roleName string) ([]Grant, error)
}
