package vote

import (
	"context"
	"time"
)

// Vote is one ledger row. Immutable once cast; there is no update or
// delete path through the API.
type Vote struct {
	ID        int64     `json:"id"`
	PollID    int64     `json:"poll_id"`
	BookID    int64     `json:"book_id"`
	VoterID   string    `json:"voter_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Result is one row of a poll's aggregated outcome. Voters is filled only
// for the admin view; the public projection omits it entirely.
type Result struct {
	BookID     int64    `json:"book_id"`
	BookTitle  string   `json:"book_title"`
	BookAuthor string   `json:"book_author"`
	CoverPath  *string  `json:"-"`
	CoverURL   string   `json:"cover_url,omitempty"`
	Votes      int64    `json:"votes"`
	Voters     []string `json:"voters,omitempty"`
}

// PollState is the slice of poll metadata the ledger needs to gate a cast.
type PollState struct {
	IsActive  bool
	ExpiresAt time.Time
}

type Repository interface {
	// Create must be a single conditional insert: uniqueness of
	// (poll_id, voter_id) is enforced by the store's constraint and a
	// violation surfaces as ErrAlreadyVoted. Never check-then-insert.
	Create(ctx context.Context, v *Vote) error
	ForVoter(ctx context.Context, pollID int64, voterID string) (*Vote, error)
	// ResultsByPoll returns every option of the poll with its count,
	// zero-vote options included, ordered by count descending and then
	// by option creation order.
	ResultsByPoll(ctx context.Context, pollID int64) ([]Result, error)
	VotersByBook(ctx context.Context, pollID int64) (map[int64][]string, error)
	PollState(ctx context.Context, pollID int64) (*PollState, error)
	HasOption(ctx context.Context, pollID, bookID int64) (bool, error)
}
