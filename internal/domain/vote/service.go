package vote

import (
	"context"
	"errors"
	"time"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/book"
)

var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrPollClosed    = errors.New("poll is closed")
	ErrInvalidOption = errors.New("book is not an option of this poll")
	ErrAlreadyVoted  = errors.New("voter already cast a vote in this poll")
)

type Service struct {
	repo   Repository
	covers book.CoverResolver
	now    func() time.Time
}

func NewService(repo Repository, covers book.CoverResolver) *Service {
	return &Service{repo: repo, covers: covers, now: time.Now}
}

// Cast records a vote. Preconditions are checked in order, each with its
// own failure: the poll must exist, must still be open, and the book must
// be one of its options. The duplicate check is NOT done here: the insert
// itself carries the (poll, voter) uniqueness constraint, so concurrent
// casts by the same voter race on the store, exactly one wins, and the
// rest come back as ErrAlreadyVoted.
func (s *Service) Cast(ctx context.Context, pollID, bookID int64, voterID string) (*Vote, error) {
	st, err := s.repo.PollState(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !st.IsActive || !s.now().Before(st.ExpiresAt) {
		return nil, ErrPollClosed
	}

	ok, err := s.repo.HasOption(ctx, pollID, bookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOption
	}

	v := &Vote{PollID: pollID, BookID: bookID, VoterID: voterID}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ForVoter returns the voter's own vote in the poll, or nil if they have
// not voted. It never exposes anyone else's choice.
func (s *Service) ForVoter(ctx context.Context, pollID int64, voterID string) (*Vote, error) {
	return s.repo.ForVoter(ctx, pollID, voterID)
}

// Results aggregates a poll's outcome: every option with its count and
// book metadata, sorted by votes descending with option creation order as
// the tie-break. publicView drops the voter identities; counts are the
// same either way.
func (s *Service) Results(ctx context.Context, pollID int64, publicView bool) ([]Result, int64, error) {
	if _, err := s.repo.PollState(ctx, pollID); err != nil {
		return nil, 0, err
	}

	results, err := s.repo.ResultsByPoll(ctx, pollID)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	for i := range results {
		total += results[i].Votes
		if s.covers != nil && results[i].CoverPath != nil {
			results[i].CoverURL = s.covers.PublicURL(*results[i].CoverPath)
		}
	}

	if !publicView {
		voters, err := s.repo.VotersByBook(ctx, pollID)
		if err != nil {
			return nil, 0, err
		}
		for i := range results {
			results[i].Voters = voters[results[i].BookID]
		}
	}

	return results, total, nil
}
