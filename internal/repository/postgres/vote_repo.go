package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/vote"
)

type VoteRepo struct {
	db *sql.DB
}

func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

// Create is the one conditional insert the whole design hinges on: the
// votes table carries UNIQUE (poll_id, voter_id), so two concurrent casts
// by the same voter are serialized by the database and the loser surfaces
// as vote.ErrAlreadyVoted.
func (r *VoteRepo) Create(ctx context.Context, v *vote.Vote) error {
	query := `
        INSERT INTO votes (poll_id, book_id, voter_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	err := r.db.QueryRowContext(ctx, query, v.PollID, v.BookID, v.VoterID).
		Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return vote.ErrAlreadyVoted
		}
		if isForeignKeyViolation(err) {
			return vote.ErrPollNotFound
		}
		return err
	}
	return nil
}

func (r *VoteRepo) ForVoter(ctx context.Context, pollID int64, voterID string) (*vote.Vote, error) {
	v := &vote.Vote{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, poll_id, book_id, voter_id, created_at
        FROM votes
        WHERE poll_id = $1 AND voter_id = $2
    `, pollID, voterID).Scan(&v.ID, &v.PollID, &v.BookID, &v.VoterID, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// ResultsByPoll left-joins options against the ledger so zero-vote books
// still show up, counts per book, and orders by count descending with the
// option's insertion order as a stable tie-break. Deleted books are kept:
// an option created before the deletion stays displayable.
func (r *VoteRepo) ResultsByPoll(ctx context.Context, pollID int64) ([]vote.Result, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT b.id, b.title, b.author, b.cover_path, COUNT(v.id)
        FROM poll_options o
        JOIN books b ON b.id = o.book_id
        LEFT JOIN votes v ON v.poll_id = o.poll_id AND v.book_id = o.book_id
        WHERE o.poll_id = $1
        GROUP BY b.id, b.title, b.author, b.cover_path, o.created_at, o.id
        ORDER BY COUNT(v.id) DESC, o.created_at ASC, o.id ASC
    `, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []vote.Result
	for rows.Next() {
		var res vote.Result
		if err := rows.Scan(&res.BookID, &res.BookTitle, &res.BookAuthor, &res.CoverPath, &res.Votes); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *VoteRepo) VotersByBook(ctx context.Context, pollID int64) (map[int64][]string, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT book_id, voter_id
        FROM votes
        WHERE poll_id = $1
        ORDER BY created_at, id
    `, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	voters := make(map[int64][]string)
	for rows.Next() {
		var bookID int64
		var voterID string
		if err := rows.Scan(&bookID, &voterID); err != nil {
			return nil, err
		}
		voters[bookID] = append(voters[bookID], voterID)
	}
	return voters, rows.Err()
}

func (r *VoteRepo) PollState(ctx context.Context, pollID int64) (*vote.PollState, error) {
	st := &vote.PollState{}
	err := r.db.QueryRowContext(ctx,
		`SELECT is_active, expires_at FROM polls WHERE id = $1`, pollID,
	).Scan(&st.IsActive, &st.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vote.ErrPollNotFound
		}
		return nil, err
	}
	return st, nil
}

func (r *VoteRepo) HasOption(ctx context.Context, pollID, bookID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM poll_options WHERE poll_id = $1 AND book_id = $2)`,
		pollID, bookID,
	).Scan(&ok)
	return ok, err
}
