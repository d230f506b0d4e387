package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
)

const voteColumns = `id, session_id, voter_id, votee_id, reason, honorable_mentions, value, created_at`

type voteRepository struct {
	db    *sql.DB
	guard *Guard
}

func NewVoteRepository(db *sql.DB, guard *Guard) ports.VoteRepository {
	return &voteRepository{
		db:    db,
		guard: guard,
	}
}

func scanVote(row rowScanner) (*domain.Vote, error) {
	v := &domain.Vote{}
	var value sql.NullString
	err := row.Scan(&v.ID, &v.SessionID, &v.VoterID, &v.VoteeID, &v.Reason, &v.HonorableMentions, &value, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	if value.Valid {
		v.Value = &value.String
	}
	return v, nil
}

// SaveVote inserts the vote. The unique (voter_id, session_id) constraint
// is the final word on double voting.
func (r *voteRepository) SaveVote(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (id, session_id, voter_id, votee_id, reason, honorable_mentions, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	var value sql.NullString
	if vote.Value != nil {
		value = sql.NullString{String: *vote.Value, Valid: true}
	}
	err := r.guard.Do(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query,
			vote.ID, vote.SessionID, vote.VoterID, vote.VoteeID,
			vote.Reason, vote.HonorableMentions, value, vote.CreatedAt,
		)
		return err
	})
	if err != nil {
		if mapped := translate(err, domain.ErrAlreadyVoted, domain.ErrUserNotFound); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to save vote: %w", err)
	}
	return nil
}

func (r *voteRepository) GetByVoterAndSession(ctx context.Context, voterID uuid.UUID, sessionID int64) (*domain.Vote, error) {
	query := `SELECT ` + voteColumns + ` FROM votes WHERE voter_id = $1 AND session_id = $2`

	var vote *domain.Vote
	err := r.guard.Do(ctx, func() error {
		v, err := scanVote(r.db.QueryRowContext(ctx, query, voterID, sessionID))
		if errors.Is(err, sql.ErrNoRows) {
			vote = nil
			return nil
		}
		vote = v
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return vote, nil
}

func (r *voteRepository) ListBySession(ctx context.Context, sessionID int64) ([]*domain.Vote, error) {
	query := `SELECT ` + voteColumns + ` FROM votes WHERE session_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, sessionID)
}

func (r *voteRepository) ListByVoter(ctx context.Context, voterID uuid.UUID) ([]*domain.Vote, error) {
	query := `SELECT ` + voteColumns + ` FROM votes WHERE voter_id = $1 ORDER BY created_at DESC, id`
	return r.list(ctx, query, voterID)
}

func (r *voteRepository) ListAll(ctx context.Context) ([]*domain.Vote, error) {
	query := `SELECT ` + voteColumns + ` FROM votes ORDER BY created_at, id`
	return r.list(ctx, query)
}

func (r *voteRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Vote, error) {
	var votes []*domain.Vote
	err := r.guard.Do(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		votes = []*domain.Vote{}
		for rows.Next() {
			v, err := scanVote(rows)
			if err != nil {
				return err
			}
			votes = append(votes, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return votes, nil
}
