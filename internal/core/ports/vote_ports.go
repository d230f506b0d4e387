package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/potw/internal/core/domain"
)

type VoteRepository interface {
	SaveVote(ctx context.Context, vote *domain.Vote) error
	GetByVoterAndSession(ctx context.Context, voterID uuid.UUID, sessionID int64) (*domain.Vote, error)
	ListBySession(ctx context.Context, sessionID int64) ([]*domain.Vote, error)
	ListByVoter(ctx context.Context, voterID uuid.UUID) ([]*domain.Vote, error)
	ListAll(ctx context.Context) ([]*domain.Vote, error)
}

type VoteInput struct {
	VoterID           uuid.UUID
	VoteeID           uuid.UUID
	Reason            string
	HonorableMentions string
	Value             string
	// SessionID zero targets the newest open session.
	SessionID int64
}

type VoteService interface {
	Vote(ctx context.Context, input VoteInput) error
	MyVote(ctx context.Context, voterID uuid.UUID, sessionID int64) (*domain.Vote, error)
	ListByVoter(ctx context.Context, voterID uuid.UUID) ([]*domain.VoterHistoryEntry, error)
}
