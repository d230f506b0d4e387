package ports

import (
	"context"

	"github.com/vncsmyrnk/potw/internal/core/domain"
)

type SessionRepository interface {
	Save(ctx context.Context, session *domain.VotingSession) error
	GetByID(ctx context.Context, id int64) (*domain.VotingSession, error)
	GetByWeek(ctx context.Context, week, year int) (*domain.VotingSession, error)
	GetLatestOpen(ctx context.Context) (*domain.VotingSession, error)
	List(ctx context.Context) ([]*domain.VotingSession, error)
	Close(ctx context.Context, id int64) error
}

type CreateSessionInput struct {
	WeekNumber int
	Year       int
}

type SessionService interface {
	Create(ctx context.Context, input CreateSessionInput) (*domain.VotingSession, error)
	Close(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.VotingSession, error)
	Current(ctx context.Context) (*domain.VotingSession, error)
	List(ctx context.Context) ([]*domain.SessionSummary, error)
}
