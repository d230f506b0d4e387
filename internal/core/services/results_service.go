package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
	"github.com/vncsmyrnk/potw/internal/metrics"
)

type resultsService struct {
	sessionRepo ports.SessionRepository
	voteRepo    ports.VoteRepository
	userRepo    ports.UserRepository
	metrics     *metrics.Metrics
}

func NewResultsService(
	sessionRepo ports.SessionRepository,
	voteRepo ports.VoteRepository,
	userRepo ports.UserRepository,
	m *metrics.Metrics,
) ports.ResultsService {
	return &resultsService{
		sessionRepo: sessionRepo,
		voteRepo:    voteRepo,
		userRepo:    userRepo,
		metrics:     m,
	}
}

// Results reveals the tally of a closed session. Only the top
// domain.WinnersLimit votees are returned unless all is set; honorable
// mentions always cover every vote.
func (s *resultsService) Results(ctx context.Context, sessionID int64, all bool) (*domain.SessionResults, error) {
	defer s.metrics.TimeAggregation("results")()

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.Status != domain.SessionClosed {
		return nil, domain.ErrSessionNotClosed
	}

	votes, err := s.voteRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	users, err := loadUsers(ctx, s.userRepo, votes)
	if err != nil {
		return nil, err
	}

	ranked := domain.TallyVotes(votes, users)
	results := ranked
	if !all {
		results = domain.TopResults(ranked, domain.WinnersLimit)
	}

	return &domain.SessionResults{
		Session:           *session,
		TotalVotes:        len(votes),
		Results:           results,
		HonorableMentions: domain.HonorableMentions(ranked),
	}, nil
}
