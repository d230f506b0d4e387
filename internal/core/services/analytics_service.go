package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
	"github.com/vncsmyrnk/potw/internal/metrics"
)

type analyticsService struct {
	voteRepo ports.VoteRepository
	userRepo ports.UserRepository
	metrics  *metrics.Metrics
}

func NewAnalyticsService(voteRepo ports.VoteRepository, userRepo ports.UserRepository, m *metrics.Metrics) ports.AnalyticsService {
	return &analyticsService{
		voteRepo: voteRepo,
		userRepo: userRepo,
		metrics:  m,
	}
}

// Analytics aggregates every vote ever cast, regardless of session status.
func (s *analyticsService) Analytics(ctx context.Context) (*domain.Analytics, error) {
	defer s.metrics.TimeAggregation("analytics")()

	votes, err := s.voteRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	users, err := loadUsers(ctx, s.userRepo, votes)
	if err != nil {
		return nil, err
	}

	return &domain.Analytics{
		ValueDistribution: domain.ValueDistribution(votes),
		PeopleRanking:     domain.PeopleRanking(votes, users),
	}, nil
}
