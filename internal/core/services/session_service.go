package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
	"github.com/vncsmyrnk/potw/internal/metrics"
)

type sessionService struct {
	sessionRepo ports.SessionRepository
	voteRepo    ports.VoteRepository
	userRepo    ports.UserRepository
	events      ports.EventPublisher
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewSessionService(
	sessionRepo ports.SessionRepository,
	voteRepo ports.VoteRepository,
	userRepo ports.UserRepository,
	events ports.EventPublisher,
	m *metrics.Metrics,
) ports.SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		voteRepo:    voteRepo,
		userRepo:    userRepo,
		events:      events,
		metrics:     m,
		now:         time.Now,
	}
}

func (s *sessionService) Create(ctx context.Context, input ports.CreateSessionInput) (*domain.VotingSession, error) {
	week, year := input.WeekNumber, input.Year
	if week == 0 || year == 0 {
		currentWeek, currentYear := domain.CurrentWeek(s.now())
		if week == 0 {
			week = currentWeek
		}
		if year == 0 {
			year = currentYear
		}
	}
	if !domain.ValidWeek(week) {
		return nil, domain.ErrInvalidWeek
	}

	existing, err := s.sessionRepo.GetByWeek(ctx, week, year)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing session: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateSession
	}

	session := &domain.VotingSession{
		WeekNumber: week,
		Year:       year,
		Status:     domain.SessionOpen,
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.metrics.ObserveSessionTransition(string(domain.SessionOpen))
	publish(ctx, s.events, domain.Event{
		Type:       domain.EventSessionOpened,
		SessionID:  session.ID,
		OccurredAt: session.CreatedAt,
	})

	return session, nil
}

// Close moves a session to CLOSED. Closing an already closed session
// simply reapplies the update.
func (s *sessionService) Close(ctx context.Context, id int64) error {
	if err := s.sessionRepo.Close(ctx, id); err != nil {
		return err
	}

	s.metrics.ObserveSessionTransition(string(domain.SessionClosed))
	publish(ctx, s.events, domain.Event{
		Type:       domain.EventSessionClosed,
		SessionID:  id,
		OccurredAt: s.now(),
	})
	return nil
}

func (s *sessionService) Get(ctx context.Context, id int64) (*domain.VotingSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) Current(ctx context.Context) (*domain.VotingSession, error) {
	session, err := s.sessionRepo.GetLatestOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrNoOpenSession
	}
	return session, nil
}

func (s *sessionService) List(ctx context.Context) ([]*domain.SessionSummary, error) {
	sessions, err := s.sessionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	votes, err := s.voteRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	users, err := loadUsers(ctx, s.userRepo, votes)
	if err != nil {
		return nil, err
	}

	bySession := make(map[int64][]*domain.Vote)
	for _, v := range votes {
		bySession[v.SessionID] = append(bySession[v.SessionID], v)
	}

	summaries := make([]*domain.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		sessionVotes := bySession[session.ID]
		summaries = append(summaries, &domain.SessionSummary{
			VotingSession: *session,
			TotalVotes:    len(sessionVotes),
			Voters:        domain.DistinctVoters(sessionVotes, users),
			Winner:        domain.SessionWinner(sessionVotes, users),
		})
	}
	return summaries, nil
}
