package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
	"github.com/vncsmyrnk/potw/internal/metrics"
)

type voteService struct {
	sessionRepo ports.SessionRepository
	voteRepo    ports.VoteRepository
	userRepo    ports.UserRepository
	events      ports.EventPublisher
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewVoteService(
	sessionRepo ports.SessionRepository,
	voteRepo ports.VoteRepository,
	userRepo ports.UserRepository,
	events ports.EventPublisher,
	m *metrics.Metrics,
) ports.VoteService {
	return &voteService{
		sessionRepo: sessionRepo,
		voteRepo:    voteRepo,
		userRepo:    userRepo,
		events:      events,
		metrics:     m,
		now:         time.Now,
	}
}

func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) error {
	if strings.TrimSpace(input.Reason) == "" {
		s.metrics.ObserveVote(metrics.OutcomeInvalid)
		return domain.ErrReasonRequired
	}

	var value *string
	if input.Value != "" {
		if !domain.IsCompanyValue(input.Value) {
			s.metrics.ObserveVote(metrics.OutcomeInvalid)
			return domain.ErrInvalidValue
		}
		v := input.Value
		value = &v
	}

	session, err := s.targetSession(ctx, input.SessionID)
	if err != nil {
		s.observeFailure(err)
		return err
	}
	if !session.IsOpen() {
		s.metrics.ObserveVote(metrics.OutcomeNoSession)
		return domain.ErrSessionClosed
	}

	existing, err := s.voteRepo.GetByVoterAndSession(ctx, input.VoterID, session.ID)
	if err != nil {
		s.observeFailure(err)
		return fmt.Errorf("failed to check existing vote: %w", err)
	}
	if existing != nil {
		s.metrics.ObserveVote(metrics.OutcomeDuplicate)
		return domain.ErrAlreadyVoted
	}

	vote := &domain.Vote{
		ID:                uuid.New(),
		SessionID:         session.ID,
		VoterID:           input.VoterID,
		VoteeID:           input.VoteeID,
		Reason:            input.Reason,
		HonorableMentions: input.HonorableMentions,
		Value:             value,
		CreatedAt:         s.now(),
	}
	if err := s.voteRepo.SaveVote(ctx, vote); err != nil {
		s.observeFailure(err)
		return err
	}

	s.metrics.ObserveVote(metrics.OutcomeAccepted)
	publish(ctx, s.events, domain.Event{
		Type:       domain.EventVoteCast,
		SessionID:  session.ID,
		ActorID:    input.VoterID,
		OccurredAt: vote.CreatedAt,
	})
	return nil
}

func (s *voteService) targetSession(ctx context.Context, id int64) (*domain.VotingSession, error) {
	if id == 0 {
		session, err := s.sessionRepo.GetLatestOpen(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to find open session: %w", err)
		}
		if session == nil {
			return nil, domain.ErrNoOpenSession
		}
		return session, nil
	}

	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *voteService) observeFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrAlreadyVoted):
		s.metrics.ObserveVote(metrics.OutcomeDuplicate)
	case errors.Is(err, domain.ErrNoOpenSession), errors.Is(err, domain.ErrSessionNotFound):
		s.metrics.ObserveVote(metrics.OutcomeNoSession)
	case errors.Is(err, domain.ErrUserNotFound):
		s.metrics.ObserveVote(metrics.OutcomeInvalid)
	default:
		s.metrics.ObserveVote(metrics.OutcomeBackendError)
	}
}

func (s *voteService) MyVote(ctx context.Context, voterID uuid.UUID, sessionID int64) (*domain.Vote, error) {
	vote, err := s.voteRepo.GetByVoterAndSession(ctx, voterID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	if vote == nil {
		return nil, domain.ErrVoteNotFound
	}
	return vote, nil
}

func (s *voteService) ListByVoter(ctx context.Context, voterID uuid.UUID) ([]*domain.VoterHistoryEntry, error) {
	votes, err := s.voteRepo.ListByVoter(ctx, voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	entries := make([]*domain.VoterHistoryEntry, 0, len(votes))
	if len(votes) == 0 {
		return entries, nil
	}

	users, err := loadUsers(ctx, s.userRepo, votes)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sessionByID := make(map[int64]*domain.VotingSession, len(sessions))
	for _, session := range sessions {
		sessionByID[session.ID] = session
	}

	for _, v := range votes {
		entry := &domain.VoterHistoryEntry{
			VoteWithUsers: domain.VoteWithUsers{
				Vote:  *v,
				Voter: users[v.VoterID],
				Votee: users[v.VoteeID],
			},
		}
		if session, ok := sessionByID[v.SessionID]; ok {
			entry.SessionWeek = session.WeekNumber
			entry.SessionYear = session.Year
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}
