package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
	"github.com/vncsmyrnk/potw/internal/metrics"
)

type voteFixture struct {
	svc      *voteService
	sessions *fakeSessionRepo
	votes    *fakeVoteRepo
	users    *fakeUserRepo
	events   *recordingPublisher
	metrics  *metrics.Metrics
	alice    *domain.User
	bob      *domain.User
}

func newVoteFixture(t *testing.T) *voteFixture {
	t.Helper()
	alice, bob := newUser("alice"), newUser("bob")
	users := newFakeUserRepo(alice, bob)
	f := &voteFixture{
		sessions: &fakeSessionRepo{},
		votes:    &fakeVoteRepo{users: users},
		users:    users,
		events:   &recordingPublisher{},
		metrics:  metrics.New(prometheus.NewRegistry(), "test"),
		alice:    alice,
		bob:      bob,
	}
	f.svc = NewVoteService(f.sessions, f.votes, f.users, f.events, f.metrics).(*voteService)
	return f
}

func (f *voteFixture) outcome(name string) float64 {
	return testutil.ToFloat64(f.metrics.VotesTotal.WithLabelValues(name))
}

func TestVoteDefaultsToCurrentSession(t *testing.T) {
	f := newVoteFixture(t)
	f.sessions.add(1, 2026, domain.SessionClosed)
	current := f.sessions.add(2, 2026, domain.SessionOpen)

	err := f.svc.Vote(context.Background(), ports.VoteInput{
		VoterID:           f.alice.ID,
		VoteeID:           f.bob.ID,
		Reason:            "  shipped the release  ",
		HonorableMentions: "carol helped",
		Value:             domain.ValueCustomerFirst,
	})
	require.NoError(t, err)

	require.Len(t, f.votes.votes, 1)
	stored := f.votes.votes[0]
	assert.Equal(t, current.ID, stored.SessionID)
	assert.Equal(t, "  shipped the release  ", stored.Reason)
	assert.Equal(t, "carol helped", stored.HonorableMentions)
	require.NotNil(t, stored.Value)
	assert.Equal(t, domain.ValueCustomerFirst, *stored.Value)

	assert.Equal(t, []domain.EventType{domain.EventVoteCast}, f.events.types())
	assert.Equal(t, f.alice.ID, f.events.events[0].ActorID)
	assert.Equal(t, 1.0, f.outcome(metrics.OutcomeAccepted))
}

func TestVoteWithoutValue(t *testing.T) {
	f := newVoteFixture(t)
	f.sessions.add(1, 2026, domain.SessionOpen)

	err := f.svc.Vote(context.Background(), ports.VoteInput{
		VoterID: f.alice.ID,
		VoteeID: f.bob.ID,
		Reason:  "steady",
	})
	require.NoError(t, err)
	assert.Nil(t, f.votes.votes[0].Value)
}

func TestVoteValidation(t *testing.T) {
	f := newVoteFixture(t)
	f.sessions.add(1, 2026, domain.SessionOpen)
	ctx := context.Background()

	err := f.svc.Vote(ctx, ports.VoteInput{VoterID: f.alice.ID, VoteeID: f.bob.ID, Reason: "   "})
	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	err = f.svc.Vote(ctx, ports.VoteInput{VoterID: f.alice.ID, VoteeID: f.bob.ID, Reason: "ok", Value: "BE NICE"})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	assert.Empty(t, f.votes.votes)
	assert.Equal(t, 2.0, f.outcome(metrics.OutcomeInvalid))
}

func TestVoteWithoutOpenSession(t *testing.T) {
	f := newVoteFixture(t)
	closed := f.sessions.add(1, 2026, domain.SessionClosed)
	ctx := context.Background()

	err := f.svc.Vote(ctx, ports.VoteInput{VoterID: f.alice.ID, VoteeID: f.bob.ID, Reason: "ok"})
	assert.ErrorIs(t, err, domain.ErrNoOpenSession)

	err = f.svc.Vote(ctx, ports.VoteInput{VoterID: f.alice.ID, VoteeID: f.bob.ID, Reason: "ok", SessionID: closed.ID})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	err = f.svc.Vote(ctx, ports.VoteInput{VoterID: f.alice.ID, VoteeID: f.bob.ID, Reason: "ok", SessionID: 404})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.Empty(t, f.votes.votes)
	assert.Equal(t, 3.0, f.outcome(metrics.OutcomeNoSession))
}

func TestVoteOncePerSession(t *testing.T) {
	f := newVoteFixture(t)
	first := f.sessions.add(1, 2026, domain.SessionOpen)
	ctx := context.Background()

	input := ports.VoteInput{VoterID: f.alice.ID, VoteeID: f.bob.ID, Reason: "ok", SessionID: first.ID}
	require.NoError(t, f.svc.Vote(ctx, input))
	assert.ErrorIs(t, f.svc.Vote(ctx, input), domain.ErrAlreadyVoted)

	// The pre-check is missed when two submissions race; the store still
	// rejects the second one.
	f.votes.skipPrecheck = true
	assert.ErrorIs(t, f.svc.Vote(ctx, input), domain.ErrAlreadyVoted)

	assert.Len(t, f.votes.votes, 1)
	assert.Equal(t, 2.0, f.outcome(metrics.OutcomeDuplicate))

	// A new session accepts a new vote.
	second := f.sessions.add(2, 2026, domain.SessionOpen)
	input.SessionID = second.ID
	assert.NoError(t, f.svc.Vote(ctx, input))
}

func TestVoteForSelfIsAllowed(t *testing.T) {
	f := newVoteFixture(t)
	f.sessions.add(1, 2026, domain.SessionOpen)

	err := f.svc.Vote(context.Background(), ports.VoteInput{VoterID: f.alice.ID, VoteeID: f.alice.ID, Reason: "me"})
	assert.NoError(t, err)
}

func TestVoteUnknownVotee(t *testing.T) {
	f := newVoteFixture(t)
	f.sessions.add(1, 2026, domain.SessionOpen)

	err := f.svc.Vote(context.Background(), ports.VoteInput{VoterID: f.alice.ID, VoteeID: uuid.New(), Reason: "ok"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestVoteBackendFailure(t *testing.T) {
	f := newVoteFixture(t)
	f.sessions.add(1, 2026, domain.SessionOpen)
	f.votes.err = domain.ErrBackendUnavailable

	err := f.svc.Vote(context.Background(), ports.VoteInput{VoterID: f.alice.ID, VoteeID: f.bob.ID, Reason: "ok"})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Equal(t, 1.0, f.outcome(metrics.OutcomeBackendError))
	assert.Empty(t, f.events.types())
}

func TestMyVote(t *testing.T) {
	f := newVoteFixture(t)
	session := f.sessions.add(1, 2026, domain.SessionOpen)
	ctx := context.Background()

	_, err := f.svc.MyVote(ctx, f.alice.ID, session.ID)
	assert.ErrorIs(t, err, domain.ErrVoteNotFound)

	require.NoError(t, f.svc.Vote(ctx, ports.VoteInput{VoterID: f.alice.ID, VoteeID: f.bob.ID, Reason: "ok"}))

	vote, err := f.svc.MyVote(ctx, f.alice.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, vote.VoteeID)
}

func TestListByVoterNewestFirst(t *testing.T) {
	f := newVoteFixture(t)
	ctx := context.Background()
	week3 := f.sessions.add(3, 2026, domain.SessionClosed)
	week4 := f.sessions.add(4, 2026, domain.SessionClosed)

	base := time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC)
	f.votes.votes = []*domain.Vote{
		{ID: uuid.New(), SessionID: week3.ID, VoterID: f.alice.ID, VoteeID: f.bob.ID, Reason: "a", CreatedAt: base},
		{ID: uuid.New(), SessionID: week4.ID, VoterID: f.alice.ID, VoteeID: f.bob.ID, Reason: "b", CreatedAt: base.Add(7 * 24 * time.Hour)},
		{ID: uuid.New(), SessionID: week4.ID, VoterID: f.bob.ID, VoteeID: f.alice.ID, Reason: "c", CreatedAt: base.Add(time.Hour)},
	}

	history, err := f.svc.ListByVoter(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, "b", history[0].Reason)
	assert.Equal(t, 4, history[0].SessionWeek)
	assert.Equal(t, 2026, history[0].SessionYear)
	assert.Equal(t, f.bob, history[0].Votee)
	assert.Equal(t, "a", history[1].Reason)
	assert.Equal(t, 3, history[1].SessionWeek)

	empty, err := f.svc.ListByVoter(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
