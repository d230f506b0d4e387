package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
	err   error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	return r.users[parsed], nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	nextID   int64
	sessions []*domain.VotingSession
	err      error
}

func (r *fakeSessionRepo) add(week, year int, status domain.SessionStatus) *domain.VotingSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s := &domain.VotingSession{
		ID:         r.nextID,
		WeekNumber: week,
		Year:       year,
		Status:     status,
		CreatedAt:  time.Now().Add(time.Duration(r.nextID) * time.Second),
	}
	r.sessions = append(r.sessions, s)
	return s
}

func (r *fakeSessionRepo) Save(_ context.Context, session *domain.VotingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, s := range r.sessions {
		if s.WeekNumber == session.WeekNumber && s.Year == session.Year {
			return domain.ErrDuplicateSession
		}
	}
	r.nextID++
	session.ID = r.nextID
	session.CreatedAt = time.Now()
	stored := *session
	r.sessions = append(r.sessions, &stored)
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id int64) (*domain.VotingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, s := range r.sessions {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) GetByWeek(_ context.Context, week, year int) (*domain.VotingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, s := range r.sessions {
		if s.WeekNumber == week && s.Year == year {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) GetLatestOpen(_ context.Context) (*domain.VotingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var latest *domain.VotingSession
	for _, s := range r.sessions {
		if s.IsOpen() && (latest == nil || s.CreatedAt.After(latest.CreatedAt)) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeSessionRepo) List(_ context.Context) ([]*domain.VotingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.VotingSession, 0, len(r.sessions))
	for i := len(r.sessions) - 1; i >= 0; i-- {
		cp := *r.sessions[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSessionRepo) Close(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, s := range r.sessions {
		if s.ID == id {
			now := time.Now()
			s.Status = domain.SessionClosed
			s.ClosedAt = &now
			return nil
		}
	}
	return domain.ErrSessionNotFound
}

type fakeVoteRepo struct {
	mu    sync.Mutex
	votes []*domain.Vote
	users *fakeUserRepo
	err   error
	// skipPrecheck hides stored votes from GetByVoterAndSession to mimic a
	// concurrent insert that lands between the check and the write.
	skipPrecheck bool
}

func (r *fakeVoteRepo) SaveVote(_ context.Context, vote *domain.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, v := range r.votes {
		if v.VoterID == vote.VoterID && v.SessionID == vote.SessionID {
			return domain.ErrAlreadyVoted
		}
	}
	if r.users != nil {
		if _, ok := r.users.users[vote.VoteeID]; !ok {
			return domain.ErrUserNotFound
		}
	}
	cp := *vote
	r.votes = append(r.votes, &cp)
	return nil
}

func (r *fakeVoteRepo) GetByVoterAndSession(_ context.Context, voterID uuid.UUID, sessionID int64) (*domain.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.skipPrecheck {
		return nil, nil
	}
	for _, v := range r.votes {
		if v.VoterID == voterID && v.SessionID == sessionID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeVoteRepo) filter(keep func(*domain.Vote) bool) ([]*domain.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*domain.Vote
	for _, v := range r.votes {
		if keep(v) {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeVoteRepo) ListBySession(_ context.Context, sessionID int64) ([]*domain.Vote, error) {
	return r.filter(func(v *domain.Vote) bool { return v.SessionID == sessionID })
}

func (r *fakeVoteRepo) ListByVoter(_ context.Context, voterID uuid.UUID) ([]*domain.Vote, error) {
	return r.filter(func(v *domain.Vote) bool { return v.VoterID == voterID })
}

func (r *fakeVoteRepo) ListAll(_ context.Context) ([]*domain.Vote, error) {
	return r.filter(func(*domain.Vote) bool { return true })
}

type fakeAuthRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*domain.RefreshToken
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{tokens: make(map[uuid.UUID]*domain.RefreshToken)}
}

func (r *fakeAuthRepo) StoreRefreshToken(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	r.tokens[token.ID] = token
	return nil
}

func (r *fakeAuthRepo) GetRefreshTokenByHash(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAuthRepo) RevokeRefreshToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	parsed, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	if t, ok := r.tokens[parsed]; ok {
		t.Revoked = true
	}
	return nil
}

type fakeVerifier struct {
	payloads map[string]*ports.TokenPayload
}

func (v *fakeVerifier) Verify(_ context.Context, token string, _ string) (*ports.TokenPayload, error) {
	p, ok := v.payloads[token]
	if !ok {
		return nil, errors.New("token rejected")
	}
	return p, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newUser(name string) *domain.User {
	return &domain.User{
		ID:    uuid.New(),
		Name:  name,
		Email: name + "@example.com",
	}
}
