package http

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
	"github.com/vncsmyrnk/potw/internal/metrics"
)

type fakeAuthService struct {
	mu      sync.Mutex
	tokens  map[string]*domain.User
	policy  domain.AccessPolicy
	logouts []string
	err     error
}

func (s *fakeAuthService) LoginWithGoogle(_ context.Context, credential string) (string, string, error) {
	user, ok := s.tokens[credential]
	if !ok {
		return "", "", domain.ErrUnauthenticated
	}
	if err := s.policy.Check(user.Email); err != nil {
		return "", "", err
	}
	return credential, "refresh-" + credential, nil
}

func (s *fakeAuthService) RefreshAccessToken(_ context.Context, refreshToken string) (string, string, error) {
	return "", "", domain.ErrUnauthenticated
}

func (s *fakeAuthService) Logout(_ context.Context, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts = append(s.logouts, refreshToken)
	return nil
}

func (s *fakeAuthService) Authenticate(_ context.Context, accessToken string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.tokens[accessToken]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if err := s.policy.Check(user.Email); err != nil {
		return nil, err
	}
	return user, nil
}

type fakeUserService struct {
	users []*domain.User
}

func (s *fakeUserService) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *fakeUserService) List(context.Context) ([]*domain.User, error) {
	return s.users, nil
}

type fakeSessionService struct {
	mu       sync.Mutex
	sessions map[int64]*domain.VotingSession
	nextID   int64
}

func newFakeSessionService() *fakeSessionService {
	return &fakeSessionService{sessions: make(map[int64]*domain.VotingSession)}
}

func (s *fakeSessionService) Create(_ context.Context, input ports.CreateSessionInput) (*domain.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if input.WeekNumber == 0 {
		input.WeekNumber = 1
	}
	if !domain.ValidWeek(input.WeekNumber) {
		return nil, domain.ErrInvalidWeek
	}
	for _, existing := range s.sessions {
		if existing.WeekNumber == input.WeekNumber && existing.Year == input.Year {
			return nil, domain.ErrDuplicateSession
		}
	}
	s.nextID++
	session := &domain.VotingSession{ID: s.nextID, WeekNumber: input.WeekNumber, Year: input.Year, Status: domain.SessionOpen}
	s.sessions[session.ID] = session
	return session, nil
}

func (s *fakeSessionService) Close(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Status = domain.SessionClosed
	return nil
}

func (s *fakeSessionService) Get(_ context.Context, id int64) (*domain.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *fakeSessionService) Current(context.Context) (*domain.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *domain.VotingSession
	for _, session := range s.sessions {
		if session.IsOpen() && (latest == nil || session.ID > latest.ID) {
			latest = session
		}
	}
	if latest == nil {
		return nil, domain.ErrNoOpenSession
	}
	return latest, nil
}

func (s *fakeSessionService) List(context.Context) ([]*domain.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.SessionSummary{}
	for _, session := range s.sessions {
		out = append(out, &domain.SessionSummary{VotingSession: *session})
	}
	return out, nil
}

type fakeVoteService struct {
	mu     sync.Mutex
	inputs []ports.VoteInput
	err    error
}

func (s *fakeVoteService) Vote(_ context.Context, input ports.VoteInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, prev := range s.inputs {
		if prev.VoterID == input.VoterID && prev.SessionID == input.SessionID {
			return domain.ErrAlreadyVoted
		}
	}
	s.inputs = append(s.inputs, input)
	return nil
}

func (s *fakeVoteService) MyVote(_ context.Context, voterID uuid.UUID, sessionID int64) (*domain.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range s.inputs {
		if in.VoterID == voterID && in.SessionID == sessionID {
			return &domain.Vote{SessionID: sessionID, VoterID: voterID, VoteeID: in.VoteeID, Reason: in.Reason}, nil
		}
	}
	return nil, domain.ErrVoteNotFound
}

func (s *fakeVoteService) ListByVoter(_ context.Context, voterID uuid.UUID) ([]*domain.VoterHistoryEntry, error) {
	return []*domain.VoterHistoryEntry{}, nil
}

type fakeResultsService struct {
	lastAll bool
}

func (s *fakeResultsService) Results(_ context.Context, sessionID int64, all bool) (*domain.SessionResults, error) {
	s.lastAll = all
	if sessionID == 2 {
		return nil, domain.ErrSessionNotClosed
	}
	return &domain.SessionResults{
		Session:           domain.VotingSession{ID: sessionID, Status: domain.SessionClosed},
		Results:           []domain.VoteeResult{},
		HonorableMentions: []domain.VoteWithUsers{},
	}, nil
}

type fakeAnalyticsService struct {
	err error
}

func (s *fakeAnalyticsService) Analytics(context.Context) (*domain.Analytics, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Analytics{ValueDistribution: []domain.ValueCount{}, PeopleRanking: []domain.PersonRanking{}}, nil
}

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(context.Context) error { return p.err }

var errDatabaseDown = errors.New("database down")

type testApp struct {
	handler   http.Handler
	auth      *fakeAuthService
	sessions  *fakeSessionService
	votes     *fakeVoteService
	results   *fakeResultsService
	analytics *fakeAnalyticsService
	registry  *prometheus.Registry
	member    *domain.User
	admin     *domain.User
	outsider  *domain.User
}

func newTestApp(pinger Pinger) *testApp {
	member := &domain.User{ID: uuid.New(), Email: "member@example.com", Name: "Member"}
	admin := &domain.User{ID: uuid.New(), Email: "admin@example.com", Name: "Admin", IsAdmin: true}
	outsider := &domain.User{ID: uuid.New(), Email: "someone@gmail.com", Name: "Outsider"}

	app := &testApp{
		auth: &fakeAuthService{
			tokens: map[string]*domain.User{
				"member-token":   member,
				"admin-token":    admin,
				"outsider-token": outsider,
			},
			policy: domain.NewAccessPolicy("example.com"),
		},
		sessions:  newFakeSessionService(),
		votes:     &fakeVoteService{},
		results:   &fakeResultsService{},
		analytics: &fakeAnalyticsService{},
		registry:  prometheus.NewRegistry(),
		member:    member,
		admin:     admin,
		outsider:  outsider,
	}
	metrics.New(app.registry, "potw").ObserveVote(metrics.OutcomeAccepted)

	router := NewHandler(Handlers{
		Auth:    NewAuthHandler(app.auth, "/", "", http.SameSiteLaxMode, "example.com"),
		User:    NewUserHandler(&fakeUserService{users: []*domain.User{admin, member}}),
		Session: NewSessionHandler(app.sessions),
		Vote:    NewVoteHandler(app.votes),
		Results: NewResultsHandler(app.results, app.analytics),
		Health:  NewHealthHandler(pinger),
	}, RouterConfig{
		AllowedOrigins: []string{"https://potw.example.com"},
		Gatherer:       app.registry,
	})
	app.handler = router
	return app
}
