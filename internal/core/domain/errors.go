package domain

import "errors"

var (
	ErrSessionNotFound    = errors.New("voting session not found")
	ErrInvalidSessionID   = errors.New("invalid session id")
	ErrInvalidWeek        = errors.New("week number must be between 1 and 53")
	ErrDuplicateSession   = errors.New("a voting session already exists for this week")
	ErrNoOpenSession      = errors.New("no open voting session")
	ErrSessionClosed      = errors.New("voting session is closed")
	ErrSessionNotClosed   = errors.New("voting session is not closed yet")
	ErrAlreadyVoted       = errors.New("you have already voted in this session")
	ErrVoteNotFound       = errors.New("vote not found")
	ErrReasonRequired     = errors.New("a reason is required")
	ErrInvalidValue       = errors.New("invalid company value")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrForbiddenDomain    = errors.New("email domain is not allowed")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrBackendUnavailable = errors.New("backend temporarily unavailable")
	ErrInternal           = errors.New("internal server error")
)
