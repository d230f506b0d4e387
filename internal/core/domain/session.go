package domain

import "time"

type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

type VotingSession struct {
	ID         int64         `json:"id"`
	WeekNumber int           `json:"week_number"`
	Year       int           `json:"year"`
	Status     SessionStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	ClosedAt   *time.Time    `json:"closed_at,omitempty"`
}

func (s *VotingSession) IsOpen() bool {
	return s.Status == SessionOpen
}

// SessionSummary is a session as shown on the home list.
type SessionSummary struct {
	VotingSession
	TotalVotes int     `json:"total_votes"`
	Voters     []*User `json:"voters"`
	Winner     *User   `json:"winner"`
}

// CurrentWeek returns the ISO week and ISO year of t.
func CurrentWeek(t time.Time) (week int, year int) {
	year, week = t.ISOWeek()
	return week, year
}

func ValidWeek(week int) bool {
	return week >= 1 && week <= 53
}
