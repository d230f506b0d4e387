package domain

import (
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	ID                uuid.UUID `json:"id"`
	SessionID         int64     `json:"session_id"`
	VoterID           uuid.UUID `json:"voter_id"`
	VoteeID           uuid.UUID `json:"votee_id"`
	Reason            string    `json:"reason"`
	HonorableMentions string    `json:"honorable_mentions"`
	Value             *string   `json:"value,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// VoteWithUsers is a vote joined with both profiles. Either profile may be
// nil when the user record no longer resolves.
type VoteWithUsers struct {
	Vote
	Voter *User `json:"voter"`
	Votee *User `json:"votee"`
}

// VoterHistoryEntry is one row of a user's own voting history.
type VoterHistoryEntry struct {
	VoteWithUsers
	SessionWeek int `json:"session_week"`
	SessionYear int `json:"session_year"`
}

// Company values a vote can be tagged with.
const (
	ValueThinkDifferent = "THINK DIFFERENT AND LOOK TO THE HORIZON"
	ValueLearnTeach     = "LEARN, TEACH, REPEAT"
	ValueWalkTheTalk    = "WALK THE TALK"
	ValueFailFast       = "EXECUTE, FAIL FAST, FAIL DIFFERENTLY"
	ValueEnjoy          = "WE ENJOY WHAT WE DO"
	ValueCustomerFirst  = "CUSTOMER FIRST"
)

var CompanyValues = []string{
	ValueThinkDifferent,
	ValueLearnTeach,
	ValueWalkTheTalk,
	ValueFailFast,
	ValueEnjoy,
	ValueCustomerFirst,
}

func IsCompanyValue(v string) bool {
	for _, cv := range CompanyValues {
		if cv == v {
			return true
		}
	}
	return false
}
