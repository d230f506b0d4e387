package domain

type VoteeResult struct {
	User      *User           `json:"user"`
	VoteCount int             `json:"vote_count"`
	Votes     []VoteWithUsers `json:"votes"`
}

type SessionResults struct {
	Session           VotingSession   `json:"session"`
	TotalVotes        int             `json:"total_votes"`
	Results           []VoteeResult   `json:"results"`
	HonorableMentions []VoteWithUsers `json:"honorable_mentions"`
}

type ValueCount struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type PersonRanking struct {
	User       *User `json:"user"`
	TotalVotes int   `json:"total_votes"`
}

type Analytics struct {
	ValueDistribution []ValueCount    `json:"value_distribution"`
	PeopleRanking     []PersonRanking `json:"people_ranking"`
}

// WinnersLimit is the number of votees revealed on the results view.
const WinnersLimit = 3
