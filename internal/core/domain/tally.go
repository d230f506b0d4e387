package domain

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Every function here orders ties by the earliest vote of each group. Votes
// are first put in chronological order; votes sharing a timestamp keep the
// order they were given in.

func chronological(votes []*Vote) []*Vote {
	sorted := make([]*Vote, 0, len(votes))
	for _, v := range votes {
		if v != nil {
			sorted = append(sorted, v)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

func withUsers(v *Vote, users UserIndex) VoteWithUsers {
	return VoteWithUsers{
		Vote:  *v,
		Voter: users[v.VoterID],
		Votee: users[v.VoteeID],
	}
}

// TallyVotes groups votes by votee and ranks the groups by vote count,
// highest first. The full ranking is returned.
func TallyVotes(votes []*Vote, users UserIndex) []VoteeResult {
	var order []uuid.UUID
	groups := make(map[uuid.UUID]*VoteeResult)

	for _, v := range chronological(votes) {
		g, ok := groups[v.VoteeID]
		if !ok {
			g = &VoteeResult{User: users[v.VoteeID], Votes: []VoteWithUsers{}}
			groups[v.VoteeID] = g
			order = append(order, v.VoteeID)
		}
		g.Votes = append(g.Votes, withUsers(v, users))
		g.VoteCount++
	}

	results := make([]VoteeResult, 0, len(order))
	for _, id := range order {
		results = append(results, *groups[id])
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].VoteCount > results[j].VoteCount
	})
	return results
}

// TopResults truncates a ranking to at most n groups.
func TopResults(results []VoteeResult, n int) []VoteeResult {
	if n < 0 || len(results) <= n {
		return results
	}
	return results[:n]
}

// HonorableMentions flattens the votes of every group that carry a
// non-blank honorable mention.
func HonorableMentions(results []VoteeResult) []VoteWithUsers {
	mentions := []VoteWithUsers{}
	for _, r := range results {
		for _, v := range r.Votes {
			if strings.TrimSpace(v.HonorableMentions) != "" {
				mentions = append(mentions, v)
			}
		}
	}
	return mentions
}

// SessionWinner returns the profile of the most voted votee, or nil when
// there are no votes or the winner's profile does not resolve.
func SessionWinner(votes []*Vote, users UserIndex) *User {
	ranked := TallyVotes(votes, users)
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0].User
}

// DistinctVoters lists each voter once in order of their first vote.
// Voters without a profile are skipped.
func DistinctVoters(votes []*Vote, users UserIndex) []*User {
	seen := make(map[uuid.UUID]bool)
	voters := []*User{}
	for _, v := range chronological(votes) {
		if seen[v.VoterID] {
			continue
		}
		seen[v.VoterID] = true
		if u, ok := users[v.VoterID]; ok {
			voters = append(voters, u)
		}
	}
	return voters
}

// ValueDistribution counts votes per company value. Untagged votes are
// left out of both the counts and the percentage base.
func ValueDistribution(votes []*Vote) []ValueCount {
	var order []string
	counts := make(map[string]int)
	total := 0

	for _, v := range chronological(votes) {
		if v.Value == nil || *v.Value == "" {
			continue
		}
		if _, ok := counts[*v.Value]; !ok {
			order = append(order, *v.Value)
		}
		counts[*v.Value]++
		total++
	}

	dist := make([]ValueCount, 0, len(order))
	for _, value := range order {
		dist = append(dist, ValueCount{
			Value:      value,
			Count:      counts[value],
			Percentage: float64(counts[value]) / float64(total) * 100,
		})
	}
	sort.SliceStable(dist, func(i, j int) bool {
		return dist[i].Count > dist[j].Count
	})
	return dist
}

// PeopleRanking counts votes received per votee across all sessions.
// Votees whose profile does not resolve are dropped.
func PeopleRanking(votes []*Vote, users UserIndex) []PersonRanking {
	ranking := []PersonRanking{}
	for _, r := range TallyVotes(votes, users) {
		if r.User == nil {
			continue
		}
		ranking = append(ranking, PersonRanking{User: r.User, TotalVotes: r.VoteCount})
	}
	return ranking
}
