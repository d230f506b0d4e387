package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
)

// publish is best-effort: a broken event sink never fails the request.
func publish(ctx context.Context, publisher ports.EventPublisher, event domain.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish event",
			"type", event.Type,
			"session_id", event.SessionID,
			"error", err,
		)
	}
}

// participantIDs returns every voter and votee id once, in first-seen order.
func participantIDs(votes []*domain.Vote) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, v := range votes {
		add(v.VoterID)
		add(v.VoteeID)
	}
	return ids
}

// loadUsers fetches the profiles referenced by votes in one batched lookup.
func loadUsers(ctx context.Context, repo ports.UserRepository, votes []*domain.Vote) (domain.UserIndex, error) {
	ids := participantIDs(votes)
	if len(ids) == 0 {
		return domain.UserIndex{}, nil
	}
	users, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return domain.NewUserIndex(users), nil
}
