package ports

import (
	"context"

	"github.com/vncsmyrnk/potw/internal/core/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
	Close() error
}
