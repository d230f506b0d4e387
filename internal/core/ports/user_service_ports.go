package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/potw/internal/core/domain"
)

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
