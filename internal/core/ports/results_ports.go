package ports

import (
	"context"

	"github.com/vncsmyrnk/potw/internal/core/domain"
)

type ResultsService interface {
	Results(ctx context.Context, sessionID int64, all bool) (*domain.SessionResults, error)
}

type AnalyticsService interface {
	Analytics(ctx context.Context) (*domain.Analytics, error)
}
