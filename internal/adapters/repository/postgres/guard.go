package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/metrics"
)

// SQLSTATE codes worth another attempt.
var transientCodes = map[pq.ErrorCode]bool{
	"53300": true, // too_many_connections
	"53400": true, // configuration_limit_exceeded
	"57P03": true, // cannot_connect_now
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
}

// IsTransient reports whether err is a failure that may succeed on retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return transientCodes[pqErr.Code]
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

type GuardConfig struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries      uint64
	InitialInterval time.Duration
	// Cooldown is how long the guard fails fast once retries are exhausted.
	Cooldown time.Duration
	Metrics  *metrics.Metrics
	Clock    func() time.Time
}

// Guard runs database round trips with bounded retries and a cooldown
// window. While the window is open every call fails with
// domain.ErrBackendUnavailable without touching the database.
type Guard struct {
	cfg GuardConfig

	mu        sync.Mutex
	openUntil time.Time
}

func NewGuard(cfg GuardConfig) *Guard {
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 50 * time.Millisecond
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Guard{cfg: cfg}
}

// Do runs op. A nil Guard runs op once.
func (g *Guard) Do(ctx context.Context, op func() error) error {
	if g == nil {
		return op()
	}
	if g.isOpen() {
		return domain.ErrBackendUnavailable
	}

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		if attempt > 1 {
			g.cfg.Metrics.ObserveRetry()
		}
		err := op()
		if err != nil && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(g.newBackOff(), g.cfg.MaxRetries), ctx))

	if err != nil && IsTransient(err) {
		g.trip(err)
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	return err
}

func (g *Guard) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.cfg.InitialInterval
	b.MaxInterval = 20 * g.cfg.InitialInterval
	b.MaxElapsedTime = 0
	return b
}

func (g *Guard) isOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg.Clock().Before(g.openUntil)
}

func (g *Guard) trip(cause error) {
	g.mu.Lock()
	g.openUntil = g.cfg.Clock().Add(g.cfg.Cooldown)
	g.mu.Unlock()

	g.cfg.Metrics.ObserveBreakerTrip()
	slog.Warn("database unavailable, failing fast",
		"cooldown", g.cfg.Cooldown,
		"error", cause,
	)
}

// translate maps constraint violations to domain errors.
func translate(err error, unique, foreignKey error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505":
		if unique != nil {
			return unique
		}
	case "23503":
		if foreignKey != nil {
			return foreignKey
		}
	}
	return err
}
