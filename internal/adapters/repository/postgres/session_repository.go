package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
)

const sessionColumns = `id, week_number, year, status, created_at, closed_at`

type sessionRepository struct {
	db    *sql.DB
	guard *Guard
}

func NewSessionRepository(db *sql.DB, guard *Guard) ports.SessionRepository {
	return &sessionRepository{
		db:    db,
		guard: guard,
	}
}

func scanSession(row rowScanner) (*domain.VotingSession, error) {
	s := &domain.VotingSession{}
	var closedAt sql.NullTime
	if err := row.Scan(&s.ID, &s.WeekNumber, &s.Year, &s.Status, &s.CreatedAt, &closedAt); err != nil {
		return nil, err
	}
	if closedAt.Valid {
		s.ClosedAt = &closedAt.Time
	}
	return s, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.VotingSession) error {
	query := `
		INSERT INTO voting_sessions (week_number, year, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.guard.Do(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, session.WeekNumber, session.Year, session.Status).
			Scan(&session.ID, &session.CreatedAt)
	})
	if err != nil {
		return translate(err, domain.ErrDuplicateSession, nil)
	}
	return nil
}

func (r *sessionRepository) getOne(ctx context.Context, query string, args ...any) (*domain.VotingSession, error) {
	var session *domain.VotingSession
	err := r.guard.Do(ctx, func() error {
		s, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			session = nil
			return nil
		}
		session = s
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id int64) (*domain.VotingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM voting_sessions WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *sessionRepository) GetByWeek(ctx context.Context, week, year int) (*domain.VotingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM voting_sessions WHERE week_number = $1 AND year = $2`
	return r.getOne(ctx, query, week, year)
}

func (r *sessionRepository) GetLatestOpen(ctx context.Context) (*domain.VotingSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM voting_sessions
		WHERE status = 'OPEN'
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	return r.getOne(ctx, query)
}

func (r *sessionRepository) List(ctx context.Context) ([]*domain.VotingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM voting_sessions ORDER BY created_at DESC, id DESC`

	var sessions []*domain.VotingSession
	err := r.guard.Do(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		sessions = []*domain.VotingSession{}
		for rows.Next() {
			s, err := scanSession(rows)
			if err != nil {
				return err
			}
			sessions = append(sessions, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Close marks the session CLOSED. closed_at keeps the first close time.
func (r *sessionRepository) Close(ctx context.Context, id int64) error {
	query := `
		UPDATE voting_sessions
		SET status = 'CLOSED', closed_at = COALESCE(closed_at, NOW())
		WHERE id = $1
	`
	var affected int64
	err := r.guard.Do(ctx, func() error {
		res, err := r.db.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	if affected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
