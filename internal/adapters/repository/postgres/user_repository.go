package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
)

const userColumns = `id, email, name, avatar_url, is_admin, created_at`

type UserRepository struct {
	db    *sql.DB
	guard *Guard
}

func NewUserRepository(db *sql.DB, guard *Guard) ports.UserRepository {
	return &UserRepository{db: db, guard: guard}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user *domain.User
	err := r.guard.Do(ctx, func() error {
		u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
		if errors.Is(err, sql.ErrNoRows) {
			user = nil
			return nil
		}
		user = u
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL`
	return r.getOne(ctx, query, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, query, id)
}

// GetByIDs resolves a batch of ids in one round trip. Unknown ids are
// silently absent from the result.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL`
	return r.list(ctx, query, pq.Array(keys))
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL ORDER BY name, email`
	return r.list(ctx, query)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	var users []*domain.User
	err := r.guard.Do(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		users = []*domain.User{}
		for rows.Next() {
			user, err := scanUser(rows)
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, name, avatar_url, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.guard.Do(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, user.Email, user.Name, user.AvatarURL, user.IsAdmin).
			Scan(&user.ID, &user.CreatedAt)
	})
}
