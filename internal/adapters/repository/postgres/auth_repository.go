package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
)

type AuthRepository struct {
	db    *sql.DB
	guard *Guard
}

func NewAuthRepository(db *sql.DB, guard *Guard) ports.AuthRepository {
	return &AuthRepository{db: db, guard: guard}
}

func (r *AuthRepository) StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, revoked)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.guard.Do(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, token.UserID, token.TokenHash, token.ExpiresAt, token.Revoked).
			Scan(&token.ID, &token.CreatedAt)
	})
	return translate(err, nil, domain.ErrUserNotFound)
}

func (r *AuthRepository) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	var found *domain.RefreshToken
	err := r.guard.Do(ctx, func() error {
		token := &domain.RefreshToken{}
		err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
			&token.ID,
			&token.UserID,
			&token.TokenHash,
			&token.ExpiresAt,
			&token.Revoked,
			&token.CreatedAt,
		)
		if errors.Is(err, sql.ErrNoRows) {
			found = nil
			return nil
		}
		found = token
		return err
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *AuthRepository) RevokeRefreshToken(ctx context.Context, id string) error {
	query := `UPDATE refresh_tokens SET revoked = true WHERE id = $1`
	return r.guard.Do(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query, id)
		return err
	})
}
