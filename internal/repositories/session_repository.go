package repositories

import (
	"context"
	"fmt"
)

// The rotation token lives on the users row: one active session per user.

// SetRefreshToken overwrites the stored rotation token.
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET refresh_token = NULLIF($2::TEXT, ''), updated_at = now()
        WHERE id = $1
    `, userID, token)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SwapRefreshToken replaces current with next only while current is still
// stored. ErrStaleValue means another rotation or a logout won the race.
func (r *PostgresUserRepository) SwapRefreshToken(ctx context.Context, userID, current, next string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET refresh_token = $3, updated_at = now()
        WHERE id = $1 AND refresh_token = $2
    `, userID, current, next)
	if err != nil {
		return fmt.Errorf("swap refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleValue
	}
	return nil
}

// ClearRefreshToken removes the stored rotation token.
func (r *PostgresUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	return r.SetRefreshToken(ctx, userID, "")
}
