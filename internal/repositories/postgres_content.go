package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sah-lishi/backend-journey/internal/db"
	"github.com/sah-lishi/backend-journey/internal/models"
)

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

const commentColumns = `id, video_id, owner_id, content, created_at, updated_at`

func commentDest(c *models.Comment) []any {
	return []any{&c.ID, &c.VideoID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt}
}

// Create stores a comment. A missing video or owner returns ErrNotFound.
func (r *PostgresCommentRepository) Create(ctx context.Context, c models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `INSERT INTO comments (`+commentColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`, commentDest(&c)...); err != nil {
		return translate("insert comment", err)
	}
	return nil
}

// FindByID fetches a comment.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var c models.Comment
	if err := conn.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id).Scan(commentDest(&c)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("select comment: %w", err)
	}
	return c, nil
}

// ListByVideo returns one page of a video's comments, newest first.
func (r *PostgresCommentRepository) ListByVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+commentColumns+`
        FROM comments
        WHERE video_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, videoID, limit, pageOffset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(commentDest(&c)...); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

// UpdateContent replaces a comment's text.
func (r *PostgresCommentRepository) UpdateContent(ctx context.Context, id, content string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var c models.Comment
	err = conn.QueryRow(ctx, `
        UPDATE comments SET content = $2, updated_at = now()
        WHERE id = $1
        RETURNING `+commentColumns, id, content).Scan(commentDest(&c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return c, nil
}

// Delete removes a comment and the likes pointing at it.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	return deleteLikeable(ctx, r.pool, "comments", models.TargetComment, id)
}

// deleteLikeable removes a row from table along with its likes.
func deleteLikeable(ctx context.Context, pool db.Pool, table string, kind models.Target, id string) error {
	return executeTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM likes WHERE target_kind = $1 AND target_id = $2`, string(kind), id); err != nil {
			return fmt.Errorf("delete %s likes: %w", kind, err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete %s: %w", kind, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// PostgresTweetRepository provides PostgreSQL-backed persistence for tweets.
type PostgresTweetRepository struct {
	pool db.Pool
}

// NewPostgresTweetRepository constructs a tweet repository backed by PostgreSQL.
func NewPostgresTweetRepository(pool db.Pool) *PostgresTweetRepository {
	return &PostgresTweetRepository{pool: pool}
}

const tweetColumns = `id, owner_id, content, created_at, updated_at`

func tweetDest(t *models.Tweet) []any {
	return []any{&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt}
}

// Create stores a tweet.
func (r *PostgresTweetRepository) Create(ctx context.Context, t models.Tweet) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `INSERT INTO tweets (`+tweetColumns+`) VALUES ($1, $2, $3, $4, $5)`, tweetDest(&t)...); err != nil {
		return translate("insert tweet", err)
	}
	return nil
}

// FindByID fetches a tweet.
func (r *PostgresTweetRepository) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var t models.Tweet
	if err := conn.QueryRow(ctx, `SELECT `+tweetColumns+` FROM tweets WHERE id = $1`, id).Scan(tweetDest(&t)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tweet{}, ErrNotFound
		}
		return models.Tweet{}, fmt.Errorf("select tweet: %w", err)
	}
	return t, nil
}

// ListByOwner returns one page of a user's tweets, newest first.
func (r *PostgresTweetRepository) ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+tweetColumns+`
        FROM tweets
        WHERE owner_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, ownerID, limit, pageOffset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("query tweets: %w", err)
	}
	defer rows.Close()

	tweets := []models.Tweet{}
	for rows.Next() {
		var t models.Tweet
		if err := rows.Scan(tweetDest(&t)...); err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		tweets = append(tweets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", err)
	}
	return tweets, nil
}

// UpdateContent replaces a tweet's text.
func (r *PostgresTweetRepository) UpdateContent(ctx context.Context, id, content string) (models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var t models.Tweet
	err = conn.QueryRow(ctx, `
        UPDATE tweets SET content = $2, updated_at = now()
        WHERE id = $1
        RETURNING `+tweetColumns, id, content).Scan(tweetDest(&t)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tweet{}, ErrNotFound
		}
		return models.Tweet{}, fmt.Errorf("update tweet: %w", err)
	}
	return t, nil
}

// Delete removes a tweet and the likes pointing at it.
func (r *PostgresTweetRepository) Delete(ctx context.Context, id string) error {
	return deleteLikeable(ctx, r.pool, "tweets", models.TargetTweet, id)
}
