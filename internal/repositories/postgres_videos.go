package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/sah-lishi/backend-journey/internal/db"
	"github.com/sah-lishi/backend-journey/internal/feed"
	"github.com/sah-lishi/backend-journey/internal/models"
)

var videoColumnNames = []string{
	"id", "owner_id", "video_file", "video_public_id", "thumbnail", "thumbnail_public_id",
	"title", "description", "duration", "views", "is_published", "created_at", "updated_at",
}

var videoColumns = strings.Join(videoColumnNames, ", ")

func qualifiedVideoColumns(alias string) string {
	cols := make([]string, len(videoColumnNames))
	for i, c := range videoColumnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func videoDest(v *models.Video) []any {
	return []any{&v.ID, &v.OwnerID, &v.VideoFile, &v.VideoPublicID, &v.Thumbnail, &v.ThumbnailPublicID,
		&v.Title, &v.Description, &v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt}
}

func collectVideos(rows pgx.Rows, op string) ([]models.Video, error) {
	defer rows.Close()
	videos := []models.Video{}
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(videoDest(&v)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", op, err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return videos, nil
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, v models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (`+videoColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, videoDest(&v)...)
	if err != nil {
		return translate("insert video", err)
	}
	return nil
}

// FindByID fetches a video by id regardless of publication state.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var v models.Video
	if err := conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id).Scan(videoDest(&v)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}
	return v, nil
}

// ListVideos runs a feed plan.
func (r *PostgresVideoRepository) ListVideos(ctx context.Context, plan feed.Plan) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tail, args := plan.Tail()
	rows, err := conn.Query(ctx, `SELECT `+videoColumns+` FROM videos `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	return collectVideos(rows, "videos")
}

// Update applies the non-nil fields of update and returns the new row.
func (r *PostgresVideoRepository) Update(ctx context.Context, id string, update models.VideoUpdate) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var v models.Video
	err = conn.QueryRow(ctx, `
        UPDATE videos
        SET title = COALESCE($2::TEXT, title),
            description = COALESCE($3::TEXT, description),
            thumbnail = COALESCE($4::TEXT, thumbnail),
            thumbnail_public_id = COALESCE($5::TEXT, thumbnail_public_id),
            updated_at = now()
        WHERE id = $1
        RETURNING `+videoColumns,
		id, update.Title, update.Description, update.Thumbnail, update.ThumbnailPublicID,
	).Scan(videoDest(&v)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("update video: %w", err)
	}
	return v, nil
}

// TogglePublish flips is_published and returns the new row.
func (r *PostgresVideoRepository) TogglePublish(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var v models.Video
	err = conn.QueryRow(ctx, `
        UPDATE videos
        SET is_published = NOT is_published, updated_at = now()
        WHERE id = $1
        RETURNING `+videoColumns, id).Scan(videoDest(&v)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("toggle publish: %w", err)
	}
	return v, nil
}

// Delete removes the video together with the likes that point at it or at
// its comments, and returns the deleted row so its blobs can be reaped.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) (models.Video, error) {
	var deleted models.Video
	err := executeTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            DELETE FROM likes
            WHERE (target_kind = 'video' AND target_id = $1)
               OR (target_kind = 'comment' AND target_id IN (SELECT id FROM comments WHERE video_id = $1))
        `, id); err != nil {
			return fmt.Errorf("delete video likes: %w", err)
		}

		err := tx.QueryRow(ctx, `DELETE FROM videos WHERE id = $1 RETURNING `+videoColumns, id).Scan(videoDest(&deleted)...)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("delete video: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Video{}, err
	}
	return deleted, nil
}

// RecordView appends videoID to the user's watch history and increments
// the view counter in the same transaction. It reports whether this was
// the user's first view; repeat views change nothing.
func (r *PostgresVideoRepository) RecordView(ctx context.Context, userID, videoID string) (bool, error) {
	var counted bool
	err := executeTx(ctx, r.pool, func(tx pgx.Tx) error {
		counted = false
		tag, err := tx.Exec(ctx, `
            INSERT INTO watch_history (user_id, video_id, viewed_at)
            VALUES ($1, $2, now())
            ON CONFLICT (user_id, video_id) DO NOTHING
        `, userID, videoID)
		if err != nil {
			return translate("insert watch history", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		if _, err := tx.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, videoID); err != nil {
			return fmt.Errorf("increment views: %w", err)
		}
		counted = true
		return nil
	})
	return counted, err
}
