package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sah-lishi/backend-journey/internal/db"
	"github.com/sah-lishi/backend-journey/internal/models"
)

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

const playlistColumns = `id, owner_id, name, description, created_at, updated_at`

func playlistDest(p *models.Playlist) []any {
	return []any{&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt}
}

// Create stores a playlist and its initial videos in one transaction. Any
// unknown video id fails the whole call with ErrNotFound.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, p models.Playlist, videoIDs []string) error {
	return executeTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO playlists (`+playlistColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`, playlistDest(&p)...); err != nil {
			return translate("insert playlist", err)
		}
		for _, videoID := range videoIDs {
			if err := insertPlaylistVideo(ctx, tx, p.ID, videoID); err != nil {
				return err
			}
		}
		return nil
	})
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertPlaylistVideo(ctx context.Context, q execer, playlistID, videoID string) error {
	if _, err := q.Exec(ctx, `
        INSERT INTO playlist_videos (playlist_id, video_id, added_at)
        VALUES ($1, $2, now())
        ON CONFLICT (playlist_id, video_id) DO NOTHING
    `, playlistID, videoID); err != nil {
		return translate("insert playlist video", err)
	}
	return nil
}

// FindByID fetches a playlist with its videos, newest first.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var p models.Playlist
	if err := conn.QueryRow(ctx, `SELECT `+playlistColumns+` FROM playlists WHERE id = $1`, id).Scan(playlistDest(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT `+qualifiedVideoColumns("v")+`
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        WHERE pv.playlist_id = $1
        ORDER BY v.created_at DESC, v.id DESC
    `, id)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("query playlist videos: %w", err)
	}
	if p.Videos, err = collectVideos(rows, "playlist videos"); err != nil {
		return models.Playlist{}, err
	}
	return p, nil
}

// ListByOwner returns one page of a user's playlists without their videos.
func (r *PostgresPlaylistRepository) ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+playlistColumns+`
        FROM playlists
        WHERE owner_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, ownerID, limit, pageOffset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(playlistDest(&p)...); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		p.Videos = []models.Video{}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// AddVideo adds videoID to the playlist. Adding it twice is a no-op.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return insertPlaylistVideo(ctx, conn, playlistID, videoID)
}

// RemoveVideo removes videoID from the playlist. Removing an absent video is a no-op.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`, playlistID, videoID); err != nil {
		return fmt.Errorf("delete playlist video: %w", err)
	}
	return nil
}

// Update applies the non-nil name and description.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, id string, name, description *string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var p models.Playlist
	err = conn.QueryRow(ctx, `
        UPDATE playlists
        SET name = COALESCE($2::TEXT, name),
            description = COALESCE($3::TEXT, description),
            updated_at = now()
        WHERE id = $1
        RETURNING `+playlistColumns, id, name, description).Scan(playlistDest(&p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("update playlist: %w", err)
	}
	p.Videos = []models.Video{}
	return p, nil
}

// Delete removes a playlist; membership rows cascade.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
