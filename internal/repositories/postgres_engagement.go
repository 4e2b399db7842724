package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sah-lishi/backend-journey/internal/db"
	"github.com/sah-lishi/backend-journey/internal/models"
)

// likeTargetTables maps a likeable kind onto the table holding its rows.
var likeTargetTables = map[models.Target]string{
	models.TargetVideo:   "videos",
	models.TargetComment: "comments",
	models.TargetTweet:   "tweets",
}

// PostgresEngagementRepository provides PostgreSQL-backed persistence for
// likes and subscriptions.
type PostgresEngagementRepository struct {
	pool db.Pool
}

// NewPostgresEngagementRepository constructs an engagement repository backed by PostgreSQL.
func NewPostgresEngagementRepository(pool db.Pool) *PostgresEngagementRepository {
	return &PostgresEngagementRepository{pool: pool}
}

// ToggleLike deletes the like keyed on the triple, or inserts it when there
// was nothing to delete. The unique constraint on the triple absorbs a
// concurrent insert.
func (r *PostgresEngagementRepository) ToggleLike(ctx context.Context, actorID string, kind models.Target, targetID string) (bool, error) {
	table, ok := likeTargetTables[kind]
	if !ok {
		return false, fmt.Errorf("toggle like: unsupported target %q", kind)
	}

	var active bool
	err := executeTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := requireRow(ctx, tx, table, targetID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
            DELETE FROM likes
            WHERE liked_by = $1 AND target_kind = $2 AND target_id = $3
        `, actorID, string(kind), targetID)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		if tag.RowsAffected() > 0 {
			active = false
			return nil
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO likes (id, liked_by, target_kind, target_id, created_at)
            VALUES ($1, $2, $3, $4, now())
            ON CONFLICT (liked_by, target_kind, target_id) DO NOTHING
        `, models.NewID(), actorID, string(kind), targetID); err != nil {
			return translate("insert like", err)
		}
		active = true
		return nil
	})
	return active, err
}

// ToggleSubscription is ToggleLike keyed on (subscriber, channel).
func (r *PostgresEngagementRepository) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	var active bool
	err := executeTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := requireRow(ctx, tx, "users", channelID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
            DELETE FROM subscriptions
            WHERE subscriber_id = $1 AND channel_id = $2
        `, subscriberID, channelID)
		if err != nil {
			return fmt.Errorf("delete subscription: %w", err)
		}
		if tag.RowsAffected() > 0 {
			active = false
			return nil
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
            VALUES ($1, $2, $3, now())
            ON CONFLICT (subscriber_id, channel_id) DO NOTHING
        `, models.NewID(), subscriberID, channelID); err != nil {
			return translate("insert subscription", err)
		}
		active = true
		return nil
	})
	return active, err
}

// requireRow returns ErrNotFound unless table holds a row with id. table
// always comes from a fixed set of names.
func requireRow(ctx context.Context, tx pgx.Tx, table, id string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check %s: %w", table, err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// ListSubscribers returns the channel's subscribers with their usernames, newest first.
func (r *PostgresEngagementRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.Subscription, error) {
	return r.listSubscriptions(ctx, `
        SELECT s.id, s.subscriber_id, s.channel_id, u.username, s.created_at
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC, s.id DESC
    `, channelID)
}

// ListSubscriptions returns the channels a user follows with their usernames, newest first.
func (r *PostgresEngagementRepository) ListSubscriptions(ctx context.Context, subscriberID string) ([]models.Subscription, error) {
	return r.listSubscriptions(ctx, `
        SELECT s.id, s.subscriber_id, s.channel_id, u.username, s.created_at
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC, s.id DESC
    `, subscriberID)
}

func (r *PostgresEngagementRepository) listSubscriptions(ctx context.Context, query, id string) ([]models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []models.Subscription{}
	for rows.Next() {
		var s models.Subscription
		if err := rows.Scan(&s.ID, &s.SubscriberID, &s.ChannelID, &s.Username, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

// ListLikedVideos returns the videos a user liked, newest like first.
func (r *PostgresEngagementRepository) ListLikedVideos(ctx context.Context, userID string) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+qualifiedVideoColumns("v")+`
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        WHERE l.liked_by = $1 AND l.target_kind = 'video'
        ORDER BY l.created_at DESC, l.id DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	return collectVideos(rows, "liked videos")
}
