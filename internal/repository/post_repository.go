package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
)

const postColumns = `id, user_id, content, topic, tone, status, scheduled_at, published_at, external_post_id,
	likes, comments, shares, impressions, version, publish_started_at, created_at, updated_at`

// leaseFree matches posts no live publish is holding. Keep the interval in step with models.PublishLease.
const leaseFree = `(publish_started_at IS NULL OR publish_started_at < NOW() - INTERVAL '5 minutes')`

// PostRepository persists posts. Every read and write is scoped by (id, user_id).
// Mutations are conditional updates: they return nil when no row matched the
// owner, the version, or the status guard.
//
// ClaimForPublish takes the publish lease (publish_started_at) and bumps the
// version. While the lease is live, edits, reschedules, deletes and further
// claims match no row. MarkPublished and MarkFailed release it and must be
// given the version returned by the claim.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, userID string) (*models.Post, error)
	ListByUserID(ctx context.Context, userID, status string, limit, offset int) ([]*models.Post, error)
	CountByUserID(ctx context.Context, userID, status string) (int64, error)
	Update(ctx context.Context, post *models.Post) (*models.Post, error)
	Schedule(ctx context.Context, id, userID string, version int64, scheduledAt time.Time) (*models.Post, error)
	ClaimForPublish(ctx context.Context, id, userID string, version int64) (*models.Post, error)
	MarkPublished(ctx context.Context, id, userID string, version int64, publishedAt time.Time, externalPostID string) (*models.Post, error)
	MarkFailed(ctx context.Context, id, userID string, version int64) (*models.Post, error)
	UpdateAnalytics(ctx context.Context, id, userID string, analytics models.Analytics) (*models.Post, error)
	Remove(ctx context.Context, id, userID string) (bool, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		post           models.Post
		scheduledAt    sql.NullTime
		publishedAt    sql.NullTime
		externalPostID sql.NullString
		publishingAt   sql.NullTime
	)
	err := row.Scan(&post.ID, &post.UserID, &post.Content, &post.Topic, &post.Tone, &post.Status,
		&scheduledAt, &publishedAt, &externalPostID,
		&post.Analytics.Likes, &post.Analytics.Comments, &post.Analytics.Shares, &post.Analytics.Impressions,
		&post.Version, &publishingAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if scheduledAt.Valid {
		post.ScheduledAt = &scheduledAt.Time
	}
	if publishedAt.Valid {
		post.PublishedAt = &publishedAt.Time
	}
	if externalPostID.Valid {
		post.ExternalPostID = &externalPostID.String
	}
	if publishingAt.Valid {
		post.PublishingAt = &publishingAt.Time
	}
	return &post, nil
}

// queryPost runs a statement returning at most one post row; no row yields nil, nil.
func (r *postRepository) queryPost(ctx context.Context, query string, args ...any) (*models.Post, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, user_id, content, topic, tone, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING version, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, post.ID, post.UserID, post.Content, post.Topic, post.Tone, post.Status).
		Scan(&post.Version, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id, userID string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND user_id = $2`
	return r.queryPost(ctx, query, id, userID)
}

func (r *postRepository) ListByUserID(ctx context.Context, userID, status string, limit, offset int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, userID, status, limit, offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	posts := make([]*models.Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) CountByUserID(ctx context.Context, userID, status string) (int64, error) {
	query := `SELECT COUNT(*) FROM posts WHERE user_id = $1 AND ($2 = '' OR status = $2)`

	var total int64
	if err := r.db.QueryRowContext(ctx, query, userID, status).Scan(&total); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return total, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		UPDATE posts
		SET content = $1,
			topic = $2,
			tone = $3,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $4 AND user_id = $5 AND version = $6
			AND status <> 'published' AND ` + leaseFree + `
		RETURNING ` + postColumns
	return r.queryPost(ctx, query, post.Content, post.Topic, post.Tone, post.ID, post.UserID, post.Version)
}

func (r *postRepository) Schedule(ctx context.Context, id, userID string, version int64, scheduledAt time.Time) (*models.Post, error) {
	query := `
		UPDATE posts
		SET status = 'scheduled',
			scheduled_at = $1,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND version = $4
			AND status <> 'published' AND ` + leaseFree + `
		RETURNING ` + postColumns
	return r.queryPost(ctx, query, scheduledAt, id, userID, version)
}

func (r *postRepository) ClaimForPublish(ctx context.Context, id, userID string, version int64) (*models.Post, error) {
	query := `
		UPDATE posts
		SET version = version + 1,
			publish_started_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND version = $3
			AND status <> 'published' AND ` + leaseFree + `
		RETURNING ` + postColumns
	return r.queryPost(ctx, query, id, userID, version)
}

func (r *postRepository) MarkPublished(ctx context.Context, id, userID string, version int64, publishedAt time.Time, externalPostID string) (*models.Post, error) {
	query := `
		UPDATE posts
		SET status = 'published',
			published_at = $1,
			external_post_id = $2,
			version = version + 1,
			publish_started_at = NULL,
			updated_at = NOW()
		WHERE id = $3 AND user_id = $4 AND version = $5 AND status <> 'published'
		RETURNING ` + postColumns
	return r.queryPost(ctx, query, publishedAt, externalPostID, id, userID, version)
}

func (r *postRepository) MarkFailed(ctx context.Context, id, userID string, version int64) (*models.Post, error) {
	query := `
		UPDATE posts
		SET status = 'failed',
			version = version + 1,
			publish_started_at = NULL,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND version = $3 AND status <> 'published'
		RETURNING ` + postColumns
	return r.queryPost(ctx, query, id, userID, version)
}

func (r *postRepository) UpdateAnalytics(ctx context.Context, id, userID string, a models.Analytics) (*models.Post, error) {
	query := `
		UPDATE posts
		SET likes = $1,
			comments = $2,
			shares = $3,
			impressions = $4,
			updated_at = NOW()
		WHERE id = $5 AND user_id = $6 AND status = 'published'
		RETURNING ` + postColumns
	return r.queryPost(ctx, query, a.Likes, a.Comments, a.Shares, a.Impressions, id, userID)
}

func (r *postRepository) Remove(ctx context.Context, id, userID string) (bool, error) {
	query := `DELETE FROM posts WHERE id = $1 AND user_id = $2 AND status <> 'published' AND ` + leaseFree
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}
