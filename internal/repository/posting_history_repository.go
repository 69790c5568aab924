package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/autopost/internal/models"
)

type PostingHistoryRepository interface {
	Create(ctx context.Context, ph *models.PostingHistory) (int64, error)
	ListByPostID(ctx context.Context, postID, userID string) ([]*models.PostingHistory, error)
}

type postingHistoryRepository struct {
	db *sql.DB
}

func NewPostingHistoryRepository(db *sql.DB) PostingHistoryRepository {
	return &postingHistoryRepository{db: db}
}

func (r *postingHistoryRepository) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	query := `
		INSERT INTO posting_history (user_id, post_id, error_message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, ph.UserID, ph.PostID, ph.ErrorMessage).Scan(&ph.ID, &ph.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return ph.ID, nil
}

func (r *postingHistoryRepository) ListByPostID(ctx context.Context, postID, userID string) ([]*models.PostingHistory, error) {
	query := `SELECT id, user_id, post_id, error_message, created_at FROM posting_history
		WHERE post_id = $1 AND user_id = $2
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, postID, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	phs := []*models.PostingHistory{}
	for rows.Next() {
		var ph models.PostingHistory
		if err := rows.Scan(&ph.ID, &ph.UserID, &ph.PostID, &ph.ErrorMessage, &ph.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		phs = append(phs, &ph)
	}
	return phs, rows.Err()
}
