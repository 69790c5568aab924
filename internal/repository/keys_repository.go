package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/autopost/internal/models"
)

type ApiKeyRepository interface {
	GetByKey(ctx context.Context, apiKey string) (string, bool, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.ApiKey, error)
	Create(ctx context.Context, apiKey *models.ApiKey) (int64, error)
	Remove(ctx context.Context, id int64, userID string) (bool, error)
}

type apiKeyRepository struct {
	db *sql.DB
}

func NewApiKeyRepository(db *sql.DB) ApiKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) GetByKey(ctx context.Context, apiKey string) (string, bool, error) {
	var userID string
	query := "SELECT user_id FROM api_keys WHERE api_key = $1"
	err := r.db.QueryRowContext(ctx, query, apiKey).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		slog.Info(err.Error())
		return "", false, err
	}
	return userID, true, nil
}

func (r *apiKeyRepository) GetByUserID(ctx context.Context, userID string) ([]*models.ApiKey, error) {
	query := `SELECT id, user_id, api_key, created_at FROM api_keys WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var apiKeys []*models.ApiKey
	for rows.Next() {
		var apiKey models.ApiKey
		if err := rows.Scan(&apiKey.ID, &apiKey.UserID, &apiKey.ApiKey, &apiKey.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		apiKeys = append(apiKeys, &apiKey)
	}
	return apiKeys, rows.Err()
}

func (r *apiKeyRepository) Create(ctx context.Context, apiKey *models.ApiKey) (int64, error) {
	query := "INSERT INTO api_keys (user_id, api_key) VALUES ($1, $2) RETURNING id, created_at"
	err := r.db.QueryRowContext(ctx, query, apiKey.UserID, apiKey.ApiKey).Scan(&apiKey.ID, &apiKey.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return apiKey.ID, nil
}

func (r *apiKeyRepository) Remove(ctx context.Context, id int64, userID string) (bool, error) {
	query := `DELETE FROM api_keys WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
