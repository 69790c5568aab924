package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
)

var ErrTokenChanged = errors.New("no rows affected; token was replaced concurrently")

const socialAccountColumns = `id, user_id, platform, account_id, first_name, last_name, profile_picture_url,
	access_token, refresh_token, token_expires_at, created_at, updated_at`

type SocialAccountRepository interface {
	Upsert(ctx context.Context, sa *models.SocialAccount) error
	GetByUserID(ctx context.Context, userID, platform string) (*models.SocialAccount, error)
	ListExpiring(ctx context.Context, platform string, before time.Time) ([]*models.SocialAccount, error)
	SetToken(ctx context.Context, userID, platform, oldAccessToken string, sa *models.SocialAccount) error
	Remove(ctx context.Context, userID, platform string) (bool, error)
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

func scanSocialAccount(row rowScanner) (*models.SocialAccount, error) {
	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.UserID, &sa.Platform, &sa.AccountID, &sa.FirstName, &sa.LastName,
		&sa.ProfilePicture, &sa.AccessToken, &sa.RefreshToken, &sa.TokenExpiresAt, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

// Upsert replaces the user's linkage for the platform, keeping a single row per (user, platform).
func (r *socialAccountRepository) Upsert(ctx context.Context, sa *models.SocialAccount) error {
	query := `
		INSERT INTO social_accounts (
			user_id,
			platform,
			account_id,
			first_name,
			last_name,
			profile_picture_url,
			access_token,
			refresh_token,
			token_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, platform) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			profile_picture_url = EXCLUDED.profile_picture_url,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		sa.UserID,
		sa.Platform,
		sa.AccountID,
		sa.FirstName,
		sa.LastName,
		sa.ProfilePicture,
		sa.AccessToken,
		sa.RefreshToken,
		sa.TokenExpiresAt,
	).Scan(&sa.ID, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) GetByUserID(ctx context.Context, userID, platform string) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1 AND platform = $2`
	sa, err := scanSocialAccount(r.db.QueryRowContext(ctx, query, userID, platform))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sa, nil
}

// ListExpiring returns refreshable linkages whose token expires before the given time.
func (r *socialAccountRepository) ListExpiring(ctx context.Context, platform string, before time.Time) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts
		WHERE platform = $1 AND token_expires_at < $2 AND refresh_token <> ''`
	rows, err := r.db.QueryContext(ctx, query, platform, before)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		sa, err := scanSocialAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, sa)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return accounts, nil
}

// SetToken swaps tokens only if the stored access token is still oldAccessToken.
func (r *socialAccountRepository) SetToken(ctx context.Context, userID, platform, oldAccessToken string, sa *models.SocialAccount) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE social_accounts
		SET
			access_token = COALESCE(NULLIF($4, ''), access_token),
			refresh_token = COALESCE(NULLIF($5, ''), refresh_token),
			token_expires_at = $6,
			updated_at = NOW()
		WHERE user_id = $1 AND platform = $2 AND access_token = $3
	`
	result, err := tx.ExecContext(ctx, query, userID, platform, oldAccessToken, sa.AccessToken, sa.RefreshToken, sa.TokenExpiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		slog.Info(ErrTokenChanged.Error(), "user_id", userID)
		return ErrTokenChanged
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) Remove(ctx context.Context, userID, platform string) (bool, error) {
	query := `DELETE FROM social_accounts WHERE user_id = $1 AND platform = $2`
	result, err := r.db.ExecContext(ctx, query, userID, platform)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected > 0, nil
}
