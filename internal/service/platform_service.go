package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/metrics"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/transfer"
	"github.com/maheshrc27/autopost/pkg/utils"
)

// LinkReader exposes a user's decrypted LinkedIn linkage.
type LinkReader interface {
	GetLink(ctx context.Context, userID string) (*models.SocialAccount, error)
}

type PlatformService interface {
	LinkReader
	BeginLink(ctx context.Context, userID string) (*transfer.LinkResponse, error)
	CompleteLink(ctx context.Context, code, state string) (*models.SocialAccount, error)
	Unlink(ctx context.Context, userID string) error
	ListExpiring(ctx context.Context, within time.Duration) ([]*models.SocialAccount, error)
	RefreshLink(ctx context.Context, account *models.SocialAccount) error
}

type platformService struct {
	cfg     config.Config
	sa      repository.SocialAccountRepository
	pub     SocialPublisher
	metrics metrics.Recorder
	now     func() time.Time
}

func NewPlatformService(cfg config.Config, sa repository.SocialAccountRepository, pub SocialPublisher, m metrics.Recorder) PlatformService {
	return &platformService{
		cfg:     cfg,
		sa:      sa,
		pub:     pub,
		metrics: m,
		now:     time.Now,
	}
}

func (s *platformService) BeginLink(ctx context.Context, userID string) (*transfer.LinkResponse, error) {
	if userID == "" {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	state, err := utils.GenerateState(s.cfg.SecretKey, userID, s.now(), s.cfg.OAuthStateTTL)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error generating oauth state: %w", err)
	}

	return &transfer.LinkResponse{
		AuthURL: s.pub.AuthorizationURL(state),
		State:   state,
	}, nil
}

func (s *platformService) CompleteLink(ctx context.Context, code, state string) (*models.SocialAccount, error) {
	if code == "" || state == "" {
		err := errors.New("code or state is empty")
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	userID, err := utils.ParseState(s.cfg.SecretKey, state)
	if err != nil || userID == "" {
		slog.Info("rejected oauth state")
		return nil, ErrInvalidState
	}

	token, err := s.pub.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.pub.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	account := &models.SocialAccount{
		UserID:         userID,
		Platform:       models.PlatformLinkedIn,
		AccountID:      profile.ID,
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		ProfilePicture: profile.PictureURL,
		TokenExpiresAt: token.ExpiresAt,
	}
	if account.AccessToken, err = s.encrypt(token.AccessToken); err != nil {
		return nil, err
	}
	if account.RefreshToken, err = s.encrypt(token.RefreshToken); err != nil {
		return nil, err
	}

	if err = s.sa.Upsert(ctx, account); err != nil {
		return nil, fmt.Errorf("error saving linkedin account: %w", err)
	}

	slog.Info("linkedin account linked", "user_id", userID, "account_id", profile.ID)
	return account, nil
}

func (s *platformService) Unlink(ctx context.Context, userID string) error {
	removed, err := s.sa.Remove(ctx, userID, models.PlatformLinkedIn)
	if err != nil {
		return fmt.Errorf("error removing linkedin account: %w", err)
	}
	if removed {
		slog.Info("linkedin account unlinked", "user_id", userID)
	}
	return nil
}

// GetLink returns the linkage with plaintext tokens, or nil when the user never linked.
func (s *platformService) GetLink(ctx context.Context, userID string) (*models.SocialAccount, error) {
	account, err := s.sa.GetByUserID(ctx, userID, models.PlatformLinkedIn)
	if err != nil {
		return nil, fmt.Errorf("error getting linkedin account: %w", err)
	}
	if account == nil {
		return nil, nil
	}

	if account.AccessToken, err = s.decrypt(account.AccessToken); err != nil {
		return nil, err
	}
	if account.RefreshToken, err = s.decrypt(account.RefreshToken); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *platformService) ListExpiring(ctx context.Context, within time.Duration) ([]*models.SocialAccount, error) {
	return s.sa.ListExpiring(ctx, models.PlatformLinkedIn, s.now().Add(within))
}

// RefreshLink swaps the stored tokens for fresh ones. account carries the
// tokens as stored (encrypted), as returned by ListExpiring.
func (s *platformService) RefreshLink(ctx context.Context, account *models.SocialAccount) error {
	refreshToken, err := s.decrypt(account.RefreshToken)
	if err != nil {
		return err
	}
	if refreshToken == "" {
		return errors.New("linkage has no refresh token")
	}

	token, err := s.pub.RefreshToken(ctx, refreshToken)
	s.metrics.RecordTokenRefresh(err)
	if err != nil {
		return err
	}

	next := &models.SocialAccount{TokenExpiresAt: token.ExpiresAt}
	if next.AccessToken, err = s.encrypt(token.AccessToken); err != nil {
		return err
	}
	if next.RefreshToken, err = s.encrypt(token.RefreshToken); err != nil {
		return err
	}

	err = s.sa.SetToken(ctx, account.UserID, models.PlatformLinkedIn, account.AccessToken, next)
	if err != nil {
		if errors.Is(err, repository.ErrTokenChanged) {
			slog.Info("linkedin token changed during refresh", "user_id", account.UserID)
			return nil
		}
		return fmt.Errorf("error saving refreshed token: %w", err)
	}
	return nil
}

// encrypt leaves empty values empty so "no refresh token" stays distinguishable.
func (s *platformService) encrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	return utils.Encrypt([]byte(value), []byte(s.cfg.SecretKey))
}

func (s *platformService) decrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	return utils.Decrypt(value, []byte(s.cfg.SecretKey))
}
