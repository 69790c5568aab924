package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/pkg/utils"
)

const maxApiKeys = 5

type ApiKeyService interface {
	Create(ctx context.Context, userID string) (*models.ApiKey, error)
	List(ctx context.Context, userID string) ([]*models.ApiKey, error)
	GetUserID(ctx context.Context, apiKey string) (string, error)
	RemoveAPIKey(ctx context.Context, userID string, keyID int64) error
}

type apiKeyService struct {
	k repository.ApiKeyRepository
}

func NewApiKeyService(k repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{
		k: k,
	}
}

func (s *apiKeyService) Create(ctx context.Context, userID string) (*models.ApiKey, error) {
	keys, err := s.k.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(keys) >= maxApiKeys {
		slog.Info(ErrApiKeyLimit.Error(), "user_id", userID)
		return nil, ErrApiKeyLimit
	}

	key, err := utils.GenerateRandomKey(16)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error generating API key: %w", err)
	}

	apiKey := &models.ApiKey{
		UserID: userID,
		ApiKey: key,
	}

	if _, err = s.k.Create(ctx, apiKey); err != nil {
		return nil, fmt.Errorf("error saving API key: %w", err)
	}
	return apiKey, nil
}

func (s *apiKeyService) GetUserID(ctx context.Context, apiKey string) (string, error) {
	userID, isExist, err := s.k.GetByKey(ctx, apiKey)
	if err != nil {
		return "", err
	}

	if !isExist {
		return "", ErrApiKeyNotFound
	}

	return userID, nil
}

func (s *apiKeyService) List(ctx context.Context, userID string) ([]*models.ApiKey, error) {
	apiKeys, err := s.k.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting API keys: %w", err)
	}
	if apiKeys == nil {
		apiKeys = []*models.ApiKey{}
	}
	return apiKeys, nil
}

func (s *apiKeyService) RemoveAPIKey(ctx context.Context, userID string, keyID int64) error {
	if keyID <= 0 {
		err := errors.New("KeyID is not valid")
		slog.Info(err.Error())
		return validationError(err)
	}

	removed, err := s.k.Remove(ctx, keyID, userID)
	if err != nil {
		return err
	}

	if !removed {
		slog.Info(ErrApiKeyNotFound.Error(), "key_id", keyID)
		return ErrApiKeyNotFound
	}
	return nil
}
