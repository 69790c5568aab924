package service

import (
	"context"
	"testing"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockApiKeyRepo struct {
	mock.Mock
}

func (m *MockApiKeyRepo) GetByKey(ctx context.Context, apiKey string) (string, bool, error) {
	args := m.Called(ctx, apiKey)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockApiKeyRepo) GetByUserID(ctx context.Context, userID string) ([]*models.ApiKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepo) Create(ctx context.Context, apiKey *models.ApiKey) (int64, error) {
	args := m.Called(ctx, apiKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApiKeyRepo) Remove(ctx context.Context, id int64, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func TestApiKeyService_Create(t *testing.T) {
	repo := new(MockApiKeyRepo)
	svc := NewApiKeyService(repo)

	repo.On("GetByUserID", mock.Anything, "user1").Return([]*models.ApiKey{{ID: 1}}, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.ApiKey")).Return(int64(2), nil)

	key, err := svc.Create(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, "user1", key.UserID)
	assert.Len(t, key.ApiKey, 22)
}

func TestApiKeyService_Create_Limit(t *testing.T) {
	repo := new(MockApiKeyRepo)
	svc := NewApiKeyService(repo)

	repo.On("GetByUserID", mock.Anything, "user1").
		Return([]*models.ApiKey{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}, nil)

	_, err := svc.Create(context.Background(), "user1")
	require.ErrorIs(t, err, ErrApiKeyLimit)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestApiKeyService_GetUserIDAndRemove(t *testing.T) {
	repo := new(MockApiKeyRepo)
	svc := NewApiKeyService(repo)

	repo.On("GetByKey", mock.Anything, "good").Return("user1", true, nil)
	repo.On("GetByKey", mock.Anything, "bad").Return("", false, nil)
	repo.On("Remove", mock.Anything, int64(3), "user1").Return(true, nil)
	repo.On("Remove", mock.Anything, int64(4), "user1").Return(false, nil)

	userID, err := svc.GetUserID(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "user1", userID)

	_, err = svc.GetUserID(context.Background(), "bad")
	require.ErrorIs(t, err, ErrApiKeyNotFound)

	require.NoError(t, svc.RemoveAPIKey(context.Background(), "user1", 3))
	require.ErrorIs(t, svc.RemoveAPIKey(context.Background(), "user1", 4), ErrApiKeyNotFound)
	require.ErrorIs(t, svc.RemoveAPIKey(context.Background(), "user1", 0), ErrValidation)
}

func TestApiKeyService_List_Empty(t *testing.T) {
	repo := new(MockApiKeyRepo)
	svc := NewApiKeyService(repo)
	repo.On("GetByUserID", mock.Anything, "user1").Return(nil, nil)

	keys, err := svc.List(context.Background(), "user1")
	require.NoError(t, err)
	assert.NotNil(t, keys)
	assert.Empty(t, keys)
}
