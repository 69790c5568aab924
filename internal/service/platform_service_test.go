package service

import (
	"context"
	"strings"
	"testing"
	"time"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/metrics"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/transfer"
	"github.com/maheshrc27/autopost/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type MockSocialAccountRepo struct {
	mock.Mock
}

func (m *MockSocialAccountRepo) Upsert(ctx context.Context, sa *models.SocialAccount) error {
	return m.Called(ctx, sa).Error(0)
}

func (m *MockSocialAccountRepo) GetByUserID(ctx context.Context, userID, platform string) (*models.SocialAccount, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountRepo) ListExpiring(ctx context.Context, platform string, before time.Time) ([]*models.SocialAccount, error) {
	args := m.Called(ctx, platform, before)
	return args.Get(0).([]*models.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountRepo) SetToken(ctx context.Context, userID, platform, oldAccessToken string, sa *models.SocialAccount) error {
	return m.Called(ctx, userID, platform, oldAccessToken, sa).Error(0)
}

func (m *MockSocialAccountRepo) Remove(ctx context.Context, userID, platform string) (bool, error) {
	args := m.Called(ctx, userID, platform)
	return args.Bool(0), args.Error(1)
}

func newPlatformService(repo repository.SocialAccountRepository, pub SocialPublisher, now time.Time) *platformService {
	cfg := config.Config{SecretKey: testSecret, OAuthStateTTL: 10 * time.Minute}
	s := NewPlatformService(cfg, repo, pub, metrics.Nop{}).(*platformService)
	s.now = func() time.Time { return now }
	return s
}

func TestPlatformService_BeginAndCompleteLink(t *testing.T) {
	repo := new(MockSocialAccountRepo)
	expires := time.Now().Add(60 * 24 * time.Hour)
	pub := &fakePublisher{
		token:   &transfer.LinkedInToken{AccessToken: "access", RefreshToken: "refresh", ExpiresAt: expires},
		profile: &transfer.LinkedInProfile{ID: "person-1", FirstName: "Ada", LastName: "Lovelace", PictureURL: "https://media/pic.jpg"},
	}
	svc := newPlatformService(repo, pub, time.Now())

	link, err := svc.BeginLink(context.Background(), "user1")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(link.AuthURL, "state="+link.State))

	var saved *models.SocialAccount
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*models.SocialAccount")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.SocialAccount) }).
		Return(nil)

	account, err := svc.CompleteLink(context.Background(), "code", link.State)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Same(t, saved, account)
	assert.Equal(t, "user1", saved.UserID)
	assert.Equal(t, "person-1", saved.AccountID)
	assert.Equal(t, "Ada", saved.FirstName)
	assert.Equal(t, expires, saved.TokenExpiresAt)

	assert.NotEqual(t, "access", saved.AccessToken)
	plain, err := utils.Decrypt(saved.AccessToken, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "access", plain)
	repo.AssertExpectations(t)
}

func TestPlatformService_CompleteLink_RejectsForgedState(t *testing.T) {
	repo := new(MockSocialAccountRepo)
	svc := newPlatformService(repo, &fakePublisher{}, time.Now())

	for _, state := range []string{
		"user1-1700000000000",
		"not-a-token",
	} {
		_, err := svc.CompleteLink(context.Background(), "code", state)
		require.ErrorIs(t, err, ErrInvalidState)
	}

	forged, err := utils.GenerateState("another-secret-another-secret-00", "user1", time.Now(), time.Minute)
	require.NoError(t, err)
	_, err = svc.CompleteLink(context.Background(), "code", forged)
	require.ErrorIs(t, err, ErrInvalidState)

	expired, err := utils.GenerateState(testSecret, "user1", time.Now().Add(-time.Hour), 10*time.Minute)
	require.NoError(t, err)
	_, err = svc.CompleteLink(context.Background(), "code", expired)
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.CompleteLink(context.Background(), "", "state")
	require.ErrorIs(t, err, ErrValidation)

	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestPlatformService_CompleteLink_ExchangeFailure(t *testing.T) {
	repo := new(MockSocialAccountRepo)
	svc := newPlatformService(repo, &fakePublisher{authErr: ErrAuthFailed}, time.Now())

	state, err := utils.GenerateState(testSecret, "user1", time.Now(), time.Minute)
	require.NoError(t, err)

	_, err = svc.CompleteLink(context.Background(), "code", state)
	require.ErrorIs(t, err, ErrAuthFailed)
	require.ErrorIs(t, err, ErrUpstream)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestPlatformService_GetLink_Decrypts(t *testing.T) {
	repo := new(MockSocialAccountRepo)
	svc := newPlatformService(repo, &fakePublisher{}, time.Now())

	enc, err := utils.Encrypt([]byte("access"), []byte(testSecret))
	require.NoError(t, err)
	repo.On("GetByUserID", mock.Anything, "user1", models.PlatformLinkedIn).
		Return(&models.SocialAccount{UserID: "user1", AccountID: "person-1", AccessToken: enc}, nil)
	repo.On("GetByUserID", mock.Anything, "user2", models.PlatformLinkedIn).Return(nil, nil)

	account, err := svc.GetLink(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, "access", account.AccessToken)
	assert.Empty(t, account.RefreshToken)

	account, err = svc.GetLink(context.Background(), "user2")
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestPlatformService_Unlink(t *testing.T) {
	repo := new(MockSocialAccountRepo)
	svc := newPlatformService(repo, &fakePublisher{}, time.Now())
	repo.On("Remove", mock.Anything, "user1", models.PlatformLinkedIn).Return(true, nil)

	require.NoError(t, svc.Unlink(context.Background(), "user1"))
	repo.AssertExpectations(t)
}

func TestPlatformService_RefreshLink(t *testing.T) {
	repo := new(MockSocialAccountRepo)
	now := time.Now()
	expires := now.Add(60 * 24 * time.Hour)
	svc := newPlatformService(repo, &fakePublisher{
		token: &transfer.LinkedInToken{AccessToken: "new-access", ExpiresAt: expires},
	}, now)

	encRefresh, err := utils.Encrypt([]byte("refresh"), []byte(testSecret))
	require.NoError(t, err)
	stale := &models.SocialAccount{UserID: "user1", AccessToken: "old-enc", RefreshToken: encRefresh}

	var next *models.SocialAccount
	repo.On("SetToken", mock.Anything, "user1", models.PlatformLinkedIn, "old-enc", mock.AnythingOfType("*models.SocialAccount")).
		Run(func(args mock.Arguments) { next = args.Get(4).(*models.SocialAccount) }).
		Return(nil)

	require.NoError(t, svc.RefreshLink(context.Background(), stale))
	require.NotNil(t, next)
	assert.Equal(t, expires, next.TokenExpiresAt)
	assert.Empty(t, next.RefreshToken)
	plain, err := utils.Decrypt(next.AccessToken, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "new-access", plain)
}

func TestPlatformService_RefreshLink_TokenReplaced(t *testing.T) {
	repo := new(MockSocialAccountRepo)
	svc := newPlatformService(repo, &fakePublisher{
		token: &transfer.LinkedInToken{AccessToken: "new-access", ExpiresAt: time.Now()},
	}, time.Now())

	encRefresh, err := utils.Encrypt([]byte("refresh"), []byte(testSecret))
	require.NoError(t, err)
	repo.On("SetToken", mock.Anything, "user1", models.PlatformLinkedIn, "old-enc", mock.Anything).
		Return(repository.ErrTokenChanged)

	err = svc.RefreshLink(context.Background(), &models.SocialAccount{UserID: "user1", AccessToken: "old-enc", RefreshToken: encRefresh})
	require.NoError(t, err)
}

func TestPlatformService_ListExpiring(t *testing.T) {
	repo := new(MockSocialAccountRepo)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newPlatformService(repo, &fakePublisher{}, now)

	repo.On("ListExpiring", mock.Anything, models.PlatformLinkedIn, now.Add(30*time.Minute)).
		Return([]*models.SocialAccount{{UserID: "user1"}}, nil)

	accounts, err := svc.ListExpiring(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}
