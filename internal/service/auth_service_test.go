package service

import (
	"context"
	"testing"
	"time"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/transfer"
	"github.com/maheshrc27/autopost/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*models.User, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func newAuthService(u *MockUserRepo, sa *MockSocialAccountRepo) AuthService {
	return NewAuthService(config.Config{SecretKey: testSecret, TokenTTL: time.Hour}, u, sa)
}

func TestAuthService_Register(t *testing.T) {
	users := new(MockUserRepo)
	accounts := new(MockSocialAccountRepo)
	svc := newAuthService(users, accounts)

	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, false, nil)
	var created *models.User
	users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*models.User) }).
		Return(nil)

	resp, err := svc.Register(context.Background(), &transfer.Register{
		Email:     " Ada@Example.com ",
		Password:  "Secret123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "ada@example.com", created.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("Secret123")))
	assert.False(t, resp.User.LinkedInConnected)

	claims, err := utils.ValidateToken(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestAuthService_Register_Rejections(t *testing.T) {
	users := new(MockUserRepo)
	svc := newAuthService(users, new(MockSocialAccountRepo))

	_, err := svc.Register(context.Background(), &transfer.Register{Email: "ada@example.com", Password: "weakpass", FirstName: "Ada", LastName: "Lovelace"})
	require.ErrorIs(t, err, ErrValidation)

	users.On("GetByEmail", mock.Anything, "taken@example.com").Return(&models.User{ID: "u1"}, true, nil)
	_, err = svc.Register(context.Background(), &transfer.Register{Email: "taken@example.com", Password: "Secret123", FirstName: "Ada", LastName: "Lovelace"})
	require.ErrorIs(t, err, ErrEmailTaken)

	users.On("GetByEmail", mock.Anything, "race@example.com").Return(nil, false, nil)
	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEmail)
	_, err = svc.Register(context.Background(), &transfer.Register{Email: "race@example.com", Password: "Secret123", FirstName: "Ada", LastName: "Lovelace"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Login(t *testing.T) {
	users := new(MockUserRepo)
	accounts := new(MockSocialAccountRepo)
	svc := newAuthService(users, accounts)

	hash, err := bcrypt.GenerateFromPassword([]byte("Secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: "u1", Email: "ada@example.com", PasswordHash: string(hash), FirstName: "Ada", LastName: "Lovelace"}

	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, true, nil)
	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, false, nil)
	accounts.On("GetByUserID", mock.Anything, "u1", models.PlatformLinkedIn).
		Return(&models.SocialAccount{UserID: "u1", AccountID: "person-1", FirstName: "Ada", AccessToken: "enc"}, nil)

	resp, err := svc.Login(context.Background(), &transfer.Login{Email: "ada@example.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.True(t, resp.User.LinkedInConnected)
	require.NotNil(t, resp.User.LinkedInProfile)
	assert.Equal(t, "person-1", resp.User.LinkedInProfile.ID)

	_, err = svc.Login(context.Background(), &transfer.Login{Email: "ada@example.com", Password: "Wrong123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &transfer.Login{Email: "nobody@example.com", Password: "Secret123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Profile(t *testing.T) {
	users := new(MockUserRepo)
	accounts := new(MockSocialAccountRepo)
	svc := newAuthService(users, accounts)

	users.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1", Email: "ada@example.com"}, true, nil)
	users.On("GetByID", mock.Anything, "gone").Return(nil, false, nil)
	accounts.On("GetByUserID", mock.Anything, "u1", models.PlatformLinkedIn).Return(nil, nil)

	profile, err := svc.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, profile.LinkedInConnected)
	assert.Nil(t, profile.LinkedInProfile)

	_, err = svc.Profile(context.Background(), "gone")
	require.ErrorIs(t, err, ErrUserNotFound)
}
