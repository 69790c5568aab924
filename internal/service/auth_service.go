package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/transfer"
	"github.com/maheshrc27/autopost/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req *transfer.Register) (*transfer.AuthResponse, error)
	Login(ctx context.Context, req *transfer.Login) (*transfer.AuthResponse, error)
	Profile(ctx context.Context, userID string) (*transfer.UserProfile, error)
}

type authService struct {
	cfg config.Config
	u   repository.UserRepository
	sa  repository.SocialAccountRepository
}

func NewAuthService(cfg config.Config, u repository.UserRepository, sa repository.SocialAccountRepository) AuthService {
	return &authService{
		cfg: cfg,
		u:   u,
		sa:  sa,
	}
}

func (s *authService) Register(ctx context.Context, req *transfer.Register) (*transfer.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := req.Validate(); err != nil {
		slog.Info(err.Error())
		return nil, validationError(err)
	}

	_, isExist, err := s.u.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking user: %w", err)
	}
	if isExist {
		slog.Info(ErrEmailTaken.Error())
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	id, err := utils.NewID()
	if err != nil {
		return nil, fmt.Errorf("error generating user id: %w", err)
	}

	user := &models.User{
		ID:           id,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	}
	if err = s.u.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.respond(user, nil)
}

func (s *authService) Login(ctx context.Context, req *transfer.Login) (*transfer.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := req.Validate(); err != nil {
		slog.Info(err.Error())
		return nil, validationError(err)
	}

	user, isExist, err := s.u.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if !isExist {
		slog.Info(ErrInvalidCredentials.Error())
		return nil, ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Info(ErrInvalidCredentials.Error(), "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	account, err := s.sa.GetByUserID(ctx, user.ID, models.PlatformLinkedIn)
	if err != nil {
		return nil, fmt.Errorf("error getting linkedin account: %w", err)
	}
	return s.respond(user, account)
}

func (s *authService) Profile(ctx context.Context, userID string) (*transfer.UserProfile, error) {
	user, isExist, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user info: %w", err)
	}
	if !isExist {
		slog.Info(ErrUserNotFound.Error(), "user_id", userID)
		return nil, ErrUserNotFound
	}

	account, err := s.sa.GetByUserID(ctx, userID, models.PlatformLinkedIn)
	if err != nil {
		return nil, fmt.Errorf("error getting linkedin account: %w", err)
	}

	profile := userProfile(user, account)
	return &profile, nil
}

func (s *authService) respond(user *models.User, account *models.SocialAccount) (*transfer.AuthResponse, error) {
	token, err := utils.GenerateToken(s.cfg.SecretKey, user.ID, user.Email, s.cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}
	return &transfer.AuthResponse{
		Token: token,
		User:  userProfile(user, account),
	}, nil
}

func userProfile(user *models.User, account *models.SocialAccount) transfer.UserProfile {
	profile := transfer.UserProfile{
		ID:                user.ID,
		Email:             user.Email,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		LinkedInConnected: account.Connected(),
	}
	if account.Connected() {
		profile.LinkedInProfile = &transfer.LinkedInProfile{
			ID:         account.AccountID,
			FirstName:  account.FirstName,
			LastName:   account.LastName,
			PictureURL: account.ProfilePicture,
		}
	}
	return profile
}
