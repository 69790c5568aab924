package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lib/pq"
	"github.com/maheshrc27/autopost/internal/models"
)

var ErrDuplicateEmail = errors.New("email already registered")

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, bool, error)
	GetByEmail(ctx context.Context, email string) (*models.User, bool, error)
	Create(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, bool, error) {
	query := "SELECT id, email, password_hash, first_name, last_name, created_at, updated_at FROM users WHERE id = $1"
	return r.getOne(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	query := "SELECT id, email, password_hash, first_name, last_name, created_at, updated_at FROM users WHERE email = $1"
	return r.getOne(ctx, query, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg string) (*models.User, bool, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &user, true, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		slog.Info(err.Error())
		return err
	}
	return nil
}
