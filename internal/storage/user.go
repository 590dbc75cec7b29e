package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/supershop/internal/domain/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserStorage interface {
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

// получение уже существующего пользователя по телефону
func (r *userRepository) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx, "SELECT id, phone, name, pass_hash, is_active, is_staff FROM users WHERE phone = $1", phone)
	if err := row.Scan(&user.ID, &user.Phone, &user.Name, &user.PassHash, &user.IsActive, &user.IsStaff); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx, "SELECT id, phone, name, pass_hash, is_active, is_staff FROM users WHERE id = $1", id)
	if err := row.Scan(&user.ID, &user.Phone, &user.Name, &user.PassHash, &user.IsActive, &user.IsStaff); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (phone, name, pass_hash, is_active) VALUES ($1, $2, $3, TRUE) RETURNING id",
		user.Phone, user.Name, user.PassHash,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", user.Phone, ErrAlreadyExists)
		}
		return nil, err
	}
	user.ID = id
	user.IsActive = true
	return user, nil
}
