package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linemk/supershop/internal/domain/models"
	security "github.com/linemk/supershop/internal/jwt-new"
	"github.com/linemk/supershop/internal/storage"
)

type AuthService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	verifier VerificationService
	tokenTTL time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, verifier VerificationService, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:      log,
		userRepo: userRepo,
		verifier: verifier,
		tokenTTL: tokenTTL,
	}
}

type AuthServiceInterface interface {
	Register(ctx context.Context, phone, name, password, code string) (string, error)
	Login(ctx context.Context, phone, password string) (string, error)
}

// Register создает пользователя после проверки SMS-кода и сразу выдает токен.
// Пароль хэшируется через bcrypt, соль добавляется автоматически.
func (a *AuthService) Register(ctx context.Context, phone, name, password, code string) (string, error) {
	const op = "auth.Register"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("phone", phone),
	)
	logger.Info("registering user")

	if err := a.verifier.Verify(ctx, phone, code); err != nil {
		logger.Warn("phone verification failed", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{Phone: phone, Name: name, PassHash: passHash})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			logger.Warn("phone already registered")
			return "", fmt.Errorf("%s: phone already registered: %w", op, ErrConflict)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	return a.issueToken(ctx, user, logger)
}

// Login проверяет пароль и выдает JWT-токен (секрет берется из JWT_SECRET).
func (a *AuthService) Login(ctx context.Context, phone, password string) (string, error) {
	const op = "auth.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("phone", phone),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}
	if !user.IsActive {
		logger.Warn("inactive user")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return a.issueToken(ctx, user, logger)
}

func (a *AuthService) issueToken(ctx context.Context, user *models.User, logger *slog.Logger) (string, error) {
	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, nil
}
