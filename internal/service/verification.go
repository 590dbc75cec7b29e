package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	coderedis "github.com/linemk/supershop/internal/storage/redis"
)

// SMSSender: внешний SMS-провайдер
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// CodeStore хранит коды подтверждения и лимиты отправки
type CodeStore interface {
	CheckLimit(ctx context.Context, phone string) error
	MarkSent(ctx context.Context, phone string) error
	SaveCode(ctx context.Context, phone, code string) error
	GetCode(ctx context.Context, phone string) (string, error)
	DeleteCode(ctx context.Context, phone string) error
	// RegisterFailure увеличивает счетчик неверных вводов и возвращает его
	RegisterFailure(ctx context.Context, phone string) (int64, error)
}

// maxCodeAttempts: после стольких неверных вводов код сгорает
const maxCodeAttempts = 5

var _ CodeStore = (*coderedis.CodeStore)(nil)

type VerificationService interface {
	SendCode(ctx context.Context, phone string) error
	// Verify сверяет код и удаляет его: код одноразовый.
	// Пятый неверный ввод удаляет код и дает ErrTooManyRequests.
	Verify(ctx context.Context, phone, code string) error
}

type verificationService struct {
	log   *slog.Logger
	codes CodeStore
	sms   SMSSender
}

func NewVerificationService(log *slog.Logger, codes CodeStore, sms SMSSender) VerificationService {
	return &verificationService{log: log, codes: codes, sms: sms}
}

// generateCode: четыре цифры, первая не ноль
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}

func (s *verificationService) SendCode(ctx context.Context, phone string) error {
	const op = "service.VerificationService.SendCode"
	logger := s.log.With(slog.String("op", op), slog.String("phone", phone))

	if err := s.codes.CheckLimit(ctx, phone); err != nil {
		if errors.Is(err, coderedis.ErrTooFrequent) || errors.Is(err, coderedis.ErrHourlyLimitHit) {
			logger.Warn("code rate limit", slog.Any("error", err))
			return fmt.Errorf("%s: %w: %w", op, ErrTooManyRequests, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("%s: failed to generate code: %w", op, err)
	}
	if err := s.codes.SaveCode(ctx, phone, code); err != nil {
		logger.Error("failed to save code", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sms.Send(ctx, phone, fmt.Sprintf("Ваш код подтверждения: %s", code)); err != nil {
		logger.Error("sms provider failed", slog.Any("error", err))
		if delErr := s.codes.DeleteCode(ctx, phone); delErr != nil {
			logger.Error("failed to drop unsent code", slog.Any("error", delErr))
		}
		return fmt.Errorf("%s: %w: %w", op, ErrExternalProvider, err)
	}

	if err := s.codes.MarkSent(ctx, phone); err != nil {
		logger.Error("failed to mark code as sent", slog.Any("error", err))
	}
	logger.Info("verification code sent")
	return nil
}

func (s *verificationService) Verify(ctx context.Context, phone, code string) error {
	const op = "service.VerificationService.Verify"

	stored, err := s.codes.GetCode(ctx, phone)
	if err != nil {
		if errors.Is(err, coderedis.ErrCodeNotFound) {
			return fmt.Errorf("%s: code expired or not requested: %w", op, ErrValidation)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if stored != code {
		logger := s.log.With(slog.String("op", op), slog.String("phone", phone))
		failures, err := s.codes.RegisterFailure(ctx, phone)
		if err != nil {
			logger.Error("failed to count wrong code", slog.Any("error", err))
			return fmt.Errorf("%s: %w", op, err)
		}
		logger.Warn("wrong verification code", slog.Int64("failures", failures))
		if failures >= maxCodeAttempts {
			if err := s.codes.DeleteCode(ctx, phone); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			return fmt.Errorf("%s: too many wrong codes, request a new one: %w", op, ErrTooManyRequests)
		}
		return fmt.Errorf("%s: wrong code: %w", op, ErrValidation)
	}
	if err := s.codes.DeleteCode(ctx, phone); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
