package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

var (
	ErrCodeNotFound   = errors.New("verification code not found or expired")
	ErrTooFrequent    = errors.New("code can be requested once per minute")
	ErrHourlyLimitHit = errors.New("hourly code limit reached")
)

const (
	minuteWindow = 60 * time.Second
	hourWindow   = time.Hour
	hourlyLimit  = 10
)

// CodeStore хранит коды подтверждения телефона и счетчики отправок
type CodeStore struct {
	client goredis.Cmdable
	ttl    time.Duration
}

func NewCodeStore(client goredis.Cmdable, ttl time.Duration) *CodeStore {
	return &CodeStore{client: client, ttl: ttl}
}

func codeKey(phone string) string   { return fmt.Sprintf("sms_code_%s", phone) }
func minuteKey(phone string) string { return fmt.Sprintf("sms_minute_%s", phone) }
func hourKey(phone string) string   { return fmt.Sprintf("sms_hour_%s", phone) }

func attemptsKey(phone string) string { return fmt.Sprintf("sms_attempts_%s", phone) }

// CheckLimit: не чаще раза в минуту и не больше 10 в час на номер
func (s *CodeStore) CheckLimit(ctx context.Context, phone string) error {
	n, err := s.client.Exists(ctx, minuteKey(phone)).Result()
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrTooFrequent
	}

	cnt, err := s.client.Get(ctx, hourKey(phone)).Int()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return err
	}
	if cnt >= hourlyLimit {
		return ErrHourlyLimitHit
	}
	return nil
}

// MarkSent фиксирует отправку в обоих окнах
func (s *CodeStore) MarkSent(ctx context.Context, phone string) error {
	if err := s.client.Set(ctx, minuteKey(phone), 1, minuteWindow).Err(); err != nil {
		return err
	}
	if err := s.client.Incr(ctx, hourKey(phone)).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, hourKey(phone), hourWindow).Err()
}

// SaveCode: у нового кода счетчик неверных вводов начинается с нуля
func (s *CodeStore) SaveCode(ctx context.Context, phone, code string) error {
	if err := s.client.Set(ctx, codeKey(phone), code, s.ttl).Err(); err != nil {
		return err
	}
	return s.client.Del(ctx, attemptsKey(phone)).Err()
}

// RegisterFailure возвращает число неверных вводов текущего кода.
// Счетчик живет не дольше кода.
func (s *CodeStore) RegisterFailure(ctx context.Context, phone string) (int64, error) {
	n, err := s.client.Incr(ctx, attemptsKey(phone)).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.client.Expire(ctx, attemptsKey(phone), s.ttl).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *CodeStore) GetCode(ctx context.Context, phone string) (string, error) {
	code, err := s.client.Get(ctx, codeKey(phone)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrCodeNotFound
		}
		return "", err
	}
	return code, nil
}

func (s *CodeStore) DeleteCode(ctx context.Context, phone string) error {
	return s.client.Del(ctx, codeKey(phone), attemptsKey(phone)).Err()
}
