package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/storage"
)

// InfoService определяет интерфейс для получения информации о пользователе.
type InfoService interface {
	GetInfo(ctx context.Context, userID int64) (*InfoResponse, error)
}

// infoService: конкретная реализация InfoService.
type infoService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	orderRepo storage.OrderStorage
}

func NewInfoService(log *slog.Logger, userRepo storage.UserStorage, orderRepo storage.OrderStorage) InfoService {
	return &infoService{
		log:       log,
		userRepo:  userRepo,
		orderRepo: orderRepo,
	}
}

// InfoResponse: профиль покупателя и история заказов
type InfoResponse struct {
	ID     int64           `json:"id"`
	Phone  string          `json:"phone"`
	Name   string          `json:"name"`
	Orders []*models.Order `json:"orders"`
	Stats  OrderStats      `json:"stats"`
}

// OrderStats: сводка по статусам заказов
type OrderStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// GetInfo собирает профиль пользователя и его заказы вместе со строками.
func (s *infoService) GetInfo(ctx context.Context, userID int64) (*InfoResponse, error) {
	const op = "service.InfoService.GetInfo"
	s.log.Info("getting info", slog.String("op", op), slog.Int64("userID", userID))

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		s.log.Error("failed to get user by id", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Получаем заказы пользователя
	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get orders", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}

	stats := OrderStats{Total: len(orders), ByStatus: make(map[string]int)}
	for _, order := range orders {
		stats.ByStatus[order.Status]++
	}

	return &InfoResponse{
		ID:     user.ID,
		Phone:  user.Phone,
		Name:   user.Name,
		Orders: orders,
		Stats:  stats,
	}, nil
}
