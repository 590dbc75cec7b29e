package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/storage"
)

// AddressService: адреса доставки текущего пользователя
type AddressService interface {
	List(ctx context.Context, userID int64) ([]*models.Address, error)
	Get(ctx context.Context, userID, id int64) (*models.Address, error)
	// Create и Update с DefaultState снимают признак основного с остальных адресов
	Create(ctx context.Context, userID int64, a *models.Address) (*models.Address, error)
	Update(ctx context.Context, userID int64, a *models.Address) (*models.Address, error)
	Delete(ctx context.Context, userID, id int64) error
}

type addressService struct {
	log       *slog.Logger
	db        *sql.DB
	addresses storage.AddressStorage
}

func NewAddressService(log *slog.Logger, db *sql.DB, addresses storage.AddressStorage) AddressService {
	return &addressService{log: log, db: db, addresses: addresses}
}

func validateAddress(a *models.Address) error {
	a.Address = strings.TrimSpace(a.Address)
	switch {
	case a.Address == "":
		return fmt.Errorf("address is required: %w", ErrValidation)
	case a.Lat < -90 || a.Lat > 90:
		return fmt.Errorf("lat out of range: %w", ErrValidation)
	case a.Lon < -180 || a.Lon > 180:
		return fmt.Errorf("lon out of range: %w", ErrValidation)
	}
	return nil
}

func mapAddressErr(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrAddressNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, storage.ErrAlreadyExists):
		return fmt.Errorf("%s: default address changed concurrently: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *addressService) List(ctx context.Context, userID int64) ([]*models.Address, error) {
	const op = "service.AddressService.List"
	addresses, err := s.addresses.ListAddresses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if addresses == nil {
		addresses = []*models.Address{}
	}
	return addresses, nil
}

func (s *addressService) Get(ctx context.Context, userID, id int64) (*models.Address, error) {
	const op = "service.AddressService.Get"
	a, err := s.addresses.GetAddress(ctx, userID, id)
	if err != nil {
		return nil, mapAddressErr(op, err)
	}
	return a, nil
}

func (s *addressService) Create(ctx context.Context, userID int64, a *models.Address) (*models.Address, error) {
	const op = "service.AddressService.Create"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	if err := validateAddress(a); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.ID = 0
	a.UserID = userID

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if a.DefaultState {
			if err := s.addresses.ClearDefaultTx(ctx, tx, userID, 0); err != nil {
				return err
			}
		}
		return s.addresses.CreateAddressTx(ctx, tx, a)
	})
	if err != nil {
		logger.Error("failed to create address", slog.Any("error", err))
		return nil, mapAddressErr(op, err)
	}

	logger.Info("address created", slog.Int64("addressID", a.ID), slog.Bool("default", a.DefaultState))
	return a, nil
}

func (s *addressService) Update(ctx context.Context, userID int64, a *models.Address) (*models.Address, error) {
	const op = "service.AddressService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("addressID", a.ID))

	if err := validateAddress(a); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.UserID = userID

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if a.DefaultState {
			if err := s.addresses.ClearDefaultTx(ctx, tx, userID, a.ID); err != nil {
				return err
			}
		}
		return s.addresses.UpdateAddressTx(ctx, tx, a)
	})
	if err != nil {
		logger.Warn("failed to update address", slog.Any("error", err))
		return nil, mapAddressErr(op, err)
	}

	logger.Info("address updated")
	return a, nil
}

func (s *addressService) Delete(ctx context.Context, userID, id int64) error {
	const op = "service.AddressService.Delete"
	if err := s.addresses.DeleteAddress(ctx, userID, id); err != nil {
		return mapAddressErr(op, err)
	}
	s.log.Info("address deleted", slog.String("op", op), slog.Int64("userID", userID), slog.Int64("addressID", id))
	return nil
}

// inTx: откат при ошибке fn, иначе коммит
func (s *addressService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
