package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/supershop/internal/domain/models"
)

var ErrAddressNotFound = errors.New("address not found")

// AddressStorage: адреса доставки, все запросы ограничены владельцем
type AddressStorage interface {
	ListAddresses(ctx context.Context, userID int64) ([]*models.Address, error)
	GetAddress(ctx context.Context, userID, id int64) (*models.Address, error)
	CreateAddressTx(ctx context.Context, tx *sql.Tx, a *models.Address) error
	UpdateAddressTx(ctx context.Context, tx *sql.Tx, a *models.Address) error
	// ClearDefaultTx снимает признак основного со всех адресов пользователя, кроме exceptID
	ClearDefaultTx(ctx context.Context, tx *sql.Tx, userID, exceptID int64) error
	DeleteAddress(ctx context.Context, userID, id int64) error
}

type addressRepository struct {
	db *sql.DB
}

func NewAddressRepository(db *sql.DB) AddressStorage {
	return &addressRepository{db: db}
}

const addressSelect = `SELECT id, user_id, address, lat, lon, default_state FROM addresses`

func scanAddress(row interface{ Scan(dest ...any) error }) (*models.Address, error) {
	a := &models.Address{}
	if err := row.Scan(&a.ID, &a.UserID, &a.Address, &a.Lat, &a.Lon, &a.DefaultState); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *addressRepository) ListAddresses(ctx context.Context, userID int64) ([]*models.Address, error) {
	rows, err := r.db.QueryContext(ctx, addressSelect+" WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []*models.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *addressRepository) GetAddress(ctx context.Context, userID, id int64) (*models.Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, addressSelect+" WHERE id = $1 AND user_id = $2", id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *addressRepository) CreateAddressTx(ctx context.Context, tx *sql.Tx, a *models.Address) error {
	query := `
		INSERT INTO addresses (user_id, address, lat, lon, default_state)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := tx.QueryRowContext(ctx, query, a.UserID, a.Address, a.Lat, a.Lon, a.DefaultState).Scan(&a.ID); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (r *addressRepository) UpdateAddressTx(ctx context.Context, tx *sql.Tx, a *models.Address) error {
	query := `
		UPDATE addresses
		SET address = $1, lat = $2, lon = $3, default_state = $4
		WHERE id = $5 AND user_id = $6`
	res, err := tx.ExecContext(ctx, query, a.Address, a.Lat, a.Lon, a.DefaultState, a.ID, a.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to update address: %w", err)
	}
	return expectAffected(res, ErrAddressNotFound)
}

func (r *addressRepository) ClearDefaultTx(ctx context.Context, tx *sql.Tx, userID, exceptID int64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE addresses SET default_state = FALSE WHERE user_id = $1 AND id <> $2 AND default_state",
		userID, exceptID)
	if err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}

func (r *addressRepository) DeleteAddress(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM addresses WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return expectAffected(res, ErrAddressNotFound)
}
