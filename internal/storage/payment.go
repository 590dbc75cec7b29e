package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/supershop/internal/domain/models"
)

// PaymentStorage описывает методы для работы с платежами
type PaymentStorage interface {
	CreatePayment(ctx context.Context, p *models.Payment) (*models.Payment, error)
	// SetExternal сохраняет id платежа у провайдера и ссылку на оплату
	SetExternal(ctx context.Context, id int64, externalID, confirmationURL string) error
	GetPaymentByID(ctx context.Context, id int64) (*models.Payment, error)

	// LockPaymentByExternalIDTx блокирует платеж на время обработки вебхука.
	// Если строку уже держит другая транзакция, возвращает ErrLocked.
	LockPaymentByExternalIDTx(ctx context.Context, tx *sql.Tx, externalID string) (*models.Payment, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status models.PaymentStatus) error
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentStorage {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, user_id, basket_id, amount, status, external_payment_id, confirmation_url, created_at, updated_at`

func scanPayment(row interface{ Scan(dest ...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	var ext sql.NullString
	if err := row.Scan(&p.ID, &p.UserID, &p.BasketID, &p.Amount, &p.Status, &ext, &p.ConfirmationURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if ext.Valid {
		p.ExternalPaymentID = &ext.String
	}
	return p, nil
}

func (r *paymentRepository) CreatePayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	query := `
		INSERT INTO payments (user_id, basket_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + paymentColumns
	created, err := scanPayment(r.db.QueryRowContext(ctx, query, p.UserID, p.BasketID, p.Amount, models.PaymentPending))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return created, nil
}

func (r *paymentRepository) SetExternal(ctx context.Context, id int64, externalID, confirmationURL string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE payments SET external_payment_id = $1, confirmation_url = $2, updated_at = NOW() WHERE id = $3",
		externalID, confirmationURL, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("external payment %s: %w", externalID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to set external payment id: %w", err)
	}
	return expectAffected(res, ErrPaymentNotFound)
}

func (r *paymentRepository) GetPaymentByID(ctx context.Context, id int64) (*models.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) LockPaymentByExternalIDTx(ctx context.Context, tx *sql.Tx, externalID string) (*models.Payment, error) {
	query := "SELECT " + paymentColumns + " FROM payments WHERE external_payment_id = $1 FOR UPDATE NOWAIT"
	p, err := scanPayment(tx.QueryRowContext(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		if isLockNotAvailable(err) {
			return nil, ErrLocked
		}
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status models.PaymentStatus) error {
	res, err := tx.ExecContext(ctx, "UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return expectAffected(res, ErrPaymentNotFound)
}
