package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus: состояние платежа
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentCanceled  PaymentStatus = "CANCELED"
)

// IsTerminal: из SUCCEEDED и CANCELED переходов нет
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentSucceeded || s == PaymentCanceled
}

// Payment: попытка оплаты корзины через внешнего провайдера
type Payment struct {
	ID                int64           `json:"id"`
	UserID            int64           `json:"user"`
	BasketID          int64           `json:"basket"`
	Amount            decimal.Decimal `json:"amount"`
	Status            PaymentStatus   `json:"status"`
	ExternalPaymentID *string         `json:"external_payment_id"`
	ConfirmationURL   string          `json:"confirmation_url"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// PaymentSession: платеж на стороне провайдера
type PaymentSession struct {
	ExternalID      string
	Status          string
	ConfirmationURL string
}
