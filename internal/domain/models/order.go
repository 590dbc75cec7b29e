package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// статусы заказа
const (
	OrderStatusCreated   = "created"
	OrderStatusPaid      = "paid"
	OrderStatusDelivered = "delivered"
	OrderStatusReceived  = "received"
	OrderStatusCanceled  = "canceled"
	OrderStatusReturned  = "returned"
)

// Order: заказ, созданный при оформлении платежа
type Order struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	PaymentID *int64       `json:"payment"`
	Status    string       `json:"status"`
	Items     []*OrderItem `json:"items,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// OrderItem: снимок строки корзины на момент оформления
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order"`
	ProductID *int64          `json:"product"` // NULL, если остаток уже удален
	ItemID    int64           `json:"item_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
