package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/linemk/supershop/internal/domain/models"
)

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrderTx вставляет новый заказ в таблицу orders с использованием транзакции.
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	// CreateOrderItemTx сохраняет снимок строки корзины.
	CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	// SetStatusByPaymentTx меняет статус заказа, созданного под платеж.
	SetStatusByPaymentTx(ctx context.Context, tx *sql.Tx, paymentID int64, status string) error
	// GetOrdersByUserID возвращает список заказов пользователя вместе со строками.
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
}

// orderRepository: конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	query := `INSERT INTO orders (user_id, payment_id, status, created_at, updated_at)
	          VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id`
	var id int64
	if err := tx.QueryRowContext(ctx, query, order.UserID, ptrToNull(order.PaymentID), order.Status).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

func (r *orderRepository) CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, product_id, item_id, quantity, unit_price)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := tx.ExecContext(ctx, query, item.OrderID, ptrToNull(item.ProductID), item.ItemID, item.Quantity, item.UnitPrice)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (r *orderRepository) SetStatusByPaymentTx(ctx context.Context, tx *sql.Tx, paymentID int64, status string) error {
	res, err := tx.ExecContext(ctx, "UPDATE orders SET status = $1, updated_at = NOW() WHERE payment_id = $2", status, paymentID)
	if err != nil {
		return fmt.Errorf("failed to set order status: %w", err)
	}
	return expectAffected(res, ErrOrderNotFound)
}

// GetOrdersByUserID возвращает заказы пользователя, новые сначала.
func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.payment_id, o.status, o.created_at, o.updated_at,
		       oi.id, oi.product_id, oi.item_id, oi.quantity, oi.unit_price
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC, oi.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	byID := make(map[int64]*models.Order)
	for rows.Next() {
		var (
			o         models.Order
			paymentID sql.NullInt64
			itemRowID sql.NullInt64
			productID sql.NullInt64
			itemID    sql.NullInt64
			quantity  sql.NullInt64
			unitPrice decimal.NullDecimal
		)
		if err := rows.Scan(&o.ID, &o.UserID, &paymentID, &o.Status, &o.CreatedAt, &o.UpdatedAt,
			&itemRowID, &productID, &itemID, &quantity, &unitPrice); err != nil {
			return nil, err
		}
		order, ok := byID[o.ID]
		if !ok {
			o.PaymentID = nullToPtr(paymentID)
			order = &o
			byID[o.ID] = order
			orders = append(orders, order)
		}
		if itemRowID.Valid {
			order.Items = append(order.Items, &models.OrderItem{
				ID:        itemRowID.Int64,
				OrderID:   order.ID,
				ProductID: nullToPtr(productID),
				ItemID:    itemID.Int64,
				Quantity:  int(quantity.Int64),
				UnitPrice: unitPrice.Decimal,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
