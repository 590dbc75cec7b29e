package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Basket: корзина пользователя, одна на пользователя
type Basket struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BasketItem: строка корзины; Product ссылается на ItemStock.
// Поля ниже Quantity заполняются JOIN-ом при чтении.
type BasketItem struct {
	ID        int64 `json:"id"`
	BasketID  int64 `json:"basket"`
	ProductID int64 `json:"product"`
	Quantity  int   `json:"quantity"`

	ItemID        int64           `json:"item_id"`
	ItemName      string          `json:"product_name"`
	ColorID       int64           `json:"-"`
	SizeID        int64           `json:"-"`
	ColorName     string          `json:"color"`
	SizeName      string          `json:"size"`
	Price         decimal.Decimal `json:"product_price"`
	Discount      decimal.Decimal `json:"-"`
	StockQuantity int             `json:"-"`
}

// PriceWithDiscount цена единицы со скидкой
func (b *BasketItem) PriceWithDiscount() decimal.Decimal {
	return b.Price.Mul(decimal.NewFromInt(1).Sub(b.Discount)).Round(2)
}

// TotalPrice = цена со скидкой * количество
func (b *BasketItem) TotalPrice() decimal.Decimal {
	return b.PriceWithDiscount().Mul(decimal.NewFromInt(int64(b.Quantity)))
}

// InStock: есть ли товар на складе
func (b *BasketItem) InStock() bool {
	return b.StockQuantity > 0
}

// TotalCost сумма корзины со скидками
func TotalCost(lines []*BasketItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalPrice())
	}
	return total
}

// WithoutDiscount сумма корзины без скидок
func WithoutDiscount(lines []*BasketItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// IsAvailableToOrder: нет ни одной строки с нулевым остатком
func IsAvailableToOrder(lines []*BasketItem) bool {
	for _, l := range lines {
		if l.StockQuantity <= 0 {
			return false
		}
	}
	return true
}
