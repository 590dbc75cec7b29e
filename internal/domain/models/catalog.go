package models

import "github.com/shopspring/decimal"

// ItemSort: порядок выдачи каталога
type ItemSort string

const (
	// SortPopular: по убыванию числа заказов, порядок по умолчанию
	SortPopular   ItemSort = ""
	SortDiscount  ItemSort = "discount"
	SortPriceAsc  ItemSort = "price_asc"
	SortPriceDesc ItemSort = "price_desc"
)

// ParseItemSort принимает только известные значения параметра sort
func ParseItemSort(s string) (ItemSort, bool) {
	switch sort := ItemSort(s); sort {
	case SortPopular, SortDiscount, SortPriceAsc, SortPriceDesc:
		return sort, true
	}
	return SortPopular, false
}

// ItemFilter: фильтры и страница выдачи каталога
type ItemFilter struct {
	CategorySlug string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	WithDiscount bool
	InStock      bool
	Sort         ItemSort

	Limit  int
	Offset int
}

// StockFilter: пустой список не ограничивает выборку
type StockFilter struct {
	Colors []string
	Sizes  []string
}
