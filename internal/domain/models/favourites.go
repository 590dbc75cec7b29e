package models

import "github.com/shopspring/decimal"

// Favourites: список избранного пользователя
type Favourites struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user"`
}

// FavouritesItem: товар (ItemStock) в избранном
type FavouritesItem struct {
	ID           int64           `json:"id"`
	FavouritesID int64           `json:"-"`
	ProductID    int64           `json:"product"`
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"product_name"`
	Price        decimal.Decimal `json:"product_price"`
}
