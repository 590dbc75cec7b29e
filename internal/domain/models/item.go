package models

import "github.com/shopspring/decimal"

// Slot: один из двух слотов "главной" фотографии товара
type Slot int

const (
	SlotOne Slot = iota + 1
	SlotTwo
)

// Slots перечисляет оба слота в фиксированном порядке
var Slots = [...]Slot{SlotOne, SlotTwo}

func (s Slot) String() string {
	switch s {
	case SlotOne:
		return "one"
	case SlotTwo:
		return "two"
	default:
		return "unknown"
	}
}

// ParseSlot разбирает имя слота из URL или JSON ("one"/"two", "1"/"2")
func ParseSlot(s string) (Slot, bool) {
	switch s {
	case "one", "1":
		return SlotOne, true
	case "two", "2":
		return SlotTwo, true
	}
	return 0, false
}

// Item представляет товар каталога
type Item struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Discount        decimal.Decimal `json:"discount"` // доля от 0 до 1
	Rating          decimal.Decimal `json:"rating"`
	OrderCount      int             `json:"order_count"`
	GeneralPhotoOne *int64          `json:"general_photo_one"`
	GeneralPhotoTwo *int64          `json:"general_photo_two"`
}

// PriceWithDiscount = price * (1 - discount), округление до копеек
func (i *Item) PriceWithDiscount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(1).Sub(i.Discount)).Round(2)
}

// GeneralPhoto возвращает ссылку товара на главную фотографию слота
func (i *Item) GeneralPhoto(slot Slot) *int64 {
	if slot == SlotTwo {
		return i.GeneralPhotoTwo
	}
	return i.GeneralPhotoOne
}

// SetGeneralPhoto меняет ссылку в памяти, без записи в БД
func (i *Item) SetGeneralPhoto(slot Slot, linkID *int64) {
	if slot == SlotTwo {
		i.GeneralPhotoTwo = linkID
		return
	}
	i.GeneralPhotoOne = linkID
}

// Category: категория каталога
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
