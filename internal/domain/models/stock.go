package models

// Color: цвет конкретного товара
type Color struct {
	ID     int64  `json:"id"`
	ItemID int64  `json:"item_id"`
	Name   string `json:"name"`
	Hex    string `json:"hex"`
}

// Size: размер конкретного товара
type Size struct {
	ID     int64  `json:"id"`
	ItemID int64  `json:"item_id"`
	Name   string `json:"name"`
}

// ItemStock: остаток по кортежу (товар, цвет, размер)
type ItemStock struct {
	ID        int64  `json:"id"`
	ItemID    int64  `json:"item_id"`
	ColorID   int64  `json:"color_id"`
	SizeID    int64  `json:"size_id"`
	ColorName string `json:"color"`
	SizeName  string `json:"size"`
	Quantity  int    `json:"quantity"`
}
