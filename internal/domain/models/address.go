package models

// Address: адрес доставки пользователя, основной не больше одного
type Address struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"-"`
	Address      string  `json:"address"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	DefaultState bool    `json:"default_state"`
}
