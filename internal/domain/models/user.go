package models

import "time"

// User представляет покупателя, идентифицируемого по номеру телефона
type User struct {
	ID        int64
	Phone     string
	Name      string
	PassHash  []byte
	IsActive  bool
	IsStaff   bool // сотрудник магазина: правка каталога
	CreatedAt time.Time
}
