package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrItemNotFound       = errors.New("item not found")
	ErrItemPhotoNotFound  = errors.New("item photo not found")
	ErrPhotoNotFound      = errors.New("photo not found")
	ErrPhotoAlreadyLinked = errors.New("photo already linked to an item")
	ErrStockNotFound      = errors.New("item stock not found")
	ErrBasketNotFound     = errors.New("basket not found")
	ErrBasketItemNotFound = errors.New("basket item not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrFavouriteNotFound  = errors.New("product not in favourites")
	ErrAlreadyExists      = errors.New("already exists")
	ErrLocked             = errors.New("resource is locked, please try again")
)

// querier: общее у *sql.DB и *sql.Tx, чтобы не дублировать запросы
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ querier = (*sql.DB)(nil)
	_ querier = (*sql.Tx)(nil)
)

// коды ошибок postgres
const (
	pqUniqueViolation  = "23505"
	pqLockNotAvailable = "55P03"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isLockNotAvailable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqLockNotAvailable
}

// expectAffected превращает 0 затронутых строк в notFound
func expectAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
