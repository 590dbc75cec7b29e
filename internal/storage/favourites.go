package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/supershop/internal/domain/models"
)

// FavouritesStorage описывает работу со списком избранного
type FavouritesStorage interface {
	GetOrCreateFavourites(ctx context.Context, userID int64) (*models.Favourites, error)
	Exists(ctx context.Context, favouritesID, productID int64) (bool, error)
	AddItem(ctx context.Context, favouritesID, productID int64) (*models.FavouritesItem, error)
	RemoveItem(ctx context.Context, favouritesID, productID int64) error
	ListItems(ctx context.Context, favouritesID int64) ([]*models.FavouritesItem, error)
}

type favouritesRepository struct {
	db *sql.DB
}

func NewFavouritesRepository(db *sql.DB) FavouritesStorage {
	return &favouritesRepository{db: db}
}

func (r *favouritesRepository) GetOrCreateFavourites(ctx context.Context, userID int64) (*models.Favourites, error) {
	query := `
		INSERT INTO favourites (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = favourites.updated_at
		RETURNING id, user_id`
	fav := &models.Favourites{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&fav.ID, &fav.UserID); err != nil {
		return nil, fmt.Errorf("failed to get or create favourites: %w", err)
	}
	return fav, nil
}

func (r *favouritesRepository) Exists(ctx context.Context, favouritesID, productID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM favourites_items WHERE favourites_id = $1 AND product_id = $2)",
		favouritesID, productID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *favouritesRepository) AddItem(ctx context.Context, favouritesID, productID int64) (*models.FavouritesItem, error) {
	fi := &models.FavouritesItem{FavouritesID: favouritesID, ProductID: productID}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO favourites_items (favourites_id, product_id) VALUES ($1, $2) RETURNING id",
		favouritesID, productID,
	).Scan(&fi.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to add favourites item: %w", err)
	}
	return fi, nil
}

func (r *favouritesRepository) RemoveItem(ctx context.Context, favouritesID, productID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM favourites_items WHERE favourites_id = $1 AND product_id = $2",
		favouritesID, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove favourites item: %w", err)
	}
	return expectAffected(res, ErrFavouriteNotFound)
}

func (r *favouritesRepository) ListItems(ctx context.Context, favouritesID int64) ([]*models.FavouritesItem, error) {
	query := `
		SELECT fi.id, fi.favourites_id, fi.product_id, i.id, i.name, i.price
		FROM favourites_items fi
		JOIN item_stocks s ON s.id = fi.product_id
		JOIN items i ON i.id = s.item_id
		WHERE fi.favourites_id = $1
		ORDER BY fi.id`
	rows, err := r.db.QueryContext(ctx, query, favouritesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.FavouritesItem
	for rows.Next() {
		fi := &models.FavouritesItem{}
		if err := rows.Scan(&fi.ID, &fi.FavouritesID, &fi.ProductID, &fi.ItemID, &fi.ItemName, &fi.Price); err != nil {
			return nil, err
		}
		items = append(items, fi)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
