package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/supershop/internal/domain/models"
)

// PhotoStorage описывает работу с фотографиями и связями Item_Photos
type PhotoStorage interface {
	GetPhoto(ctx context.Context, id int64) (*models.Photo, error)
	DeletePhoto(ctx context.Context, id int64) error

	CreateItemPhoto(ctx context.Context, itemID, photoID int64) (*models.ItemPhoto, error)
	GetItemPhoto(ctx context.Context, id int64) (*models.ItemPhoto, error)
	ListItemPhotos(ctx context.Context, itemID int64) ([]*models.ItemPhoto, error)
	DeleteItemPhoto(ctx context.Context, id int64) error
	// CountPhotoLinks: сколько связей еще ссылаются на фотографию
	CountPhotoLinks(ctx context.Context, photoID int64) (int, error)

	SetFlag(ctx context.Context, linkID int64, slot models.Slot, value bool) error
	// UnflagSlot снимает флаг слота со всех связей товара, кроме exceptID
	UnflagSlot(ctx context.Context, itemID int64, slot models.Slot, exceptID int64) error
}

type photoRepository struct {
	db *sql.DB
}

func NewPhotoRepository(db *sql.DB) PhotoStorage {
	return &photoRepository{db: db}
}

// flagColumn: колонка item_photos с флагом слота
func flagColumn(slot models.Slot) string {
	if slot == models.SlotTwo {
		return "is_general_two"
	}
	return "is_general_one"
}

func (r *photoRepository) GetPhoto(ctx context.Context, id int64) (*models.Photo, error) {
	photo := &models.Photo{}
	err := r.db.QueryRowContext(ctx, "SELECT id, name, path FROM photos WHERE id = $1", id).
		Scan(&photo.ID, &photo.Name, &photo.Path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return photo, nil
}

func (r *photoRepository) DeletePhoto(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM photos WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return expectAffected(res, ErrPhotoNotFound)
}

func (r *photoRepository) CreateItemPhoto(ctx context.Context, itemID, photoID int64) (*models.ItemPhoto, error) {
	link := &models.ItemPhoto{ItemID: itemID, PhotoID: photoID}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO item_photos (item_id, photo_id) VALUES ($1, $2) RETURNING id",
		itemID, photoID,
	).Scan(&link.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPhotoAlreadyLinked
		}
		return nil, fmt.Errorf("failed to create item photo: %w", err)
	}
	return link, nil
}

func (r *photoRepository) GetItemPhoto(ctx context.Context, id int64) (*models.ItemPhoto, error) {
	link := &models.ItemPhoto{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, item_id, photo_id, is_general_one, is_general_two FROM item_photos WHERE id = $1", id,
	).Scan(&link.ID, &link.ItemID, &link.PhotoID, &link.IsGeneralOne, &link.IsGeneralTwo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemPhotoNotFound
		}
		return nil, err
	}
	return link, nil
}

func (r *photoRepository) ListItemPhotos(ctx context.Context, itemID int64) ([]*models.ItemPhoto, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, item_id, photo_id, is_general_one, is_general_two FROM item_photos WHERE item_id = $1 ORDER BY id",
		itemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*models.ItemPhoto
	for rows.Next() {
		link := &models.ItemPhoto{}
		if err := rows.Scan(&link.ID, &link.ItemID, &link.PhotoID, &link.IsGeneralOne, &link.IsGeneralTwo); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *photoRepository) DeleteItemPhoto(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM item_photos WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete item photo: %w", err)
	}
	return expectAffected(res, ErrItemPhotoNotFound)
}

func (r *photoRepository) CountPhotoLinks(ctx context.Context, photoID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM item_photos WHERE photo_id = $1", photoID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *photoRepository) SetFlag(ctx context.Context, linkID int64, slot models.Slot, value bool) error {
	query := fmt.Sprintf("UPDATE item_photos SET %s = $1 WHERE id = $2", flagColumn(slot))
	res, err := r.db.ExecContext(ctx, query, value, linkID)
	if err != nil {
		return fmt.Errorf("failed to set %s flag: %w", slot, err)
	}
	return expectAffected(res, ErrItemPhotoNotFound)
}

func (r *photoRepository) UnflagSlot(ctx context.Context, itemID int64, slot models.Slot, exceptID int64) error {
	col := flagColumn(slot)
	query := fmt.Sprintf("UPDATE item_photos SET %s = FALSE WHERE item_id = $1 AND id <> $2 AND %s", col, col)
	if _, err := r.db.ExecContext(ctx, query, itemID, exceptID); err != nil {
		return fmt.Errorf("failed to unflag %s: %w", slot, err)
	}
	return nil
}
