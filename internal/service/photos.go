package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/storage"
)

// BlobStore удаляет файлы изображений из внешнего хранилища
type BlobStore interface {
	Delete(ctx context.Context, ref string) error
}

// PhotoService поддерживает согласованность главных фотографий товара:
// в каждом слоте не больше одной связи с флагом, и ссылка товара указывает именно на нее.
type PhotoService interface {
	GetItem(ctx context.Context, itemID int64) (*models.Item, error)
	ListItemPhotos(ctx context.Context, itemID int64) ([]*models.ItemPhoto, error)
	AttachPhoto(ctx context.Context, itemID, photoID int64) (*models.ItemPhoto, error)

	SetItemGeneralPhoto(ctx context.Context, itemID int64, slot models.Slot, linkID *int64) error
	SetPhotoFlag(ctx context.Context, linkID int64, slot models.Slot, value bool) error
	DeleteItemPhoto(ctx context.Context, linkID int64) error
	UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	DeleteItem(ctx context.Context, itemID int64) error
	ConvergeItem(ctx context.Context, itemID int64) error
}

type photoService struct {
	log    *slog.Logger
	items  storage.ItemStorage
	photos storage.PhotoStorage
	blobs  BlobStore
	locks  *keyedMutex
}

func NewPhotoService(log *slog.Logger, items storage.ItemStorage, photos storage.PhotoStorage, blobs BlobStore) PhotoService {
	return &photoService{
		log:    log,
		items:  items,
		photos: photos,
		blobs:  blobs,
		locks:  newKeyedMutex(),
	}
}

type passKind int

const (
	kindItem passKind = iota
	kindLink
)

type passKey struct {
	kind passKind
	id   int64
	slot models.Slot
}

// pass: множество сущностей, уже обновляемых в текущей операции.
// Живет ровно одну операцию, на сущностях ничего не хранится.
type pass map[passKey]struct{}

func (p pass) enter(k passKey) bool {
	if _, ok := p[k]; ok {
		return false
	}
	p[k] = struct{}{}
	return true
}

func (p pass) leave(k passKey) { delete(p, k) }

func (p pass) has(k passKey) bool {
	_, ok := p[k]
	return ok
}

// keyedMutex сериализует операции над одним товаром внутри процесса
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*refMutex
}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int64]*refMutex)}
}

func (k *keyedMutex) lock(id int64) func() {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &refMutex{}
		k.locks[id] = m
	}
	m.refs++
	k.mu.Unlock()

	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

func validSlot(slot models.Slot) bool {
	return slot == models.SlotOne || slot == models.SlotTwo
}

func sameRef(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *photoService) GetItem(ctx context.Context, itemID int64) (*models.Item, error) {
	const op = "service.PhotoService.GetItem"
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return nil, fmt.Errorf("%s: item %d: %w", op, itemID, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

func (s *photoService) ListItemPhotos(ctx context.Context, itemID int64) ([]*models.ItemPhoto, error) {
	const op = "service.PhotoService.ListItemPhotos"
	links, err := s.photos.ListItemPhotos(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return links, nil
}

func (s *photoService) AttachPhoto(ctx context.Context, itemID, photoID int64) (*models.ItemPhoto, error) {
	const op = "service.PhotoService.AttachPhoto"
	logger := s.log.With(slog.String("op", op), slog.Int64("itemID", itemID), slog.Int64("photoID", photoID))

	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	if _, err := s.photos.GetPhoto(ctx, photoID); err != nil {
		if errors.Is(err, storage.ErrPhotoNotFound) {
			return nil, fmt.Errorf("%s: photo %d: %w", op, photoID, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	link, err := s.photos.CreateItemPhoto(ctx, itemID, photoID)
	if err != nil {
		if errors.Is(err, storage.ErrPhotoAlreadyLinked) {
			logger.Warn("photo already linked")
			return nil, fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		}
		logger.Error("failed to attach photo", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("photo attached", slog.Int64("linkID", link.ID))
	return link, nil
}

// ownLink проверяет, что связь существует и принадлежит товару
func (s *photoService) ownLink(ctx context.Context, itemID, linkID int64) error {
	link, err := s.photos.GetItemPhoto(ctx, linkID)
	if err != nil {
		if errors.Is(err, storage.ErrItemPhotoNotFound) {
			return fmt.Errorf("item photo %d: %w", linkID, ErrInvalidReference)
		}
		return err
	}
	if link.ItemID != itemID {
		return fmt.Errorf("item photo %d belongs to item %d: %w", linkID, link.ItemID, ErrInvalidReference)
	}
	return nil
}

// SetItemGeneralPhoto назначает связь главной фотографией слота (nil: очистить слот).
// Повторный вызов с тем же аргументом ничего не меняет.
func (s *photoService) SetItemGeneralPhoto(ctx context.Context, itemID int64, slot models.Slot, linkID *int64) error {
	const op = "service.PhotoService.SetItemGeneralPhoto"
	logger := s.log.With(slog.String("op", op), slog.Int64("itemID", itemID), slog.String("slot", slot.String()))

	if !validSlot(slot) {
		return fmt.Errorf("%s: unknown slot: %w", op, ErrValidation)
	}

	unlock := s.locks.lock(itemID)
	defer unlock()

	if _, err := s.GetItem(ctx, itemID); err != nil {
		return err
	}
	// проверка до любых записей
	if linkID != nil {
		if err := s.ownLink(ctx, itemID, *linkID); err != nil {
			logger.Warn("rejected general photo", slog.Any("error", err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.applyItemSlot(ctx, pass{}, itemID, slot, linkID); err != nil {
		logger.Error("failed to set general photo", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("general photo set")
	return nil
}

// SetPhotoFlag меняет флаг слота со стороны связи Item_Photos
func (s *photoService) SetPhotoFlag(ctx context.Context, linkID int64, slot models.Slot, value bool) error {
	const op = "service.PhotoService.SetPhotoFlag"
	logger := s.log.With(slog.String("op", op), slog.Int64("linkID", linkID), slog.String("slot", slot.String()))

	if !validSlot(slot) {
		return fmt.Errorf("%s: unknown slot: %w", op, ErrValidation)
	}

	link, err := s.photos.GetItemPhoto(ctx, linkID)
	if err != nil {
		if errors.Is(err, storage.ErrItemPhotoNotFound) {
			return fmt.Errorf("%s: item photo %d: %w", op, linkID, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	unlock := s.locks.lock(link.ItemID)
	defer unlock()

	if err := s.applyLinkFlag(ctx, pass{}, link.ItemID, linkID, slot, value); err != nil {
		logger.Error("failed to set photo flag", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("photo flag set", slog.Bool("value", value))
	return nil
}

// applyItemSlot приводит слот товара к linkID. Ссылка товара пишется последней.
func (s *photoService) applyItemSlot(ctx context.Context, p pass, itemID int64, slot models.Slot, linkID *int64) error {
	key := passKey{kind: kindItem, id: itemID, slot: slot}
	if !p.enter(key) {
		return nil
	}
	defer p.leave(key)

	if linkID != nil {
		if !p.has(passKey{kind: kindLink, id: *linkID, slot: slot}) {
			if err := s.applyLinkFlag(ctx, p, itemID, *linkID, slot, true); err != nil {
				return err
			}
		}
	} else {
		if err := s.photos.UnflagSlot(ctx, itemID, slot, 0); err != nil {
			return err
		}
	}

	return s.items.SetGeneralPhoto(ctx, itemID, slot, linkID)
}

// applyLinkFlag: true снимает флаг с соседей, ставит его здесь и переводит ссылку товара;
// false снимает флаг и очищает ссылку, если связь была держателем слота.
func (s *photoService) applyLinkFlag(ctx context.Context, p pass, itemID, linkID int64, slot models.Slot, value bool) error {
	key := passKey{kind: kindLink, id: linkID, slot: slot}
	if !p.enter(key) {
		return nil
	}
	defer p.leave(key)

	if value {
		if err := s.photos.UnflagSlot(ctx, itemID, slot, linkID); err != nil {
			return err
		}
		if err := s.photos.SetFlag(ctx, linkID, slot, true); err != nil {
			return err
		}
		return s.applyItemSlot(ctx, p, itemID, slot, &linkID)
	}

	if err := s.photos.SetFlag(ctx, linkID, slot, false); err != nil {
		return err
	}
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if ref := item.GeneralPhoto(slot); ref != nil && *ref == linkID {
		return s.applyItemSlot(ctx, p, itemID, slot, nil)
	}
	return nil
}

// UpdateItem сохраняет товар и переносит флаги для слотов, ссылка которых изменилась
func (s *photoService) UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	const op = "service.PhotoService.UpdateItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("itemID", item.ID))

	if err := validateItem(item); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	unlock := s.locks.lock(item.ID)
	defer unlock()

	old, err := s.GetItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	for _, slot := range models.Slots {
		ref := item.GeneralPhoto(slot)
		if ref == nil || sameRef(ref, old.GeneralPhoto(slot)) {
			continue
		}
		if err := s.ownLink(ctx, item.ID, *ref); err != nil {
			logger.Warn("rejected item update", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		logger.Error("failed to save item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.onItemSaved(ctx, old, item); err != nil {
		// товар сохранен, флаги догонит ConvergeItem
		logger.Error("failed to sync photo flags", slog.Any("error", err))
		return item, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("item updated")
	return item, nil
}

// onItemSaved переносит флаги по каждому слоту независимо: ошибка одного слота не мешает другому
func (s *photoService) onItemSaved(ctx context.Context, old, cur *models.Item) error {
	var errs []error
	for _, slot := range models.Slots {
		oldRef, newRef := old.GeneralPhoto(slot), cur.GeneralPhoto(slot)
		if sameRef(oldRef, newRef) {
			continue
		}

		p := pass{}
		key := passKey{kind: kindItem, id: cur.ID, slot: slot}
		p.enter(key)

		if oldRef != nil {
			if err := s.applyLinkFlag(ctx, p, cur.ID, *oldRef, slot, false); err != nil {
				errs = append(errs, fmt.Errorf("slot %s: unflag %d: %w", slot, *oldRef, err))
			}
		}
		if newRef != nil {
			if err := s.applyLinkFlag(ctx, p, cur.ID, *newRef, slot, true); err != nil {
				errs = append(errs, fmt.Errorf("slot %s: flag %d: %w", slot, *newRef, err))
			}
		}
		p.leave(key)
	}
	return errors.Join(errs...)
}

var (
	one       = decimal.NewFromInt(1)
	maxRating = decimal.NewFromInt(5)
)

func validateItem(item *models.Item) error {
	switch {
	case item.Name == "":
		return fmt.Errorf("name is required: %w", ErrValidation)
	case item.Price.IsNegative():
		return fmt.Errorf("price must be non-negative: %w", ErrValidation)
	case item.Discount.IsNegative() || item.Discount.GreaterThan(one):
		return fmt.Errorf("discount must be in [0, 1]: %w", ErrValidation)
	case item.Rating.IsNegative() || item.Rating.GreaterThan(maxRating):
		return fmt.Errorf("rating must be in [0, 5]: %w", ErrValidation)
	}
	return nil
}

// DeleteItemPhoto удаляет связь, очищая слоты товара, которые на нее ссылались.
// Фотография без других связей удаляется вместе с файлом.
func (s *photoService) DeleteItemPhoto(ctx context.Context, linkID int64) error {
	const op = "service.PhotoService.DeleteItemPhoto"
	logger := s.log.With(slog.String("op", op), slog.Int64("linkID", linkID))

	link, err := s.photos.GetItemPhoto(ctx, linkID)
	if err != nil {
		if errors.Is(err, storage.ErrItemPhotoNotFound) {
			return fmt.Errorf("%s: item photo %d: %w", op, linkID, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	unlock := s.locks.lock(link.ItemID)
	defer unlock()

	if err := s.onItemPhotoDeleted(ctx, link); err != nil {
		logger.Error("failed to delete item photo", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("item photo deleted")
	return nil
}

func (s *photoService) onItemPhotoDeleted(ctx context.Context, link *models.ItemPhoto) error {
	item, err := s.items.GetItem(ctx, link.ItemID)
	if err != nil {
		return err
	}
	for _, slot := range models.Slots {
		if ref := item.GeneralPhoto(slot); ref != nil && *ref == link.ID {
			if err := s.items.SetGeneralPhoto(ctx, item.ID, slot, nil); err != nil {
				return err
			}
		}
	}

	if err := s.photos.DeleteItemPhoto(ctx, link.ID); err != nil {
		return err
	}
	return s.cleanupPhoto(ctx, link.PhotoID)
}

// cleanupPhoto удаляет фотографию без связей и ее файл
func (s *photoService) cleanupPhoto(ctx context.Context, photoID int64) error {
	count, err := s.photos.CountPhotoLinks(ctx, photoID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	photo, err := s.photos.GetPhoto(ctx, photoID)
	if err != nil {
		if errors.Is(err, storage.ErrPhotoNotFound) {
			return nil
		}
		return err
	}
	if err := s.photos.DeletePhoto(ctx, photoID); err != nil {
		return err
	}
	// строка уже удалена, потерянный файл не повод откатывать операцию
	if err := s.blobs.Delete(ctx, photo.Path); err != nil {
		s.log.Warn("failed to delete photo blob",
			slog.Int64("photoID", photoID), slog.String("path", photo.Path), slog.Any("error", err))
	}
	return nil
}

// DeleteItem удаляет товар каскадом и чистит осиротевшие фотографии
func (s *photoService) DeleteItem(ctx context.Context, itemID int64) error {
	const op = "service.PhotoService.DeleteItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("itemID", itemID))

	unlock := s.locks.lock(itemID)
	defer unlock()

	links, err := s.photos.ListItemPhotos(ctx, itemID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.items.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return fmt.Errorf("%s: item %d: %w", op, itemID, ErrNotFound)
		}
		logger.Error("failed to delete item", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	var errs []error
	for _, link := range links {
		if err := s.cleanupPhoto(ctx, link.PhotoID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("failed to clean up photos", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("item deleted", slog.Int("photos", len(links)))
	return nil
}

// ConvergeItem восстанавливает согласованность по текущим ссылкам товара.
// Ссылка на чужую или удаленную связь считается пустой.
func (s *photoService) ConvergeItem(ctx context.Context, itemID int64) error {
	const op = "service.PhotoService.ConvergeItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("itemID", itemID))

	unlock := s.locks.lock(itemID)
	defer unlock()

	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	links, err := s.photos.ListItemPhotos(ctx, itemID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	own := make(map[int64]bool, len(links))
	for _, l := range links {
		own[l.ID] = true
	}

	var errs []error
	for _, slot := range models.Slots {
		ref := item.GeneralPhoto(slot)
		if ref != nil && !own[*ref] {
			logger.Warn("dangling general photo reference", slog.String("slot", slot.String()), slog.Int64("ref", *ref))
			ref = nil
		}
		if err := s.applyItemSlot(ctx, pass{}, itemID, slot, ref); err != nil {
			errs = append(errs, fmt.Errorf("slot %s: %w", slot, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("convergence failed", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("item converged")
	return nil
}
