package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/service"
)

// optionalRef различает отсутствующее поле и явный null
type optionalRef struct {
	Set   bool
	Value *int64
}

func (o *optionalRef) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// UpdateItemRequest: частичное обновление товара, отсутствующие поля не меняются
type UpdateItemRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	Discount        *decimal.Decimal `json:"discount"`
	Rating          *decimal.Decimal `json:"rating"`
	GeneralPhotoOne optionalRef      `json:"general_photo_one"`
	GeneralPhotoTwo optionalRef      `json:"general_photo_two"`
}

func (req *UpdateItemRequest) apply(item *models.Item) {
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Discount != nil {
		item.Discount = *req.Discount
	}
	if req.Rating != nil {
		item.Rating = *req.Rating
	}
	for slot, ref := range map[models.Slot]optionalRef{models.SlotOne: req.GeneralPhotoOne, models.SlotTwo: req.GeneralPhotoTwo} {
		if ref.Set {
			item.SetGeneralPhoto(slot, ref.Value)
		}
	}
}

type AttachPhotoRequest struct {
	PhotoID int64 `json:"photo_id" validate:"required,gt=0"`
}

// SetGeneralPhotoRequest: item_photo_id = null очищает слот
type SetGeneralPhotoRequest struct {
	ItemPhotoID *int64 `json:"item_photo_id" validate:"omitempty,gt=0"`
}

type UpdateItemPhotoRequest struct {
	IsGeneralOne *bool `json:"is_general_one"`
	IsGeneralTwo *bool `json:"is_general_two"`
}

// ItemResponse: товар вместе со связями фотографий
type ItemResponse struct {
	*models.Item
	PriceWithDiscount decimal.Decimal     `json:"price_with_discount"`
	Photos            []*models.ItemPhoto `json:"photos"`
}

func itemResponse(r *http.Request, photos service.PhotoService, itemID int64) (*ItemResponse, error) {
	item, err := photos.GetItem(r.Context(), itemID)
	if err != nil {
		return nil, err
	}
	links, err := photos.ListItemPhotos(r.Context(), itemID)
	if err != nil {
		return nil, err
	}
	if links == nil {
		links = []*models.ItemPhoto{}
	}
	return &ItemResponse{Item: item, PriceWithDiscount: item.PriceWithDiscount(), Photos: links}, nil
}

// GetItemHandler обрабатывает GET /api/items/{id}
func GetItemHandler(log *slog.Logger, photos service.PhotoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetItemHandler"
		logger := log.With(slog.String("op", op))

		itemID, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}
		resp, err := itemResponse(r, photos, itemID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}

// UpdateItemHandler обрабатывает PATCH /api/items/{id}
func UpdateItemHandler(log *slog.Logger, photos service.PhotoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateItemHandler"
		logger := log.With(slog.String("op", op))

		itemID, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}
		var req UpdateItemRequest
		if !decode(w, r, logger, &req) {
			return
		}

		item, err := photos.GetItem(r.Context(), itemID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		req.apply(item)

		if _, err := photos.UpdateItem(r.Context(), item); err != nil {
			writeError(w, logger, err)
			return
		}
		resp, err := itemResponse(r, photos, itemID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}

// DeleteItemHandler обрабатывает DELETE /api/items/{id}
func DeleteItemHandler(log *slog.Logger, photos service.PhotoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteItemHandler"
		logger := log.With(slog.String("op", op))

		itemID, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}
		if err := photos.DeleteItem(r.Context(), itemID); err != nil {
			writeError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AttachPhotoHandler обрабатывает POST /api/items/{id}/photos
func AttachPhotoHandler(log *slog.Logger, photos service.PhotoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AttachPhotoHandler"
		logger := log.With(slog.String("op", op))

		itemID, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}
		var req AttachPhotoRequest
		if !decode(w, r, logger, &req) {
			return
		}

		link, err := photos.AttachPhoto(r.Context(), itemID, req.PhotoID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, link)
	}
}

// SetGeneralPhotoHandler обрабатывает PUT /api/items/{id}/general-photos/{slot}
func SetGeneralPhotoHandler(log *slog.Logger, photos service.PhotoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SetGeneralPhotoHandler"
		logger := log.With(slog.String("op", op))

		itemID, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}
		slot, ok := models.ParseSlot(chi.URLParam(r, "slot"))
		if !ok {
			writeMessage(w, logger, http.StatusBadRequest, "slot must be one or two")
			return
		}
		var req SetGeneralPhotoRequest
		if !decode(w, r, logger, &req) {
			return
		}

		if err := photos.SetItemGeneralPhoto(r.Context(), itemID, slot, req.ItemPhotoID); err != nil {
			writeError(w, logger, err)
			return
		}
		resp, err := itemResponse(r, photos, itemID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}

// UpdateItemPhotoHandler обрабатывает PATCH /api/item-photos/{id}
func UpdateItemPhotoHandler(log *slog.Logger, photos service.PhotoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateItemPhotoHandler"
		logger := log.With(slog.String("op", op))

		linkID, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}
		var req UpdateItemPhotoRequest
		if !decode(w, r, logger, &req) {
			return
		}
		if req.IsGeneralOne == nil && req.IsGeneralTwo == nil {
			writeMessage(w, logger, http.StatusBadRequest, "nothing to update")
			return
		}

		flags := []struct {
			slot  models.Slot
			value *bool
		}{
			{models.SlotOne, req.IsGeneralOne},
			{models.SlotTwo, req.IsGeneralTwo},
		}
		for _, f := range flags {
			if f.value == nil {
				continue
			}
			if err := photos.SetPhotoFlag(r.Context(), linkID, f.slot, *f.value); err != nil {
				writeError(w, logger, err)
				return
			}
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"id": linkID, "is_general_one": req.IsGeneralOne, "is_general_two": req.IsGeneralTwo})
	}
}

// DeleteItemPhotoHandler обрабатывает DELETE /api/item-photos/{id}
func DeleteItemPhotoHandler(log *slog.Logger, photos service.PhotoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteItemPhotoHandler"
		logger := log.With(slog.String("op", op))

		linkID, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}
		if err := photos.DeleteItemPhoto(r.Context(), linkID); err != nil {
			writeError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ConvergeItemHandler обрабатывает POST /api/items/{id}/converge
func ConvergeItemHandler(log *slog.Logger, photos service.PhotoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ConvergeItemHandler"
		logger := log.With(slog.String("op", op))

		itemID, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}
		if err := photos.ConvergeItem(r.Context(), itemID); err != nil {
			writeError(w, logger, err)
			return
		}
		resp, err := itemResponse(r, photos, itemID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}

// StockItemsResponse: остатки товара после фильтра по цвету и размеру
type StockItemsResponse struct {
	StockItems []*models.ItemStock `json:"stock_items"`
}

// ItemStockHandler обрабатывает GET /api/items/{id}/stock?color=red,blue&size=M
func ItemStockHandler(log *slog.Logger, ledger service.StockLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ItemStockHandler"
		logger := log.With(slog.String("op", op))

		itemID, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}
		filter := models.StockFilter{
			Colors: splitList(r.URL.Query().Get("color")),
			Sizes:  splitList(r.URL.Query().Get("size")),
		}
		stocks, err := ledger.ListByItem(r.Context(), itemID, filter)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if stocks == nil {
			stocks = []*models.ItemStock{}
		}
		writeJSON(w, logger, http.StatusOK, StockItemsResponse{StockItems: stocks})
	}
}

// ListItemsHandler обрабатывает GET /api/items
func ListItemsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListItemsHandler"
		logger := log.With(slog.String("op", op))

		q, err := parseItemQuery(r)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		page, err := catalog.ListItems(r.Context(), q.filter, q.page, q.limit)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, page)
	}
}

// CategoryItemsHandler обрабатывает GET /api/categories/{slug}/items
func CategoryItemsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoryItemsHandler"
		logger := log.With(slog.String("op", op))

		q, err := parseItemQuery(r)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		page, err := catalog.ListCategoryItems(r.Context(), chi.URLParam(r, "slug"), q.filter, q.page, q.limit)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, page)
	}
}

// ListCategoriesHandler обрабатывает GET /api/categories
func ListCategoriesHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListCategoriesHandler"
		logger := log.With(slog.String("op", op))

		categories, err := catalog.ListCategories(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, categories)
	}
}
