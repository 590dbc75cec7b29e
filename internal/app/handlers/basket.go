package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/supershop/internal/service"
)

type AddBasketItemRequest struct {
	ItemID   int64  `json:"item_id" validate:"required,gt=0"`
	Color    string `json:"color" validate:"required"`
	Size     string `json:"size" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

type DeleteBasketItemsRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// GetBasketHandler обрабатывает GET /api/baskets/
func GetBasketHandler(log *slog.Logger, baskets service.BasketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetBasketHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}

		basket, err := baskets.GetBasket(r.Context(), userID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, basket)
	}
}

// AddBasketItemHandler обрабатывает POST /api/baskets/add/
func AddBasketItemHandler(log *slog.Logger, baskets service.BasketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddBasketItemHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		var req AddBasketItemRequest
		if !decode(w, r, logger, &req) {
			return
		}

		line, err := baskets.AddItem(r.Context(), userID, req.ItemID, req.Color, req.Size, req.Quantity)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, line)
	}
}

// UpdateBasketItemHandler обрабатывает PATCH /api/baskets/basket-item/{id}/
func UpdateBasketItemHandler(log *slog.Logger, baskets service.BasketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateBasketItemHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		lineID, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}
		var req UpdateQuantityRequest
		if !decode(w, r, logger, &req) {
			return
		}

		if err := baskets.UpdateQuantity(r.Context(), userID, lineID, req.Quantity); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"id": lineID, "quantity": req.Quantity})
	}
}

// DeleteBasketItemsHandler обрабатывает POST /api/baskets/delete/
func DeleteBasketItemsHandler(log *slog.Logger, baskets service.BasketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteBasketItemsHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		var req DeleteBasketItemsRequest
		if !decode(w, r, logger, &req) {
			return
		}

		deleted, err := baskets.DeleteItems(r.Context(), userID, req.IDs)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]int64{"deleted": deleted})
	}
}

// ListFavouritesHandler обрабатывает GET /api/favourites/
func ListFavouritesHandler(log *slog.Logger, favourites service.FavouritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListFavouritesHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}

		items, err := favourites.List(r.Context(), userID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, items)
	}
}

// AddFavouriteHandler обрабатывает POST /api/favourites/{stock_id}/add_item/
func AddFavouriteHandler(log *slog.Logger, favourites service.FavouritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddFavouriteHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		stockID, ok := idParam(w, r, logger, "stock_id")
		if !ok {
			return
		}

		if err := favourites.Add(r.Context(), userID, stockID); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, map[string]string{"status": "product added to favourites"})
	}
}

// RemoveFavouriteHandler обрабатывает POST /api/favourites/{stock_id}/remove_item/
func RemoveFavouriteHandler(log *slog.Logger, favourites service.FavouritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveFavouriteHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		stockID, ok := idParam(w, r, logger, "stock_id")
		if !ok {
			return
		}

		if err := favourites.Remove(r.Context(), userID, stockID); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "product removed from favourites"})
	}
}
