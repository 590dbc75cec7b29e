package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/service"
)

// AddressRequest: тело POST и PUT /api/addresses/
type AddressRequest struct {
	Address      string   `json:"address" validate:"required,max=1000"`
	Lat          *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon          *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	DefaultState bool     `json:"default_state"`
}

func (req *AddressRequest) address(id int64) *models.Address {
	return &models.Address{ID: id, Address: req.Address, Lat: *req.Lat, Lon: *req.Lon, DefaultState: req.DefaultState}
}

// ListAddressesHandler обрабатывает GET /api/addresses/
func ListAddressesHandler(log *slog.Logger, addresses service.AddressService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListAddressesHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		list, err := addresses.List(r.Context(), userID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, list)
	}
}

// CreateAddressHandler обрабатывает POST /api/addresses/
func CreateAddressHandler(log *slog.Logger, addresses service.AddressService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateAddressHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		var req AddressRequest
		if !decode(w, r, logger, &req) {
			return
		}

		a, err := addresses.Create(r.Context(), userID, req.address(0))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, a)
	}
}

// GetAddressHandler обрабатывает GET /api/addresses/{id}/
func GetAddressHandler(log *slog.Logger, addresses service.AddressService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetAddressHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		id, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}

		a, err := addresses.Get(r.Context(), userID, id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, a)
	}
}

// UpdateAddressHandler обрабатывает PUT /api/addresses/{id}/
func UpdateAddressHandler(log *slog.Logger, addresses service.AddressService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateAddressHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		id, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}
		var req AddressRequest
		if !decode(w, r, logger, &req) {
			return
		}

		a, err := addresses.Update(r.Context(), userID, req.address(id))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, a)
	}
}

// DeleteAddressHandler обрабатывает DELETE /api/addresses/{id}/
func DeleteAddressHandler(log *slog.Logger, addresses service.AddressService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteAddressHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		id, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}

		if err := addresses.Delete(r.Context(), userID, id); err != nil {
			writeError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
