package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	// ErrInvalidReference: ссылка на объект, не принадлежащий товару
	ErrInvalidReference = fmt.Errorf("invalid reference: %w", ErrValidation)
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrExternalProvider = errors.New("external provider error")

	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAlreadyInFavourites = fmt.Errorf("product already in favourites: %w", ErrConflict)
	ErrBasketNotAvailable  = fmt.Errorf("basket has items out of stock: %w", ErrValidation)
	ErrTooManyRequests     = errors.New("too many requests")
)
