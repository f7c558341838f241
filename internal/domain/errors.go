package domain

import "errors"

var (
	// ErrPageUnavailable is returned when a store page cannot be fetched
	ErrPageUnavailable = errors.New("store page unavailable")

	// ErrNoProductData is returned when a fetched page carries no embedded product data block
	ErrNoProductData = errors.New("no product data block found in page")

	// ErrNoModelsFound is returned when model discovery yields nothing
	ErrNoModelsFound = errors.New("no models discovered on store page")

	// ErrRateUnavailable is returned when the exchange rate source fails
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrInvalidSettings is returned when a caller supplies a non-positive rate or negative fee
	ErrInvalidSettings = errors.New("invalid comparison settings")

	// ErrCatalogNotFound is returned when no catalog exists for a category
	ErrCatalogNotFound = errors.New("catalog not found")

	// ErrInvalidCategory is returned when a category identifier is unknown
	ErrInvalidCategory = errors.New("unknown product category")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
