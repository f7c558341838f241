package domain

import (
	"context"
	"time"
)

// StoreClient defines the fetch/parse collaborator against the storefront.
// Implementations own HTTP mechanics, embedded-data extraction and
// politeness throttling; failures surface as per-request errors.
type StoreClient interface {
	// FetchProducts returns the raw product entries on one model's buy
	// page for one region.
	FetchProducts(ctx context.Context, category Category, model string, region Region) ([]RawProduct, error)

	// DiscoverModels returns the model slugs linked from the category's
	// buy page. An empty result is not an error; callers fall back to the
	// category's default model list.
	DiscoverModels(ctx context.Context, category Category, region Region) ([]string, error)
}

// RateSource defines an external exchange-rate provider returning a single
// reference→target rate.
type RateSource interface {
	FetchRate(ctx context.Context) (*ExchangeRate, error)
}

// RateProvider yields the rate to use for a run. Implementations layer
// fallbacks (live source, persisted snapshot, fixed default) so a usable
// rate is always returned.
type RateProvider interface {
	CurrentRate(ctx context.Context) ExchangeRate
}

// CatalogStore defines durable catalog publication and retrieval. Writes
// must be atomic from the reader's perspective.
type CatalogStore interface {
	WriteCatalog(category Category, catalog *Catalog) error
	WriteCSV(category Category, products []*MergedProduct, regions []Region) error
	WriteIndex(index *DatasetIndex) error
	ReadCatalog(category Category) (*Catalog, error)
	ReadIndex() (*DatasetIndex, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
