package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pricescope/backend/internal/domain"
	"github.com/pricescope/backend/internal/usecase"
)

// Handler serves exported catalogs. Catalog files are parsed once and kept
// in the cache for the configured TTL; derived comparison fields can be
// recomputed per request from caller-supplied rate/fee without touching
// the exported snapshot.
type Handler struct {
	catalogs domain.CatalogStore
	cache    domain.CacheRepository
	cacheTTL time.Duration
	regions  []domain.Region
}

// NewHandler creates a new HTTP handler
func NewHandler(catalogs domain.CatalogStore, cache domain.CacheRepository, cacheTTL time.Duration, regions []domain.Region) *Handler {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Handler{
		catalogs: catalogs,
		cache:    cache,
		cacheTTL: cacheTTL,
		regions:  regions,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricescope-backend",
		"version": "1.0.0",
	})
}

// ListCatalogs returns the dataset index of all exported catalogs
func (h *Handler) ListCatalogs(c *gin.Context) {
	index, err := h.catalogs.ReadIndex()
	if err != nil {
		if errors.Is(err, domain.ErrCatalogNotFound) {
			// No run has completed yet; an empty index is a valid state.
			c.JSON(http.StatusOK, domain.DatasetIndex{Datasets: []domain.DatasetEntry{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read dataset index"})
		return
	}
	c.JSON(http.StatusOK, index)
}

// GetCatalog returns one category's catalog. Optional "rate" and "fee"
// query parameters recompute the derived comparison fields; invalid
// settings are rejected and the exported snapshot values are retained.
func (h *Handler) GetCatalog(c *gin.Context) {
	category := domain.Category(c.Param("category"))
	if !category.IsValid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown product category"})
		return
	}

	catalog, err := h.getCatalog(c, category)
	if err != nil {
		if errors.Is(err, domain.ErrCatalogNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no catalog exported for this category"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load catalog"})
		return
	}

	settings, supplied, err := h.parseSettings(c, catalog)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if supplied {
		catalog = h.recompute(catalog, settings)
	}

	c.JSON(http.StatusOK, catalog)
}

// GetSummary returns the aggregate price-difference metrics for one
// category, with the same optional rate/fee recompute as GetCatalog.
func (h *Handler) GetSummary(c *gin.Context) {
	category := domain.Category(c.Param("category"))
	if !category.IsValid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown product category"})
		return
	}

	catalog, err := h.getCatalog(c, category)
	if err != nil {
		if errors.Is(err, domain.ErrCatalogNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no catalog exported for this category"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load catalog"})
		return
	}

	settings, _, err := h.parseSettings(c, catalog)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comparator := usecase.NewComparator(h.referenceRegion(), h.targetRegion())
	summary := comparator.Summarize(copyProducts(catalog.Products), settings)

	c.JSON(http.StatusOK, summary)
}

// getCatalog loads a catalog through the cache.
func (h *Handler) getCatalog(c *gin.Context, category domain.Category) (*domain.Catalog, error) {
	cacheKey := "catalog:" + string(category)

	if cached, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
		if catalog, ok := cached.(*domain.Catalog); ok {
			return catalog, nil
		}
	}

	catalog, err := h.catalogs.ReadCatalog(category)
	if err != nil {
		return nil, err
	}

	// Best effort; serving the catalog matters more than caching it.
	_ = h.cache.Set(c.Request.Context(), cacheKey, catalog, h.cacheTTL)
	return catalog, nil
}

// parseSettings extracts rate/fee query parameters, defaulting to the
// catalog's exported snapshot. A non-positive rate or negative fee is an
// invalid update and is rejected here, at the consumer boundary.
func (h *Handler) parseSettings(c *gin.Context, catalog *domain.Catalog) (domain.CompareSettings, bool, error) {
	settings := domain.CompareSettings{
		Rate: catalog.Metadata.ExchangeRates[h.targetRegion().Currency],
	}

	supplied := false
	if raw, ok := c.GetQuery("rate"); ok {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate <= 0 {
			return settings, false, domain.ErrInvalidSettings
		}
		settings.Rate = rate
		supplied = true
	}
	if raw, ok := c.GetQuery("fee"); ok {
		fee, err := strconv.ParseFloat(raw, 64)
		if err != nil || fee < 0 {
			return settings, false, domain.ErrInvalidSettings
		}
		settings.FeePercent = fee
		supplied = true
	}

	return settings, supplied, nil
}

// recompute re-derives the comparison fields on a copy of the catalog so
// the cached snapshot stays untouched.
func (h *Handler) recompute(catalog *domain.Catalog, settings domain.CompareSettings) *domain.Catalog {
	comparator := usecase.NewComparator(h.referenceRegion(), h.targetRegion())

	products := copyProducts(catalog.Products)
	for _, product := range products {
		comparator.Annotate(product, settings)
	}

	metadata := catalog.Metadata
	metadata.ExchangeRates = map[string]float64{
		h.referenceRegion().Currency: 1.0,
		h.targetRegion().Currency:    settings.Rate,
	}

	return &domain.Catalog{Metadata: metadata, Products: products}
}

// copyProducts deep-copies merged products so per-request annotation never
// mutates shared cache state.
func copyProducts(products []*domain.MergedProduct) []*domain.MergedProduct {
	out := make([]*domain.MergedProduct, len(products))
	for i, product := range products {
		clone := *product
		clone.SKUs = make(map[string]string, len(product.SKUs))
		for k, v := range product.SKUs {
			clone.SKUs[k] = v
		}
		clone.Prices = make(map[string]float64, len(product.Prices))
		for k, v := range product.Prices {
			clone.Prices[k] = v
		}
		out[i] = &clone
	}
	return out
}

func (h *Handler) referenceRegion() domain.Region {
	return h.regions[0]
}

func (h *Handler) targetRegion() domain.Region {
	return h.regions[len(h.regions)-1]
}
