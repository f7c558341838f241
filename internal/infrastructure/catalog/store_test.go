package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricescope/backend/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(dir, dir)
}

func testCatalog() *domain.Catalog {
	return &domain.Catalog{
		Metadata: domain.CatalogMetadata{
			LastUpdated:   "2026-08-30T12:00:00Z",
			ExchangeRates: map[string]float64{"USD": 1.0, "TWD": 31.7},
			Regions:       []string{"US", "TW"},
			ProductType:   "iphone",
		},
		Products: []*domain.MergedProduct{
			{
				Key:         "iphone16pro_256gb_blacktitanium",
				Category:    domain.CategoryIPhone,
				DisplayName: "iPhone 16 Pro 256GB Black Titanium",
				SKUs:        map[string]string{"US": "MYND3LL/A", "TW": "MYND3TA/A"},
				Prices:      map[string]float64{"US": 1099, "TW": 36900},

				PriceDifferencePercent:        5.9,
				PriceDifferenceWithFeePercent: 4.4,
				RecommendedPurchase:           "US",
			},
		},
	}
}

func TestWriteCatalog(t *testing.T) {
	t.Run("published catalog round-trips through ReadCatalog", func(t *testing.T) {
		store := testStore(t)
		require.NoError(t, store.WriteCatalog(domain.CategoryIPhone, testCatalog()))

		got, err := store.ReadCatalog(domain.CategoryIPhone)
		require.NoError(t, err)

		assert.Equal(t, "iphone", got.Metadata.ProductType)
		assert.Equal(t, 1, got.Metadata.TotalProducts)
		assert.Equal(t, 31.7, got.Metadata.ExchangeRates["TWD"])

		require.Len(t, got.Products, 1)
		product := got.Products[0]
		assert.Equal(t, "iPhone 16 Pro 256GB Black Titanium", product.DisplayName)
		assert.Equal(t, "MYND3LL/A", product.SKUs["US"])
		assert.Equal(t, "MYND3TA/A", product.SKUs["TW"])
		assert.Equal(t, 1099.0, product.Prices["US"])
		assert.Equal(t, 36900.0, product.Prices["TW"])
		assert.Equal(t, 5.9, product.PriceDifferencePercent)
		assert.Equal(t, "US", product.RecommendedPurchase)
	})

	t.Run("total products always matches the product list", func(t *testing.T) {
		store := testStore(t)
		catalog := testCatalog()
		catalog.Metadata.TotalProducts = 99 // stale count is corrected on write

		require.NoError(t, store.WriteCatalog(domain.CategoryIPhone, catalog))

		got, err := store.ReadCatalog(domain.CategoryIPhone)
		require.NoError(t, err)
		assert.Equal(t, len(got.Products), got.Metadata.TotalProducts)
	})

	t.Run("empty catalog exports an empty array, not null", func(t *testing.T) {
		store := testStore(t)
		require.NoError(t, store.WriteCatalog(domain.CategoryMac, &domain.Catalog{
			Metadata: domain.CatalogMetadata{ProductType: "mac"},
		}))

		data, err := os.ReadFile(filepath.Join(store.dataDir, "mac_data.json"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"products": []`)
		assert.NotContains(t, string(data), `"products": null`)
	})

	t.Run("shared-SKU product exports a bare SKU key", func(t *testing.T) {
		store := testStore(t)
		catalog := &domain.Catalog{
			Metadata: domain.CatalogMetadata{ProductType: "ipad"},
			Products: []*domain.MergedProduct{
				{
					Key:         "MVV83",
					Category:    domain.CategoryIPad,
					DisplayName: "iPad Air 11-inch 128GB Blue",
					SharedSKU:   true,
					SKUs:        map[string]string{"US": "MVV83", "TW": "MVV83"},
					Prices:      map[string]float64{"US": 599, "TW": 19900},
				},
			},
		}
		require.NoError(t, store.WriteCatalog(domain.CategoryIPad, catalog))

		data, err := os.ReadFile(filepath.Join(store.dataDir, "ipad_data.json"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"SKU": "MVV83"`)
		assert.NotContains(t, string(data), `"SKU_US"`)

		got, err := store.ReadCatalog(domain.CategoryIPad)
		require.NoError(t, err)
		require.Len(t, got.Products, 1)
		assert.True(t, got.Products[0].SharedSKU)
		assert.Equal(t, "MVV83", got.Products[0].Key)
	})

	t.Run("no temp files remain after publishing", func(t *testing.T) {
		store := testStore(t)
		require.NoError(t, store.WriteCatalog(domain.CategoryIPhone, testCatalog()))

		entries, err := os.ReadDir(store.dataDir)
		require.NoError(t, err)
		for _, entry := range entries {
			assert.NotContains(t, entry.Name(), ".tmp")
		}
	})

	t.Run("missing catalog reports not found", func(t *testing.T) {
		store := testStore(t)
		_, err := store.ReadCatalog(domain.CategoryWatch)
		assert.ErrorIs(t, err, domain.ErrCatalogNotFound)
	})
}

func TestWriteIndex(t *testing.T) {
	t.Run("index round-trips through ReadIndex", func(t *testing.T) {
		store := testStore(t)
		index := &domain.DatasetIndex{
			LastUpdated: "2026-08-30T12:00:00Z",
			Datasets: []domain.DatasetEntry{
				{Type: "iphone", File: "iphone_data.json", Title: "iPhone Models"},
			},
		}
		require.NoError(t, store.WriteIndex(index))

		got, err := store.ReadIndex()
		require.NoError(t, err)
		require.Len(t, got.Datasets, 1)
		assert.Equal(t, "iphone_data.json", got.Datasets[0].File)
	})

	t.Run("missing index reports not found", func(t *testing.T) {
		store := testStore(t)
		_, err := store.ReadIndex()
		assert.ErrorIs(t, err, domain.ErrCatalogNotFound)
	})
}

func TestWriteCSV(t *testing.T) {
	regions := domain.DefaultRegions()

	t.Run("writes BOM, per-region headers and rows", func(t *testing.T) {
		store := testStore(t)
		products := testCatalog().Products
		require.NoError(t, store.WriteCSV(domain.CategoryIPhone, products, regions))

		data, err := os.ReadFile(filepath.Join(store.csvDir, "iphone_products_merged.csv"))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

		content := string(data[3:])
		assert.Contains(t, content, "SKU_US,SKU_TW,Price_US,Price_TW,PRODUCT_NAME")
		assert.Contains(t, content, "MYND3LL/A,MYND3TA/A,1099,36900,iPhone 16 Pro 256GB Black Titanium")
	})

	t.Run("shared-SKU categories get one SKU column", func(t *testing.T) {
		store := testStore(t)
		products := []*domain.MergedProduct{
			{
				Key:         "MVV83",
				Category:    domain.CategoryIPad,
				DisplayName: "iPad Air 11-inch 128GB Blue",
				SharedSKU:   true,
				SKUs:        map[string]string{"US": "MVV83", "TW": "MVV83"},
				Prices:      map[string]float64{"US": 599, "TW": 19900},
			},
		}
		require.NoError(t, store.WriteCSV(domain.CategoryIPad, products, regions))

		data, err := os.ReadFile(filepath.Join(store.csvDir, "ipad_products_merged.csv"))
		require.NoError(t, err)
		content := string(data[3:])
		assert.Contains(t, content, "SKU,Price_US,Price_TW,PRODUCT_NAME")
		assert.Contains(t, content, "MVV83,599,19900,iPad Air 11-inch 128GB Blue")
	})

	t.Run("empty product list still writes the header", func(t *testing.T) {
		store := testStore(t)
		require.NoError(t, store.WriteCSV(domain.CategoryMac, nil, regions))

		data, err := os.ReadFile(filepath.Join(store.csvDir, "mac_products_merged.csv"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "PRODUCT_NAME")
	})
}

func TestCatalogJSONShape(t *testing.T) {
	t.Run("exported keys follow the flattened naming", func(t *testing.T) {
		store := testStore(t)
		require.NoError(t, store.WriteCatalog(domain.CategoryIPhone, testCatalog()))

		data, err := os.ReadFile(filepath.Join(store.dataDir, "iphone_data.json"))
		require.NoError(t, err)

		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &doc))
		require.Contains(t, doc, "metadata")
		require.Contains(t, doc, "products")

		var products []map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(doc["products"], &products))
		require.Len(t, products, 1)
		for _, key := range []string{
			"SKU_US", "SKU_TW", "Price_US", "Price_TW",
			"PRODUCT_NAME", "product_type",
			"price_difference_percent", "price_difference_with_fee_percent",
			"recommended_purchase",
		} {
			assert.Contains(t, products[0], key)
		}
	})
}
