package applestore

import (
	"encoding/json"

	"github.com/pricescope/backend/internal/domain"
)

// metricsPayload mirrors the shape of the embedded metrics JSON block:
// {"data": {"products": [{"sku", "name", "price": {"fullPrice"}, ...}]}}
type metricsPayload struct {
	Data struct {
		Products []metricsProduct `json:"products"`
	} `json:"data"`
}

type metricsProduct struct {
	SKU        string       `json:"sku"`
	Name       string       `json:"name"`
	PartNumber string       `json:"partNumber"`
	Category   string       `json:"category"`
	Price      metricsPrice `json:"price"`
}

type metricsPrice struct {
	FullPrice float64 `json:"fullPrice"`
}

// MapProducts decodes a metrics JSON payload into domain records for one
// region. Entries without a name are dropped; a missing price maps to 0
// ("unavailable"), never an error.
func MapProducts(payload string, region domain.Region, category domain.Category) ([]domain.RawProduct, error) {
	var metrics metricsPayload
	if err := json.Unmarshal([]byte(payload), &metrics); err != nil {
		return nil, err
	}

	records := make([]domain.RawProduct, 0, len(metrics.Data.Products))
	for _, product := range metrics.Data.Products {
		if product.Name == "" {
			continue
		}

		sku := product.SKU
		if sku == "" {
			// Some pages carry only part numbers; use them so SKU-matched
			// categories still group.
			sku = product.PartNumber
		}

		records = append(records, domain.RawProduct{
			SKU:        sku,
			Name:       product.Name,
			Price:      product.Price.FullPrice,
			PartNumber: product.PartNumber,
			RegionCode: region.Code,
			Category:   category,
		})
	}

	return records, nil
}
