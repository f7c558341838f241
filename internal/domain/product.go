package domain

import (
	"encoding/json"
	"strings"
)

// RawProduct is one product observation from one region's storefront,
// produced by a single scrape run and consumed once by the merger.
type RawProduct struct {
	SKU        string   `json:"sku"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"` // local currency; 0 means unavailable
	PartNumber string   `json:"partNumber,omitempty"`
	RegionCode string   `json:"regionCode"`
	Category   Category `json:"category"`
}

// Recommendation values for MergedProduct.RecommendedPurchase. The region
// variants carry the display name of the cheaper side.
const (
	RecommendationSimilar      = "similar"
	RecommendationNotAvailable = "N/A"
)

// MergedProduct is the canonical cross-region entity: one logical product
// with a per-region SKU/price slot for every configured region. Missing
// regions hold ""/0 rather than nulls so downstream arithmetic stays total.
type MergedProduct struct {
	Key         string
	Category    Category
	DisplayName string

	// SharedSKU marks products matched by a region-independent SKU; their
	// exported SKU field is unqualified.
	SharedSKU bool

	// SKUs and Prices are keyed by region display name ("US", "TW").
	SKUs   map[string]string
	Prices map[string]float64

	// Derived by the comparator.
	PriceDifferencePercent        float64
	PriceDifferenceWithFeePercent float64
	RecommendedPurchase           string
}

// SKU returns the region-qualified SKU, or the shared SKU for shared-SKU
// categories.
func (p *MergedProduct) SKU(regionDisplay string) string {
	if p.SharedSKU {
		return p.Key
	}
	return p.SKUs[regionDisplay]
}

// Price returns the price slot for a region, 0 when unavailable.
func (p *MergedProduct) Price(regionDisplay string) float64 {
	return p.Prices[regionDisplay]
}

// Available reports whether the product has a usable price in the region.
func (p *MergedProduct) Available(regionDisplay string) bool {
	return p.Prices[regionDisplay] > 0
}

// MarshalJSON emits the flattened wire form: one SKU_<REGION> and
// Price_<REGION> key per region (bare "SKU" for shared-SKU products),
// PRODUCT_NAME, product_type and the derived comparison fields. The
// per-region keys are dynamic, so the object is built by hand.
func (p *MergedProduct) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 2*len(p.Prices)+5)

	if p.SharedSKU {
		out["SKU"] = p.Key
	} else {
		for region, sku := range p.SKUs {
			out["SKU_"+region] = sku
		}
	}
	for region, price := range p.Prices {
		out["Price_"+region] = price
	}

	out["PRODUCT_NAME"] = p.DisplayName
	out["product_type"] = string(p.Category)
	out["price_difference_percent"] = p.PriceDifferencePercent
	out["price_difference_with_fee_percent"] = p.PriceDifferenceWithFeePercent
	if p.RecommendedPurchase != "" {
		out["recommended_purchase"] = p.RecommendedPurchase
	}

	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON so exported catalogs round-trip.
func (p *MergedProduct) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.SKUs = make(map[string]string)
	p.Prices = make(map[string]float64)

	for key, value := range raw {
		var err error
		switch {
		case key == "SKU":
			p.SharedSKU = true
			err = json.Unmarshal(value, &p.Key)
		case strings.HasPrefix(key, "SKU_"):
			var sku string
			if err = json.Unmarshal(value, &sku); err == nil {
				p.SKUs[strings.TrimPrefix(key, "SKU_")] = sku
			}
		case strings.HasPrefix(key, "Price_"):
			var price float64
			if err = json.Unmarshal(value, &price); err == nil {
				p.Prices[strings.TrimPrefix(key, "Price_")] = price
			}
		case key == "PRODUCT_NAME":
			err = json.Unmarshal(value, &p.DisplayName)
		case key == "product_type":
			var category string
			if err = json.Unmarshal(value, &category); err == nil {
				p.Category = Category(category)
			}
		case key == "price_difference_percent":
			err = json.Unmarshal(value, &p.PriceDifferencePercent)
		case key == "price_difference_with_fee_percent":
			err = json.Unmarshal(value, &p.PriceDifferenceWithFeePercent)
		case key == "recommended_purchase":
			err = json.Unmarshal(value, &p.RecommendedPurchase)
		}
		if err != nil {
			return err
		}
	}

	return nil
}
