package usecase

import (
	"log"

	"github.com/pricescope/backend/internal/domain"
)

// Merger reconciles raw per-region records into one merged product per
// logical configuration.
type Merger struct {
	normalizer *Normalizer
}

// NewMerger creates a new merger
func NewMerger(normalizer *Normalizer) *Merger {
	return &Merger{normalizer: normalizer}
}

// Merge groups records by matching key and builds one MergedProduct per
// distinct key. Every configured region gets a slot on every product;
// regions without a record hold ""/0. Products are emitted in order of
// first appearance, so identical input yields identical output.
//
// If a region contributes more than one record for the same key the first
// encountered wins and the duplicate is logged, not silently dropped.
func (m *Merger) Merge(
	records []domain.RawProduct,
	category domain.Category,
	regions []domain.Region,
	referenceRegion domain.Region,
) []*domain.MergedProduct {
	sharedSKU := category.Strategy() == domain.MatchBySKU

	displayByCode := make(map[string]string, len(regions))
	for _, region := range regions {
		displayByCode[region.Code] = region.DisplayName
	}

	// groups holds per-key, per-region records; keyOrder preserves first
	// appearance.
	groups := make(map[string]map[string]domain.RawProduct)
	var keyOrder []string

	for _, record := range records {
		key := m.normalizer.MatchingKey(record)
		if key == "" {
			log.Printf("[MERGE] Skipping record with empty matching key (region %q, name %q)",
				record.RegionCode, record.Name)
			continue
		}

		group, ok := groups[key]
		if !ok {
			group = make(map[string]domain.RawProduct, len(regions))
			groups[key] = group
			keyOrder = append(keyOrder, key)
		}

		display := displayByCode[record.RegionCode]
		if _, dup := group[display]; dup {
			log.Printf("[MERGE] Duplicate record for key %q in region %s, keeping first", key, display)
			continue
		}
		group[display] = record
	}

	merged := make([]*domain.MergedProduct, 0, len(keyOrder))
	for _, key := range keyOrder {
		merged = append(merged, buildProduct(key, groups[key], category, regions, referenceRegion, sharedSKU))
	}

	return merged
}

// buildProduct constructs one merged product from a key's per-region group.
func buildProduct(
	key string,
	group map[string]domain.RawProduct,
	category domain.Category,
	regions []domain.Region,
	referenceRegion domain.Region,
	sharedSKU bool,
) *domain.MergedProduct {
	product := &domain.MergedProduct{
		Key:       key,
		Category:  category,
		SharedSKU: sharedSKU,
		SKUs:      make(map[string]string, len(regions)),
		Prices:    make(map[string]float64, len(regions)),
	}

	for _, region := range regions {
		record, ok := group[region.DisplayName]
		if !ok {
			product.SKUs[region.DisplayName] = ""
			product.Prices[region.DisplayName] = 0
			continue
		}
		product.SKUs[region.DisplayName] = record.SKU
		product.Prices[region.DisplayName] = record.Price
	}

	// Display name from the reference region when present, otherwise the
	// first configured region that has a record.
	if record, ok := group[referenceRegion.DisplayName]; ok {
		product.DisplayName = record.Name
	} else {
		for _, region := range regions {
			if record, ok := group[region.DisplayName]; ok {
				product.DisplayName = record.Name
				break
			}
		}
	}

	return product
}
