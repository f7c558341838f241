package usecase

import (
	"context"
	"log"
	"sort"

	"github.com/pricescope/backend/internal/domain"
)

// Collector gathers raw per-region records for one product category from
// the store collaborator. Fetch failures are recovered locally: the
// failing model/region combination is skipped and counted, never aborting
// the run.
type Collector struct {
	store domain.StoreClient
}

// NewCollector creates a new region collector
func NewCollector(store domain.StoreClient) *Collector {
	return &Collector{store: store}
}

// CollectResult carries one run's raw records plus failure accounting.
type CollectResult struct {
	Records []domain.RawProduct
	Skipped int // model/region combinations that failed
	Models  []string
}

// Collect fetches all products for a category across the given regions.
// Model slugs are discovered per region and unioned; when discovery finds
// nothing anywhere the category's default model list guarantees the known
// baseline is still attempted.
func (c *Collector) Collect(ctx context.Context, category domain.Category, regions []domain.Region) (*CollectResult, error) {
	models := c.discoverModels(ctx, category, regions)
	log.Printf("[SCRAPE] %s: collecting %d models across %d regions", category, len(models), len(regions))

	result := &CollectResult{Models: models}
	for _, model := range models {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for _, region := range regions {
			records, err := c.store.FetchProducts(ctx, category, model, region)
			if err != nil {
				log.Printf("[SCRAPE] Skipping %s/%s for region %s: %v", category, model, region.DisplayName, err)
				result.Skipped++
				continue
			}
			result.Records = append(result.Records, records...)
		}
	}

	log.Printf("[SCRAPE] %s: collected %d records, skipped %d combinations",
		category, len(result.Records), result.Skipped)
	return result, nil
}

// discoverModels unions the model slugs discovered in every region,
// falling back to the category defaults when nothing is found. The union
// is sorted so runs are reproducible.
func (c *Collector) discoverModels(ctx context.Context, category domain.Category, regions []domain.Region) []string {
	seen := make(map[string]bool)
	for _, region := range regions {
		models, err := c.store.DiscoverModels(ctx, category, region)
		if err != nil {
			log.Printf("[SCRAPE] Model discovery failed for %s region %s: %v", category, region.DisplayName, err)
			continue
		}
		for _, model := range models {
			seen[model] = true
		}
	}

	if len(seen) == 0 {
		defaults := category.DefaultModels()
		log.Printf("[SCRAPE] %s: discovery yielded nothing, using %d default models", category, len(defaults))
		return defaults
	}

	models := make([]string, 0, len(seen))
	for model := range seen {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}
