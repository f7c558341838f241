package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pricescope/backend/internal/domain"
)

// PipelineConfig holds the fixed settings of one pipeline instance.
type PipelineConfig struct {
	Regions    []domain.Region
	FeePercent float64
}

// Pipeline runs the full batch per category: collect -> merge -> rate ->
// annotate -> export. Categories share no mutable state, so separate
// invocations are independent.
type Pipeline struct {
	collector  *Collector
	merger     *Merger
	comparator *Comparator
	rates      domain.RateProvider
	catalogs   domain.CatalogStore
	regions    []domain.Region
	reference  domain.Region
	target     domain.Region
	feePercent float64
}

// NewPipeline creates a pipeline. The first configured region is the
// reference region; the second is the comparison target.
func NewPipeline(
	collector *Collector,
	merger *Merger,
	rates domain.RateProvider,
	catalogs domain.CatalogStore,
	config PipelineConfig,
) *Pipeline {
	reference := config.Regions[0]
	target := config.Regions[len(config.Regions)-1]

	return &Pipeline{
		collector:  collector,
		merger:     merger,
		comparator: NewComparator(reference, target),
		rates:      rates,
		catalogs:   catalogs,
		regions:    config.Regions,
		reference:  reference,
		target:     target,
		feePercent: config.FeePercent,
	}
}

// RunReport summarizes one category run.
type RunReport struct {
	Category        domain.Category
	TotalProducts   int
	Skipped         int
	PerRegionCounts map[string]int
	Rate            domain.ExchangeRate
	Summary         domain.Summary
}

// Run executes the pipeline for one category. Collection is a strict
// barrier before reconciliation; an empty collection still exports a
// valid catalog with totalProducts 0.
func (p *Pipeline) Run(ctx context.Context, category domain.Category) (*RunReport, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, category)
	}

	collected, err := p.collector.Collect(ctx, category, p.regions)
	if err != nil {
		return nil, err
	}

	merged := p.merger.Merge(collected.Records, category, p.regions, p.reference)

	rate := p.rates.CurrentRate(ctx)
	settings := domain.CompareSettings{Rate: rate.Rate, FeePercent: p.feePercent}

	for _, product := range merged {
		p.comparator.Annotate(product, settings)
	}
	summary := p.comparator.Summarize(merged, settings)

	if err := p.catalogs.WriteCSV(category, merged, p.regions); err != nil {
		log.Printf("[EXPORT] CSV write failed for %s: %v", category, err)
	}

	catalog := p.buildCatalog(category, merged, rate)
	if err := p.catalogs.WriteCatalog(category, catalog); err != nil {
		return nil, fmt.Errorf("exporting %s catalog: %w", category, err)
	}

	report := &RunReport{
		Category:        category,
		TotalProducts:   len(merged),
		Skipped:         collected.Skipped,
		PerRegionCounts: countByRegion(merged, p.regions),
		Rate:            rate,
		Summary:         summary,
	}

	log.Printf("[PIPELINE] %s: %d products, %d skips, avg diff %.1f%% (with fee %.1f%%)",
		category, report.TotalProducts, report.Skipped, summary.Avg, summary.AvgWithFee)
	for _, region := range p.regions {
		log.Printf("[PIPELINE] Products found in %s: %d", region.DisplayName, report.PerRegionCounts[region.DisplayName])
	}

	return report, nil
}

// RunAll executes every requested category and writes the dataset index
// for those that exported successfully. One failing category does not
// stop the others.
func (p *Pipeline) RunAll(ctx context.Context, requested []domain.Category) ([]*RunReport, error) {
	var reports []*RunReport
	index := &domain.DatasetIndex{LastUpdated: time.Now().Format(time.RFC3339)}

	for _, category := range requested {
		report, err := p.Run(ctx, category)
		if err != nil {
			if ctx.Err() != nil {
				return reports, ctx.Err()
			}
			log.Printf("[PIPELINE] Category %s failed: %v", category, err)
			continue
		}
		reports = append(reports, report)
		index.Datasets = append(index.Datasets, domain.DatasetEntry{
			Type:  string(category),
			File:  string(category) + "_data.json",
			Title: datasetTitle(category),
		})
	}

	if len(index.Datasets) > 0 {
		if err := p.catalogs.WriteIndex(index); err != nil {
			log.Printf("[PIPELINE] Index write failed: %v", err)
		}
	}

	return reports, nil
}

// buildCatalog assembles the export structure with its metadata snapshot.
// The exported with-fee figures are advisory; consumers may recompute
// with a live rate.
func (p *Pipeline) buildCatalog(category domain.Category, products []*domain.MergedProduct, rate domain.ExchangeRate) *domain.Catalog {
	regionNames := make([]string, len(p.regions))
	for i, region := range p.regions {
		regionNames[i] = region.DisplayName
	}

	metadata := domain.CatalogMetadata{
		LastUpdated: time.Now().Format(time.RFC3339),
		ExchangeRates: map[string]float64{
			p.reference.Currency: 1.0,
			p.target.Currency:    rate.Rate,
		},
		Regions:            regionNames,
		ProductType:        string(category),
		TotalProducts:      len(products),
		ExchangeRateSource: rate.Source,
	}
	if !rate.FetchedAt.IsZero() {
		metadata.LastExchangeRateUpdate = rate.FetchedAt.Format(time.RFC3339)
	}

	return &domain.Catalog{Metadata: metadata, Products: products}
}

// countByRegion counts products with an available price per region.
func countByRegion(products []*domain.MergedProduct, regions []domain.Region) map[string]int {
	counts := make(map[string]int, len(regions))
	for _, region := range regions {
		for _, product := range products {
			if product.Available(region.DisplayName) {
				counts[region.DisplayName]++
			}
		}
	}
	return counts
}

// datasetTitle maps a category to its index entry title.
func datasetTitle(category domain.Category) string {
	switch category {
	case domain.CategoryIPhone:
		return "iPhone Models"
	case domain.CategoryIPad:
		return "iPad Models"
	case domain.CategoryMac:
		return "Mac Models"
	case domain.CategoryWatch:
		return "Apple Watch Models"
	case domain.CategoryAirPods:
		return "AirPods Models"
	case domain.CategoryTVHome:
		return "Apple TV & Home Models"
	}
	return string(category)
}
