package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pricescope/backend/config"
	"github.com/pricescope/backend/internal/domain"
	"github.com/pricescope/backend/internal/infrastructure/applestore"
	"github.com/pricescope/backend/internal/infrastructure/catalog"
	"github.com/pricescope/backend/internal/infrastructure/exchangerate"
	"github.com/pricescope/backend/internal/usecase"
)

func main() {
	categoriesFlag := flag.String("categories", "", "comma-separated product categories to scrape (default: all)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	categories, err := parseCategories(*categoriesFlag)
	if err != nil {
		log.Fatalf("Invalid categories: %v", err)
	}

	regions := domain.DefaultRegions()

	log.Printf("Starting PriceScope scraper v1.0.0")
	log.Printf("Store: %s (delay %s, timeout %s)", cfg.Scraper.BaseURL, cfg.Scraper.RequestDelay, cfg.Scraper.Timeout)
	log.Printf("Regions: %s", regionNames(regions))
	log.Printf("Categories: %v", categories)

	// Initialize infrastructure dependencies
	storeClient := applestore.NewClient(cfg.Scraper.BaseURL, cfg.Scraper.RequestDelay, cfg.Scraper.Timeout)
	if cfg.Server.Environment == "development" || cfg.Scraper.Debug {
		storeClient.SetDebug(true)
		log.Printf("Store client debug mode enabled")
	}

	rateClient := exchangerate.NewClient(cfg.Exchange.URL, cfg.Scraper.Timeout)
	rateProvider := exchangerate.NewProvider(rateClient, cfg.Exchange.SnapshotPath, cfg.Exchange.DefaultRate, "TWD")

	catalogStore := catalog.NewStore(cfg.Output.DataDir, cfg.Output.CSVDir)

	// Initialize usecase layer
	collector := usecase.NewCollector(storeClient)
	merger := usecase.NewMerger(usecase.NewNormalizer())
	pipeline := usecase.NewPipeline(collector, merger, rateProvider, catalogStore, usecase.PipelineConfig{
		Regions:    regions,
		FeePercent: cfg.Compare.FeePercent,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reports, err := pipeline.RunAll(ctx, categories)
	if err != nil {
		log.Fatalf("Run aborted: %v", err)
	}

	if len(reports) == 0 {
		log.Fatalf("No categories exported successfully")
	}

	for _, report := range reports {
		log.Printf("Exported %s: %d products (skipped %d fetches, rate %.2f from %s)",
			report.Category, report.TotalProducts, report.Skipped, report.Rate.Rate, report.Rate.Source)
	}
}

// parseCategories resolves the -categories flag; empty means all known
// categories.
func parseCategories(raw string) ([]domain.Category, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.AllCategories(), nil
	}

	var categories []domain.Category
	for _, part := range strings.Split(raw, ",") {
		category := domain.Category(strings.TrimSpace(part))
		if !category.IsValid() {
			return nil, domain.ErrInvalidCategory
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func regionNames(regions []domain.Region) string {
	names := make([]string, len(regions))
	for i, region := range regions {
		names[i] = region.DisplayName
	}
	return strings.Join(names, ", ")
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
