package exchangerate

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pricescope/backend/internal/domain"
)

// snapshotFile is the persisted rate document: the last successfully
// fetched rate with its provenance.
type snapshotFile struct {
	Rates       map[string]float64 `json:"rates"`
	LastUpdated string             `json:"lastUpdated"`
	Source      string             `json:"source"`
}

// Provider layers the fallback chain over a RateSource: live fetch ->
// previously persisted snapshot -> fixed default. CurrentRate therefore
// always yields a usable rate.
type Provider struct {
	source       domain.RateSource
	snapshotPath string
	defaultRate  float64
	currency     string
}

// NewProvider creates a rate provider. snapshotPath may point at a
// not-yet-existing file; it is created on the first successful fetch.
func NewProvider(source domain.RateSource, snapshotPath string, defaultRate float64, currency string) *Provider {
	return &Provider{
		source:       source,
		snapshotPath: snapshotPath,
		defaultRate:  defaultRate,
		currency:     currency,
	}
}

// CurrentRate returns the rate to use for a run, walking the fallback
// chain. Failures are logged, never propagated.
func (p *Provider) CurrentRate(ctx context.Context) domain.ExchangeRate {
	if p.source != nil {
		fetched, err := p.source.FetchRate(ctx)
		if err == nil {
			log.Printf("[RATE] Fetched 1 USD = %.2f %s from %s", fetched.Rate, p.currency, fetched.Source)
			p.persist(fetched)
			return *fetched
		}
		log.Printf("[RATE] Fetch failed: %v", err)
	}

	if snapshot, ok := p.readSnapshot(); ok {
		log.Printf("[RATE] Using persisted rate 1 USD = %.2f %s", snapshot.Rate, p.currency)
		return snapshot
	}

	log.Printf("[RATE] Using default rate 1 USD = %.2f %s", p.defaultRate, p.currency)
	return domain.ExchangeRate{Rate: p.defaultRate, Source: "default"}
}

// persist writes the fetched rate snapshot for later runs.
func (p *Provider) persist(rate *domain.ExchangeRate) {
	if p.snapshotPath == "" {
		return
	}

	snapshot := snapshotFile{
		Rates: map[string]float64{
			"USD":      1.0,
			p.currency: rate.Rate,
		},
		LastUpdated: rate.FetchedAt.Format(time.RFC3339),
		Source:      rate.Source,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		log.Printf("[RATE] Failed to encode snapshot: %v", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(p.snapshotPath), 0755); err != nil {
		log.Printf("[RATE] Failed to create snapshot directory: %v", err)
		return
	}
	if err := os.WriteFile(p.snapshotPath, data, 0644); err != nil {
		log.Printf("[RATE] Failed to persist snapshot: %v", err)
	}
}

// readSnapshot loads the last persisted rate if one exists and is valid.
func (p *Provider) readSnapshot() (domain.ExchangeRate, bool) {
	if p.snapshotPath == "" {
		return domain.ExchangeRate{}, false
	}

	data, err := os.ReadFile(p.snapshotPath)
	if err != nil {
		return domain.ExchangeRate{}, false
	}

	var snapshot snapshotFile
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.Printf("[RATE] Invalid snapshot file: %v", err)
		return domain.ExchangeRate{}, false
	}

	rate, ok := snapshot.Rates[p.currency]
	if !ok || rate <= 0 {
		return domain.ExchangeRate{}, false
	}

	result := domain.ExchangeRate{Rate: rate, Source: snapshot.Source}
	if fetchedAt, err := time.Parse(time.RFC3339, snapshot.LastUpdated); err == nil {
		result.FetchedAt = fetchedAt
	}
	return result, true
}
