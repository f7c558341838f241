package domain

import "time"

// ExchangeRate is a single reference→target currency conversion rate with
// its provenance. Rate converts one unit of the reference currency (USD)
// into the target currency (TWD).
type ExchangeRate struct {
	Rate      float64   `json:"rate"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// CompareSettings are the validated inputs to the price comparator.
// Callers at the consumer boundary must reject Rate <= 0 or FeePercent < 0
// before constructing one; the comparator assumes they hold.
type CompareSettings struct {
	Rate       float64 `json:"rate"`       // reference currency -> target currency
	FeePercent float64 `json:"feePercent"` // foreign transaction fee surcharge
}

// Valid reports whether the settings satisfy the comparator's input
// contract.
func (s CompareSettings) Valid() bool {
	return s.Rate > 0 && s.FeePercent >= 0
}

// CatalogMetadata describes one exported catalog.
type CatalogMetadata struct {
	LastUpdated            string             `json:"lastUpdated"`
	ExchangeRates          map[string]float64 `json:"exchangeRates"`
	Regions                []string           `json:"regions"`
	ProductType            string             `json:"productType"`
	TotalProducts          int                `json:"totalProducts"`
	LastExchangeRateUpdate string             `json:"lastExchangeRateUpdate,omitempty"`
	ExchangeRateSource     string             `json:"exchangeRateSource,omitempty"`
}

// Catalog is the exported unit per category: metadata plus the merged,
// metric-annotated product list. It is immutable once exported; a re-run
// fully replaces it.
type Catalog struct {
	Metadata CatalogMetadata  `json:"metadata"`
	Products []*MergedProduct `json:"products"`
}

// DatasetEntry references one exported catalog in the index file.
type DatasetEntry struct {
	Type  string `json:"type"`
	File  string `json:"file"`
	Title string `json:"title"`
}

// DatasetIndex lists all catalogs produced by a run.
type DatasetIndex struct {
	LastUpdated string         `json:"lastUpdated"`
	Datasets    []DatasetEntry `json:"datasets"`
}

// Summary aggregates price differences across a catalog. Averages cover
// only products with a defined difference; Max and Min come from the
// pre-fee list.
type Summary struct {
	Avg        float64 `json:"avg"`
	AvgWithFee float64 `json:"avgWithFee"`
	Max        float64 `json:"max"`
	Min        float64 `json:"min"`
	Counted    int     `json:"counted"` // products included in the averages
}
