package domain

// Region describes one Apple storefront with its own currency and catalog.
// Code is the URL prefix segment; the US storefront has no prefix, so its
// code is the empty string.
type Region struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
	Currency    string `json:"currency"`
	Locale      string `json:"locale"`
	Symbol      string `json:"symbol"`
}

// DefaultRegions returns the configured storefronts in priority order.
// The first entry is the reference region whose product naming is
// authoritative for display.
func DefaultRegions() []Region {
	return []Region{
		{Code: "", DisplayName: "US", Currency: "USD", Locale: "en-us", Symbol: "$"},
		{Code: "tw", DisplayName: "TW", Currency: "TWD", Locale: "zh-tw", Symbol: "NT$"},
	}
}

// URLPrefix returns the path prefix for this region's store pages,
// e.g. "/tw" for Taiwan and "" for the US.
func (r Region) URLPrefix() string {
	if r.Code == "" {
		return ""
	}
	return "/" + r.Code
}

// MatchStrategy governs how raw records from different regions are grouped
// into one merged product.
type MatchStrategy int

const (
	// MatchByName derives a canonical key from the localized product name.
	// Used when the storefront assigns different SKUs per region.
	MatchByName MatchStrategy = iota

	// MatchBySKU uses the SKU directly. Used when the storefront assigns
	// identical SKUs across regions for the same configuration.
	MatchBySKU
)

// Category identifies an Apple product line.
type Category string

const (
	CategoryIPhone  Category = "iphone"
	CategoryIPad    Category = "ipad"
	CategoryMac     Category = "mac"
	CategoryWatch   Category = "watch"
	CategoryAirPods Category = "airpods"
	CategoryTVHome  Category = "tvhome"
)

// categoryInfo holds the per-category store layout and matching policy.
type categoryInfo struct {
	buyPath       string
	strategy      MatchStrategy
	defaultModels []string
}

var categories = map[Category]categoryInfo{
	CategoryIPhone: {
		buyPath:       "buy-iphone",
		strategy:      MatchByName,
		defaultModels: []string{"iphone-16-pro", "iphone-16", "iphone-16e", "iphone-15"},
	},
	CategoryIPad: {
		buyPath:       "buy-ipad",
		strategy:      MatchBySKU,
		defaultModels: []string{"ipad-pro", "ipad-air", "ipad", "ipad-mini"},
	},
	CategoryMac: {
		buyPath:       "buy-mac",
		strategy:      MatchBySKU,
		defaultModels: []string{"mac-mini", "imac", "mac-studio"},
	},
	CategoryWatch: {
		buyPath:       "buy-watch",
		strategy:      MatchByName,
		defaultModels: []string{"apple-watch", "apple-watch-se", "apple-watch-ultra", "apple-watch-hermes"},
	},
	CategoryAirPods: {
		buyPath:       "buy-airpods",
		strategy:      MatchBySKU,
		defaultModels: []string{"airpods_4", "airpods_pro_2", "airpods_max"},
	},
	CategoryTVHome: {
		buyPath:       "buy-tv",
		strategy:      MatchBySKU,
		defaultModels: []string{"apple-tv-4k", "homepod", "homepod-mini"},
	},
}

// AllCategories returns every known product line in a stable order.
func AllCategories() []Category {
	return []Category{
		CategoryIPhone, CategoryIPad, CategoryMac,
		CategoryWatch, CategoryAirPods, CategoryTVHome,
	}
}

// IsValid reports whether c names a known product line.
func (c Category) IsValid() bool {
	_, ok := categories[c]
	return ok
}

// Strategy returns the matching policy for this product line.
func (c Category) Strategy() MatchStrategy {
	return categories[c].strategy
}

// BuyPath returns the store path segment for this product line,
// e.g. "buy-iphone".
func (c Category) BuyPath() string {
	return categories[c].buyPath
}

// DefaultModels returns the known-baseline model slugs used when dynamic
// discovery yields nothing.
func (c Category) DefaultModels() []string {
	models := categories[c].defaultModels
	out := make([]string, len(models))
	copy(out, models)
	return out
}
