package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pricescope/backend/internal/domain"
)

// Compiled regex patterns shared by the normalizer
var (
	keyPunctuationRegex = regexp.MustCompile(`[^\w\s]`)
	keyMultiSpaceRegex  = regexp.MustCompile(`\s+`)
	watchSeriesRegex    = regexp.MustCompile(`series\s*(\d+)`)
)

// namePatterns is the per-category rule set for structured-name matching.
// Model and capacity are extracted by pattern; the color/finish is derived
// from whatever remains, so novel finishes are still captured.
type namePatterns struct {
	model    *regexp.Regexp
	capacity *regexp.Regexp
}

// categoryPatterns holds the pattern table for every category using the
// structured-name strategy. Categories matched by shared SKU have no entry
// and bypass the normalizer entirely.
var categoryPatterns = map[domain.Category]namePatterns{
	domain.CategoryIPhone: {
		// e.g. "iphone 16 pro max" -> generation "16", tier "pro max";
		// the optional e keeps "16e" a distinct generation.
		model:    regexp.MustCompile(`iphone\s*(\d+e?)\s*(pro\s*max|pro|plus|se)?`),
		capacity: regexp.MustCompile(`(\d+)\s*(gb|tb)`),
	},
	domain.CategoryWatch: {
		// e.g. "apple watch series 10", "apple watch ultra 2". "series"
		// must precede "se" in the alternation or it matches as "se".
		model:    regexp.MustCompile(`apple\s*watch\s*(series\s*\d+|ultra\s*\d*|se\s*\d*|hermes)?`),
		capacity: regexp.MustCompile(`(\d+)\s*(mm)`),
	},
}

// Normalizer derives canonical matching keys from raw, region-specific
// product names.
type Normalizer struct{}

// NewNormalizer creates a new name normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize converts a raw product name into a canonical key that is
// stable across regions: lowercase, no whitespace, recognized tokens
// joined by underscores, e.g. "iPhone 16 Pro 256GB Black Titanium" ->
// "iphone16pro_256gb_blacktitanium".
//
// If no model token is recognized the full name is lowercased and
// whitespace-collapsed instead, so every product still gets a key.
func (n *Normalizer) Normalize(rawName string, category domain.Category) string {
	if rawName == "" {
		return ""
	}

	name := strings.ToLower(rawName)

	patterns, ok := categoryPatterns[category]
	if !ok {
		return fallbackKey(name)
	}

	// The capacity is stripped before the model match so a trailing size
	// ("SE 40mm") cannot be mistaken for a model variant number.
	stripped := name
	capacityMatch := patterns.capacity.FindStringSubmatch(name)
	if capacityMatch != nil {
		stripped = strings.Replace(name, capacityMatch[0], " ", 1)
	}

	modelMatch := patterns.model.FindStringSubmatch(stripped)
	if modelMatch == nil {
		return fallbackKey(name)
	}

	// The color is whatever remains after the recognized tokens.
	color := colorToken(strings.Replace(stripped, modelMatch[0], "", 1))

	var parts []string
	parts = append(parts, modelToken(category, modelMatch))
	if capacityMatch != nil {
		parts = append(parts, capacityMatch[1]+capacityMatch[2])
	}
	if color != "" {
		parts = append(parts, color)
	}

	return strings.Join(parts, "_")
}

// modelToken builds the model part of the key from a pattern match.
func modelToken(category domain.Category, match []string) string {
	switch category {
	case domain.CategoryIPhone:
		variant := strings.ReplaceAll(match[2], " ", "")
		return "iphone" + match[1] + variant
	case domain.CategoryWatch:
		variant := strings.TrimSpace(match[1])
		// "series 10" -> "s10" keeps keys short and stable across the
		// localized long forms.
		variant = watchSeriesRegex.ReplaceAllString(variant, "s$1")
		variant = strings.ReplaceAll(variant, " ", "")
		if variant == "" {
			return "watch"
		}
		return "watch" + variant
	}
	return strings.ReplaceAll(match[0], " ", "")
}

// colorToken normalizes the leftover text into a single color token.
// Words are sorted so cosmetic reorderings ("Black Titanium" vs
// "Titanium Black") produce identical keys.
func colorToken(remainder string) string {
	cleaned := keyPunctuationRegex.ReplaceAllString(remainder, " ")
	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return ""
	}
	sort.Strings(words)
	return strings.Join(words, "")
}

// fallbackKey lowercases and whitespace-collapses the full raw name. The
// key is overly specific but the product is never dropped.
func fallbackKey(name string) string {
	cleaned := keyPunctuationRegex.ReplaceAllString(name, " ")
	cleaned = keyMultiSpaceRegex.ReplaceAllString(cleaned, " ")
	return strings.ReplaceAll(strings.TrimSpace(cleaned), " ", "_")
}

// MatchingKey returns the grouping key for one raw record per the
// category's matching strategy: the canonical name key, or the SKU itself
// when the storefront shares SKUs across regions.
func (n *Normalizer) MatchingKey(record domain.RawProduct) string {
	if record.Category.Strategy() == domain.MatchBySKU {
		return record.SKU
	}
	return n.Normalize(record.Name, record.Category)
}
