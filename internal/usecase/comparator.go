package usecase

import (
	"math"

	"github.com/pricescope/backend/internal/domain"
)

// similarBandPercent is the fee-adjusted difference band treated as
// "similar". The comparisons are strict, so exactly ±2.0% stays inside
// the band and recommendations do not flip on noise-level differences.
const similarBandPercent = 2.0

// Comparator derives currency- and fee-adjusted price metrics for merged
// products. Prices are compared between the reference region (in its
// native currency) and the target region (in its native currency); the
// settings rate converts reference currency into target currency.
type Comparator struct {
	referenceRegion domain.Region
	targetRegion    domain.Region
}

// NewComparator creates a comparator for one reference/target region pair
func NewComparator(referenceRegion, targetRegion domain.Region) *Comparator {
	return &Comparator{
		referenceRegion: referenceRegion,
		targetRegion:    targetRegion,
	}
}

// Annotate fills the product's derived fields in place and returns it.
// Settings are assumed validated at the consumer boundary (rate > 0,
// fee >= 0).
//
// With either price unavailable the differences stay zero and the
// recommendation is "N/A"; unavailable products are never treated as
// free.
func (c *Comparator) Annotate(product *domain.MergedProduct, settings domain.CompareSettings) *domain.MergedProduct {
	referencePrice := product.Price(c.referenceRegion.DisplayName)
	targetPrice := product.Price(c.targetRegion.DisplayName)

	if referencePrice <= 0 || targetPrice <= 0 {
		product.PriceDifferencePercent = 0
		product.PriceDifferenceWithFeePercent = 0
		product.RecommendedPurchase = domain.RecommendationNotAvailable
		return product
	}

	referenceInTarget := referencePrice * settings.Rate
	product.PriceDifferencePercent = round1((targetPrice - referenceInTarget) / referenceInTarget * 100)

	referenceWithFee := referencePrice * (1 + settings.FeePercent/100) * settings.Rate
	withFee := round1((targetPrice - referenceWithFee) / referenceWithFee * 100)
	product.PriceDifferenceWithFeePercent = withFee

	switch {
	case withFee > similarBandPercent:
		product.RecommendedPurchase = c.referenceRegion.DisplayName
	case withFee < -similarBandPercent:
		product.RecommendedPurchase = c.targetRegion.DisplayName
	default:
		product.RecommendedPurchase = domain.RecommendationSimilar
	}

	return product
}

// Summarize aggregates differences across a catalog. Products without a
// defined difference (either price unavailable) are excluded from both
// numerator and denominator so they cannot drag the averages toward zero.
// Max and Min report the extremes of the pre-fee list only.
func (c *Comparator) Summarize(products []*domain.MergedProduct, settings domain.CompareSettings) domain.Summary {
	var summary domain.Summary
	var sum, sumWithFee float64
	first := true

	for _, product := range products {
		if !product.Available(c.referenceRegion.DisplayName) || !product.Available(c.targetRegion.DisplayName) {
			continue
		}

		annotated := c.Annotate(product, settings)
		sum += annotated.PriceDifferencePercent
		sumWithFee += annotated.PriceDifferenceWithFeePercent
		summary.Counted++

		if first || annotated.PriceDifferencePercent > summary.Max {
			summary.Max = annotated.PriceDifferencePercent
		}
		if first || annotated.PriceDifferencePercent < summary.Min {
			summary.Min = annotated.PriceDifferencePercent
		}
		first = false
	}

	if summary.Counted > 0 {
		summary.Avg = round1(sum / float64(summary.Counted))
		summary.AvgWithFee = round1(sumWithFee / float64(summary.Counted))
	}

	return summary
}

// round1 rounds to one decimal place, the precision percentages carry at
// storage and display.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
