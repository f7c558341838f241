package exchangerate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricescope/backend/internal/domain"
)

type stubSource struct {
	rate *domain.ExchangeRate
	err  error
}

func (s *stubSource) FetchRate(ctx context.Context) (*domain.ExchangeRate, error) {
	return s.rate, s.err
}

func TestCurrentRate(t *testing.T) {
	t.Run("returns and persists the fetched rate", func(t *testing.T) {
		snapshotPath := filepath.Join(t.TempDir(), "exchange_rate.json")
		source := &stubSource{rate: &domain.ExchangeRate{Rate: 31.7, Source: "Cathay Bank", FetchedAt: time.Now()}}
		provider := NewProvider(source, snapshotPath, 31.5, "TWD")

		rate := provider.CurrentRate(context.Background())
		assert.Equal(t, 31.7, rate.Rate)
		assert.Equal(t, "Cathay Bank", rate.Source)

		// Snapshot is written for the next run.
		data, err := os.ReadFile(snapshotPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"TWD": 31.7`)
		assert.Contains(t, string(data), `"Cathay Bank"`)
	})

	t.Run("falls back to the persisted snapshot when the fetch fails", func(t *testing.T) {
		snapshotPath := filepath.Join(t.TempDir(), "exchange_rate.json")
		snapshot := `{"rates":{"USD":1.0,"TWD":32.1},"lastUpdated":"2026-08-29T10:00:00Z","source":"Cathay Bank"}`
		require.NoError(t, os.WriteFile(snapshotPath, []byte(snapshot), 0644))

		source := &stubSource{err: domain.ErrRateUnavailable}
		provider := NewProvider(source, snapshotPath, 31.5, "TWD")

		rate := provider.CurrentRate(context.Background())
		assert.Equal(t, 32.1, rate.Rate)
		assert.Equal(t, "Cathay Bank", rate.Source)
		assert.Equal(t, 2026, rate.FetchedAt.Year())
	})

	t.Run("falls back to the default when no snapshot exists", func(t *testing.T) {
		snapshotPath := filepath.Join(t.TempDir(), "exchange_rate.json")
		source := &stubSource{err: domain.ErrRateUnavailable}
		provider := NewProvider(source, snapshotPath, 31.5, "TWD")

		rate := provider.CurrentRate(context.Background())
		assert.Equal(t, 31.5, rate.Rate)
		assert.Equal(t, "default", rate.Source)
	})

	t.Run("ignores a corrupt snapshot", func(t *testing.T) {
		snapshotPath := filepath.Join(t.TempDir(), "exchange_rate.json")
		require.NoError(t, os.WriteFile(snapshotPath, []byte("{broken"), 0644))

		source := &stubSource{err: domain.ErrRateUnavailable}
		provider := NewProvider(source, snapshotPath, 31.5, "TWD")

		rate := provider.CurrentRate(context.Background())
		assert.Equal(t, 31.5, rate.Rate)
		assert.Equal(t, "default", rate.Source)
	})

	t.Run("ignores a snapshot without the target currency", func(t *testing.T) {
		snapshotPath := filepath.Join(t.TempDir(), "exchange_rate.json")
		snapshot := `{"rates":{"USD":1.0},"lastUpdated":"2026-08-29T10:00:00Z","source":"Cathay Bank"}`
		require.NoError(t, os.WriteFile(snapshotPath, []byte(snapshot), 0644))

		provider := NewProvider(&stubSource{err: domain.ErrRateUnavailable}, snapshotPath, 31.5, "TWD")

		rate := provider.CurrentRate(context.Background())
		assert.Equal(t, "default", rate.Source)
	})
}
