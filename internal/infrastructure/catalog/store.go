package catalog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pricescope/backend/internal/domain"
)

// utf8BOM prefixes CSV files so non-ASCII display names survive
// spreadsheet imports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Store publishes catalogs as files under a data directory. JSON catalogs
// are written to a temporary file and renamed into place, so a reader
// never observes a partially written catalog.
type Store struct {
	dataDir string
	csvDir  string
}

// NewStore creates a catalog store. dataDir receives the JSON catalogs
// and index; csvDir receives the tabular intermediates.
func NewStore(dataDir, csvDir string) *Store {
	return &Store{dataDir: dataDir, csvDir: csvDir}
}

// WriteCatalog atomically publishes one category's catalog.
func (s *Store) WriteCatalog(category domain.Category, catalog *domain.Catalog) error {
	if catalog.Products == nil {
		// Keep the exported list a JSON array even when empty.
		catalog.Products = []*domain.MergedProduct{}
	}
	catalog.Metadata.TotalProducts = len(catalog.Products)

	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	return s.publish(s.catalogPath(category), data)
}

// WriteIndex atomically publishes the dataset index.
func (s *Store) WriteIndex(index *domain.DatasetIndex) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	return s.publish(filepath.Join(s.dataDir, "index.json"), data)
}

// publish writes data to a temp file in the target directory and renames
// it into place.
func (s *Store) publish(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to publish %s: %w", path, err)
	}
	return nil
}

// ReadCatalog loads one category's published catalog.
func (s *Store) ReadCatalog(category domain.Category) (*domain.Catalog, error) {
	data, err := os.ReadFile(s.catalogPath(category))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrCatalogNotFound
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &catalog, nil
}

// ReadIndex loads the dataset index.
func (s *Store) ReadIndex() (*domain.DatasetIndex, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, "index.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrCatalogNotFound
		}
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var index domain.DatasetIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	return &index, nil
}

// WriteCSV writes the tabular intermediate: one row per merged product,
// SKU columns first, then price columns, then PRODUCT_NAME. Shared-SKU
// categories get a single unqualified SKU column.
func (s *Store) WriteCSV(category domain.Category, products []*domain.MergedProduct, regions []domain.Region) error {
	if err := os.MkdirAll(s.csvDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.csvDir, fmt.Sprintf("%s_products_merged.csv", category))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	sharedSKU := category.Strategy() == domain.MatchBySKU

	var header []string
	if sharedSKU {
		header = append(header, "SKU")
	} else {
		for _, region := range regions {
			header = append(header, "SKU_"+region.DisplayName)
		}
	}
	for _, region := range regions {
		header = append(header, "Price_"+region.DisplayName)
	}
	header = append(header, "PRODUCT_NAME")

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, product := range products {
		var row []string
		if sharedSKU {
			row = append(row, product.Key)
		} else {
			for _, region := range regions {
				row = append(row, product.SKUs[region.DisplayName])
			}
		}
		for _, region := range regions {
			row = append(row, strconv.FormatFloat(product.Prices[region.DisplayName], 'f', -1, 64))
		}
		row = append(row, product.DisplayName)

		if err := writer.Write(row); err != nil {
			log.Printf("[EXPORT] Failed to write CSV row for %q: %v", product.DisplayName, err)
		}
	}

	log.Printf("[EXPORT] CSV written to %s (%d rows)", path, len(products))
	return nil
}

// catalogPath returns the published location of a category's catalog.
func (s *Store) catalogPath(category domain.Category) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("%s_data.json", category))
}
