package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"price-scout/models"
)

var csvHeader = []string{
	"page", "position", "name", "raw_price", "url", "seller", "location", "rating", "reviews", "sold",
}

// CSVWriter dumps raw cards to a CSV file, replacing the previous run's
// contents on every write. It is safe for concurrent use.
type CSVWriter struct {
	mu   sync.Mutex
	path string
}

// NewCSVWriter prepares a writer for path. Intermediate directories are
// created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("csv: empty output path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: path}, nil
}

// Path returns the file the writer targets.
func (c *CSVWriter) Path() string { return c.path }

// WriteRaw truncates the file and writes the header plus one row per card.
func (c *CSVWriter) WriteRaw(cards []models.RawCard) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, card := range cards {
		row := []string{
			strconv.Itoa(card.Page),
			strconv.Itoa(card.Position),
			card.Name,
			card.Price,
			card.URL,
			card.Seller,
			card.Location,
			card.Rating,
			card.Reviews,
			card.Sold,
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	return f.Close()
}
