package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shopcart/internal/domain"
)

// ProductWriter is the catalog write side the importer needs.
type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) error
}

// CSVImporter reads catalog CSV exports and inserts/updates products.
// Expected headers: id, name, description, priceCents, image.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

// Run parses CSV rows and upserts one product per row. It returns the number
// of products imported; a bad row aborts the run with the count so far.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		product, err := parseRow(record, index)
		if err != nil {
			return imported, err
		}
		if product == nil {
			continue
		}
		if err := i.productRepo.Upsert(ctx, *product); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", product.ID, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*domain.Product, error) {
	id := pick(record, index, "id")
	name := pick(record, index, "name")
	if id == "" && name == "" {
		return nil, nil // blank row
	}
	if !domain.ValidProductID(id) {
		return nil, fmt.Errorf("invalid product id %q", id)
	}
	if name == "" {
		return nil, fmt.Errorf("missing name for product %q", id)
	}

	cents, err := strconv.ParseInt(pick(record, index, "priceCents"), 10, 64)
	if err != nil || cents <= 0 {
		return nil, fmt.Errorf("invalid price for product %q", id)
	}

	return &domain.Product{
		ID:          id,
		Name:        name,
		Description: pick(record, index, "description"),
		PriceCents:  cents,
		Image:       pick(record, index, "image"),
	}, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
