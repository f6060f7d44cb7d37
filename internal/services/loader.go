package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"shipment-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

const (
	colShippingMethod = "Shipping_Method"
	colImportExport   = "Import_Export"
	colCategory       = "Category"
	colCountry        = "Country"
	colPaymentTerms   = "Payment_Terms"
	colQuantity       = "Quantity"
	colWeight         = "Weight"
	colValue          = "Value"
	colDate           = "Date"
)

var requiredColumns = []string{
	colShippingMethod,
	colImportExport,
	colCategory,
	colCountry,
	colPaymentTerms,
	colQuantity,
	colWeight,
	colValue,
	colDate,
}

// LoadRecords reads the dataset at path. Files ending in .xlsx are read from
// their first worksheet; anything else is treated as comma separated text.
// Every failure is a *FileError.
func LoadRecords(ctx context.Context, path string) ([]models.Shipment, error) {
	start := time.Now()

	rows, err := readRows(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	records, err := parseRows(ctx, rows)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	slog.Info("dataset loaded",
		"path", path,
		"records", len(records),
		"duration", time.Since(start),
	)
	return records, nil
}

func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readWorkbook(path)
	case ".xls":
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer file.Close()
		return readCSV(file)
	}
}

// readCSV returns every record of r including the header.
func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

type columnIndex map[string]int

func indexHeader(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

// parseRows converts raw rows into shipments. Batches are parsed in parallel
// and written into their own slots, so the result keeps file order.
func parseRows(ctx context.Context, rows [][]string) ([]models.Shipment, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	idx, err := indexHeader(rows[0])
	if err != nil {
		return nil, err
	}

	body := rows[1:]
	if len(body) == 0 {
		return nil, ErrEmptyDataset
	}

	records := make([]models.Shipment, len(body))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(body); start += batchSize {
		end := min(start+batchSize, len(body))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				rec, err := parseShipment(idx, body[i])
				if err != nil {
					// +2: header line and one-based numbering
					return fmt.Errorf("line %d: %w", i+2, err)
				}
				records[i] = rec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseShipment(idx columnIndex, row []string) (models.Shipment, error) {
	field := func(col string) (string, error) {
		i := idx[col]
		if i >= len(row) {
			return "", fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
		return strings.TrimSpace(row[i]), nil
	}
	number := func(col string) (float64, error) {
		raw, err := field(col)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("column %s: invalid number %q", col, raw)
		}
		return v, nil
	}

	var (
		s   models.Shipment
		err error
	)
	if s.ShippingMethod, err = field(colShippingMethod); err != nil {
		return s, err
	}
	if s.ImportExport, err = field(colImportExport); err != nil {
		return s, err
	}
	if s.Category, err = field(colCategory); err != nil {
		return s, err
	}
	if s.Country, err = field(colCountry); err != nil {
		return s, err
	}
	if s.PaymentTerms, err = field(colPaymentTerms); err != nil {
		return s, err
	}
	if s.Date, err = field(colDate); err != nil {
		return s, err
	}
	if s.Quantity, err = number(colQuantity); err != nil {
		return s, err
	}
	if s.Weight, err = number(colWeight); err != nil {
		return s, err
	}
	if s.Value, err = number(colValue); err != nil {
		return s, err
	}
	return s, nil
}
