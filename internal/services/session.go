package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"shipment-dashboard/internal/models"
)

var tracer = otel.Tracer("shipment-dashboard/internal/services")

type SessionOptions struct {
	SampleSize int
	Seed       uint64
	Logger     *slog.Logger
}

// Session holds the sampled dataset for the lifetime of the process. The
// sample is drawn once in NewSession and never mutated afterwards, so
// Compute may be called from any number of goroutines.
type Session struct {
	sample   []models.Shipment
	options  models.FilterOptions
	total    int
	loadedAt time.Time
	logger   *slog.Logger
}

func NewSession(records []models.Shipment, opts SessionOptions) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sample, err := Sample(records, opts.SampleSize, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("sample dataset: %w", err)
	}

	s := &Session{
		sample:   sample,
		options:  distinctOptions(sample),
		total:    len(records),
		loadedAt: time.Now(),
		logger:   logger,
	}

	logger.Info("session created",
		"records", s.total,
		"sample", len(sample),
		"seed", opts.Seed,
		"shipping_methods", len(s.options.ShippingMethods),
		"categories", len(s.options.Categories),
	)
	return s, nil
}

// LoadSession reads the dataset at path and samples it.
func LoadSession(ctx context.Context, path string, opts SessionOptions) (*Session, error) {
	records, err := LoadRecords(ctx, path)
	if err != nil {
		return nil, err
	}
	s, err := NewSession(records, opts)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return s, nil
}

func (s *Session) Options() models.FilterOptions {
	return models.FilterOptions{
		ShippingMethods: clone(s.options.ShippingMethods),
		Directions:      clone(s.options.Directions),
		Categories:      clone(s.options.Categories),
	}
}

// DefaultSelection selects every value present in the sample.
func (s *Session) DefaultSelection() models.Selection {
	opts := s.Options()
	return models.Selection{
		ShippingMethods: opts.ShippingMethods,
		Directions:      opts.Directions,
		Categories:      opts.Categories,
	}
}

func (s *Session) Len() int {
	return len(s.sample)
}

// Compute filters the sample and derives the eight views.
func (s *Session) Compute(ctx context.Context, sel models.Selection) (*models.Views, error) {
	ctx, span := tracer.Start(ctx, "session.compute")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	views, err := ComputeViews(s.sample, sel)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("rows.sample", len(s.sample)),
		attribute.Int("rows.filtered", views.RowCount),
	)
	s.logger.Debug("views computed", "rows", views.RowCount)
	return views, nil
}

// ComputeViews runs the whole aggregation pipeline over records.
func ComputeViews(records []models.Shipment, sel models.Selection) (*models.Views, error) {
	rows := Filter(records, sel)

	months, err := DeriveMonths(rows)
	if err != nil {
		return nil, err
	}

	return &models.Views{
		RowCount: len(rows),
		TopCountries: models.TopCountries{
			Import: TopCountries(rows, models.DirectionImport, TopN),
			Export: TopCountries(rows, models.DirectionExport, TopN),
		},
		PaymentTerms:         PaymentTermsByCategory(rows),
		QuantityDistribution: DistributionByMethod(rows, quantityOf),
		WeightDistribution:   DistributionByMethod(rows, weightOf),
		MonthlyDemand:        MonthlyCategoryVolume(rows, months),
		MonthlyExportValue:   MonthlyExportValue(rows, months),
		CategoryTrends:       MonthlyCategoryVolume(rows, months),
		TradeVolumeMap:       CountryTotals(rows),
	}, nil
}

func (s *Session) Stats() map[string]any {
	return map[string]any{
		"record_count":     s.total,
		"sample_size":      len(s.sample),
		"loaded_at":        s.loadedAt,
		"shipping_methods": len(s.options.ShippingMethods),
		"directions":       len(s.options.Directions),
		"categories":       len(s.options.Categories),
	}
}

func distinctOptions(records []models.Shipment) models.FilterOptions {
	return models.FilterOptions{
		ShippingMethods: distinct(records, func(r models.Shipment) string { return r.ShippingMethod }),
		Directions:      distinct(records, func(r models.Shipment) string { return r.ImportExport }),
		Categories:      distinct(records, func(r models.Shipment) string { return r.Category }),
	}
}

func distinct(records []models.Shipment, key func(models.Shipment) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
