// Command shipreport computes the dashboard views from the command line,
// printing them as JSON or rendering every chart to PNG files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"shipment-dashboard/internal/charts"
	"shipment-dashboard/internal/config"
	"shipment-dashboard/internal/models"
	"shipment-dashboard/internal/observability"
	"shipment-dashboard/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type datasetFlags struct {
	file            string
	sampleSize      int
	seed            uint64
	logLevel        string
	shippingMethods []string
	directions      []string
	categories      []string
}

func newRootCmd() *cobra.Command {
	var flags datasetFlags

	rootCmd := &cobra.Command{
		Use:           "shipreport",
		Short:         "Compute shipment dashboard views without the web server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.file, "file", "shipments.csv", "Shipment dataset (.csv or .xlsx)")
	pf.IntVar(&flags.sampleSize, "sample-size", services.DefaultSampleSize, "Rows to sample; 0 keeps every row")
	pf.Uint64Var(&flags.seed, "seed", services.DefaultSampleSeed, "Sampling seed")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringArrayVar(&flags.shippingMethods, "shipping-method", nil, "Shipping method to keep, repeatable (default all)")
	pf.StringArrayVar(&flags.directions, "import-export", nil, "Direction to keep, repeatable (default all)")
	pf.StringArrayVar(&flags.categories, "category", nil, "Category to keep, repeatable (default all)")

	rootCmd.AddCommand(
		newViewsCmd(&flags),
		newChartsCmd(&flags),
	)
	return rootCmd
}

// load reads the dataset and resolves the selection. A filter flag that was
// not given selects every value; --category= selects none. Flags repeat
// rather than split on commas, so values may contain commas.
func (f *datasetFlags) load(cmd *cobra.Command) (*services.Session, models.Selection, error) {
	logger := observability.NewLogger(config.LoggerConfig{Level: f.logLevel, Format: "text"}, cmd.ErrOrStderr())

	session, err := services.LoadSession(cmd.Context(), f.file, services.SessionOptions{
		SampleSize: f.sampleSize,
		Seed:       f.seed,
		Logger:     logger,
	})
	if err != nil {
		return nil, models.Selection{}, err
	}

	sel := session.DefaultSelection()
	pf := cmd.Flags()
	if pf.Changed("shipping-method") {
		sel.ShippingMethods = nonEmpty(f.shippingMethods)
	}
	if pf.Changed("import-export") {
		sel.Directions = nonEmpty(f.directions)
	}
	if pf.Changed("category") {
		sel.Categories = nonEmpty(f.categories)
	}
	return session, sel, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func newViewsCmd(flags *datasetFlags) *cobra.Command {
	var view string

	cmd := &cobra.Command{
		Use:   "views",
		Short: "Print the derived views as JSON",
		Long: `Print every derived view for the selected filters as JSON.

Example: shipreport views --file shipments.csv --category Toys --category Machinery --view top_countries`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, sel, err := flags.load(cmd)
			if err != nil {
				return err
			}
			return runViews(cmd.Context(), cmd.OutOrStdout(), session, sel, view)
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "Print a single view by id")
	return cmd
}

func runViews(ctx context.Context, out io.Writer, session *services.Session, sel models.Selection, view string) error {
	views, err := session.Compute(ctx, sel)
	if err != nil {
		return err
	}

	var payload any = views
	if view != "" {
		if payload, err = charts.Table(views, view); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func newChartsCmd(flags *datasetFlags) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Render every view to a PNG file",
		Long: `Render every view for the selected filters to <out>/<view>.png.

Example: shipreport charts --file shipments.csv --out ./charts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, sel, err := flags.load(cmd)
			if err != nil {
				return err
			}
			return runCharts(cmd.Context(), cmd.OutOrStdout(), session, sel, outDir)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "charts", "Output directory")
	return cmd
}

func runCharts(ctx context.Context, out io.Writer, session *services.Session, sel models.Selection, outDir string) error {
	views, err := session.Compute(ctx, sel)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	paths := make([]string, len(charts.Catalog))
	for i, spec := range charts.Catalog {
		paths[i] = filepath.Join(outDir, spec.ID+".png")
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeChart(paths[i], spec.ID, views)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, path := range paths {
		fmt.Fprintln(out, path)
	}
	slog.Debug("charts rendered", "count", len(paths), "dir", outDir)
	return nil
}

func writeChart(path, id string, views *models.Views) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := charts.Render(f, id, views); err != nil {
		return fmt.Errorf("render %s: %w", id, err)
	}
	return nil
}
