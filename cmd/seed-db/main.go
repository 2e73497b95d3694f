// Command seed-db loads a product catalog into PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/catalog"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/storage/postgres"
)

type options struct {
	databaseURL string
	catalogFile string
	concurrency int
	debug       bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "seed-db",
		Short: "Load a product catalog into PostgreSQL",
		Long: `Applies the schema and upserts every product of a catalog file.
Without --catalog the built-in demo catalog is used. Files may be
YAML or JSON, optionally gzip-compressed (.yaml.gz, .json.gz).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.databaseURL == "" {
				opts.databaseURL = os.Getenv("DATABASE_URL")
			}
			if opts.databaseURL == "" {
				return errors.New("database URL is required: set --database-url or DATABASE_URL")
			}
			if opts.concurrency < 1 {
				return errors.Errorf("concurrency must be at least 1, got %d", opts.concurrency)
			}

			lg, err := newLogger(opts.debug)
			if err != nil {
				return err
			}
			defer func() { _ = lg.Sync() }()

			return run(cmd.Context(), lg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	f.StringVar(&opts.catalogFile, "catalog", "", "catalog file, defaults to the built-in catalog")
	f.IntVar(&opts.concurrency, "concurrency", 4, "parallel upserts")
	f.BoolVar(&opts.debug, "debug", false, "log every product")
	return cmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	lg, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return lg, nil
}

func loadProducts(path string) ([]product.Product, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func run(ctx context.Context, lg *zap.Logger, opts options) error {
	products, err := loadProducts(opts.catalogFile)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	lg.Info("Catalog loaded", zap.Int("products", len(products)), zap.String("file", opts.catalogFile))

	pool, err := postgres.NewPool(ctx, opts.databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewProductRepository(pool)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for i, p := range products {
		g.Go(func() error {
			if err := repo.Upsert(gctx, p, i); err != nil {
				return errors.Wrapf(err, "upsert %s", p.ID)
			}
			lg.Debug("Product upserted", zap.String("id", p.ID), zap.String("price", p.UnitPrice.StringFixed(2)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	lg.Info("Seed completed", zap.Int("products", len(products)))
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = os.Stderr.WriteString("seed-db: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
