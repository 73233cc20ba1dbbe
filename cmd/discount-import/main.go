package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-pricing/internal/catalog"
	"github.com/xenking/kart-pricing/internal/domain/discount"
	"github.com/xenking/kart-pricing/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		dryRun      bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.BoolVar(&dryRun, "dry-run", false, "validate catalogs without writing to the database")
	flag.Usage = func() {
		slog.Info("usage: discount-import [--database-url URL] [--dry-run] catalog.yaml [catalog.yaml.gz ...]")
		flag.PrintDefaults()
	}
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" && !dryRun {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, files, databaseURL, dryRun); err != nil {
		slog.Error("discount import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("discount import completed successfully")
}

func run(ctx context.Context, files []string, databaseURL string, dryRun bool) error {
	slog.Info("parsing catalogs", slog.Int("files", len(files)))

	catalogs, err := loadCatalogs(ctx, files, time.Now())
	if err != nil {
		return errors.Wrap(err, "load catalogs")
	}

	if dups := catalog.Duplicates(catalogs...); len(dups) > 0 {
		return errors.Errorf("duplicate discount codes: %s", strings.Join(dups, ", "))
	}

	var defs []discount.Definition
	for _, c := range catalogs {
		defs = append(defs, c...)
	}
	slog.Info("catalogs valid", slog.Int("discounts", len(defs)))

	if dryRun || len(defs) == 0 {
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	ids, err := postgres.NewDiscountRepository(pool).Upsert(ctx, defs...)
	if err != nil {
		return errors.Wrap(err, "write discounts to database")
	}

	slog.Info("discounts written", slog.Int("count", len(ids)))
	return nil
}

// loadCatalogs parses every file concurrently. Relative expiries in all files
// are resolved against the same instant.
func loadCatalogs(ctx context.Context, files []string, now time.Time) ([][]discount.Definition, error) {
	catalogs := make([][]discount.Definition, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			defs, err := catalog.Load(f, now)
			if err != nil {
				return err
			}
			slog.Info("catalog parsed", slog.String("file", f), slog.Int("discounts", len(defs)))
			catalogs[i] = defs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return catalogs, nil
}
