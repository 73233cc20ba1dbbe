package app

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-pricing/db"
	"github.com/xenking/kart-pricing/internal/catalog"
	"github.com/xenking/kart-pricing/internal/domain/discount"
	"github.com/xenking/kart-pricing/internal/domain/pricing"
	"github.com/xenking/kart-pricing/internal/storage/memory"
	"github.com/xenking/kart-pricing/internal/storage/postgres"
)

// Run creates all dependencies, prices the sample cart and prints the result
// to stdout. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	return run(ctx, lg, cfg, os.Stdout,
		pricing.WithTracerProvider(m.TracerProvider()),
		pricing.WithMeterProvider(m.MeterProvider()),
	)
}

func run(ctx context.Context, lg *zap.Logger, cfg *Config, w io.Writer, opts ...pricing.Option) error {
	ctx = zctx.Base(ctx, lg)

	repo, closeRepo, err := openRepository(ctx, lg, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	strategy, err := cfg.BuildStrategy()
	if err != nil {
		return errors.Wrap(err, "build strategy")
	}

	svc, err := pricing.NewService(repo, pricing.NewProcessor(strategy), opts...)
	if err != nil {
		return errors.Wrap(err, "create pricing service")
	}

	result, err := svc.CalculateCartDiscounts(ctx, SampleRequest(cfg.VoucherCode))
	if err != nil {
		return errors.Wrap(err, "calculate cart discounts")
	}

	lg.Info("Cart priced",
		zap.Stringer("original_price", result.OriginalPrice),
		zap.Stringer("final_price", result.FinalPrice),
		zap.Int("discounts", len(result.AppliedDiscounts)),
	)
	return WriteReport(w, result)
}

// openRepository picks PostgreSQL when a database URL is configured and the
// in-memory catalog otherwise. The returned func releases its resources.
func openRepository(ctx context.Context, lg *zap.Logger, cfg *Config) (discount.Repository, func(), error) {
	if cfg.DatabaseURL != "" {
		lg.Info("Using PostgreSQL discount repository")

		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if cfg.Migrate {
			if err := postgres.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, errors.Wrap(err, "run migrations")
			}
		}
		return postgres.NewDiscountRepository(pool), pool.Close, nil
	}

	var (
		defs []discount.Definition
		err  error
	)
	now := time.Now()
	if cfg.CatalogFile != "" {
		lg.Info("Loading discount catalog", zap.String("file", cfg.CatalogFile))
		defs, err = catalog.Load(cfg.CatalogFile, now)
	} else {
		lg.Info("Using embedded sample discount catalog")
		defs, err = catalog.Parse(db.SampleCatalog, now)
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "load catalog")
	}

	repo := memory.NewDiscountRepository(defs)
	lg.Info("In-memory discount repository ready", zap.Int("discounts", repo.Len()))
	return repo, func() {}, nil
}

// WriteReport prints a pricing result in a human-readable form.
func WriteReport(w io.Writer, res *pricing.DiscountedPrice) error {
	if _, err := fmt.Fprintf(w,
		"Original Price: %s\nFinal Price after discounts: %s\nYou save: %s\nDiscount Message: %s\nDiscounts Applied:\n",
		res.OriginalPrice.StringFixed(2),
		res.FinalPrice.StringFixed(2),
		res.Savings().StringFixed(2),
		res.Message,
	); err != nil {
		return errors.Wrap(err, "write report")
	}
	for _, name := range slices.Sorted(maps.Keys(res.AppliedDiscounts)) {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", name, res.AppliedDiscounts[name].StringFixed(2)); err != nil {
			return errors.Wrap(err, "write report")
		}
	}
	return nil
}
