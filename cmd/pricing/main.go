// Command pricing prices the sample checkout against the configured discount
// catalog and prints the breakdown. Configuration is read from PRICING_*
// environment variables and pricing.yaml.
package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/xenking/kart-pricing/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := appkg.LoadConfig()
		if err != nil {
			return errors.Wrap(err, "config")
		}
		lg.Debug("Config loaded",
			zap.Bool("postgres", cfg.DatabaseURL != ""),
			zap.String("catalog_file", cfg.CatalogFile),
			zap.String("strategy", cfg.Strategy),
			zap.Strings("ordering", cfg.Ordering),
		)
		return appkg.Run(ctx, lg, m, cfg)
	})
}
