package app

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/kart-pricing/internal/domain/discount"
)

// Config holds the complete application configuration, loadable from
// environment variables (PRICING_ prefix) or YAML config files.
type Config struct {
	DatabaseURL string   `usage:"PostgreSQL connection URL (PRICING_DATABASE_URL or DATABASE_URL); discounts are served from memory when empty"`
	Migrate     bool     `default:"true" usage:"Apply the embedded schema on startup"`
	CatalogFile string   `usage:"YAML discount catalog (plain or .gz) for the in-memory repository; the embedded sample is used when empty"`
	Strategy    string   `default:"expiring-first" usage:"Discount resolution strategy: expiring-first or stack-all"`
	Ordering    []string `default:"brand,category,voucher,bank" usage:"Order in which discount types are applied"`
	VoucherCode string   `usage:"Voucher code applied to the sample cart"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files. Command-line flags are not read.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		EnvPrefix: "PRICING",
		Files:     []string{"pricing.yaml", "/etc/pricing/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if _, err := cfg.BuildStrategy(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

// BuildStrategy constructs the configured discount resolution strategy.
func (c *Config) BuildStrategy() (discount.Strategy, error) {
	ordering, err := discount.ParseOrdering(c.Ordering)
	if err != nil {
		return nil, errors.Wrap(err, "ordering")
	}
	return discount.NewStrategy(c.Strategy, ordering)
}

// applyPlatformDefaults falls back to the conventional DATABASE_URL variable.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
}
