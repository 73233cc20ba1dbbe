package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func defaultConfig() *Config {
	return &Config{
		Migrate:  true,
		Strategy: "expiring-first",
		Ordering: []string{"brand", "category", "voucher", "bank"},
	}
}

func TestRun_SampleCatalog(t *testing.T) {
	tests := []struct {
		name         string
		voucher      string
		wantFinal    string
		wantContains []string
	}{
		{
			name:      "no voucher",
			wantFinal: "Final Price after discounts: 2430.00",
			wantContains: []string{
				"Original Price: 3800.00",
				"You save: 1370.00",
				"Applied PUMA Brand Sale: 800.00 | Applied T-shirts Category Sale: 300.00 | Applied ICICI Bank Offer: 270.00 | ",
				"  ICICI Bank Offer: 270.00\n",
			},
		},
		{
			name:      "voucher stacks before bank offer",
			voucher:   "super69",
			wantFinal: "Final Price after discounts: 753.30",
			wantContains: []string{
				"Applied SUPER69: 1863.00 | Applied ICICI Bank Offer: 83.70 | ",
			},
		},
		{
			name:      "unknown voucher",
			voucher:   "bogus",
			wantFinal: "Final Price after discounts: 2430.00",
			wantContains: []string{
				" Invalid voucher code : bogus ",
			},
		},
		{
			name:      "voucher rules reject the customer",
			voucher:   "WELCOME50",
			wantFinal: "Final Price after discounts: 2430.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.VoucherCode = tt.voucher

			var out bytes.Buffer
			require.NoError(t, run(context.Background(), zaptest.NewLogger(t), cfg, &out))

			assert.Contains(t, out.String(), tt.wantFinal)
			for _, s := range tt.wantContains {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestRun_CatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
discounts:
  - name: Flat 100
    type: category
    fixed: 100
    expires_in: 1h
`), 0o600))

	cfg := defaultConfig()
	cfg.CatalogFile = path

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), zaptest.NewLogger(t), cfg, &out))

	assert.Contains(t, out.String(), "Final Price after discounts: 3600.00")
	assert.Contains(t, out.String(), "  Flat 100: 200.00\n")
}

func TestRun_Errors(t *testing.T) {
	t.Run("missing catalog", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")

		err := run(context.Background(), zaptest.NewLogger(t), cfg, &bytes.Buffer{})
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad strategy", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Strategy = "cheapest"

		err := run(context.Background(), zaptest.NewLogger(t), cfg, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown discount strategy")
	})
}
