package pricing

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/customer"
	"github.com/xenking/kart-pricing/internal/domain/discount"
	"github.com/xenking/kart-pricing/internal/domain/product"
)

// --- Mock repository ---

type mockDiscountRepo struct {
	defs    []discount.Definition
	listErr error
	findErr error

	listCalls int
	excluded  []discount.Type
}

func (m *mockDiscountRepo) ListActive(_ context.Context, exclude ...discount.Type) ([]discount.Definition, error) {
	m.listCalls++
	m.excluded = exclude
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []discount.Definition
	for _, def := range m.defs {
		if def.ExpiredAt(fixedNow) || slices.Contains(exclude, def.Type) {
			continue
		}
		out = append(out, def)
	}
	return out, nil
}

func (m *mockDiscountRepo) FindByCode(_ context.Context, code string) (*discount.Definition, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, def := range m.defs {
		if strings.EqualFold(def.LookupCode(), code) {
			return &def, nil
		}
	}
	return nil, discount.ErrDiscountNotFound
}

// --- Helpers ---

func newTestService(t *testing.T, repo discount.Repository) *Service {
	t.Helper()
	svc, err := NewService(repo, newTestProcessor())
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func catalog() []discount.Definition {
	super := fixedOff("SUPER69", discount.TypeVoucher, "69", 24*time.Hour)
	super.Code = "SUPER69"

	old := percentOff("OLD10", discount.TypeVoucher, "10", -24*time.Hour)
	old.Code = "OLD10"

	silver := percentOff("Silver Only", discount.TypeVoucher, "5", 24*time.Hour,
		discount.CustomerTierRule{Include: []customer.Tier{customer.TierSilver}})
	silver.Code = "SILVER5"

	return []discount.Definition{
		percentOff("Puma T-Shirt Discount", discount.TypeBrand, "10", 30*24*time.Hour,
			discount.BrandRule{Include: []string{"PUMA"}}),
		super,
		old,
		silver,
	}
}

// --- Tests ---

func TestCalculateCartDiscounts(t *testing.T) {
	repo := &mockDiscountRepo{defs: catalog()}
	svc := newTestService(t, repo)

	got, err := svc.CalculateCartDiscounts(context.Background(), CalculateRequest{
		Items:    []cart.Item{newItem("p1", "PUMA", "T-Shirt", "1000", 1)},
		Customer: gold(),
		Payment:  iciciCard(),
	})
	require.NoError(t, err)

	assertDecimal(t, "1000", got.OriginalPrice)
	assertDecimal(t, "900.00", got.FinalPrice)
	require.Len(t, got.AppliedDiscounts, 1)
	assertDecimal(t, "100", got.AppliedDiscounts["Puma T-Shirt Discount"])
	assert.Equal(t, "Applied Puma T-Shirt Discount: 100.00 | ", got.Message)
	assert.Equal(t, []discount.Type{discount.TypeVoucher}, repo.excluded)
}

func TestCalculateCartDiscounts_InvalidVoucher(t *testing.T) {
	svc := newTestService(t, &mockDiscountRepo{defs: catalog()})

	got, err := svc.CalculateCartDiscounts(context.Background(), CalculateRequest{
		Items:       []cart.Item{newItem("p1", "PUMA", "T-Shirt", "1000", 1)},
		Customer:    gold(),
		VoucherCode: "bogus",
	})
	require.NoError(t, err)

	assertDecimal(t, "900", got.FinalPrice)
	assert.Contains(t, got.Message, "Invalid voucher code : bogus")
	assert.Equal(t, "Applied Puma T-Shirt Discount: 100.00 |  Invalid voucher code : bogus ", got.Message)
}

func TestCalculateCartDiscounts_Voucher(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantFinal string
		wantNames []string
	}{
		{
			name:      "valid code stacks after brand",
			code:      "SUPER69",
			wantFinal: "831",
			wantNames: []string{"Puma T-Shirt Discount", "SUPER69"},
		},
		{
			name:      "code lookup ignores case",
			code:      "super69",
			wantFinal: "831",
			wantNames: []string{"Puma T-Shirt Discount", "SUPER69"},
		},
		{
			name:      "expired code is ignored",
			code:      "OLD10",
			wantFinal: "900",
			wantNames: []string{"Puma T-Shirt Discount"},
		},
		{
			name:      "code whose rules reject the customer",
			code:      "SILVER5",
			wantFinal: "900",
			wantNames: []string{"Puma T-Shirt Discount"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &mockDiscountRepo{defs: catalog()})

			got, err := svc.CalculateCartDiscounts(context.Background(), CalculateRequest{
				Items:       []cart.Item{newItem("p1", "PUMA", "T-Shirt", "1000", 1)},
				Customer:    gold(),
				VoucherCode: tt.code,
			})
			require.NoError(t, err)

			assertDecimal(t, tt.wantFinal, got.FinalPrice)
			names := make([]string, 0, len(got.AppliedDiscounts))
			for name := range got.AppliedDiscounts {
				names = append(names, name)
			}
			assert.ElementsMatch(t, tt.wantNames, names)
			assert.NotContains(t, got.Message, "Invalid voucher code")
		})
	}
}

func TestCalculateCartDiscounts_VouchersNeedCode(t *testing.T) {
	svc := newTestService(t, &mockDiscountRepo{defs: catalog()})

	got, err := svc.CalculateCartDiscounts(context.Background(), CalculateRequest{
		Items:    []cart.Item{newItem("p1", "ADIDAS", "Shoes", "1000", 1)},
		Customer: gold(),
	})
	require.NoError(t, err)

	assert.Empty(t, got.AppliedDiscounts)
	assertDecimal(t, "1000", got.FinalPrice)
	assert.Equal(t, "", got.Message)
}

func TestCalculateCartDiscounts_DoesNotMutateItems(t *testing.T) {
	svc := newTestService(t, &mockDiscountRepo{defs: catalog()})
	items := []cart.Item{newItem("p1", "PUMA", "T-Shirt", "1000", 2)}

	for range 2 {
		got, err := svc.CalculateCartDiscounts(context.Background(), CalculateRequest{
			Items:    items,
			Customer: gold(),
		})
		require.NoError(t, err)
		assertDecimal(t, "1800", got.FinalPrice)
	}
	assertDecimal(t, "1000", items[0].Product.CurrentPrice)
}

func TestCalculateCartDiscounts_ResetsStalePrices(t *testing.T) {
	svc := newTestService(t, &mockDiscountRepo{defs: catalog()})

	reused := []cart.Item{newItem("p1", "PUMA", "T-Shirt", "1000", 1)}
	newTestProcessor().Apply(catalog()[:1], gold(), reused, nil)
	require.True(t, d("900").Equal(reused[0].Product.CurrentPrice))

	tests := []struct {
		name  string
		items []cart.Item
	}{
		{
			name: "item built without current price",
			items: []cart.Item{{
				Product:  product.Product{ID: "p1", Brand: "PUMA", Category: "T-Shirt", BasePrice: d("1000")},
				Quantity: 1,
			}},
		},
		{
			name:  "item reused after a previous run",
			items: reused,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CalculateCartDiscounts(context.Background(), CalculateRequest{
				Items:    tt.items,
				Customer: gold(),
			})
			require.NoError(t, err)

			assertDecimal(t, "1000", got.OriginalPrice)
			assertDecimal(t, "900", got.FinalPrice)
			assertDecimal(t, "100", got.AppliedDiscounts["Puma T-Shirt Discount"])
			assert.Equal(t, "Applied Puma T-Shirt Discount: 100.00 | ", got.Message)
		})
	}
}

func TestCalculateCartDiscounts_InvalidQuantity(t *testing.T) {
	repo := &mockDiscountRepo{defs: catalog()}
	svc := newTestService(t, repo)

	_, err := svc.CalculateCartDiscounts(context.Background(), CalculateRequest{
		Items: []cart.Item{
			newItem("p1", "PUMA", "T-Shirt", "1000", 1),
			newItem("p2", "PUMA", "T-Shirt", "1000", 0),
		},
		Customer: gold(),
	})

	var qtyErr *InvalidQuantityError
	require.ErrorAs(t, err, &qtyErr)
	assert.Equal(t, "p2", qtyErr.ProductID)
	assert.Equal(t, 0, repo.listCalls)
}

func TestCalculateCartDiscounts_RepositoryErrors(t *testing.T) {
	errDB := errors.New("connection refused")

	t.Run("list", func(t *testing.T) {
		svc := newTestService(t, &mockDiscountRepo{listErr: errDB})
		_, err := svc.CalculateCartDiscounts(context.Background(), CalculateRequest{
			Items:    []cart.Item{newItem("p1", "PUMA", "T-Shirt", "1000", 1)},
			Customer: gold(),
		})
		require.ErrorIs(t, err, errDB)
	})

	t.Run("voucher lookup", func(t *testing.T) {
		svc := newTestService(t, &mockDiscountRepo{defs: catalog(), findErr: errDB})
		_, err := svc.CalculateCartDiscounts(context.Background(), CalculateRequest{
			Items:       []cart.Item{newItem("p1", "PUMA", "T-Shirt", "1000", 1)},
			Customer:    gold(),
			VoucherCode: "SUPER69",
		})
		require.ErrorIs(t, err, errDB)
	})
}

func TestCalculateCartDiscounts_EmptyCart(t *testing.T) {
	svc := newTestService(t, &mockDiscountRepo{defs: catalog()})

	got, err := svc.CalculateCartDiscounts(context.Background(), CalculateRequest{Customer: gold()})
	require.NoError(t, err)

	assert.True(t, got.OriginalPrice.IsZero())
	assert.True(t, got.FinalPrice.IsZero())
	assert.Empty(t, got.AppliedDiscounts)
}

func TestValidateDiscountCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		items   []cart.Item
		tier    customer.Tier
		want    bool
		wantErr error
	}{
		{
			name:  "applicable voucher",
			code:  "SUPER69",
			items: []cart.Item{newItem("p1", "ADIDAS", "Shoes", "1000", 1)},
			tier:  customer.TierGold,
			want:  true,
		},
		{
			name:  "addressed by name when code is empty",
			code:  "puma t-shirt discount",
			items: []cart.Item{newItem("p1", "PUMA", "T-Shirt", "1000", 1)},
			tier:  customer.TierGold,
			want:  true,
		},
		{
			name:  "no item satisfies the rules",
			code:  "Puma T-Shirt Discount",
			items: []cart.Item{newItem("p1", "ADIDAS", "Shoes", "1000", 1)},
			tier:  customer.TierGold,
			want:  false,
		},
		{
			name:  "customer tier rejected",
			code:  "SILVER5",
			items: []cart.Item{newItem("p1", "ADIDAS", "Shoes", "1000", 1)},
			tier:  customer.TierGold,
			want:  false,
		},
		{
			name:  "customer tier accepted",
			code:  "SILVER5",
			items: []cart.Item{newItem("p1", "ADIDAS", "Shoes", "1000", 1)},
			tier:  customer.TierSilver,
			want:  true,
		},
		{
			name:  "empty cart",
			code:  "SUPER69",
			tier:  customer.TierGold,
			want:  false,
		},
		{
			name:    "unknown code",
			code:    "NOPE",
			items:   []cart.Item{newItem("p1", "PUMA", "T-Shirt", "1000", 1)},
			tier:    customer.TierGold,
			wantErr: discount.ErrDiscountNotFound,
		},
		{
			name:    "expired code",
			code:    "OLD10",
			items:   []cart.Item{newItem("p1", "PUMA", "T-Shirt", "1000", 1)},
			tier:    customer.TierGold,
			wantErr: discount.ErrDiscountExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &mockDiscountRepo{defs: catalog()})
			c := gold()
			c.Tier = tt.tier

			got, err := svc.ValidateDiscountCode(context.Background(), tt.code, tt.items, c)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateDiscountCode_PaymentRulesFailWithoutPayment(t *testing.T) {
	bank := percentOff("ICICI Offer", discount.TypeBank, "10", time.Hour,
		discount.PaymentRule{Banks: []string{"ICICI"}})
	svc := newTestService(t, &mockDiscountRepo{defs: []discount.Definition{bank}})

	got, err := svc.ValidateDiscountCode(context.Background(), "ICICI Offer",
		[]cart.Item{newItem("p1", "PUMA", "T-Shirt", "1000", 1)}, gold())
	require.NoError(t, err)
	assert.False(t, got)
}

func TestValidateDiscountCode_RepositoryError(t *testing.T) {
	errDB := errors.New("timeout")
	svc := newTestService(t, &mockDiscountRepo{findErr: errDB})

	_, err := svc.ValidateDiscountCode(context.Background(), "SUPER69", nil, gold())
	require.ErrorIs(t, err, errDB)
	assert.NotErrorIs(t, err, discount.ErrDiscountNotFound)
}
