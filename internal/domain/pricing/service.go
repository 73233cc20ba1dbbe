package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/customer"
	"github.com/xenking/kart-pricing/internal/domain/discount"
	"github.com/xenking/kart-pricing/internal/domain/payment"
)

// CalculateRequest holds the input for pricing a cart.
type CalculateRequest struct {
	Items    []cart.Item
	Customer customer.Profile
	// Payment is optional; bank offers never apply without it.
	Payment *payment.Info
	// VoucherCode is optional. Vouchers are only considered when supplied.
	VoucherCode string
}

// Service is the front door of the pricing pipeline: it fetches the active
// catalog, resolves an explicit voucher and delegates to the Processor.
type Service struct {
	discounts discount.Repository
	processor *Processor
	now       func() time.Time

	tracer  trace.Tracer
	metrics serviceMetrics
}

// NewService creates a pricing Service backed by the given repository.
func NewService(discounts discount.Repository, processor *Processor, opts ...Option) (*Service, error) {
	o := newOptions(opts)

	m, err := newServiceMetrics(o.meterProvider)
	if err != nil {
		return nil, errors.Wrap(err, "create metrics")
	}

	return &Service{
		discounts: discounts,
		processor: processor,
		now:       time.Now,
		tracer:    o.tracerProvider.Tracer(instrumentationName),
		metrics:   m,
	}, nil
}

// CalculateCartDiscounts prices a copy of the request items. Voucher-type
// discounts are only considered when their code is supplied; an unknown code
// is reported in the message and never fails the calculation.
func (s *Service) CalculateCartDiscounts(ctx context.Context, req CalculateRequest) (_ *DiscountedPrice, rerr error) {
	ctx, span := s.tracer.Start(ctx, "pricing.CalculateCartDiscounts",
		trace.WithAttributes(
			attribute.Int("cart.items", len(req.Items)),
			attribute.Bool("voucher.present", req.VoucherCode != ""),
		),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.Product.ID, Quantity: item.Quantity}
		}
	}

	lg := zctx.From(ctx)

	candidates, err := s.discounts.ListActive(ctx, discount.TypeVoucher)
	if err != nil {
		return nil, errors.Wrap(err, "list active discounts")
	}

	var note string
	if code := req.VoucherCode; code != "" {
		voucher, err := s.discounts.FindByCode(ctx, code)
		switch {
		case err == nil:
			candidates = append(candidates, *voucher)
		case errors.Is(err, discount.ErrDiscountNotFound):
			note = fmt.Sprintf(" Invalid voucher code : %s ", code)
			s.metrics.invalidVouchers.Add(ctx, 1)
			lg.Info("Invalid voucher code", zap.String("code", code))
		default:
			return nil, errors.Wrap(err, "lookup voucher")
		}
	}

	result := s.processor.ApplyAt(s.now(), candidates, req.Customer, cart.Clone(req.Items), req.Payment)
	result.Message += note

	s.record(ctx, candidates, result)
	lg.Debug("Cart priced",
		zap.Int("candidates", len(candidates)),
		zap.Int("applied", len(result.AppliedDiscounts)),
		zap.Stringer("original_price", result.OriginalPrice),
		zap.Stringer("final_price", result.FinalPrice),
	)

	return &result, nil
}

// ValidateDiscountCode reports whether the discount addressed by code applies
// to at least one cart item for the customer. It returns ErrDiscountNotFound
// for unknown codes and ErrDiscountExpired for expired ones.
func (s *Service) ValidateDiscountCode(
	ctx context.Context,
	code string,
	items []cart.Item,
	c customer.Profile,
) (_ bool, rerr error) {
	ctx, span := s.tracer.Start(ctx, "pricing.ValidateDiscountCode")
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	def, err := s.discounts.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, discount.ErrDiscountNotFound) {
			return false, errors.Wrapf(discount.ErrDiscountNotFound, "code %q", code)
		}
		return false, errors.Wrap(err, "lookup discount")
	}

	now := s.now()
	if def.ExpiredAt(now) {
		return false, errors.Wrapf(discount.ErrDiscountExpired, "code %q", code)
	}

	for _, item := range items {
		if def.ApplicableAt(now, c, item, nil) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) record(ctx context.Context, candidates []discount.Definition, result DiscountedPrice) {
	s.metrics.calculations.Add(ctx, 1)

	seen := make(map[string]struct{}, len(result.AppliedDiscounts))
	for _, def := range candidates {
		if _, ok := result.AppliedDiscounts[def.Name]; !ok {
			continue
		}
		if _, ok := seen[def.Name]; ok {
			continue
		}
		seen[def.Name] = struct{}{}
		s.metrics.applied.Add(ctx, 1, metric.WithAttributes(attribute.String("discount.type", string(def.Type))))
	}
}
