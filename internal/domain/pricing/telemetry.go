package pricing

import (
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/xenking/kart-pricing/internal/domain/pricing"

// Option configures a Service.
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTracerProvider sets the tracer provider used for service spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the meter provider used for service counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type serviceMetrics struct {
	calculations    metric.Int64Counter
	applied         metric.Int64Counter
	invalidVouchers metric.Int64Counter
}

func newServiceMetrics(mp metric.MeterProvider) (serviceMetrics, error) {
	meter := mp.Meter(instrumentationName)

	var (
		m   serviceMetrics
		err error
	)
	if m.calculations, err = meter.Int64Counter("pricing.calculations",
		metric.WithDescription("Cart pricing runs"),
	); err != nil {
		return m, errors.Wrap(err, "calculations counter")
	}
	if m.applied, err = meter.Int64Counter("pricing.discounts.applied",
		metric.WithDescription("Discounts applied to at least one cart line"),
	); err != nil {
		return m, errors.Wrap(err, "applied counter")
	}
	if m.invalidVouchers, err = meter.Int64Counter("pricing.vouchers.invalid",
		metric.WithDescription("Voucher codes that resolved to no discount"),
	); err != nil {
		return m, errors.Wrap(err, "invalid vouchers counter")
	}
	return m, nil
}
