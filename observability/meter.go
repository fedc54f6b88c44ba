package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/rex/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Insecure       bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider exporting over OTLP
// HTTP. Shutting the provider down flushes the last collection.
func InitMeter(ctx context.Context, config MeterConfig, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	if log != nil {
		log.Debug("meter initialized", logger.Fields(
			"service", config.ServiceName,
			"endpoint", config.Endpoint,
			"interval", config.Interval.String(),
		))
	}
	return mp, nil
}

// Meter returns the rex meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// Metrics holds the instruments recorded for unit runs.
type Metrics struct {
	unitTotal    metric.Int64Counter
	unitDuration metric.Float64Histogram
	unitActive   metric.Int64UpDownCounter
}

// NewMetrics creates the unit instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	unitTotal, err := meter.Int64Counter("rex.unit.total",
		metric.WithDescription("Units run by kind and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rex.unit.total counter: %w", err)
	}

	unitDuration, err := meter.Float64Histogram("rex.unit.duration",
		metric.WithDescription("Duration of unit runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rex.unit.duration histogram: %w", err)
	}

	unitActive, err := meter.Int64UpDownCounter("rex.unit.active",
		metric.WithDescription("Units currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rex.unit.active counter: %w", err)
	}

	return &Metrics{
		unitTotal:    unitTotal,
		unitDuration: unitDuration,
		unitActive:   unitActive,
	}, nil
}

// RecordStart increments the active unit count.
func (m *Metrics) RecordStart(ctx context.Context, kind string) {
	m.unitActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrUnitKind, kind)))
}

// RecordEnd decrements the active unit count and records the finished unit.
func (m *Metrics) RecordEnd(ctx context.Context, kind, id, status string, duration time.Duration) {
	m.unitActive.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrUnitKind, kind)))
	m.unitTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrUnitKind, kind),
		attribute.String(AttrUnitID, id),
		attribute.String(AttrStatus, status),
	))
	m.unitDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrUnitKind, kind),
		attribute.String(AttrUnitID, id),
	))
}
