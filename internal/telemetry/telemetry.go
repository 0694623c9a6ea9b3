// Package telemetry exports appmgr traces and hiring-workflow metrics over
// OpenTelemetry.
//
// Nothing is exported unless APPMGR_OTEL_ENABLED=true. Exporters:
//
//	APPMGR_OTEL_STDOUT=true                   spans and metrics to stdout
//	OTEL_EXPORTER_OTLP_ENDPOINT=...           OTLP/gRPC traces (e.g. localhost:4317)
//	OTEL_EXPORTER_OTLP_METRICS_ENDPOINT=...   OTLP/HTTP metrics (e.g. localhost:4318)
//
// Enabled with no exporter configured, spans go to stdout.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationScope = "github.com/steveyegge/appmgr"

// Settings selects which exporters run.
type Settings struct {
	Enabled        bool
	Stdout         bool
	TraceEndpoint  string
	MetricEndpoint string
}

// SettingsFromEnv reads Settings from APPMGR_OTEL_* and OTEL_EXPORTER_OTLP_*.
// The metrics endpoint falls back to the general OTLP endpoint.
func SettingsFromEnv() Settings {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	return Settings{
		Enabled:        os.Getenv("APPMGR_OTEL_ENABLED") == "true",
		Stdout:         os.Getenv("APPMGR_OTEL_STDOUT") == "true",
		TraceEndpoint:  endpoint,
		MetricEndpoint: firstNonEmpty(os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"), endpoint),
	}
}

// Enabled reports whether telemetry is switched on in the environment.
func Enabled() bool {
	return SettingsFromEnv().Enabled
}

// Service identifies this process on every span and metric it exports.
type Service struct {
	Name     string
	Version  string
	Backend  string
	DataPath string
}

func (s Service) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(firstNonEmpty(s.Name, "appmgr")),
		semconv.ServiceVersionKey.String(s.Version),
	}
	if s.Backend != "" {
		attrs = append(attrs, attribute.String("appmgr.storage.backend", s.Backend))
	}
	if s.DataPath != "" {
		attrs = append(attrs, attribute.String("appmgr.data.path", s.DataPath))
	}
	return attrs
}

type providers struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

var (
	activeMu sync.Mutex
	active   *providers
)

// Init installs providers for svc. With telemetry disabled it installs
// no-op providers and the workflow instruments record nothing.
func Init(ctx context.Context, svc Service) error {
	st := SettingsFromEnv()
	if !st.Enabled {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		bindInstruments(metricnoop.NewMeterProvider())
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(svc.attributes()...),
		resource.WithHost(),
		resource.WithProcess(),
	)
	if err != nil {
		return fmt.Errorf("telemetry: resource: %w", err)
	}
	tp, err := st.traceProvider(ctx, res)
	if err != nil {
		return fmt.Errorf("telemetry: trace provider: %w", err)
	}
	mp, err := st.meterProvider(ctx, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("telemetry: metric provider: %w", err)
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	bindInstruments(mp)

	activeMu.Lock()
	active = &providers{tp: tp, mp: mp}
	activeMu.Unlock()
	return nil
}

func (st Settings) traceProvider(ctx context.Context, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	if st.TraceEndpoint != "" {
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(st.TraceEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	if st.Stdout || st.TraceEndpoint == "" {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func (st Settings) meterProvider(ctx context.Context, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if st.Stdout {
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(15*time.Second)),
		))
	}
	if st.MetricEndpoint != "" {
		exp, err := buildOTLPMetricExporter(ctx, st.MetricEndpoint)
		if err != nil {
			return nil, fmt.Errorf("otlp metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(30*time.Second)),
		))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

// Tracer returns a tracer with the given instrumentation name (or the global scope).
func Tracer(name string) trace.Tracer {
	return otel.Tracer(firstNonEmpty(name, instrumentationScope))
}

// Meter returns a meter with the given instrumentation name (or the global scope).
func Meter(name string) metric.Meter {
	return otel.Meter(firstNonEmpty(name, instrumentationScope))
}

// Shutdown flushes metrics then spans, and detaches the workflow
// instruments. Safe to call when Init was never called.
func Shutdown(ctx context.Context) error {
	activeMu.Lock()
	p := active
	active = nil
	activeMu.Unlock()

	bindInstruments(metricnoop.NewMeterProvider())
	if p == nil {
		return nil
	}
	return errors.Join(p.mp.Shutdown(ctx), p.tp.Shutdown(ctx))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
