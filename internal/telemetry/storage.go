package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveyegge/appmgr/internal/storage"
	"github.com/steveyegge/appmgr/internal/types"
)

const storageScopeName = "github.com/steveyegge/appmgr/storage"

// InstrumentedStorage wraps storage.Storage with OTel tracing and metrics.
// Every method gets a span and is counted in appmgr.storage.* metrics;
// successful loads and saves also refresh the per-state application gauge.
// Use WrapStorage to create one; it returns the original store unchanged when
// telemetry is disabled.
type InstrumentedStorage struct {
	inner  storage.Storage
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

var _ storage.Storage = (*InstrumentedStorage)(nil)

// WrapStorage returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is.
func WrapStorage(s storage.Storage) storage.Storage {
	if !Enabled() {
		return s
	}
	m := Meter(storageScopeName)
	ops, _ := m.Int64Counter("appmgr.storage.operations",
		metric.WithDescription("Total storage operations executed"),
	)
	dur, _ := m.Float64Histogram("appmgr.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("appmgr.storage.errors",
		metric.WithDescription("Total storage operation errors"),
	)
	return &InstrumentedStorage{
		inner:  s,
		tracer: Tracer(storageScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

// Unwrap returns the wrapped store.
func (s *InstrumentedStorage) Unwrap() storage.Storage {
	return s.inner
}

// op starts a span and records a metric for the named storage operation.
func (s *InstrumentedStorage) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "storage."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStorage) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func (s *InstrumentedStorage) Load(ctx context.Context) ([]*types.Application, error) {
	attrs := []attribute.KeyValue{attribute.String("appmgr.path", s.inner.Path())}
	ctx, span, t := s.op(ctx, "Load", attrs...)
	apps, err := s.inner.Load(ctx)
	if err == nil {
		span.SetAttributes(attribute.Int("appmgr.result.count", len(apps)))
		RecordStateCounts(ctx, apps)
	}
	s.done(ctx, span, t, err, attrs...)
	return apps, err
}

func (s *InstrumentedStorage) Save(ctx context.Context, apps []*types.Application) error {
	attrs := []attribute.KeyValue{
		attribute.String("appmgr.path", s.inner.Path()),
		attribute.Int("appmgr.application.count", len(apps)),
	}
	ctx, span, t := s.op(ctx, "Save", attrs...)
	err := s.inner.Save(ctx, apps)
	if err == nil {
		RecordStateCounts(ctx, apps)
	}
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) Path() string {
	return s.inner.Path()
}

func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}
