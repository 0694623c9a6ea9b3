package telemetry

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"

	"github.com/steveyegge/appmgr/internal/types"
)

const workflowScopeName = "github.com/steveyegge/appmgr/workflow"

// Metric names.
const (
	MetricCreated     = "appmgr.application.created"
	MetricTransitions = "appmgr.application.transitions"
	MetricRejected    = "appmgr.application.rejected_commands"
	MetricByState     = "appmgr.application.count"
)

type instruments struct {
	created     metric.Int64Counter
	transitions metric.Int64Counter
	rejected    metric.Int64Counter
	byState     metric.Int64Gauge
}

var workflow atomic.Pointer[instruments]

func init() {
	bindInstruments(metricnoop.NewMeterProvider())
}

// bindInstruments creates the workflow instruments on mp. Instrument errors
// leave a no-op in place.
func bindInstruments(mp metric.MeterProvider) {
	m := mp.Meter(workflowScopeName)
	noop := metricnoop.Meter{}

	created, err := m.Int64Counter(MetricCreated,
		metric.WithDescription("Applications created, by applicant type"))
	if err != nil {
		created, _ = noop.Int64Counter(MetricCreated)
	}
	transitions, err := m.Int64Counter(MetricTransitions,
		metric.WithDescription("Commands applied, by action and from/to state"))
	if err != nil {
		transitions, _ = noop.Int64Counter(MetricTransitions)
	}
	rejected, err := m.Int64Counter(MetricRejected,
		metric.WithDescription("Commands refused by the workflow, by action and state"))
	if err != nil {
		rejected, _ = noop.Int64Counter(MetricRejected)
	}
	byState, err := m.Int64Gauge(MetricByState,
		metric.WithDescription("Applications per state after the last load or save"))
	if err != nil {
		byState, _ = noop.Int64Gauge(MetricByState)
	}

	workflow.Store(&instruments{
		created:     created,
		transitions: transitions,
		rejected:    rejected,
		byState:     byState,
	})
}

// RecordCreated counts a new application.
func RecordCreated(ctx context.Context, appType types.AppType) {
	workflow.Load().created.Add(ctx, 1,
		metric.WithAttributes(attribute.String("appmgr.type", string(appType))))
}

// RecordTransition counts a command that moved an application from one
// state to another. from and to may be equal.
func RecordTransition(ctx context.Context, action types.Action, from, to types.State) {
	workflow.Load().transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("appmgr.action", string(action)),
		attribute.String("appmgr.state.from", string(from)),
		attribute.String("appmgr.state.to", string(to)),
	))
}

// RecordRejected counts a command the workflow refused in state from.
func RecordRejected(ctx context.Context, action types.Action, from types.State) {
	workflow.Load().rejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("appmgr.action", string(action)),
		attribute.String("appmgr.state", string(from)),
	))
}

// RecordStateCounts records how many of apps sit in each state. States with
// no applications record zero.
func RecordStateCounts(ctx context.Context, apps []*types.Application) {
	counts := make(map[types.State]int64, len(types.States))
	for _, app := range apps {
		counts[app.State()]++
	}
	g := workflow.Load().byState
	for _, st := range types.States {
		g.Record(ctx, counts[st], metric.WithAttributes(attribute.String("appmgr.state", string(st))))
	}
}
