// internal/common/observability/metrics.go
package observability

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the otel meter and tracer providers for the process.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	batchSize     otelmetric.Int64Histogram
	rankedResults otelmetric.Int64Histogram
}

type Options struct {
	// Registerer defaults to the global Prometheus registry, which is what
	// the /metrics handler serves.
	Registerer promclient.Registerer

	JaegerEndpoint string
	SampleRatio    float64

	// SpanProcessor is added alongside any exporter; tests use it to
	// capture spans.
	SpanProcessor sdktrace.SpanProcessor
}

func New(serviceName string, opts Options) (*Observability, error) {
	var promOpts []prometheus.Option
	if opts.Registerer != nil {
		promOpts = append(promOpts, prometheus.WithRegisterer(opts.Registerer))
	}

	exporter, err := prometheus.New(promOpts...)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	o := &Observability{meterProvider: provider}

	if o.jobCounter, err = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	); err != nil {
		return nil, err
	}
	if o.jobDuration, err = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if o.batchSize, err = meter.Int64Histogram(
		"matching.batch.size",
		otelmetric.WithDescription("Candidates scored per ranking job"),
	); err != nil {
		return nil, err
	}
	if o.rankedResults, err = meter.Int64Histogram(
		"matching.ranked.results",
		otelmetric.WithDescription("Matches returned per ranking job"),
	); err != nil {
		return nil, err
	}

	tp, err := newTracerProvider(serviceName, opts)
	if err != nil {
		return nil, err
	}
	o.tracerProvider = tp
	o.tracer = tp.Tracer(serviceName)

	return o, nil
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

// RecordRanking records how many candidates a ranking job scored and how
// many it returned.
func (o *Observability) RecordRanking(ctx context.Context, candidates, returned int) {
	if o == nil || o.batchSize == nil {
		return
	}
	o.batchSize.Record(ctx, int64(candidates))
	o.rankedResults.Record(ctx, int64(returned))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var firstErr error
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
