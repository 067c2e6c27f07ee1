package scache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Metrics records server RPC metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRPC records one RPC with its duration and outcome.
	RecordRPC(ctx context.Context, method string, duration time.Duration, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates Metrics backed by meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"scache.rpc.total",
		metric.WithDescription("Total number of cache RPCs"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"scache.rpc.errors",
		metric.WithDescription("Total number of failed cache RPCs"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"scache.rpc.duration_ms",
		metric.WithDescription("Cache RPC duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// NoopMetrics returns Metrics that record nothing.
func NoopMetrics() Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("scache"))
	return m
}

func (m *metricsImpl) RecordRPC(ctx context.Context, method string, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("rpc.method", method),
		attribute.String("rpc.code", status.Code(err).String()),
	)

	m.totalCount.Add(ctx, 1, opt)

	// Misses are answered with NotFound and are not failures.
	if err != nil && !isMiss(err) {
		m.errorCount.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func metricsInterceptor(m Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.RecordRPC(ctx, info.FullMethod, time.Since(start), err)
		return resp, err
	}
}
