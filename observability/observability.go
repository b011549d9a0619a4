// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package observability provides the router's optional diagnostics,
// tracing, and metrics recorder. None of it participates in dispatch
// correctness: a Router built without a Recorder behaves identically,
// just silently.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Provider selects which backend a Recorder exports to.
type Provider string

const (
	// NoopProvider exports nothing; the default.
	NoopProvider Provider = "noop"
	// StdoutProvider pretty-prints spans/metrics to stdout, for local dev.
	StdoutProvider Provider = "stdout"
	// OTLPProvider exports via OTLP/HTTP to Config.OTLPEndpoint.
	OTLPProvider Provider = "otlp"
	// PrometheusProvider exposes metrics for scraping; see Recorder.PrometheusRegistry.
	PrometheusProvider Provider = "prometheus"
)

// DiagnosticKind categorizes a DiagnosticEvent, mirroring the router
// teacher's own diagnostics.go but rewired from HTTP-request anomalies to
// dispatch-lifecycle ones.
type DiagnosticKind string

const (
	DiagRouteRegistered   DiagnosticKind = "route_registered"
	DiagHighParamCount    DiagnosticKind = "route_param_count_high"
	DiagMethodNotAllowed  DiagnosticKind = "method_not_allowed"
	DiagRouteNotFound     DiagnosticKind = "route_not_found"
	DiagBindingFailed     DiagnosticKind = "binding_failed"
	DiagDepthLimitReached DiagnosticKind = "definition_depth_high"
)

// DiagnosticEvent is an informational event the router emits around
// registration and dispatch. Diagnostics are optional: the router
// functions identically whether or not a handler is installed.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticHandler receives DiagnosticEvents. Implementations may log,
// emit metrics, or ignore them.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc adapts a function to DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) { f(e) }

// LogDiagnostics returns a DiagnosticHandler that logs to logger, matching
// the router teacher's slog-based diagnostic handler convention.
func LogDiagnostics(logger *slog.Logger) DiagnosticHandler {
	return DiagnosticHandlerFunc(func(e DiagnosticEvent) {
		logger.Warn(e.Message, "kind", string(e.Kind), "fields", e.Fields)
	})
}

// Config configures a Recorder.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Provider       Provider
	OTLPEndpoint   string
	Logger         *slog.Logger
}

// Recorder emits tracing spans and metrics around the dispatch pipeline's
// "routing"/"routed" lifecycle events (spec.md §5 ordering guarantees).
// Safe for concurrent use.
type Recorder struct {
	cfg    Config
	tracer trace.Tracer
	meter  metric.Meter

	dispatchDuration metric.Float64Histogram
	dispatchTotal    metric.Int64Counter

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider

	prometheusRegistry *promclient.Registry
}

// New builds a Recorder. A zero Config produces a fully no-op recorder.
func New(cfg Config) (*Recorder, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "wayfarer"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "0.0.0"
	}
	if cfg.Provider == "" {
		cfg.Provider = NoopProvider
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slogDiscard())
	}

	r := &Recorder{cfg: cfg}
	if err := r.initProviders(); err != nil {
		return nil, fmt.Errorf("observability: init providers: %w", err)
	}

	var err error
	r.dispatchDuration, err = r.meter.Float64Histogram(
		"wayfarer.dispatch.duration",
		metric.WithDescription("Time spent in Router.Dispatch, in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: create duration histogram: %w", err)
	}
	r.dispatchTotal, err = r.meter.Int64Counter(
		"wayfarer.dispatch.total",
		metric.WithDescription("Number of Router.Dispatch calls, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: create dispatch counter: %w", err)
	}

	return r, nil
}

// MustNew panics if New fails.
func MustNew(cfg Config) *Recorder {
	r, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf("observability.MustNew: %v", err))
	}
	return r
}

// StartDispatch starts a span for one Router.Dispatch call (spec.md §5:
// "routing" emitted strictly before match).
func (r *Recorder) StartDispatch(ctx context.Context, method, path string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, fmt.Sprintf("%s %s", method, path), trace.WithSpanKind(trace.SpanKindInternal))
}

// FinishDispatch ends span and records duration/outcome metrics. Pass the
// error returned by Router.Dispatch, if any; nil means success.
func (r *Recorder) FinishDispatch(ctx context.Context, span trace.Span, start time.Time, routeName string, dispatchErr error) {
	elapsed := time.Since(start).Seconds()

	outcome := "ok"
	if dispatchErr != nil {
		outcome = "error"
		span.SetStatus(codes.Error, dispatchErr.Error())
		span.RecordError(dispatchErr)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	if routeName != "" {
		span.SetAttributes(attribute.String("wayfarer.route.name", routeName))
	}
	span.End()

	attrs := attribute.NewSet(attribute.String("outcome", outcome))
	r.dispatchDuration.Record(ctx, elapsed, metric.WithAttributeSet(attrs))
	r.dispatchTotal.Add(ctx, 1, metric.WithAttributeSet(attrs))
}

// Shutdown flushes and releases any exporter resources.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if r.tracerProvider != nil {
		if err := r.tracerProvider.Shutdown(ctx); err != nil {
			return err
		}
	}
	if r.meterProvider != nil {
		return r.meterProvider.Shutdown(ctx)
	}
	return nil
}
