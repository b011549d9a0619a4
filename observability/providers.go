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

package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	promclient "github.com/prometheus/client_golang/prometheus"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const instrumentationName = "github.com/wayfarer-dev/wayfarer"

// PrometheusRegistry exposes the registry backing PrometheusProvider, so the
// embedding application can serve it (e.g. with promhttp.HandlerFor),
// grounded on the metrics teacher's own promclient.Registry field.
func (r *Recorder) PrometheusRegistry() *promclient.Registry {
	return r.prometheusRegistry
}

// initProviders builds r.tracer/r.meter according to r.cfg.Provider,
// following the router teacher's per-provider init functions: one private
// initXProvider per backend, switched on by Recorder.initProviders.
func (r *Recorder) initProviders() error {
	switch r.cfg.Provider {
	case NoopProvider, "":
		return r.initNoopProvider()
	case StdoutProvider:
		return r.initStdoutProvider()
	case OTLPProvider:
		return r.initOTLPProvider(context.Background())
	case PrometheusProvider:
		return r.initPrometheusProvider()
	default:
		return fmt.Errorf("unsupported observability provider: %s", r.cfg.Provider)
	}
}

func (r *Recorder) resource() *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(r.cfg.ServiceName),
		semconv.ServiceVersion(r.cfg.ServiceVersion),
	)
}

func (r *Recorder) initNoopProvider() error {
	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(r.resource()))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(r.resource()))

	r.tracerProvider = tp
	r.meterProvider = mp
	r.tracer = tp.Tracer(instrumentationName)
	r.meter = mp.Meter(instrumentationName)
	return nil
}

func (r *Recorder) initStdoutProvider() error {
	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("create stdout trace exporter: %w", err)
	}
	metricExporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("create stdout metric exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter), sdktrace.WithResource(r.resource()))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(r.resource()),
	)

	r.tracerProvider = tp
	r.meterProvider = mp
	r.tracer = tp.Tracer(instrumentationName)
	r.meter = mp.Meter(instrumentationName)
	return nil
}

func (r *Recorder) initOTLPProvider(ctx context.Context) error {
	metricOpts := []otlpmetrichttp.Option{}
	traceOpts := []otlptracehttp.Option{}
	if r.cfg.OTLPEndpoint != "" {
		metricOpts = append(metricOpts, otlpmetrichttp.WithEndpoint(r.cfg.OTLPEndpoint))
		traceOpts = append(traceOpts, otlptracehttp.WithEndpoint(r.cfg.OTLPEndpoint))
	}

	metricExporter, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		return fmt.Errorf("create OTLP metric exporter: %w", err)
	}
	traceExporter, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return fmt.Errorf("create OTLP trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter), sdktrace.WithResource(r.resource()))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(r.resource()),
	)

	r.tracerProvider = tp
	r.meterProvider = mp
	r.tracer = tp.Tracer(instrumentationName)
	r.meter = mp.Meter(instrumentationName)
	return nil
}

func (r *Recorder) initPrometheusProvider() error {
	registry := promclient.NewRegistry()
	r.prometheusRegistry = registry

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(r.resource()))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter), sdkmetric.WithResource(r.resource()))

	r.tracerProvider = tp
	r.meterProvider = mp
	r.tracer = tp.Tracer(instrumentationName)
	r.meter = mp.Meter(instrumentationName)
	return nil
}

func slogDiscard() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}
