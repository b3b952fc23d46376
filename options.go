// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Option customizes a Driver and its Ref.
type Option func(*options)

type options struct {
	name    string
	logger  *slog.Logger
	metrics Metrics
	tracer  trace.TracerProvider
}

func defaultOptions() options {
	return options{
		name:    "proc",
		logger:  slog.Default(),
		metrics: NopMetrics(),
		tracer:  otel.GetTracerProvider(),
	}
}

// WithName labels logs and metrics of the Driver.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink. Defaults to NopMetrics().
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracerProvider sets the tracer provider used by Ref.Ask.
// Defaults to the global otel provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracer = tp
		}
	}
}
