// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry installs the OpenTelemetry meter provider that backs
// the lint engine's metrics and exposes it for Prometheus scraping.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// ErrUnknownExporter indicates an unsupported MetricExporter value.
var ErrUnknownExporter = errors.New("unknown exporter")

// Config controls telemetry behavior.
type Config struct {
	// ServiceName identifies this process in metrics.
	ServiceName string

	// ServiceVersion is reported as service.version.
	ServiceVersion string

	// MetricExporter selects the exporter: "prometheus", "stdout" or "none".
	MetricExporter string

	// Output receives stdout exporter output. Defaults to os.Stderr.
	Output io.Writer

	// ExportInterval is the stdout exporter's push interval. Zero uses the
	// SDK default of one minute.
	ExportInterval time.Duration

	// ProcessMetrics adds Go runtime and process collectors to the
	// registry.
	ProcessMetrics bool
}

// DefaultConfig returns the configuration used by the watch command.
func DefaultConfig(version string) Config {
	return Config{
		ServiceName:    "tracelint",
		ServiceVersion: version,
		MetricExporter: "prometheus",
		ProcessMetrics: true,
	}
}

// Provider holds the installed meter provider and its HTTP handler.
type Provider struct {
	mp       *sdkmetric.MeterProvider
	registry *prometheus.Registry
	handler  http.Handler
}

// Init builds a meter provider and installs it globally.
//
// Description:
//
//	With the "prometheus" exporter, metrics are collected into a private
//	registry so repeated Init calls in one process never collide. Handler
//	serves that registry. With "stdout", metrics are pushed periodically
//	as JSON to cfg.Output. With "none", a provider with no readers is
//	installed. Handler returns nil for both.
//
// Inputs:
//
//	cfg - Telemetry configuration.
//
// Outputs:
//
//	*Provider - Call Shutdown on exit.
//	error     - ErrUnknownExporter or an exporter construction error.
//
// Thread Safety: Call once at startup.
func Init(cfg Config) (*Provider, error) {
	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	p := &Provider{}
	switch cfg.MetricExporter {
	case "prometheus":
		p.registry = prometheus.NewRegistry()
		if cfg.ProcessMetrics {
			p.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}
		exporter, err := promexporter.New(promexporter.WithRegisterer(p.registry))
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		p.handler = promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
		p.mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

	case "stdout":
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		var readerOpts []sdkmetric.PeriodicReaderOption
		if cfg.ExportInterval > 0 {
			readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.ExportInterval))
		}
		p.mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		)

	case "none", "":
		p.mp = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.MetricExporter)
	}

	otel.SetMeterProvider(p.mp)
	return p, nil
}

// Handler returns the /metrics handler, or nil when metrics are disabled.
func (p *Provider) Handler() http.Handler {
	return p.handler
}

// Registry returns the Prometheus registry, or nil when metrics are
// disabled.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}
