// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/tracelint/services/lint/ast"
)

// Package-level tracer and meter for lint operations.
var (
	tracer = otel.Tracer("tracelint.engine")
	meter  = otel.Meter("tracelint.engine")
)

// Metrics for lint operations.
var (
	lintLatency       metric.Float64Histogram
	lintTotal         metric.Int64Counter
	diagnosticsFound  metric.Int64Counter
	suppressedTotal   metric.Int64Counter
	ruleFaultsTotal   metric.Int64Counter
	cacheLookupsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		lintLatency, err = meter.Float64Histogram(
			"tracelint_lint_duration_seconds",
			metric.WithDescription("Duration of single-file lint operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		lintTotal, err = meter.Int64Counter(
			"tracelint_lint_total",
			metric.WithDescription("Total number of files linted"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagnosticsFound, err = meter.Int64Counter(
			"tracelint_diagnostics_total",
			metric.WithDescription("Total number of diagnostics reported after suppression"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		suppressedTotal, err = meter.Int64Counter(
			"tracelint_suppressed_total",
			metric.WithDescription("Total number of diagnostics dropped by suppression directives"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		ruleFaultsTotal, err = meter.Int64Counter(
			"tracelint_rule_faults_total",
			metric.WithDescription("Total number of recovered rule panics"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		cacheLookupsTotal, err = meter.Int64Counter(
			"tracelint_cache_lookups_total",
			metric.WithDescription("Result cache lookups by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startLintSpan creates a span for a single-file lint.
func startLintSpan(ctx context.Context, filePath string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Linter.LintSource",
		trace.WithAttributes(
			attribute.String("lint.file_path", filePath),
		),
	)
}

// setLintSpanResult sets the result attributes on a lint span.
func setLintSpanResult(span trace.Span, res *FileResult, suppressed int) {
	span.SetAttributes(
		attribute.String("lint.language", string(res.Language)),
		attribute.Int("lint.diagnostics", len(res.Diagnostics)),
		attribute.Int("lint.suppressed", suppressed),
		attribute.Int("lint.faults", len(res.Faults)),
		attribute.Bool("lint.parse_failed", res.ParseFailed),
	)
}

// recordLintMetrics records metrics for a single-file lint.
func recordLintMetrics(ctx context.Context, language ast.Language, duration time.Duration, diags, suppressed, faults int, parseFailed bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("language", string(language)),
		attribute.Bool("parse_failed", parseFailed),
	)
	lintLatency.Record(ctx, duration.Seconds(), attrs)
	lintTotal.Add(ctx, 1, attrs)

	langAttr := metric.WithAttributes(attribute.String("language", string(language)))
	diagnosticsFound.Add(ctx, int64(diags), langAttr)
	suppressedTotal.Add(ctx, int64(suppressed), langAttr)
	if faults > 0 {
		ruleFaultsTotal.Add(ctx, int64(faults), langAttr)
	}
}

// recordCacheLookup records a result cache hit or miss.
func recordCacheLookup(ctx context.Context, hit bool) {
	if err := initMetrics(); err != nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	cacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
