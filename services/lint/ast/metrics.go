// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for parsing.
var (
	tracer = otel.Tracer("tracelint.ast")
	meter  = otel.Meter("tracelint.ast")
)

var (
	parseLatency  metric.Float64Histogram
	parseTotal    metric.Int64Counter
	nodesBuilt    metric.Int64Histogram
	parseFailures metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"tracelint_parse_duration_seconds",
			metric.WithDescription("Duration of source parsing"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"tracelint_parse_total",
			metric.WithDescription("Total number of parse operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesBuilt, err = meter.Int64Histogram(
			"tracelint_parse_nodes",
			metric.WithDescription("Number of syntax nodes built per parse"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseFailures, err = meter.Int64Counter(
			"tracelint_parse_failures_total",
			metric.WithDescription("Total number of files rejected for syntax errors"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordParseMetrics records metrics for a parse operation.
func recordParseMetrics(ctx context.Context, language Language, duration time.Duration, nodeCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("language", string(language)),
		attribute.Bool("success", success),
	)

	parseLatency.Record(ctx, duration.Seconds(), attrs)
	parseTotal.Add(ctx, 1, attrs)

	if success {
		nodesBuilt.Record(ctx, int64(nodeCount),
			metric.WithAttributes(attribute.String("language", string(language))),
		)
	} else {
		parseFailures.Add(ctx, 1,
			metric.WithAttributes(attribute.String("language", string(language))),
		)
	}
}

// startParseSpan creates a span for a parse operation. Callers must End it.
func startParseSpan(ctx context.Context, language Language, filePath string, contentSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Parser.Parse",
		trace.WithAttributes(
			attribute.String("ast.language", string(language)),
			attribute.String("ast.file", filePath),
			attribute.Int("ast.content_size", contentSize),
		),
	)
}

// setParseSpanResult sets the result attributes on a parse span.
func setParseSpanResult(span trace.Span, nodeCount, commentCount int) {
	span.SetAttributes(
		attribute.Int("ast.node_count", nodeCount),
		attribute.Int("ast.comment_count", commentCount),
	)
}
