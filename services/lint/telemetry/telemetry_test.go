// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/tracelint/services/lint/engine"
)

func TestInit_UnknownExporter(t *testing.T) {
	_, err := Init(Config{MetricExporter: "carrier-pigeon"})
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

// TestInit_PrometheusServesLintMetrics verifies engine metrics reach the
// scrape endpoint.
func TestInit_PrometheusServesLintMetrics(t *testing.T) {
	p, err := Init(Config{ServiceName: "tracelint", ServiceVersion: "test", MetricExporter: "prometheus"})
	require.NoError(t, err)
	defer p.Shutdown(context.Background())
	require.NotNil(t, p.Handler())

	l, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)
	_, err = l.LintSource(context.Background(), "a.js", []byte("debugger;\n"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "tracelint_lint_total")
	assert.Contains(t, string(body), "tracelint_diagnostics_total")
}

func TestInit_StdoutFlushesOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	p, err := Init(Config{ServiceName: "tracelint", MetricExporter: "stdout", Output: &buf, ExportInterval: time.Hour})
	require.NoError(t, err)
	assert.Nil(t, p.Handler())

	counter, err := p.mp.Meter("telemetry_test").Int64Counter("tracelint_sample_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "tracelint_sample_total")
}

// TestInit_None runs last: the first installed provider receives the
// engine's instruments.
func TestInit_None(t *testing.T) {
	p, err := Init(Config{ServiceName: "tracelint", MetricExporter: "none"})
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	assert.Nil(t, p.Handler())
	assert.Nil(t, p.Registry())
}
