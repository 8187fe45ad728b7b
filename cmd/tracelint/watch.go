// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/tracelint/services/lint/engine"
	"github.com/AleutianAI/tracelint/services/lint/report"
	"github.com/AleutianAI/tracelint/services/lint/telemetry"
	"github.com/AleutianAI/tracelint/services/lint/watch"
)

func (a *app) watchCmd() *cobra.Command {
	var (
		metricsAddr   string
		metricsStdout time.Duration
		debounce      time.Duration
		format      string
	)
	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Re-lint files as they change",
		Long: "Lint every file once, then re-lint files as they are written.\n" +
			"Results are cached in memory between edits unless an on-disk cache is configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runWatch(ctx, args, metricsAddr, metricsStdout, debounce, format)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
	cmd.Flags().DurationVar(&metricsStdout, "metrics-stdout", 0, "write metrics to stderr at this interval instead of serving them")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultOptions().Debounce, "wait this long after the last change before linting")
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatCompact), "output format: text, compact, json")
	return cmd
}

func (a *app) runWatch(ctx context.Context, dirs []string, metricsAddr string, metricsStdout, debounce time.Duration, format string) error {
	logger := a.logger.Slog()

	if metricsAddr != "" && metricsStdout > 0 {
		return errors.New("--metrics-addr and --metrics-stdout are mutually exclusive")
	}

	if metricsStdout > 0 {
		cfg := telemetry.DefaultConfig(engine.Version)
		cfg.MetricExporter = "stdout"
		cfg.Output = a.stderr
		cfg.ExportInterval = metricsStdout
		tp, err := telemetry.Init(cfg)
		if err != nil {
			return err
		}
		defer tp.Shutdown(context.Background())
	}

	if metricsAddr != "" {
		tp, err := telemetry.Init(telemetry.DefaultConfig(engine.Version))
		if err != nil {
			return err
		}
		defer tp.Shutdown(context.Background())

		mux := http.NewServeMux()
		mux.Handle("/metrics", tp.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", slog.String("error", err.Error()))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", slog.String("addr", metricsAddr))
	}

	printer, err := report.NewPrinter(report.Format(format), a.stdout, a.colorOut())
	if err != nil {
		return err
	}

	linter, closeLinter, err := a.newLinter(true)
	if err != nil {
		return err
	}
	defer closeLinter()

	lintPaths := func(ctx context.Context, paths []string) {
		results := make([]*engine.FileResult, 0, len(paths))
		for _, p := range paths {
			res, err := linter.LintFile(ctx, p)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				res = &engine.FileResult{Path: p, Error: err.Error()}
			}
			results = append(results, res)
		}
		if err := printer.Print(results); err != nil {
			logger.Warn("print failed", slog.String("error", err.Error()))
		}
	}

	files, err := watch.CollectFiles(dirs, watch.DefaultOptions().Ignore)
	if err != nil {
		return err
	}
	lintPaths(ctx, files)

	opts := watch.DefaultOptions()
	opts.Debounce = debounce
	opts.Logger = logger
	w, err := watch.New(dirs, lintPaths, opts)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	logger.Info("watching for changes", slog.Any("dirs", dirs), slog.Int("files", len(files)))
	<-ctx.Done()
	return nil
}
