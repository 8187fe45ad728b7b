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
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/tracelint/services/lint/engine"
	"github.com/AleutianAI/tracelint/services/lint/report"
	"github.com/AleutianAI/tracelint/services/lint/watch"
)

type checkFlags struct {
	format   string
	preset   string
	include  []string
	exclude  []string
	workers  int
	faults   bool
	maxWarns int
}

func (a *app) checkCmd() *cobra.Command {
	var f checkFlags
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Lint files and directories",
		Long: "Lint the given files and directories. Directories are walked for\n" +
			".js, .jsx, .mjs, .cjs, .ts, .mts, .cts and .tsx files.",
		Example: "  tracelint check src\n  tracelint check --preset all --format json src > report.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			a.applyCheckFlags(cmd, f)
			return a.runCheck(cmd.Context(), args, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.format, "format", "f", string(report.FormatText), "output format: text, compact, json")
	fl.StringVar(&f.preset, "preset", "", "rule preset: recommended, all")
	fl.StringSliceVar(&f.include, "rule", nil, "additional rule codes to enable")
	fl.StringSliceVar(&f.exclude, "disable", nil, "rule codes to disable")
	fl.IntVarP(&f.workers, "workers", "j", 0, "files linted concurrently (0: from config)")
	fl.BoolVar(&f.faults, "report-faults", false, "report rule faults as internal-error diagnostics")
	fl.IntVar(&f.maxWarns, "max-warnings", -1, "fail when warnings exceed this count (-1: no limit)")
	return cmd
}

// applyCheckFlags layers explicitly set flags over the loaded config.
func (a *app) applyCheckFlags(cmd *cobra.Command, f checkFlags) {
	if cmd.Flags().Changed("preset") {
		a.cfg.Preset = f.preset
	}
	a.cfg.Rules.Include = append(a.cfg.Rules.Include, f.include...)
	a.cfg.Rules.Exclude = append(a.cfg.Rules.Exclude, f.exclude...)
	if f.workers > 0 {
		a.cfg.Workers = f.workers
	}
	if f.faults {
		a.cfg.ReportFaults = true
	}
}

func (a *app) runCheck(ctx context.Context, paths []string, f checkFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer, err := report.NewPrinter(report.Format(strings.ToLower(f.format)), a.stdout, a.colorOut())
	if err != nil {
		return err
	}

	linter, closeLinter, err := a.newLinter(false)
	if err != nil {
		return err
	}
	defer closeLinter()

	files, err := watch.CollectFiles(paths, watch.DefaultOptions().Ignore)
	if err != nil {
		return err
	}

	sources := make([]engine.Source, 0, len(files))
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		sources = append(sources, engine.Source{Path: path, Content: content})
	}

	results, err := linter.LintFiles(ctx, sources)
	if err != nil {
		return err
	}
	if err := printer.Print(results); err != nil {
		return err
	}

	summary := report.Summarize(results)
	if summary.Failed() {
		return errFindings
	}
	if f.maxWarns >= 0 && summary.Warnings > f.maxWarns {
		return errFindings
	}
	return nil
}

// colorOut reports whether stdout is a color-capable terminal.
func (a *app) colorOut() bool {
	f, ok := a.stdout.(*os.File)
	return ok && report.ColorEnabled(f)
}
