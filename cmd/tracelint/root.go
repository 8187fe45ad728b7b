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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/tracelint/pkg/logging"
	"github.com/AleutianAI/tracelint/services/lint/cache"
	"github.com/AleutianAI/tracelint/services/lint/engine"
)

// Exit codes.
const (
	exitOK       = 0
	exitFindings = 1
	exitUsage    = 2
)

// errFindings signals that lint completed with error-severity findings.
var errFindings = errors.New("lint errors found")

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logJSON    bool
	logDir     string
	noCache    bool
}

// app carries per-invocation state between cobra hooks and commands.
type app struct {
	flags  globalFlags
	stdout io.Writer
	stderr io.Writer

	logger *logging.Logger
	cfg    engine.Config
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if a.logger != nil {
		a.logger.Close()
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errFindings):
		return exitFindings
	default:
		fmt.Fprintf(stderr, "tracelint: %v\n", err)
		return exitUsage
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tracelint",
		Short:         "Lint JavaScript and TypeScript sources",
		Long:          "tracelint checks JavaScript and TypeScript files against a catalog of rules,\nhonoring in-source suppression directives.",
		Version:       engine.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "config file (default: ./"+engine.DefaultConfigFile+" if present)")
	pf.StringVar(&a.flags.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.BoolVar(&a.flags.logJSON, "log-json", false, "write logs as JSON")
	pf.StringVar(&a.flags.logDir, "log-dir", "", "also write JSON logs to this directory")
	pf.BoolVar(&a.flags.noCache, "no-cache", false, "disable the result cache")

	root.AddCommand(a.checkCmd(), a.rulesCmd(), a.watchCmd())
	return root
}

// setup builds the logger and loads configuration.
func (a *app) setup() error {
	level, err := logging.ParseLevel(a.flags.logLevel)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{
		Level:  level,
		JSON:   a.flags.logJSON,
		LogDir: a.flags.logDir,
		Output: a.stderr,
	})
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger.Slog())

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.flags.noCache {
		cfg.Cache.Enabled = false
	}
	a.cfg = cfg
	return nil
}

func (a *app) loadConfig() (engine.Config, error) {
	path := a.flags.configPath
	if path == "" {
		if _, err := os.Stat(engine.DefaultConfigFile); err != nil {
			return engine.DefaultConfig(), nil
		}
		path = engine.DefaultConfigFile
	}
	cfg, err := engine.LoadConfig(path)
	if err != nil {
		return engine.Config{}, err
	}
	a.logger.Slog().Debug("configuration loaded",
		slog.String("path", path),
		slog.String("preset", cfg.Preset),
		slog.Int("workers", cfg.Workers),
	)
	return cfg, nil
}

// newLinter builds a linter from the loaded config. The returned close
// function releases the cache, if one was opened.
func (a *app) newLinter(inMemoryCache bool) (*engine.Linter, func(), error) {
	opts := []engine.Option{engine.WithLogger(a.logger.Slog())}
	closeFn := func() {}

	if a.cfg.Cache.Enabled || inMemoryCache {
		ccfg := cache.DefaultConfig(a.cfg.Cache.Dir)
		if inMemoryCache && !a.cfg.Cache.Enabled {
			ccfg = cache.InMemoryConfig()
		}
		ccfg.Logger = a.logger.Slog().With(slog.String("component", "cache"))
		store, err := cache.Open(ccfg)
		if err != nil {
			a.logger.Slog().Warn("result cache unavailable",
				slog.String("dir", ccfg.Dir),
				slog.String("error", err.Error()),
			)
		} else {
			opts = append(opts, engine.WithCache(store))
			closeFn = func() { store.Close() }
		}
	}

	l, err := engine.New(a.cfg, opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return l, closeFn, nil
}
