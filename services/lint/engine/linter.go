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
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/tracelint/services/lint/ast"
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
	"github.com/AleutianAI/tracelint/services/lint/rules"
	"github.com/AleutianAI/tracelint/services/lint/suppress"
)

// Version is the engine version. It is part of every cache key so results
// from an older engine are never reused.
const Version = "0.3.0"

// =============================================================================
// LINTER
// =============================================================================

// Linter runs a fixed rule set over JavaScript and TypeScript files.
//
// Description:
//
//	A Linter is built once from a validated Config. Each file goes through
//	parse, rule dispatch, suppression filtering and sorting. Files are
//	independent: LintFiles fans them out over a bounded worker pool and
//	no state is shared between files.
//
// Thread Safety: Safe for concurrent use.
type Linter struct {
	cfg         Config
	rules       []rules.Rule
	overrides   map[string]diagnostics.Severity
	exempt      map[string]bool
	parser      *ast.Parser
	dispatcher  *Dispatcher
	logger      *slog.Logger
	cache       Cache
	fingerprint string
}

// Option configures a Linter.
type Option func(*Linter)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Linter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithCache enables the result cache.
func WithCache(c Cache) Option {
	return func(l *Linter) {
		l.cache = c
	}
}

// WithRules replaces the configured selection with an explicit rule list.
// Rules outside the catalog are allowed.
func WithRules(rs ...rules.Rule) Option {
	return func(l *Linter) {
		l.rules = rs
	}
}

// New creates a Linter.
//
// Inputs:
//
//	cfg  - Configuration. Validated before use.
//	opts - Optional settings.
//
// Outputs:
//
//	*Linter - The linter.
//	error   - A *ConfigError when cfg is invalid or selects unknown rules.
func New(cfg Config, opts ...Option) (*Linter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	selected, err := cfg.Selection().Resolve()
	if err != nil {
		return nil, err
	}
	overrides, err := cfg.SeverityOverrides()
	if err != nil {
		return nil, err
	}

	l := &Linter{
		cfg:       cfg,
		rules:     selected,
		overrides: overrides,
		exempt:    rules.SuppressionExemptCodes(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	parserOpts := []ast.ParserOption{}
	if cfg.MaxFileSize > 0 {
		parserOpts = append(parserOpts, ast.WithMaxFileSize(cfg.MaxFileSize))
	}
	l.parser = ast.NewParser(parserOpts...)
	l.dispatcher = NewDispatcher(l.logger, cfg.ReportFaults)
	l.fingerprint = l.computeFingerprint()

	return l, nil
}

// Rules returns the rules the linter runs, in dispatch order.
func (l *Linter) Rules() []rules.Rule {
	return append([]rules.Rule(nil), l.rules...)
}

// Fingerprint identifies the rule set and settings that affect results.
func (l *Linter) Fingerprint() string {
	return l.fingerprint
}

func (l *Linter) computeFingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "engine=%s\n", Version)
	for _, r := range l.rules {
		fmt.Fprintf(h, "rule=%s\n", r.Code())
	}
	codes := make([]string, 0, len(l.overrides))
	for code := range l.overrides {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(h, "severity=%s:%s\n", code, l.overrides[code])
	}
	fmt.Fprintf(h, "report_faults=%t\n", l.cfg.ReportFaults)
	return hex.EncodeToString(h.Sum(nil))
}

// CacheKey returns the cache key for a file under this linter's settings.
func (l *Linter) CacheKey(path string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(filepath.ToSlash(path)))
	h.Write([]byte{0})
	h.Write(content)
	return l.fingerprint[:16] + ":" + hex.EncodeToString(h.Sum(nil))
}

// LintSource lints in-memory content.
//
// Description:
//
//	Parses content with the grammar selected by path's extension, runs the
//	rule set, drops suppressed findings and sorts the rest. A file with
//	syntax errors is not an error: the result carries one parse-error
//	diagnostic and ParseFailed is set.
//
// Inputs:
//
//	ctx     - Context for cancellation and tracing. Must not be nil.
//	path    - File path, used for grammar selection and reporting.
//	content - Source bytes.
//
// Outputs:
//
//	*FileResult - The result.
//	error       - ErrInvalidInput, ast.ErrUnsupportedLanguage,
//	              ast.ErrFileTooLarge, ast.ErrInvalidContent or a context
//	              error.
//
// Thread Safety: Safe for concurrent use.
func (l *Linter) LintSource(ctx context.Context, path string, content []byte) (*FileResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	lang := ast.LanguageFromPath(path)
	if lang == "" {
		return nil, fmt.Errorf("%w: %q", ast.ErrUnsupportedLanguage, filepath.Ext(path))
	}

	ctx, span := startLintSpan(ctx, path)
	defer span.End()
	start := time.Now()

	var key string
	if l.cache != nil {
		key = l.CacheKey(path, content)
		if res := l.lookupCache(ctx, key, path); res != nil {
			setLintSpanResult(span, res, res.Suppressed)
			return res, nil
		}
	}

	m, err := l.parser.ParseLanguage(ctx, content, path, lang)
	if err != nil {
		var perr *ast.ParseError
		if !errors.As(err, &perr) {
			return nil, err
		}
		res := l.parseFailure(path, lang, content, perr)
		res.Duration = time.Since(start)
		setLintSpanResult(span, res, 0)
		recordLintMetrics(ctx, lang, res.Duration, len(res.Diagnostics), 0, 0, true)
		l.storeCache(ctx, key, res)
		return res, nil
	}

	dctx := diagnostics.NewContext(m, l.overrides)
	l.dispatcher.Run(l.rules, dctx)

	kept, suppressed := suppress.Resolve(m).Filter(dctx.Diagnostics(), l.exempt)
	kept = append([]diagnostics.Diagnostic(nil), kept...)
	diagnostics.Sort(kept)

	res := &FileResult{
		Path:        path,
		Language:    lang,
		Diagnostics: kept,
		Faults:      dctx.Faults(),
		Suppressed:  suppressed,
		Duration:    time.Since(start),
	}

	setLintSpanResult(span, res, suppressed)
	recordLintMetrics(ctx, lang, res.Duration, len(kept), suppressed, len(res.Faults), false)

	l.logger.Debug("lint completed",
		slog.String("file", path),
		slog.String("language", string(lang)),
		slog.Int("rules", len(l.rules)),
		slog.Int("diagnostics", len(kept)),
		slog.Int("suppressed", suppressed),
		slog.Int("faults", len(res.Faults)),
		slog.Duration("duration", res.Duration),
	)

	if len(res.Faults) == 0 {
		l.storeCache(ctx, key, res)
	}
	return res, nil
}

// parseFailure builds the result for a file with syntax errors.
func (l *Linter) parseFailure(path string, lang ast.Language, content []byte, perr *ast.ParseError) *FileResult {
	severity := diagnostics.SeverityError
	if s, ok := l.overrides[CodeParseError]; ok {
		severity = s
	}
	lines := ast.NewLineIndex(content)
	d := diagnostics.Diagnostic{
		Code:     CodeParseError,
		Message:  perr.Message,
		Hint:     "Fix the syntax error; no other rules ran on this file",
		Span:     perr.Span,
		Start:    lines.Position(perr.Span.Start),
		End:      lines.Position(perr.Span.End),
		Severity: severity,
	}

	l.logger.Debug("parse failed",
		slog.String("file", path),
		slog.Int("line", d.Start.Line),
		slog.Int("column", d.Start.Column),
		slog.String("error", perr.Message),
	)

	return &FileResult{
		Path:        path,
		Language:    lang,
		Diagnostics: []diagnostics.Diagnostic{d},
		ParseFailed: true,
	}
}

func (l *Linter) lookupCache(ctx context.Context, key, path string) *FileResult {
	res, ok, err := l.cache.Lookup(ctx, key)
	if err != nil {
		l.logger.Warn("result cache lookup failed",
			slog.String("file", path),
			slog.String("error", err.Error()),
		)
		return nil
	}
	recordCacheLookup(ctx, ok)
	if !ok {
		return nil
	}
	res.Path = path
	res.Cached = true
	return res
}

func (l *Linter) storeCache(ctx context.Context, key string, res *FileResult) {
	if l.cache == nil || key == "" {
		return
	}
	if err := l.cache.Store(ctx, key, res); err != nil {
		l.logger.Warn("result cache store failed",
			slog.String("file", res.Path),
			slog.String("error", err.Error()),
		)
	}
}

// LintFile reads and lints a file from disk.
func (l *Linter) LintFile(ctx context.Context, path string) (*FileResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return l.LintSource(ctx, path, content)
}

// LintFiles lints many files concurrently.
//
// Description:
//
//	Files are linted by at most Config.Workers goroutines. Results are
//	returned in input order. A file that cannot be linted gets a result
//	with Error set; it does not stop the run. Cancellation is checked
//	before each file starts.
//
// Inputs:
//
//	ctx     - Context for cancellation. Must not be nil.
//	sources - The files to lint.
//
// Outputs:
//
//	[]*FileResult - One result per source, in input order.
//	error         - ErrInvalidInput or the context's error.
//
// Thread Safety: Safe for concurrent use.
func (l *Linter) LintFiles(ctx context.Context, sources []Source) ([]*FileResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	runID := uuid.NewString()
	logger := l.logger.With(slog.String("run_id", runID))
	start := time.Now()

	workers := l.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*FileResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := l.LintSource(gctx, src.Path, src.Content)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("file skipped",
					slog.String("file", src.Path),
					slog.String("error", err.Error()),
				)
				res = &FileResult{Path: src.Path, Error: err.Error()}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r.Diagnostics)
	}
	logger.Info("lint run completed",
		slog.Int("files", len(sources)),
		slog.Int("workers", workers),
		slog.Int("diagnostics", total),
		slog.Duration("duration", time.Since(start)),
	)
	return results, nil
}
