// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report renders lint results for terminals and machines.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
	"github.com/AleutianAI/tracelint/services/lint/engine"
)

// Format names an output format.
type Format string

const (
	FormatText    Format = "text"
	FormatCompact Format = "compact"
	FormatJSON    Format = "json"
)

// ErrUnknownFormat is returned by NewPrinter for an unsupported format.
var ErrUnknownFormat = errors.New("unknown output format")

// Summary totals a set of results.
type Summary struct {
	Files       int `json:"files"`
	Errors      int `json:"errors"`
	Warnings    int `json:"warnings"`
	Infos       int `json:"infos"`
	Suppressed  int `json:"suppressed"`
	Faults      int `json:"faults"`
	ParseFailed int `json:"parse_failed"`
	Skipped     int `json:"skipped"`
	Cached      int `json:"cached"`
}

// Summarize totals results.
func Summarize(results []*engine.FileResult) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Error != "" {
			s.Skipped++
			continue
		}
		e, w, i := r.Count()
		s.Errors += e
		s.Warnings += w
		s.Infos += i
		s.Suppressed += r.Suppressed
		s.Faults += len(r.Faults)
		if r.ParseFailed {
			s.ParseFailed++
		}
		if r.Cached {
			s.Cached++
		}
	}
	return s
}

// Failed reports whether the run should exit non-zero.
func (s Summary) Failed() bool {
	return s.Errors > 0
}

// Printer writes results in one format.
type Printer interface {
	Print(results []*engine.FileResult) error
}

// NewPrinter returns a printer for format writing to w.
//
// Inputs:
//
//	format - One of FormatText, FormatCompact or FormatJSON.
//	w      - Destination.
//	color  - Style text output. See ColorEnabled.
func NewPrinter(format Format, w io.Writer, color bool) (Printer, error) {
	switch format {
	case FormatText, "":
		return &textPrinter{w: w, styles: newStyles(color)}, nil
	case FormatCompact:
		return &compactPrinter{w: w}, nil
	case FormatJSON:
		return &jsonPrinter{w: w}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ColorEnabled reports whether f is a terminal and NO_COLOR is unset.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// =============================================================================
// TEXT
// =============================================================================

var (
	colorError   = lipgloss.Color("#E74C3C")
	colorWarning = lipgloss.Color("#F4D03F")
	colorInfo    = lipgloss.Color("#20B9B4")
	colorMuted   = lipgloss.Color("#5C7A84")
)

type styles struct {
	file    lipgloss.Style
	errSev  lipgloss.Style
	warnSev lipgloss.Style
	infoSev lipgloss.Style
	code    lipgloss.Style
	hint    lipgloss.Style
	pass    lipgloss.Style
	fail    lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		file:    lipgloss.NewStyle().Bold(true).Underline(true),
		errSev:  lipgloss.NewStyle().Foreground(colorError).Bold(true),
		warnSev: lipgloss.NewStyle().Foreground(colorWarning),
		infoSev: lipgloss.NewStyle().Foreground(colorInfo),
		code:    lipgloss.NewStyle().Foreground(colorMuted),
		hint:    lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
		pass:    lipgloss.NewStyle().Foreground(colorInfo).Bold(true),
		fail:    lipgloss.NewStyle().Foreground(colorError).Bold(true),
	}
}

func (s styles) severity(sev diagnostics.Severity) string {
	label := sev.String()
	switch sev {
	case diagnostics.SeverityError:
		return s.errSev.Render(label)
	case diagnostics.SeverityWarning:
		return s.warnSev.Render(label)
	default:
		return s.infoSev.Render(label)
	}
}

// textPrinter groups diagnostics under a file heading.
type textPrinter struct {
	w      io.Writer
	styles styles
}

func (p *textPrinter) Print(results []*engine.FileResult) error {
	var b strings.Builder
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Error != "" {
			fmt.Fprintf(&b, "%s\n  %s %s\n\n", p.styles.file.Render(r.Path), p.styles.severity(diagnostics.SeverityWarning), r.Error)
			continue
		}
		if len(r.Diagnostics) == 0 && len(r.Faults) == 0 {
			continue
		}

		fmt.Fprintln(&b, p.styles.file.Render(r.Path))
		for _, d := range r.Diagnostics {
			pos := fmt.Sprintf("%d:%d", d.Start.Line, d.Start.Column)
			fmt.Fprintf(&b, "  %-8s %s  %s  %s\n", pos, p.styles.severity(d.Severity), d.Message, p.styles.code.Render(d.Code))
			if d.Hint != "" {
				fmt.Fprintf(&b, "           %s\n", p.styles.hint.Render(d.Hint))
			}
		}
		for _, f := range r.Faults {
			fmt.Fprintf(&b, "  %s %s\n", p.styles.hint.Render("fault"), f.Error())
		}
		b.WriteByte('\n')
	}

	s := Summarize(results)
	problems := s.Errors + s.Warnings + s.Infos
	line := fmt.Sprintf("%d problem%s (%d error%s, %d warning%s) in %d file%s",
		problems, plural(problems), s.Errors, plural(s.Errors), s.Warnings, plural(s.Warnings), s.Files, plural(s.Files))
	if s.Suppressed > 0 {
		line += fmt.Sprintf(", %d suppressed", s.Suppressed)
	}
	if s.Faults > 0 {
		line += fmt.Sprintf(", %d rule fault%s", s.Faults, plural(s.Faults))
	}
	if s.Failed() {
		fmt.Fprintf(&b, "%s %s\n", p.styles.fail.Render("✗"), line)
	} else {
		fmt.Fprintf(&b, "%s %s\n", p.styles.pass.Render("✓"), line)
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// =============================================================================
// COMPACT
// =============================================================================

// compactPrinter writes one "file:line:col: severity: message [code]" line
// per diagnostic, the format editors and CI annotators understand.
type compactPrinter struct {
	w io.Writer
}

func (p *compactPrinter) Print(results []*engine.FileResult) error {
	var b strings.Builder
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Error != "" {
			fmt.Fprintf(&b, "%s: warning: %s\n", r.Path, r.Error)
			continue
		}
		for _, d := range r.Diagnostics {
			fmt.Fprintf(&b, "%s: %s: %s [%s]\n", d.Location(r.Path), d.Severity, d.Message, d.Code)
		}
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// =============================================================================
// JSON
// =============================================================================

type jsonReport struct {
	Version string               `json:"version"`
	Results []*engine.FileResult `json:"results"`
	Summary Summary              `json:"summary"`
}

type jsonPrinter struct {
	w io.Writer
}

func (p *jsonPrinter) Print(results []*engine.FileResult) error {
	out := jsonReport{
		Version: engine.Version,
		Results: make([]*engine.FileResult, 0, len(results)),
		Summary: Summarize(results),
	}
	for _, r := range results {
		if r != nil {
			out.Results = append(out.Results, r)
		}
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
