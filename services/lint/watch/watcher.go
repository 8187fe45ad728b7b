// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch re-lints source files as they change on disk.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/tracelint/services/lint/ast"
)

// Handler receives a debounced batch of changed source files. Paths are
// deduplicated and sorted. Removed files are not included.
type Handler func(ctx context.Context, paths []string)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long to wait for more changes before calling the
	// handler.
	// Default: 150ms
	Debounce time.Duration

	// Ignore lists directory or file base names and globs to skip.
	// Default: [".git", "node_modules", "dist", "build", "coverage"]
	Ignore []string

	// BufferSize is the size of the change channel.
	// Default: 1024
	BufferSize int

	// Logger for watch events. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		Debounce:   150 * time.Millisecond,
		Ignore:     []string{".git", "node_modules", "dist", "build", "coverage"},
		BufferSize: 1024,
	}
}

// Watcher watches directory trees for changes to lintable files.
//
// Thread Safety: Start and Stop are safe for concurrent use.
type Watcher struct {
	roots    []string
	handler  Handler
	debounce time.Duration
	ignore   []string
	logger   *slog.Logger

	fsw      *fsnotify.Watcher
	changes  chan string
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	watching bool

	// Set up by Start, then owned by the event goroutine.
	treeDirs map[string]bool
	fileDirs map[string]map[string]bool
}

// New creates a Watcher over roots.
//
// Inputs:
//
//	roots   - Directories to watch recursively, or single files. Must not
//	          be empty.
//	handler - Called with each batch of changed files. Must not be nil.
//	opts    - Options. Zero fields take defaults.
//
// Outputs:
//
//	*Watcher - The watcher. Not started until Start is called.
//	error    - Non-nil if inputs are invalid or fsnotify fails.
func New(roots []string, handler Handler, opts Options) (*Watcher, error) {
	if len(roots) == 0 {
		return nil, errors.New("at least one root is required")
	}
	if handler == nil {
		return nil, errors.New("handler must not be nil")
	}

	def := DefaultOptions()
	if opts.Debounce <= 0 {
		opts.Debounce = def.Debounce
	}
	if opts.Ignore == nil {
		opts.Ignore = def.Ignore
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = def.BufferSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		roots:    roots,
		handler:  handler,
		debounce: opts.Debounce,
		ignore:   opts.Ignore,
		logger:   opts.Logger,
		fsw:      fsw,
		changes:  make(chan string, opts.BufferSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Start adds every root recursively and begins delivering batches.
//
// Description:
//
//	A file root is watched through its parent directory, and events from
//	that directory are limited to the file unless the directory is also
//	part of a watched tree.
//	Two goroutines run until Stop is called or ctx is cancelled: one
//	filters fsnotify events down to lintable files, the other batches them
//	and calls the handler once the debounce window passes with no new
//	change. The handler runs on the batching goroutine, so batches never
//	overlap.
//
// Outputs:
//
//	error - Non-nil if a root cannot be watched. The watcher is closed and
//	        cannot be restarted.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRoots(); err != nil {
		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
		w.fsw.Close()
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop stops watching and waits for an in-flight batch to finish.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()

		w.mu.Lock()
		started := w.watching
		w.watching = false
		w.mu.Unlock()

		if started {
			<-w.stopped
		}
	})
}

func (w *Watcher) addRoots() error {
	w.treeDirs = make(map[string]bool)
	w.fileDirs = make(map[string]map[string]bool)
	for _, root := range w.roots {
		info, err := os.Stat(root)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := w.addRecursive(root); err != nil {
				return err
			}
			continue
		}

		file := filepath.Clean(root)
		dir := filepath.Dir(file)
		if w.fileDirs[dir] == nil {
			w.fileDirs[dir] = make(map[string]bool)
			if err := w.fsw.Add(dir); err != nil {
				return err
			}
		}
		w.fileDirs[dir][file] = true
	}
	return nil
}

// excluded reports whether path lies in a directory watched only for
// specific files and is not one of them.
func (w *Watcher) excluded(path string) bool {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	files, ok := w.fileDirs[dir]
	if !ok || w.treeDirs[dir] {
		return false
	}
	return !files[path]
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return err
		}
		w.treeDirs[filepath.Clean(path)] = true
		return nil
	})
}

// shouldIgnore reports whether path's base name matches an ignore entry.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.ignore {
		if base == pattern {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// lintable reports whether path has a supported source extension.
func lintable(path string) bool {
	return ast.LanguageFromPath(path) != ""
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) || w.excluded(event.Name) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("watch directory failed",
							slog.String("dir", event.Name),
							slog.String("error", err.Error()),
						)
					}
					continue
				}
			}
			if !lintable(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			select {
			case w.changes <- event.Name:
			default:
				w.logger.Warn("watch buffer full, change dropped", slog.String("file", event.Name))
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer close(w.stopped)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			if _, err := os.Stat(p); err == nil {
				paths = append(paths, p)
			}
		}
		clear(pending)
		if len(paths) == 0 {
			return
		}
		sort.Strings(paths)
		w.handler(ctx, paths)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case p := <-w.changes:
			pending[p] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer, timerC = nil, nil
			flush()
		}
	}
}

// CollectFiles expands paths into the lintable files beneath them.
//
// Description:
//
//	Files are taken as given when they have a supported extension.
//	Directories are walked; ignored names are skipped. The result is
//	sorted and has no duplicates.
//
// Outputs:
//
//	[]string - The files.
//	error    - Non-nil if a path does not exist or a walk fails.
func CollectFiles(paths []string, ignore []string) ([]string, error) {
	w := &Watcher{ignore: ignore}
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if lintable(root) {
				add(root)
			}
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && w.shouldIgnore(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && lintable(path) && !strings.HasSuffix(path, ".min.js") {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(out)
	return out, nil
}
