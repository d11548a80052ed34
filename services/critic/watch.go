// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package critic

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// WatchHandler receives the outcome of every lint performed by Watch.
// Exactly one of result and err is non-nil.
type WatchHandler func(result *LintResult, err error)

// Watch lints paths once, then again whenever one of them is written.
//
// Description:
//
//	Watches the parent directory of every path so editors that replace
//	files by rename are still seen. Changes are collected until the rate
//	limiter allows the next run, so a burst of saves produces one lint
//	per file. Lint errors go to fn and do not stop the watch.
//
// Inputs:
//
//	ctx - Cancelling ctx stops the watch
//	paths - Files to lint; at least one
//	severity - perlcritic threshold
//	fn - Called for every lint, from the watching goroutine
//
// Outputs:
//
//	error - nil when ctx is cancelled; setup errors otherwise
func (r *Runner) Watch(ctx context.Context, paths []string, severity Severity, fn WatchHandler) error {
	if ctx == nil || fn == nil {
		return fmt.Errorf("%w: ctx and fn must not be nil", ErrInvalidInput)
	}
	if !severity.Valid() {
		return fmt.Errorf("%w: %d is outside 1-5", ErrInvalidSeverity, int(severity))
	}
	if len(paths) == 0 {
		return ErrFileNotAssociated
	}

	// Absolute path as reported by fsnotify -> path as given by the caller.
	tracked := make(map[string]string, len(paths))
	dirs := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		tracked[abs] = p
		if dir := filepath.Dir(abs); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	lintOne := func(path string) {
		fn(r.Lint(ctx, LintRequest{FilePath: path, Severity: severity}))
	}
	for _, p := range paths {
		if ctx.Err() != nil {
			return nil
		}
		lintOne(p)
	}

	limiter := rate.NewLimiter(rate.Every(r.watchInterval), 1)
	limiter.Allow()

	pending := make(map[string]struct{})
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			orig, isTracked := tracked[filepath.Clean(event.Name)]
			if !isTracked || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			pending[orig] = struct{}{}
			if timerC == nil {
				timer = time.NewTimer(limiter.Reserve().Delay())
				timerC = timer.C
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "File watcher error", slog.String("error", werr.Error()))

		case <-timerC:
			timer, timerC = nil, nil
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			clear(pending)
			slices.Sort(batch)

			slog.DebugContext(ctx, "Re-linting changed files", slog.Int("count", len(batch)))
			for _, p := range batch {
				if ctx.Err() != nil {
					return nil
				}
				lintOne(p)
			}
		}
	}
}
