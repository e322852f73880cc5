package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/erraggy/apicatalog/parser"
)

// watch reruns rebuild after changes under root settle for the debounce
// interval. Paths under any of the ignored directories and hidden files do
// not trigger a run. A failing rebuild is logged and the watch goes on; the
// previous outputs stay in place. It returns when ctx is done.
func watch(ctx context.Context, root string, debounce time.Duration, logger parser.Logger, rebuild func() error, ignore ...string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer func() { _ = w.Close() }()

	ignored := make([]string, 0, len(ignore))
	for _, dir := range ignore {
		if abs, err := filepath.Abs(dir); err == nil {
			ignored = append(ignored, abs)
		}
	}
	skip := func(path string) bool {
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return true
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return false
		}
		for _, dir := range ignored {
			if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}

	// addTree watches dir and every directory below it that skip allows.
	addTree := func(dir string) error {
		return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if p == dir {
					return err
				}
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if skip(p) {
				return filepath.SkipDir
			}
			return w.Add(p)
		})
	}

	if err := addTree(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	logger.Info("watching for changes", "dir", root)

	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if skip(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addTree(ev.Name); err != nil {
						logger.Warn("cannot watch new directory", "dir", ev.Name, "error", err)
					}
				}
			}
			logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(debounce)
		case <-timer.C:
			if err := rebuild(); err != nil {
				logger.Error("rebuild failed", "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
