package pipeline

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch rebuilds the site whenever a note file under inputDir changes.
// Rebuild failures (including link errors) are logged; the previously
// built site stays in place. Watch blocks until ctx is cancelled.
func (b *Builder) Watch(ctx context.Context, inputDir, outputDir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// fsnotify does not recurse, so register every subdirectory.
	addDirs := func() {
		filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != inputDir {
					return filepath.SkipDir
				}
				watcher.Add(path)
			}
			return nil
		})
	}
	addDirs()

	// Editors fire bursts of events per save; debounce before rebuilding.
	const debounce = 250 * time.Millisecond
	var timer *time.Timer
	rebuild := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				addDirs()
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.log.Warn("watch error", "error", err)

		case <-rebuild:
			if _, err := b.Build(ctx, inputDir, outputDir); err != nil {
				b.log.Error("rebuild failed, keeping previous site", "error", err)
			}
		}
	}
}
