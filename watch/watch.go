// Package watch rebuilds a project whenever one of its PoliteCode sources
// changes.
package watch

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// Extension is the suffix of PoliteCode source files.
const Extension = ".polite"

// Fingerprint returns the hex BLAKE2b-256 digest of data.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// tracker remembers the last seen fingerprint of every source so editors
// that save without changes do not trigger a rebuild.
type tracker struct {
	mu   sync.Mutex
	seen map[string]string
}

func newTracker() *tracker {
	return &tracker{seen: make(map[string]string)}
}

// changed reports whether path differs from its last recorded content.
func (t *tracker) changed(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	sum := Fingerprint(data)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seen[path] == sum {
		return false
	}
	t.seen[path] = sum
	return true
}

// addTree registers dir and every subdirectory with w, skipping generated
// output, and records the current content of each source found.
func (t *tracker) addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != dir && info.Name() == "generated" {
				return filepath.SkipDir
			}
			return errors.Wrapf(w.Add(path), "watch %s", path)
		}
		if strings.HasSuffix(path, Extension) {
			t.changed(path)
		}
		return nil
	})
}

// Watch calls build after every write or create of a source file under dirs
// until ctx is cancelled. Subdirectories are watched too, including ones
// created later. Missing directories are skipped.
func Watch(ctx context.Context, dirs []string, log *zap.SugaredLogger, build func() error) error {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer watcher.Close()

	seen := newTracker()
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			log.Debugw("skipping missing source directory", "dir", dir)
			continue
		}
		if err := seen.addTree(watcher, dir); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if info.Name() == "generated" {
						continue
					}
					if err := seen.addTree(watcher, event.Name); err != nil {
						log.Warnw("cannot watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if !strings.HasSuffix(event.Name, Extension) || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !seen.changed(event.Name) {
				continue
			}
			log.Infow("source changed", "file", event.Name)
			if err := build(); err != nil {
				log.Errorw("build failed", "error", err)
			} else {
				log.Info("rebuild complete")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnw("watcher error", "error", err)
		}
	}
}
