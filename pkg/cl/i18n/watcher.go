package i18n

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/srdpartners/site/pkg/cl/logger"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reloads a Bundle whenever a catalog in dir changes on disk.
type Watcher struct {
	bundle   *Bundle
	dir      string
	debounce time.Duration
	log      logger.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	// reloaded is signalled after each reload attempt; tests hook it.
	reloaded func(error)
}

// NewWatcher creates a watcher for the YAML catalogs under dir.
func NewWatcher(bundle *Bundle, dir string, log logger.Logger) *Watcher {
	return &Watcher{
		bundle:   bundle,
		dir:      dir,
		debounce: defaultDebounce,
		log:      log,
	}
}

// Start begins watching. It is a no-op if already started.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create locale watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("cannot watch %s: %w", w.dir, err)
	}

	w.watcher = fw
	w.done = make(chan struct{})
	w.wg.Add(1)
	go w.run(fw, w.done)

	w.log.Infof("Watching locales in %s", w.dir)
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop(_ context.Context) error {
	w.mu.Lock()
	fw := w.watcher
	if fw == nil {
		w.mu.Unlock()
		return nil
	}
	close(w.done)
	w.watcher = nil
	w.mu.Unlock()

	err := fw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run(fw *fsnotify.Watcher, done <-chan struct{}) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-done:
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !isCatalogEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Errorf("Locale watcher error: %v", err)

		case <-fire:
			fire = nil
			err := w.bundle.Reload(os.DirFS(w.dir), ".")
			if err != nil {
				w.log.Errorf("Cannot reload locales: %v", err)
			} else {
				w.log.Info("Locales reloaded")
			}
			if w.reloaded != nil {
				w.reloaded(err)
			}
		}
	}
}

func isCatalogEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(filepath.Base(event.Name), ".yaml") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
