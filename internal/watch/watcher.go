// Package watch drives the scan/rank pipeline from filesystem changes. It
// owns the serialization the engine itself does not provide: all refreshes
// of one session funnel through a debounce timer and a coalescing guard, so
// the session never sees overlapping calls.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"github.com/notedeck/taskscan/internal/events"
	"github.com/notedeck/taskscan/internal/filter"
	"github.com/notedeck/taskscan/internal/model"
	"github.com/notedeck/taskscan/internal/rank"
	"github.com/notedeck/taskscan/internal/scan"
	"github.com/notedeck/taskscan/internal/vault"
)

// NotifyFunc delivers a desktop notification.
type NotifyFunc func(title, message string) error

// Watcher watches a vault for markdown changes and keeps the ranked task set
// current.
type Watcher struct {
	vaultDir string
	config   model.Config
	store    *vault.FSStore
	session  *scan.Session
	ranker   *rank.Ranker
	bus      *events.Bus
	logger   *log.Logger
	logLevel scan.LogLevel

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Debounce state
	debounceMu    sync.Mutex
	debounceTimer *time.Timer

	// Coalescing: one reload in flight at a time, overlapping triggers fold
	// into a single trailing retry.
	flight  singleflight.Group
	pending atomic.Bool

	// reloadFn is what a refresh executes; replaced in tests.
	reloadFn func()

	// notifyFn is called when the top task changes. Nil disables
	// notifications; replaceable for testing.
	notifyFn NotifyFunc

	topMu   sync.Mutex
	lastTop *model.RankedTask
}

// New creates a Watcher over vaultDir. bus receives vault_changed,
// scan_completed and the ranker's top-task events.
func New(vaultDir string, cfg model.Config, bus *events.Bus, logger *log.Logger, logLevel scan.LogLevel) *Watcher {
	store := vault.NewFSStore(vaultDir, cfg.Vault.Origins)
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		vaultDir: vaultDir,
		config:   cfg,
		store:    store,
		session:  scan.NewSession(store, logger, logLevel),
		ranker:   rank.NewRanker(store, bus, logger, logLevel),
		bus:      bus,
		logger:   logger,
		logLevel: logLevel,
		ctx:      ctx,
		cancel:   cancel,
	}
	w.reloadFn = w.reload
	return w
}

// SetNotifyFunc wires the desktop notification hook.
func (w *Watcher) SetNotifyFunc(fn NotifyFunc) {
	w.notifyFn = fn
}

// Start begins watching and runs an initial refresh. It returns once the
// watcher is installed; event handling continues in the background until
// Stop.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w.watcher = watcher

	if err := w.addDirs(); err != nil {
		watcher.Close()
		return err
	}

	w.wg.Add(1)
	go w.eventLoop()

	w.Refresh()
	w.log(scan.LogLevelInfo, "watching vault dir=%s", w.vaultDir)
	return nil
}

// Stop shuts the watcher down and waits for in-flight work to finish.
func (w *Watcher) Stop() {
	w.cancel()
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()
	w.wg.Wait()
}

// addDirs registers the vault root and every subdirectory. fsnotify watches
// are not recursive.
func (w *Watcher) addDirs() error {
	return filepath.WalkDir(w.vaultDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != w.vaultDir {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log(scan.LogLevelError, "fsnotify error=%v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New subdirectories need their own watch.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.watcher.Add(event.Name)
			return
		}
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.log(scan.LogLevelDebug, "fsnotify event=%s file=%s", event.Op, event.Name)
	w.bus.Publish(events.EventVaultChanged, map[string]interface{}{
		"file": filepath.Base(event.Name),
		"op":   event.Op.String(),
	})
	w.debounceRefresh()
}

// debounceRefresh schedules a refresh after the configured quiet interval,
// restarting the timer on every new trigger.
func (w *Watcher) debounceRefresh() {
	debounceSec := w.config.Watcher.DebounceSec
	if debounceSec <= 0 {
		debounceSec = 0.5
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(time.Duration(debounceSec*float64(time.Second)), func() {
		if w.ctx.Err() != nil {
			return
		}
		w.Refresh()
	})
}

// Refresh re-runs the full scan/rank pipeline. Concurrent callers share one
// in-flight reload; triggers arriving during a reload coalesce into a single
// trailing rerun so no change is lost. The executing goroutine keeps reloading
// while the pending flag is set; joiners return once their trigger has been
// consumed by some run.
func (w *Watcher) Refresh() {
	w.pending.Store(true)
	for w.pending.Load() {
		_, _, _ = w.flight.Do("reload", func() (any, error) {
			for w.pending.CompareAndSwap(true, false) {
				w.reloadFn()
			}
			return nil, nil
		})
	}
}

// reload rebuilds the session, drains every batch, and re-ranks.
func (w *Watcher) reload() {
	scope := vault.Scope{CurrentPeriodOnly: w.config.Scan.CurrentPeriod}
	w.session.Initialize(scope)

	pred := filter.Compile(w.config.FilterSet())
	tasks, err := w.session.CollectAll(w.config.Scan.BatchSize, pred)
	if err != nil {
		w.log(scan.LogLevelError, "reload failed: %v", err)
		return
	}

	w.bus.Publish(events.EventScanCompleted, map[string]interface{}{
		"documents": w.session.DocumentCount(),
		"tasks":     len(tasks),
	})

	res := w.ranker.Rank(tasks, w.config.Tiers())
	w.log(scan.LogLevelInfo, "reload complete documents=%d tasks=%d top=%v",
		w.session.DocumentCount(), len(tasks), res.Top != nil)
	w.maybeNotify(res.Top)
}

// maybeNotify sends a desktop notification when the top task differs from
// the one announced last.
func (w *Watcher) maybeNotify(top *model.RankedTask) {
	w.topMu.Lock()
	changed := !sameTask(w.lastTop, top)
	w.lastTop = top
	w.topMu.Unlock()

	if w.notifyFn == nil || !changed || top == nil {
		return
	}
	if err := w.notifyFn("taskscan", top.RawLine); err != nil {
		w.log(scan.LogLevelWarn, "notify failed: %v", err)
	}
}

// TopTask returns the top task from the most recent reload, or nil.
func (w *Watcher) TopTask() *model.RankedTask {
	w.topMu.Lock()
	defer w.topMu.Unlock()
	return w.lastTop
}

func sameTask(a, b *model.RankedTask) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.DocumentID == b.DocumentID && a.LineNumber == b.LineNumber && a.Status == b.Status
}

func (w *Watcher) log(level scan.LogLevel, format string, args ...any) {
	if level < w.logLevel || w.logger == nil {
		return
	}
	w.logger.Printf("["+level.String()+"] "+format, args...)
}
