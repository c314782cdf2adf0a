package session

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/dataset"
	"github.com/02loveslollipop/educacion-basica-viewer/services/api/db"
)

// Source produces a complete dataset.
type Source interface {
	Load(ctx context.Context) (*dataset.Table, error)
}

// FileSource reads a local CSV file.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) (*dataset.Table, error) {
	return dataset.LoadFile(s.Path)
}

// URLSource downloads a CSV file.
type URLSource struct {
	URL    string
	Client *http.Client
}

func (s URLSource) Load(ctx context.Context) (*dataset.Table, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	return dataset.Fetch(ctx, client, s.URL)
}

// SQLSource reads a database table.
type SQLSource struct {
	Store *db.Store
	Table string
}

func (s SQLSource) Load(ctx context.Context) (*dataset.Table, error) {
	return s.Store.LoadTable(ctx, s.Table)
}

// ReloadDebounce is how long the watched file must stay quiet before it is reloaded.
const ReloadDebounce = 250 * time.Millisecond

// LoadObserver is told about every load attempt.
type LoadObserver func(records int, err error)

// Snapshot is one immutable loaded dataset.
type Snapshot struct {
	Table    *dataset.Table
	LoadedAt time.Time
}

// Holder keeps the current snapshot. Readers take a snapshot once per request and use it
// throughout; Reload swaps in a new snapshot without touching the old one.
type Holder struct {
	source  Source
	logger  *zap.Logger
	observe LoadObserver
	current atomic.Pointer[Snapshot]
}

// Open performs the initial load. There is no fallback dataset: a failure here is returned.
func Open(ctx context.Context, source Source, logger *zap.Logger, observe LoadObserver) (*Holder, error) {
	if observe == nil {
		observe = func(int, error) {}
	}
	h := &Holder{source: source, logger: logger, observe: observe}
	if err := h.Reload(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// Snapshot returns the current snapshot.
func (h *Holder) Snapshot() *Snapshot {
	return h.current.Load()
}

// Dataset returns the current table.
func (h *Holder) Dataset() *dataset.Table {
	return h.current.Load().Table
}

// Reload loads the source again. On failure the current snapshot is kept.
func (h *Holder) Reload(ctx context.Context) error {
	t, err := h.source.Load(ctx)
	if err != nil {
		h.observe(0, err)
		return err
	}
	h.current.Store(&Snapshot{Table: t, LoadedAt: time.Now().UTC()})
	h.observe(t.Len(), nil)
	h.logger.Info("dataset loaded", zap.Int("records", t.Len()), zap.Strings("columns", t.Columns))
	return nil
}

// Watch reloads the dataset after the file at path is written, created or renamed into place
// and then stays quiet for ReloadDebounce, so a rewrite in progress is never loaded half done.
// It watches the parent directory so editors that replace the file are handled.
// Watch returns once the watcher is registered; events are processed until ctx is done.
func (h *Holder) Watch(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("watch: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		settle := time.NewTimer(ReloadDebounce)
		settle.Stop()
		defer settle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != abs {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				settle.Reset(ReloadDebounce)
			case <-settle.C:
				if err := h.Reload(ctx); err != nil {
					h.logger.Warn("dataset reload failed, keeping previous snapshot",
						zap.String("path", abs), zap.Error(err))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				h.logger.Warn("dataset watcher error", zap.Error(err))
			}
		}
	}()

	h.logger.Info("watching dataset", zap.String("path", abs))
	return nil
}
