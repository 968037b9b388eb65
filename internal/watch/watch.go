// Package watch tracks whether a single file exists, so the import command
// can be offered only while its source file is present.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// File watches the directory holding path and reports changes in the
// file's availability.
type File struct {
	path    string
	log     *zap.Logger
	watcher *fsnotify.Watcher
	present atomic.Bool
	changes chan bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	once    sync.Once
}

// New starts watching path. The parent directory is created if missing.
// log may be nil.
func New(path string, log *zap.Logger) (*File, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("new watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	f := &File{
		path:    abs,
		log:     log,
		watcher: w,
		changes: make(chan bool, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	f.present.Store(exists(abs))
	go f.run()
	log.Debug("watching file", zap.String("path", abs), zap.Bool("present", f.present.Load()))
	return f, nil
}

func (f *File) Path() string { return f.path }

// Available reports whether the file exists right now, as last observed.
func (f *File) Available() bool { return f.present.Load() }

// Changes yields the new availability each time it flips. Only the latest
// value is kept if the receiver falls behind. The channel is closed by Close.
func (f *File) Changes() <-chan bool { return f.changes }

// Close stops watching and waits for the event loop to exit.
func (f *File) Close() error {
	var err error
	f.once.Do(func() {
		close(f.stopCh)
		<-f.doneCh
		err = f.watcher.Close()
	})
	return err
}

func (f *File) run() {
	defer close(f.doneCh)
	defer close(f.changes)
	for {
		select {
		case <-f.stopCh:
			return
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			f.update(exists(f.path))
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.log.Warn("file watcher", zap.String("path", f.path), zap.Error(err))
		}
	}
}

func (f *File) update(now bool) {
	if f.present.Swap(now) == now {
		return
	}
	f.log.Debug("file availability changed", zap.String("path", f.path), zap.Bool("present", now))
	for {
		select {
		case f.changes <- now:
			return
		default:
		}
		select {
		case <-f.changes:
		default:
		}
	}
}

func exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
