package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/deflex-graph/pkg/finder"
	"github.com/ritzau/deflex-graph/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeConfig ChangeType = iota
	ChangeTypeTable
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeConfig:
		return "config"
	case ChangeTypeTable:
		return "table"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(t))
	}
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// batchDelay groups the events of a single save into one ChangeEvent
const batchDelay = 100 * time.Millisecond

// FileWatcher watches the table directory and the config file of a scenario
type FileWatcher struct {
	watcher    *fsnotify.Watcher
	input      string
	configFile string
	events     chan ChangeEvent
	closeOnce  sync.Once
}

// NewFileWatcher creates a new file system watcher for a table directory.
// configFile may be empty.
func NewFileWatcher(input, configFile string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		input:   input,
		events:  make(chan ChangeEvent, 100),
	}
	if configFile != "" {
		if abs, err := filepath.Abs(configFile); err == nil {
			fw.configFile = abs
		}
	}

	return fw, nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watchTableDirs(); err != nil {
		fw.watcher.Close()
		return err
	}

	// The directory is watched since editors replace files on save
	if fw.configFile != "" {
		if _, err := os.Stat(fw.configFile); err == nil {
			if err := fw.watcher.Add(filepath.Dir(fw.configFile)); err != nil {
				logging.Warn("failed to watch config file", "path", fw.configFile, "error", err)
			}
		}
	}

	logging.Info("started watching tables", "path", fw.input)

	go fw.processEvents(ctx)

	return nil
}

// watchTableDirs watches the input directory and all its visible subdirectories
func (fw *FileWatcher) watchTableDirs() error {
	count := 0
	err := filepath.WalkDir(fw.input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != fw.input && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			logging.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", fw.input, err)
	}

	logging.Debug("monitoring table directories", "count", count)
	return nil
}

// classify maps a file system event to the change it stands for
func (fw *FileWatcher) classify(event fsnotify.Event) (ChangeType, bool) {
	if event.Op == fsnotify.Chmod {
		return 0, false
	}
	if fw.configFile != "" {
		if abs, err := filepath.Abs(event.Name); err == nil && abs == fw.configFile {
			return ChangeTypeConfig, true
		}
	}
	if finder.IsTableFile(event.Name) {
		return ChangeTypeTable, true
	}
	return 0, false
}

// processEvents processes file system events and batches them by type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer fw.closeEvents()

	pending := make(map[ChangeType][]string)

	flushTimer := time.NewTimer(batchDelay)
	flushTimer.Stop()

	flush := func() {
		for _, t := range []ChangeType{ChangeTypeConfig, ChangeTypeTable} {
			if len(pending[t]) > 0 {
				fw.events <- ChangeEvent{Type: t, Paths: pending[t], Timestamp: time.Now()}
			}
		}
		pending = make(map[ChangeType][]string)
	}

	for {
		select {
		case <-ctx.Done():
			fw.watcher.Close()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// New subdirectories of the input are watched as well
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.watcher.Add(event.Name); err != nil {
						logging.Warn("failed to watch directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			if t, ok := fw.classify(event); ok {
				logging.Trace("file changed", "path", event.Name, "type", t.String(), "op", event.Op.String())
				pending[t] = append(pending[t], event.Name)
				flushTimer.Reset(batchDelay)
			}

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) closeEvents() {
	fw.closeOnce.Do(func() { close(fw.events) })
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher; Events is closed once pending work is done
func (fw *FileWatcher) Stop() error {
	return fw.watcher.Close()
}
