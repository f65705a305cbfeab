package props

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/avolkov/lightshal/internal/logging"
)

var logger = logging.New("props")

const reloadDebounce = 250 * time.Millisecond

// File is a Store backed by a flat YAML mapping on disk. The file is
// watched for changes and reloaded, so render-time reads always see
// the current value without reopening the file per read.
type File struct {
	path string

	mu     sync.RWMutex
	values map[string]string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// OpenFile loads path and starts watching it for changes. The watch is
// registered on the parent directory so atomic replace (write to temp,
// rename over) is picked up as well.
func OpenFile(path string) (*File, error) {
	f := &File{
		path: path,
		done: make(chan struct{}),
	}
	if err := f.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	f.watcher = watcher

	go f.watch()
	return f, nil
}

// Close stops the file watcher.
func (f *File) Close() error {
	close(f.done)
	return f.watcher.Close()
}

func (f *File) GetInt(key string, def int) int {
	f.mu.RLock()
	raw := f.values[key]
	f.mu.RUnlock()
	return ParseValue(raw, def)
}

func (f *File) GetBool(key string, def bool) bool {
	d := 0
	if def {
		d = 1
	}
	return f.GetInt(key, d) != 0
}

func (f *File) watch() {
	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-f.done:
			return
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(f.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Editors and property pushers tend to fire bursts of
			// events for a single logical update.
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(reloadDebounce, func() {
				if err := f.reload(); err != nil {
					logger.With(zap.String("path", f.path), zap.Error(err)).
						Warn("property reload failed, keeping previous values")
				}
			})
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			logger.With(zap.String("path", f.path), zap.Error(err)).Warn("property watch error")
		}
	}
}

func (f *File) reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", f.path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		values[k] = fmt.Sprint(v)
	}

	f.mu.Lock()
	f.values = values
	f.mu.Unlock()

	logger.With(zap.String("path", f.path), zap.Int("keys", len(values))).Debug("properties loaded")
	return nil
}
