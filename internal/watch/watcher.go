package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cyra/ngxlog/internal/config"
	"github.com/cyra/ngxlog/internal/parser"
)

// Logger defines the logging interface needed by the watcher.
type Logger interface {
	Infof(string, ...any)
	Errorf(string, ...any)
}

// Watcher reruns a job whenever an input log file or the config file changes.
// Each rerun is a full pass; nothing is tailed.
type Watcher struct {
	Dir        string
	ConfigPath string // optional
	Debounce   time.Duration
	Store      *config.Store
	Logger     Logger

	// Reload loads the config file. Defaults to config.Load.
	Reload func(path string) (*config.Config, error)
	// OnChange runs after the debounce window with the current config.
	OnChange func(ctx context.Context, cfg *config.Config)
}

// Run blocks until ctx is done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch directories, not files: the logs may not exist yet and editors replace files on save.
	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}
	inputs := make(map[string]struct{}, len(parser.Kinds))
	for _, k := range parser.Kinds {
		inputs[filepath.Clean(filepath.Join(w.Dir, k.FileName()))] = struct{}{}
	}

	var cfgPath string
	if w.ConfigPath != "" {
		cfgPath = filepath.Clean(w.ConfigPath)
		if err := fw.Add(filepath.Dir(cfgPath)); err != nil {
			return fmt.Errorf("watch %s: %w", cfgPath, err)
		}
	}

	reload := w.Reload
	if reload == nil {
		reload = config.Load
	}

	// Reset and Stop never leave a stale tick on C (go1.23 timers).
	debounce := time.NewTimer(w.Debounce)
	debounce.Stop()
	cfgChanged := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Clean(ev.Name)
			switch {
			case name == cfgPath:
				cfgChanged = true
			case isInput(inputs, name):
			default:
				continue
			}
			w.Logger.Infof("change detected: %s", ev.Name)
			debounce.Reset(w.Debounce)
		case <-debounce.C:
			if cfgChanged {
				cfgChanged = false
				cfg, err := reload(cfgPath)
				if err != nil {
					w.Logger.Errorf("failed to reload config, keeping previous: %v", err)
				} else {
					w.Store.Update(cfg)
					w.Logger.Infof("config reloaded successfully")
				}
			}
			w.OnChange(ctx, w.Store.Current())
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Errorf("watcher error: %v", err)
		}
	}
}

func isInput(inputs map[string]struct{}, name string) bool {
	_, ok := inputs[name]
	return ok
}
