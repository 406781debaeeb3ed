package program

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

// Watcher keeps a Program in sync with the files under its root directory.
type Watcher struct {
	program  *Program
	fs       *fsnotify.Watcher
	onChange func(paths []string)
	log      commonlog.Logger
}

// NewWatcher watches every directory under the program root that a scan
// would enter. onChange, if not nil, runs after each applied change.
func NewWatcher(p *Program, onChange func(paths []string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		program:  p,
		fs:       fw,
		onChange: onChange,
		log:      commonlog.GetLogger("sharpen.watch"),
	}
	if err := w.addTree(p.RootDir()); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.program.RootDir() && w.program.Config().SkipDir(w.program.Rel(path), d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run applies file events to the program until ctx is done, then closes
// the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Errorf("%s", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.log.Errorf("%s", err)
			}
			return
		}
	}
	if !w.program.Config().Includes(w.program.Rel(ev.Name)) {
		return
	}

	var err error
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		err = w.program.RemoveFile(ctx, ev.Name)
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		err = w.program.ScanFile(ctx, ev.Name)
	default:
		return
	}
	if err != nil {
		w.log.Errorf("%s: %s", ev.Name, err)
		return
	}
	w.log.Infof("%s %s", ev.Op, ev.Name)
	if w.onChange != nil {
		w.onChange([]string{ev.Name})
	}
}
