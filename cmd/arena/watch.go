package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/howeyc/fsnotify"
)

// watch reruns the tournament whenever a warrior is added, changed or
// removed. A run still in progress when the directory changes is
// cancelled first.
func (a *App) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Watch(a.config.Dir); err != nil {
		return err
	}

	var cancel context.CancelFunc
	var done chan struct{}

	stop := func() {
		if cancel != nil {
			cancel()
			<-done
			cancel = nil
		}
	}
	defer stop()

	run := time.After(1 * time.Millisecond)
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-run:
			stop()

			var runCtx context.Context
			runCtx, cancel = context.WithCancel(ctx)
			done = make(chan struct{})

			go func(ctx context.Context, done chan struct{}) {
				defer close(done)
				a.log.WithField("dir", a.config.Dir).Info("running tournament")
				if err := a.runOnce(ctx); err != nil {
					a.log.WithError(err).Error("tournament failed")
				}
			}(runCtx, done)

		case ev := <-watcher.Event:
			if !ev.IsAttrib() && !hidden(ev.Name) {
				run = time.After(100 * time.Millisecond)
			}

		case err := <-watcher.Error:
			a.log.WithError(err).Warn("watcher")
		}
	}
}

func hidden(name string) bool {
	return strings.HasPrefix(filepath.Base(name), ".")
}
