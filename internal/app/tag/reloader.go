package tag

import (
	"context"
	"path/filepath"
	"time"

	"github.com/airenas/nercrf/internal/pkg/checkpoint"
	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/cenkalti/backoff"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

//Loader loads the latest model from dir
type Loader interface {
	Load(dir string) error
}

type backoffProvider interface {
	Get() backoff.BackOff
}

type expBackOffProvider struct {
}

func (bp *expBackOffProvider) Get() backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     backoff.DefaultInitialInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         backoff.DefaultMaxInterval,
		MaxElapsedTime:      45 * time.Second,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}

//Reloader loads the model again when the checkpoint index in dir changes
type Reloader struct {
	dir     string
	loader  Loader
	bp      backoffProvider
	watcher *fsnotify.Watcher
}

//NewReloader creates the dir watcher
func NewReloader(dir string, loader Loader) (*Reloader, error) {
	return newReloader(dir, loader, &expBackOffProvider{})
}

func newReloader(dir string, loader Loader, bp backoffProvider) (*Reloader, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "Can't init watcher")
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, errors.Wrap(err, "Can't watch "+dir)
	}
	return &Reloader{dir: dir, loader: loader, bp: bp, watcher: w}, nil
}

//Reload loads the model retrying with backoff
func (r *Reloader) Reload() error {
	op := func() error {
		err := r.loader.Load(r.dir)
		if err != nil {
			cmdapp.Log.Warn(err)
		}
		return err
	}
	return backoff.Retry(op, r.bp.Get())
}

//Start watches the dir until ctx is done, the returned channel is closed on exit
func (r *Reloader) Start(ctx context.Context) <-chan struct{} {
	res := make(chan struct{})
	go func() {
		defer close(res)
		defer r.watcher.Close()
		for {
			select {
			case <-ctx.Done():
				cmdapp.Log.Infof("Stopped watching %s", r.dir)
				return
			case e, ok := <-r.watcher.Events:
				if !ok {
					return
				}
				if !isIndexChange(e) {
					continue
				}
				cmdapp.Log.Infof("Checkpoint index changed: %s", e)
				cmdapp.LogIf(errors.Wrap(r.Reload(), "Can't reload model"))
			case err, ok := <-r.watcher.Errors:
				if !ok {
					return
				}
				cmdapp.Log.Error(errors.Wrap(err, "Watcher error"))
			}
		}
	}()
	return res
}

func isIndexChange(e fsnotify.Event) bool {
	return filepath.Base(e.Name) == checkpoint.IndexFile && e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}
