package monitor

import (
	"fmt"
	"io"
	"sync"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/genricoloni/mpdnd/internal/config"
	"github.com/genricoloni/mpdnd/internal/domain"
	"go.uber.org/zap"
)

// Watcher streams MPD idle events over a dedicated connection
type Watcher struct {
	logger    *zap.Logger
	events    chan domain.Subsystem
	errors    <-chan error
	closer    io.Closer
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewWatcher opens the idle connection. All subsystems are watched; the
// consumer decides which ones matter.
func NewWatcher(logger *zap.Logger, cfg *config.Config) (*Watcher, error) {
	w, err := mpd.NewWatcher(cfg.MPD.Network(), cfg.MPD.Address(), cfg.MPD.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: opening MPD idle connection to %s: %w", domain.ErrConnection, cfg.MPD.Address(), err)
	}

	logger.Info("MPD watcher started", zap.String("address", cfg.MPD.Address()))
	return newWatcher(logger, w.Event, w.Error, w), nil
}

func newWatcher(logger *zap.Logger, names <-chan string, errs <-chan error, closer io.Closer) *Watcher {
	w := &Watcher{
		logger: logger,
		events: make(chan domain.Subsystem),
		errors: errs,
		closer: closer,
		done:   make(chan struct{}),
	}

	w.wg.Add(1)
	go w.forward(names)

	return w
}

// forward converts subsystem names without buffering, so events raised while
// a consumer is busy wait upstream
func (w *Watcher) forward(names <-chan string) {
	defer w.wg.Done()
	defer close(w.events)

	for {
		select {
		case <-w.done:
			return
		case name, ok := <-names:
			if !ok {
				w.logger.Debug("MPD idle event channel closed")
				return
			}
			select {
			case w.events <- domain.Subsystem(name):
			case <-w.done:
				return
			}
		}
	}
}

// Events returns subsystem change events; closed when the stream ends
func (w *Watcher) Events() <-chan domain.Subsystem {
	return w.events
}

// Errors returns stream failures reported by the idle connection
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops forwarding and closes the idle connection
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
		err = w.closer.Close()
		w.logger.Info("MPD watcher stopped")
	})
	return err
}
