package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/genricoloni/mpdnd/internal/domain"
	"go.uber.org/zap"
)

var errNoStream = errors.New("no event stream")

// Engine orchestrates the notification pipeline.
// It listens to change events, queries the player, resolves the snapshot and shows it.
type Engine struct {
	logger   *zap.Logger
	player   domain.Player
	stream   domain.EventStream
	resolver domain.Resolver
	thumbs   domain.Thumbnailer
	notifier domain.Notifier

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewEngine creates a new orchestration engine.
// stream may be nil when only NotifyOnce is used.
func NewEngine(
	logger *zap.Logger,
	player domain.Player,
	stream domain.EventStream,
	res domain.Resolver,
	thumbs domain.Thumbnailer,
	notifier domain.Notifier,
) *Engine {
	return &Engine{
		logger:   logger,
		player:   player,
		stream:   stream,
		resolver: res,
		thumbs:   thumbs,
		notifier: notifier,
		done:     make(chan struct{}),
	}
}

// Start launches the watch loop in a goroutine.
// It returns immediately (non-blocking). The loop outlives ctx; use Stop.
func (e *Engine) Start(_ context.Context) error {
	e.logger.Info("Engine starting...")

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	go func() {
		defer close(e.done)
		e.err = e.Run(ctx)
	}()
	return nil
}

// Stop cancels the loop and waits for the current cycle to finish
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")
	if e.cancel == nil {
		return nil
	}
	e.cancel()

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the loop started by Start has returned
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Err returns why the loop ended, or nil while it runs or after a clean stop
func (e *Engine) Err() error {
	select {
	case <-e.done:
		return e.err
	default:
		return nil
	}
}

// Run blocks reading change events until ctx is canceled (nil) or the
// event stream breaks (domain.ErrStreamTerminated).
func (e *Engine) Run(ctx context.Context) error {
	if e.stream == nil {
		return fmt.Errorf("%w: %w", domain.ErrStreamTerminated, errNoStream)
	}

	events := e.stream.Events()
	errs := e.stream.Errors()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return nil

		case err, ok := <-errs:
			if !ok {
				// A closed error channel alone says nothing; the events channel decides
				errs = nil
				continue
			}
			return fmt.Errorf("%w: %w", domain.ErrStreamTerminated, err)

		case sub, ok := <-events:
			if !ok {
				return fmt.Errorf("%w: event channel closed", domain.ErrStreamTerminated)
			}
			if !sub.TriggersNotification() {
				e.logger.Debug("Ignoring change event", zap.String("subsystem", string(sub)))
				continue
			}

			e.logger.Debug("Change event received", zap.String("subsystem", string(sub)))
			if err := e.cycle(ctx); err != nil {
				if ctx.Err() != nil {
					e.logger.Info("Engine loop stopped")
					return nil
				}
				e.logger.Error("Failed to notify", zap.String("subsystem", string(sub)), zap.Error(err))
			}
		}
	}
}

// NotifyOnce runs a single cycle against the current state
func (e *Engine) NotifyOnce(ctx context.Context) error {
	return e.cycle(ctx)
}

// cycle handles the complete notification pipeline for the current state
func (e *Engine) cycle(ctx context.Context) error {
	// 1. Query song
	song, err := e.player.CurrentSong(ctx)
	if err != nil {
		return err
	}
	if song == nil {
		e.logger.Debug("No current song, nothing to notify")
		return nil
	}

	// 2. Query status
	status, err := e.player.Status(ctx)
	if err != nil {
		return err
	}

	// 3. Resolve content
	content, err := e.resolver.Resolve(domain.Snapshot{Song: song, Status: status})
	if err != nil {
		return err
	}
	content.Icon = e.thumbnail(ctx, content.Icon)

	// 4. Show
	if err := e.notifier.Show(ctx, content); err != nil {
		return err
	}

	e.logger.Info("Notification sent",
		zap.String("file", song.File),
		zap.String("state", string(status.State)),
		zap.String("summary", content.Summary))
	return nil
}

// thumbnail swaps the cover for a scaled copy when enabled, keeping the
// original on failure
func (e *Engine) thumbnail(ctx context.Context, icon string) string {
	if icon == "" || e.thumbs == nil || !e.thumbs.Enabled() {
		return icon
	}

	thumb, err := e.thumbs.Thumbnail(ctx, icon)
	if err != nil {
		e.logger.Warn("Failed to create thumbnail, using full-size cover",
			zap.String("cover", icon),
			zap.Error(err))
		return icon
	}
	return thumb
}
