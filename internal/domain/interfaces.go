package domain

import "context"

// Player issues queries against the music server.
// Implementations should wrap failures with ErrQuery.
//
//go:generate mockgen -destination=mocks/domain_mock.go -package=mocks github.com/genricoloni/mpdnd/internal/domain Player,Notifier,Resolver,Thumbnailer
type Player interface {
	// CurrentSong returns the current song, or nil when nothing is queued
	CurrentSong(ctx context.Context) (*Song, error)

	// Status returns the current player status
	Status(ctx context.Context) (Status, error)
}

// EventStream yields subsystem change events from the music server
type EventStream interface {
	// Events emits one value per changed subsystem.
	// The channel is closed when the stream ends.
	Events() <-chan Subsystem

	// Errors reports failures reading the stream.
	// Any value received here means the stream is broken.
	Errors() <-chan error

	// Close releases the underlying connection
	Close() error
}

// Resolver turns a snapshot into display-ready content
type Resolver interface {
	// Resolve derives the notification content for a snapshot with a current song
	Resolve(snap Snapshot) (NotificationContent, error)
}

// Notifier shows desktop notifications
type Notifier interface {
	// Show displays the notification.
	// Implementations should wrap failures with ErrDisplay.
	Show(ctx context.Context, content NotificationContent) error
}

// Thumbnailer prepares cover art for display
type Thumbnailer interface {
	// Enabled reports whether covers should be thumbnailed at all
	Enabled() bool

	// Thumbnail returns the path of a display-sized copy of the image
	Thumbnail(ctx context.Context, imagePath string) (string, error)
}
