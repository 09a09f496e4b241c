package resolver

import (
	"fmt"
	"strings"

	"github.com/genricoloni/mpdnd/internal/config"
	"github.com/genricoloni/mpdnd/internal/domain"
	"github.com/spf13/afero"
)

// markupEscaper escapes the characters notification servers treat as markup
var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Resolver derives notification content from a playback snapshot.
// Apart from cover lookups on fs it has no side effects.
type Resolver struct {
	cfg *config.Config
	fs  afero.Fs
}

// NewResolver creates a resolver reading cover art from fs
func NewResolver(cfg *config.Config, fs afero.Fs) *Resolver {
	return &Resolver{cfg: cfg, fs: fs}
}

// Resolve builds the notification for a snapshot that has a current song.
// Malformed durations yield an error wrapping domain.ErrResolution.
func (r *Resolver) Resolve(snap domain.Snapshot) (domain.NotificationContent, error) {
	if snap.Song == nil {
		return domain.NotificationContent{}, fmt.Errorf("%w: snapshot has no current song", domain.ErrResolution)
	}

	text := r.cfg.Notification.Text

	state, err := stateWord(text, snap.Status.State)
	if err != nil {
		return domain.NotificationContent{}, err
	}

	times, err := timeSegment(snap.Status)
	if err != nil {
		return domain.NotificationContent{}, err
	}

	title := orDefault(snap.Song.Title, text.UnknownTitle)
	album := orDefault(snap.Song.Album, text.UnknownAlbum)

	return domain.NotificationContent{
		AppName: text.AppName,
		Summary: state + " " + flagsSegment(text, snap.Status) + title,
		Body:    "<i>" + markupEscaper.Replace(album) + "</i>\n" + times,
		Timeout: int32(r.cfg.Notification.Timeout),
		Icon:    r.icon(snap.Song),
	}, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func stateWord(text config.TextConfig, state domain.PlayState) (string, error) {
	switch state {
	case domain.StatePlaying:
		return text.Playing, nil
	case domain.StatePaused:
		return text.Paused, nil
	case domain.StateStopped:
		return text.Stopped, nil
	}
	return "", fmt.Errorf("%w: unknown play state %q", domain.ErrResolution, state)
}

// flagsSegment renders the active playback modes, or nothing when none is set.
// A non-empty segment carries its own trailing space.
func flagsSegment(text config.TextConfig, status domain.Status) string {
	if !status.Repeat && !status.Random && !status.Consume {
		return ""
	}

	var b strings.Builder
	b.WriteString(text.FlagsOpen)
	if status.Repeat {
		b.WriteString(text.Repeat)
	}
	if status.Random {
		b.WriteString(text.Random)
	}
	if status.Consume {
		b.WriteString(text.Consume)
	}
	b.WriteString(text.FlagsClose)
	b.WriteByte(' ')
	return b.String()
}
