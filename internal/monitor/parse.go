package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/genricoloni/mpdnd/internal/domain"
)

// parseSong converts currentsong tags to the domain model.
// MPD answers currentsong with no fields when nothing is queued.
func parseSong(attrs mpd.Attrs) *domain.Song {
	file, ok := attrs["file"]
	if !ok {
		return nil
	}
	return &domain.Song{
		Title: attrs["Title"],
		Album: attrs["Album"],
		File:  file,
	}
}

// parseStatus converts status fields to the domain model
func parseStatus(attrs mpd.Attrs) (domain.Status, error) {
	var status domain.Status

	switch state := domain.PlayState(attrs["state"]); state {
	case domain.StatePlaying, domain.StatePaused, domain.StateStopped:
		status.State = state
	default:
		return domain.Status{}, fmt.Errorf("unknown play state %q", attrs["state"])
	}

	status.Repeat = flag(attrs["repeat"])
	status.Random = flag(attrs["random"])
	// consume may also be "oneshot"
	status.Consume = flag(attrs["consume"])

	var err error
	if status.Elapsed, err = optionalSeconds(attrs, "elapsed"); err != nil {
		return domain.Status{}, err
	}
	if status.Duration, err = optionalSeconds(attrs, "duration"); err != nil {
		return domain.Status{}, err
	}

	// Servers older than 0.20 only report "time" as elapsed:total
	if status.Elapsed == nil && status.Duration == nil {
		if err := parseLegacyTime(attrs["time"], &status); err != nil {
			return domain.Status{}, err
		}
	}

	return status, nil
}

func flag(value string) bool {
	return value != "" && value != "0"
}

func optionalSeconds(attrs mpd.Attrs, key string) (*float64, error) {
	raw, ok := attrs[key]
	if !ok {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return &value, nil
}

func parseLegacyTime(raw string, status *domain.Status) error {
	if raw == "" {
		return nil
	}
	elapsedRaw, totalRaw, ok := strings.Cut(raw, ":")
	if !ok {
		return fmt.Errorf("invalid time %q", raw)
	}

	elapsed, err := strconv.ParseFloat(elapsedRaw, 64)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", raw, err)
	}
	total, err := strconv.ParseFloat(totalRaw, 64)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", raw, err)
	}

	status.Elapsed = &elapsed
	status.Duration = &total
	return nil
}
