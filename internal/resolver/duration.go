package resolver

import (
	"fmt"
	"math"
	"time"

	"github.com/genricoloni/mpdnd/internal/domain"
)

// maxSeconds is the largest second count a time.Duration can hold
const maxSeconds = float64(math.MaxInt64 / int64(time.Second))

// FormatDuration renders d as MM:SS. Minutes are not wrapped into hours
// and fractions of a second are dropped.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// timeSegment renders "elapsed / duration" when both are known
func timeSegment(status domain.Status) (string, error) {
	if status.Elapsed == nil || status.Duration == nil {
		return "", nil
	}

	elapsed, err := toDuration("elapsed", *status.Elapsed)
	if err != nil {
		return "", err
	}
	total, err := toDuration("duration", *status.Duration)
	if err != nil {
		return "", err
	}

	// elapsed past the total (server clock skew) is shown as reported
	return FormatDuration(elapsed) + " / " + FormatDuration(total), nil
}

func toDuration(field string, seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 || seconds > maxSeconds {
		return 0, fmt.Errorf("%w: %s of %v seconds cannot be represented", domain.ErrResolution, field, seconds)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
