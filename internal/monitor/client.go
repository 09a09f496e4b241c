package monitor

import (
	"github.com/fhs/gompd/v2/mpd"
)

// MPDClient defines the MPD commands needed to build a snapshot.
// This abstraction allows us to mock MPD interactions in tests.
//
//go:generate mockgen -destination=mocks/mpd_client_mock.go -package=mocks github.com/genricoloni/mpdnd/internal/monitor MPDClient
type MPDClient interface {
	// CurrentSong returns the tags of the current song, empty when nothing is queued
	CurrentSong() (mpd.Attrs, error)

	// Status returns the player status fields
	Status() (mpd.Attrs, error)

	// Close closes the connection
	Close() error
}

// Dialer opens a command connection to MPD
type Dialer func(network, addr, password string) (MPDClient, error)

// DialMPD is the real Dialer using gompd
func DialMPD(network, addr, password string) (MPDClient, error) {
	var (
		c   *mpd.Client
		err error
	)
	if password != "" {
		c, err = mpd.DialAuthenticated(network, addr, password)
	} else {
		c, err = mpd.Dial(network, addr)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
