package domain

// PlayState represents the current state of the MPD player
type PlayState string

const (
	// StatePlaying indicates a song is currently playing
	StatePlaying PlayState = "play"
	// StatePaused indicates playback is paused
	StatePaused PlayState = "pause"
	// StateStopped indicates playback is stopped
	StateStopped PlayState = "stop"
)

// Subsystem is an MPD idle subsystem name reported by the change stream
type Subsystem string

const (
	SubsystemPlayer   Subsystem = "player"
	SubsystemPlaylist Subsystem = "playlist" // the queue
	SubsystemMixer    Subsystem = "mixer"
	SubsystemOptions  Subsystem = "options"
	SubsystemDatabase Subsystem = "database"
	SubsystemUpdate   Subsystem = "update"
)

// TriggersNotification reports whether a change in this subsystem can alter
// what is playing or how it is playing.
func (s Subsystem) TriggersNotification() bool {
	return s == SubsystemPlayer || s == SubsystemPlaylist
}

// Song is the currently queued song as reported by MPD
type Song struct {
	// Title tag, empty when the file carries none
	Title string
	// Album tag, empty when the file carries none
	Album string
	// File is the song URI, relative to the music library for local files
	File string
}

// Status holds the player status fields used for notifications
type Status struct {
	State   PlayState
	Repeat  bool
	Random  bool
	Consume bool
	// Elapsed and Duration are in seconds; nil when the server did not report them
	Elapsed  *float64
	Duration *float64
}

// Snapshot is one point-in-time read of the current song and player status
type Snapshot struct {
	Song   *Song
	Status Status
}

// NotificationContent is the fully resolved payload handed to the display
type NotificationContent struct {
	AppName string
	Summary string
	Body    string
	// Timeout in milliseconds (-1 server default, 0 never expires)
	Timeout int32
	// Icon is a path to an image file; empty means no icon
	Icon string
}
