package config

// defaults is the single source of built-in values. Every key a user may set
// is listed here so environment overrides can reach it.
var defaults = map[string]any{
	"mpd.host":                 "localhost",
	"mpd.port":                 6600,
	"mpd.password":             "",
	"mpd.library":              "",
	"mpd.cover-art-extensions": []string{"png", "jpg", "tiff", "bmp"},

	"notification.timeout":       3000,
	"notification.cover-art":     true,
	"notification.default-cover": "",
	"notification.icon-size":     0,
	"notification.thumbnail-dir": "",

	"notification.text.appname":       "mpd",
	"notification.text.unknown-title": "Unknown title",
	"notification.text.unknown-album": "Unknown album",
	"notification.text.playing":       "Playing",
	"notification.text.paused":        "Paused",
	"notification.text.stopped":       "Stopped",
	"notification.text.repeat":        "r",
	"notification.text.random":        "z",
	"notification.text.consume":       "c",
	"notification.text.flags-open":    "(",
	"notification.text.flags-close":   ")",
}
