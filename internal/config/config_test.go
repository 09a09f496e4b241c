package config

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/genricoloni/mpdnd/internal/domain"
	"github.com/spf13/afero"
)

const configPath = "/home/user/.config/mpdnd/config.toml"

func writeConfig(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoader_Load(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		content       string
		env           map[string]string
		expectedError string
		check         func(*testing.T, *Config)
	}{
		{
			name: "Minimal File Uses Defaults",
			content: `
[mpd]
library = "/srv/music"
`,
			check: func(t *testing.T, c *Config) {
				if c.MPD.Address() != "localhost:6600" {
					t.Errorf("Address: expected localhost:6600, got %s", c.MPD.Address())
				}
				if !slices.Equal(c.MPD.CoverArtExtensions, []string{"png", "jpg", "tiff", "bmp"}) {
					t.Errorf("Extensions: got %v", c.MPD.CoverArtExtensions)
				}
				if c.Notification.Timeout != 3000 {
					t.Errorf("Timeout: expected 3000, got %d", c.Notification.Timeout)
				}
				if !c.Notification.CoverArt {
					t.Error("CoverArt: expected enabled by default")
				}
				text := c.Notification.Text
				if text.AppName != "mpd" || text.UnknownTitle != "Unknown title" || text.UnknownAlbum != "Unknown album" {
					t.Errorf("Text defaults wrong: %+v", text)
				}
				if text.Playing != "Playing" || text.Paused != "Paused" || text.Stopped != "Stopped" {
					t.Errorf("State words wrong: %+v", text)
				}
				if text.Repeat != "r" || text.Random != "z" || text.Consume != "c" {
					t.Errorf("Glyphs wrong: %+v", text)
				}
				if text.FlagsOpen != "(" || text.FlagsClose != ")" {
					t.Errorf("Delimiters wrong: %+v", text)
				}
			},
		},
		{
			name: "Full File Overrides Everything",
			content: `
[mpd]
host = "music.lan"
port = 6601
password = "secret"
library = "/srv/music"
cover-art-extensions = [".jpg", "webp"]

[notification]
timeout = 5000
cover-art = true
default-cover = "/usr/share/icons/mpd.png"
icon-size = 128
thumbnail-dir = "/tmp/thumbs"

[notification.text]
appname = "music"
unknown-title = "?"
unknown-album = "??"
playing = "▶"
paused = "⏸"
stopped = "⏹"
repeat = "R"
random = "Z"
consume = "C"
flags-open = "["
flags-close = "]"
`,
			check: func(t *testing.T, c *Config) {
				if c.MPD.Address() != "music.lan:6601" {
					t.Errorf("Address: got %s", c.MPD.Address())
				}
				if c.MPD.Password != "secret" {
					t.Errorf("Password: got %q", c.MPD.Password)
				}
				if !slices.Equal(c.MPD.CoverArtExtensions, []string{"jpg", "webp"}) {
					t.Errorf("Extensions: got %v", c.MPD.CoverArtExtensions)
				}
				if c.Notification.Timeout != 5000 || c.Notification.IconSize != 128 {
					t.Errorf("Notification: got %+v", c.Notification)
				}
				if c.Notification.DefaultCover != "/usr/share/icons/mpd.png" {
					t.Errorf("DefaultCover: got %s", c.Notification.DefaultCover)
				}
				if c.Notification.ThumbnailDir != "/tmp/thumbs" {
					t.Errorf("ThumbnailDir: got %s", c.Notification.ThumbnailDir)
				}
				text := c.Notification.Text
				if text.AppName != "music" || text.Playing != "▶" || text.FlagsOpen != "[" || text.Consume != "C" {
					t.Errorf("Text: got %+v", text)
				}
			},
		},
		{
			name: "Partial Text Block Keeps Other Defaults",
			content: `
[mpd]
library = "/srv/music"

[notification.text]
playing = "Now playing"
`,
			check: func(t *testing.T, c *Config) {
				if c.Notification.Text.Playing != "Now playing" {
					t.Errorf("Playing: got %s", c.Notification.Text.Playing)
				}
				if c.Notification.Text.Paused != "Paused" {
					t.Errorf("Paused: expected default, got %s", c.Notification.Text.Paused)
				}
				if c.Notification.Timeout != 3000 {
					t.Errorf("Timeout: expected default, got %d", c.Notification.Timeout)
				}
			},
		},
		{
			name: "Environment Overrides File",
			content: `
[mpd]
library = "/srv/music"

[notification]
timeout = 1000
`,
			env: map[string]string{
				"MPDND_NOTIFICATION_TIMEOUT":            "7000",
				"MPDND_NOTIFICATION_TEXT_UNKNOWN_TITLE": "No title",
				"MPDND_MPD_HOST":                        "10.0.0.2",
			},
			check: func(t *testing.T, c *Config) {
				if c.Notification.Timeout != 7000 {
					t.Errorf("Timeout: expected 7000, got %d", c.Notification.Timeout)
				}
				if c.Notification.Text.UnknownTitle != "No title" {
					t.Errorf("UnknownTitle: got %s", c.Notification.Text.UnknownTitle)
				}
				if c.MPD.Host != "10.0.0.2" {
					t.Errorf("Host: got %s", c.MPD.Host)
				}
			},
		},
		{
			name: "Cover Art Disabled Needs No Library",
			content: `
[notification]
cover-art = false
`,
			check: func(t *testing.T, c *Config) {
				if c.Notification.CoverArt {
					t.Error("CoverArt: expected disabled")
				}
			},
		},
		{
			name: "Unix Socket Host",
			content: `
[mpd]
host = "/run/mpd/socket"
port = 0
library = "/srv/music"
`,
			check: func(t *testing.T, c *Config) {
				if c.MPD.Network() != "unix" || c.MPD.Address() != "/run/mpd/socket" {
					t.Errorf("expected unix socket, got %s %s", c.MPD.Network(), c.MPD.Address())
				}
			},
		},
		{
			name: "YAML By Extension",
			path: "/home/user/.config/mpdnd/config.yaml",
			content: `
mpd:
  library: /srv/music
  port: 6602
`,
			check: func(t *testing.T, c *Config) {
				if c.MPD.Port != 6602 {
					t.Errorf("Port: expected 6602, got %d", c.MPD.Port)
				}
			},
		},
		{
			name:          "Error - Missing Library With Cover Art",
			content:       "[mpd]\nhost = \"localhost\"\n",
			expectedError: "mpd.library is required",
		},
		{
			name:          "Error - Port Out Of Range",
			content:       "[mpd]\nlibrary = \"/srv/music\"\nport = 70000\n",
			expectedError: "mpd.port 70000 out of range",
		},
		{
			name:          "Error - Timeout Below -1",
			content:       "[mpd]\nlibrary = \"/srv/music\"\n[notification]\ntimeout = -5\n",
			expectedError: "notification.timeout -5",
		},
		{
			name:          "Error - Negative Icon Size",
			content:       "[mpd]\nlibrary = \"/srv/music\"\n[notification]\nicon-size = -1\n",
			expectedError: "notification.icon-size -1",
		},
		{
			name:          "Error - Empty Extension List",
			content:       "[mpd]\nlibrary = \"/srv/music\"\ncover-art-extensions = [\".\", \"\"]\n",
			expectedError: "mpd.cover-art-extensions must list at least one extension",
		},
		{
			name:          "Error - Malformed TOML",
			content:       "[mpd\nlibrary = ",
			expectedError: "reading " + configPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := tt.path
			if path == "" {
				path = configPath
			}

			fs := afero.NewMemMapFs()
			writeConfig(t, fs, path, tt.content)

			cfg, err := NewLoader(fs).Load(path)

			if tt.expectedError != "" {
				if err == nil {
					t.Fatalf("expected error containing '%s', got nil", tt.expectedError)
				}
				if !errors.Is(err, domain.ErrConfig) {
					t.Errorf("expected ErrConfig, got %v", err)
				}
				if !strings.Contains(err.Error(), tt.expectedError) {
					t.Errorf("expected error '%s' to contain '%s'", err.Error(), tt.expectedError)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	_, err := NewLoader(afero.NewMemMapFs()).Load("/nowhere/config.toml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, domain.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "/nowhere/config.toml") {
		t.Errorf("expected error to name the file, got %v", err)
	}
}

func TestLoader_Load_UnknownExtensionIsTOML(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "/etc/mpdnd.conf", "[mpd]\nlibrary = \"/srv/music\"\nport = 6610\n")

	cfg, err := NewLoader(fs).Load("/etc/mpdnd.conf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MPD.Port != 6610 {
		t.Errorf("Port: expected 6610, got %d", cfg.MPD.Port)
	}
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Notification.Text.UnknownAlbum != "Unknown album" {
		t.Errorf("UnknownAlbum: got %s", cfg.Notification.Text.UnknownAlbum)
	}
	if cfg.MPD.Port != 6600 {
		t.Errorf("Port: got %d", cfg.MPD.Port)
	}

	// Defaults must not leak between calls
	cfg.MPD.CoverArtExtensions[0] = "gif"
	again, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.MPD.CoverArtExtensions[0] != "png" {
		t.Errorf("defaults table was mutated: %v", again.MPD.CoverArtExtensions)
	}
}

func TestDefaultFile(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected string
	}{
		{
			name:     "Config Home Wins",
			files:    []string{"/xdg/home/mpdnd/config.toml", "/etc/a/mpdnd/config.toml"},
			expected: "/xdg/home/mpdnd/config.toml",
		},
		{
			name:     "Falls Back To Config Dirs In Order",
			files:    []string{"/etc/b/mpdnd/config.toml", "/etc/a/mpdnd/config.toml"},
			expected: "/etc/a/mpdnd/config.toml",
		},
		{
			name:     "Last Config Dir",
			files:    []string{"/etc/b/mpdnd/config.toml"},
			expected: "/etc/b/mpdnd/config.toml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", "/xdg/home")
			t.Setenv("XDG_CONFIG_DIRS", "/etc/a:relative/ignored:/etc/b")

			fs := afero.NewMemMapFs()
			for _, f := range tt.files {
				writeConfig(t, fs, f, "")
			}

			got, err := DefaultFile(fs)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestDefaultFile_NotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/home")
	t.Setenv("XDG_CONFIG_DIRS", "/etc/a")

	_, err := DefaultFile(afero.NewMemMapFs())
	if err == nil {
		t.Fatal("expected error when no config file exists")
	}
	if !errors.Is(err, domain.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "/xdg/home") || !strings.Contains(err.Error(), "/etc/a") {
		t.Errorf("expected searched directories in error, got %v", err)
	}
}
