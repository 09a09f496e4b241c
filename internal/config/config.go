package config

import (
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/genricoloni/mpdnd/internal/domain"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	appName        = "mpdnd"
	configFileName = "config.toml"
	envPrefix      = "MPDND"
)

// fileTypes are the extensions read with their own format; anything else is TOML
var fileTypes = []string{"toml", "yaml", "yml", "json"}

// Config holds application configuration. It is read-only after Load.
type Config struct {
	MPD          MPDConfig          `mapstructure:"mpd"`
	Notification NotificationConfig `mapstructure:"notification"`
}

// MPDConfig describes how to reach the music server and its library
type MPDConfig struct {
	// Host is a hostname, an IP address, or the path of a unix socket
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	// Library is the music directory MPD serves files from
	Library string `mapstructure:"library"`
	// CoverArtExtensions are tried in order when looking for cover.<ext>
	CoverArtExtensions []string `mapstructure:"cover-art-extensions"`
}

// NotificationConfig controls how notifications look
type NotificationConfig struct {
	// Timeout in milliseconds (-1 server default, 0 never expires)
	Timeout      int    `mapstructure:"timeout"`
	CoverArt     bool   `mapstructure:"cover-art"`
	DefaultCover string `mapstructure:"default-cover"`
	// IconSize > 0 scales cover art down to a cached thumbnail
	IconSize     int        `mapstructure:"icon-size"`
	ThumbnailDir string     `mapstructure:"thumbnail-dir"`
	Text         TextConfig `mapstructure:"text"`
}

// TextConfig holds every user-visible string and glyph
type TextConfig struct {
	AppName      string `mapstructure:"appname"`
	UnknownTitle string `mapstructure:"unknown-title"`
	UnknownAlbum string `mapstructure:"unknown-album"`
	Playing      string `mapstructure:"playing"`
	Paused       string `mapstructure:"paused"`
	Stopped      string `mapstructure:"stopped"`
	Repeat       string `mapstructure:"repeat"`
	Random       string `mapstructure:"random"`
	Consume      string `mapstructure:"consume"`
	FlagsOpen    string `mapstructure:"flags-open"`
	FlagsClose   string `mapstructure:"flags-close"`
}

// Network returns the dial network for the configured host
func (c MPDConfig) Network() string {
	if strings.HasPrefix(c.Host, "/") {
		return "unix"
	}
	return "tcp"
}

// Address returns the dial address for the configured host
func (c MPDConfig) Address() string {
	if c.Network() == "unix" {
		return c.Host
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Loader reads configuration files from a filesystem
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a loader reading from fs
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Load reads the configuration file at path from the OS filesystem
func Load(path string) (*Config, error) {
	return NewLoader(afero.NewOsFs()).Load(path)
}

// Load reads the configuration file at path, merges it over the defaults
// and MPDND_* environment overrides, and validates the result.
func (l *Loader) Load(path string) (*Config, error) {
	v := newViper(l.fs)

	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); !slices.Contains(fileTypes, ext) {
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrConfig, path, err)
	}

	cfg, err := decode(v)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfig, path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration with environment overrides
// applied. The result is not validated: it has no library configured.
func Default() (*Config, error) {
	cfg, err := decode(newViper(afero.NewMemMapFs()))
	if err != nil {
		return nil, fmt.Errorf("%w: defaults: %w", domain.ErrConfig, err)
	}
	return cfg, nil
}

func newViper(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}

	cfg.normalize()
	return &cfg, nil
}

// normalize expands paths and cleans up extension spelling
func (c *Config) normalize() {
	c.MPD.Library = expandPath(c.MPD.Library)
	c.Notification.DefaultCover = expandPath(c.Notification.DefaultCover)
	c.Notification.ThumbnailDir = expandPath(c.Notification.ThumbnailDir)

	if c.Notification.ThumbnailDir == "" {
		if cacheDir, err := os.UserCacheDir(); err == nil {
			c.Notification.ThumbnailDir = filepath.Join(cacheDir, appName, "thumbnails")
		}
	}

	exts := make([]string, 0, len(c.MPD.CoverArtExtensions))
	for _, ext := range c.MPD.CoverArtExtensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	c.MPD.CoverArtExtensions = exts
}

// Validate checks value ranges and cross-field requirements
func (c *Config) Validate() error {
	if c.MPD.Host == "" {
		return fmt.Errorf("mpd.host must not be empty")
	}
	if c.MPD.Network() == "tcp" && (c.MPD.Port < 1 || c.MPD.Port > 65535) {
		return fmt.Errorf("mpd.port %d out of range 1-65535", c.MPD.Port)
	}
	if c.Notification.Timeout < -1 || c.Notification.Timeout > math.MaxInt32 {
		return fmt.Errorf("notification.timeout %d must be -1, 0 or a positive number of milliseconds", c.Notification.Timeout)
	}
	if c.Notification.IconSize < 0 {
		return fmt.Errorf("notification.icon-size %d must not be negative", c.Notification.IconSize)
	}
	if c.Notification.IconSize > 0 && c.Notification.ThumbnailDir == "" {
		return fmt.Errorf("notification.thumbnail-dir is required when notification.icon-size is set")
	}
	if c.Notification.CoverArt && c.MPD.Library == "" {
		return fmt.Errorf("mpd.library is required when notification.cover-art is enabled")
	}
	if c.Notification.CoverArt && len(c.MPD.CoverArtExtensions) == 0 {
		return fmt.Errorf("mpd.cover-art-extensions must list at least one extension when notification.cover-art is enabled")
	}
	return nil
}

// expandPath expands environment variables and a leading ~
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}

// DefaultFile finds mpdnd/config.toml in the XDG config directories
func DefaultFile(fs afero.Fs) (string, error) {
	dirs := configDirs()
	for _, dir := range dirs {
		candidate := filepath.Join(dir, appName, configFileName)
		if ok, _ := afero.Exists(fs, candidate); ok {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: could not find %s in %s", domain.ErrConfig,
		filepath.Join(appName, configFileName), strings.Join(dirs, ", "))
}

// configDirs lists $XDG_CONFIG_HOME followed by $XDG_CONFIG_DIRS
func configDirs() []string {
	var dirs []string

	if home := os.Getenv("XDG_CONFIG_HOME"); filepath.IsAbs(home) {
		dirs = append(dirs, home)
	} else if userHome, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(userHome, ".config"))
	}

	system := os.Getenv("XDG_CONFIG_DIRS")
	if system == "" {
		system = "/etc/xdg"
	}
	for _, dir := range filepath.SplitList(system) {
		if filepath.IsAbs(dir) {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}
