package resolver

import (
	"path/filepath"
	"strings"

	"github.com/genricoloni/mpdnd/internal/domain"
	"github.com/spf13/afero"
)

const coverBaseName = "cover"

// icon picks the notification icon: the cover next to the song, else the
// configured default, else none.
func (r *Resolver) icon(song *domain.Song) string {
	if !r.cfg.Notification.CoverArt {
		return ""
	}
	if cover := r.findCover(song.File); cover != "" {
		return cover
	}
	return r.cfg.Notification.DefaultCover
}

// findCover returns the first cover.<ext> in the song's directory, trying
// extensions in configured order.
func (r *Resolver) findCover(file string) string {
	// Streams have no directory to look in
	if file == "" || strings.Contains(file, "://") {
		return ""
	}

	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.cfg.MPD.Library, file)
	}
	dir := filepath.Dir(path)

	if ok, _ := afero.DirExists(r.fs, dir); !ok {
		return ""
	}

	for _, ext := range r.cfg.MPD.CoverArtExtensions {
		candidate := filepath.Join(dir, coverBaseName+"."+ext)
		if ok, _ := afero.Exists(r.fs, candidate); ok {
			return candidate
		}
	}
	return ""
}
