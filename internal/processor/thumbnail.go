package processor

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG format support
	_ "image/png"  // PNG format support
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"github.com/genricoloni/mpdnd/internal/config"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
)

const thumbnailExt = ".png"

// Thumbnailer scales cover art down to a cached, display-sized copy
type Thumbnailer struct {
	logger *zap.Logger
	fs     afero.Fs
	size   int
	dir    string
}

// NewThumbnailer creates a thumbnailer from the notification settings
func NewThumbnailer(logger *zap.Logger, cfg *config.Config, fs afero.Fs) *Thumbnailer {
	return &Thumbnailer{
		logger: logger,
		fs:     fs,
		size:   cfg.Notification.IconSize,
		dir:    cfg.Notification.ThumbnailDir,
	}
}

// Enabled reports whether an icon size was configured
func (t *Thumbnailer) Enabled() bool {
	return t.size > 0
}

// Thumbnail returns the path of a copy of imagePath fitted into a
// size x size box. Results are cached by source path, mtime and size.
func (t *Thumbnailer) Thumbnail(ctx context.Context, imagePath string) (string, error) {
	info, err := t.fs.Stat(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to stat cover: %w", err)
	}

	outputPath := filepath.Join(t.dir, t.cacheKey(imagePath, info)+thumbnailExt)
	if ok, _ := afero.Exists(t.fs, outputPath); ok {
		t.logger.Debug("Thumbnail cache hit", zap.String("path", outputPath))
		return outputPath, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := t.decode(imagePath)
	if err != nil {
		return "", err
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return "", fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	// Fit never upscales, so small covers are only re-encoded
	thumb := imaging.Fit(img, t.size, t.size, imaging.Lanczos)

	if err := t.write(outputPath, thumb); err != nil {
		return "", err
	}

	t.logger.Debug("Thumbnail generated",
		zap.String("source", imagePath),
		zap.String("path", outputPath),
		zap.Int("w", thumb.Bounds().Dx()),
		zap.Int("h", thumb.Bounds().Dy()))
	return outputPath, nil
}

func (t *Thumbnailer) cacheKey(imagePath string, info os.FileInfo) string {
	d := xxhash.New()
	_, _ = d.WriteString(imagePath)
	_, _ = d.WriteString("\x00" + strconv.FormatInt(info.ModTime().UnixNano(), 10))
	_, _ = d.WriteString("\x00" + strconv.FormatInt(info.Size(), 10))
	_, _ = d.WriteString("\x00" + strconv.Itoa(t.size))
	return fmt.Sprintf("%016x", d.Sum64())
}

func (t *Thumbnailer) decode(imagePath string) (image.Image, error) {
	f, err := t.fs.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cover: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// write encodes into a temporary file first so a concurrent reader never
// sees a partial thumbnail
func (t *Thumbnailer) write(outputPath string, img image.Image) error {
	if err := t.fs.MkdirAll(t.dir, 0755); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	tmp, err := afero.TempFile(t.fs, t.dir, "thumb-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	if err := imaging.Encode(tmp, img, imaging.PNG); err != nil {
		tmp.Close()
		_ = t.fs.Remove(tmp.Name())
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = t.fs.Remove(tmp.Name())
		return fmt.Errorf("failed to write thumbnail: %w", err)
	}

	if err := t.fs.Rename(tmp.Name(), outputPath); err != nil {
		_ = t.fs.Remove(tmp.Name())
		return fmt.Errorf("failed to store thumbnail: %w", err)
	}
	return nil
}
