// Package image loads source pictures for pattern generation.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "github.com/gen2brain/avif" // Register AVIF format
	"github.com/hashicorp/go-hclog"
	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/xstitch/internal/errdefs"
	httputil "github.com/jmylchreest/xstitch/internal/util/http"
	"github.com/jmylchreest/xstitch/internal/util/imagecache"
)

// Loader loads an image from a source string.
type Loader interface {
	Load(ctx context.Context, source string) (image.Image, error)
}

// IsURL reports whether source is an HTTP(S) URL.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP, AVIF, TIFF, BMP.
func (l *FileLoader) Load(_ context.Context, path string) (image.Image, error) {
	if path == "" {
		return nil, errdefs.InvalidInput("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errdefs.InvalidInput("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, errdefs.InvalidInput("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	return img, nil
}

// ValidateImagePath checks that path names a decodable local image or looks
// like a URL. URLs are not fetched here.
func ValidateImagePath(path string) error {
	if path == "" {
		return errdefs.InvalidInput("image path cannot be empty")
	}
	if IsURL(path) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errdefs.InvalidInput("image file not found: %s", path)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}
	if info.IsDir() {
		return errdefs.InvalidInput("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	if _, _, err := image.DecodeConfig(file); err != nil {
		if !IsImageFile(path) {
			return errdefs.InvalidInput("unsupported or invalid image format: %v (supported extensions: %s)",
				err, strings.Join(SupportedImageExtensions(), ", "))
		}
		return errdefs.InvalidInput("unsupported or invalid image format: %v", err)
	}
	return nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif", ".tif", ".tiff", ".bmp"}
}

// IsImageFile checks if a file has a supported image extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// SmartLoader loads images from both local files and HTTP(S) URLs. Remote
// images are stored in an on-disk cache unless caching is disabled.
type SmartLoader struct {
	fileLoader *FileLoader
	cache      bool
	cacheDir   string
	logger     hclog.Logger
}

// NewSmartLoader creates a new SmartLoader with caching enabled in the default
// cache directory.
func NewSmartLoader() *SmartLoader {
	return &SmartLoader{
		fileLoader: NewFileLoader(),
		cache:      true,
		logger:     hclog.NewNullLogger(),
	}
}

// WithCache enables or disables the download cache.
func (l *SmartLoader) WithCache(enabled bool) *SmartLoader {
	l.cache = enabled
	return l
}

// WithCacheDir sets the download cache directory. Empty means the default.
func (l *SmartLoader) WithCacheDir(dir string) *SmartLoader {
	l.cacheDir = dir
	return l
}

// WithLogger sets the logger.
func (l *SmartLoader) WithLogger(logger hclog.Logger) *SmartLoader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(ctx context.Context, source string) (image.Image, error) {
	if !IsURL(source) {
		return l.fileLoader.Load(ctx, source)
	}

	if l.cache {
		path, err := imagecache.DownloadAndCache(ctx, source, imagecache.CacheOptions{CacheDir: l.cacheDir})
		if err != nil {
			return nil, err
		}
		l.logger.Debug("using cached image", "url", source, "path", path)
		return l.fileLoader.Load(ctx, path)
	}

	return l.loadFromURL(ctx, source)
}

// loadFromURL fetches and decodes an image without touching the cache.
func (l *SmartLoader) loadFromURL(ctx context.Context, url string) (image.Image, error) {
	l.logger.Debug("fetching image", "url", url)
	data, err := httputil.Fetch(ctx, url, httputil.FetchOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	return img, nil
}
