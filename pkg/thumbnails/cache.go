// Package thumbnails implements the content-addressed thumbnail cache. Cache
// entries are keyed purely by (absolute source path, size class), so repeated
// requests hit the same slot; a source image edited in place keeps serving its
// old thumbnail until the entry is evicted. That's a known limitation carried
// over deliberately, not an oversight.
package thumbnails

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/pkg/errors"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Size is one of the fixed thumbnail size classes.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

type dimensions struct {
	Width  int
	Height int
}

var sizeDimensions = map[Size]dimensions{
	SizeSmall:  {Width: 150, Height: 200},
	SizeMedium: {Width: 300, Height: 400},
	SizeLarge:  {Width: 600, Height: 800},
}

const jpegQuality = 80

// Cache manages the flat on-disk thumbnail directory. It holds no locks: the
// cache key is a pure function of the inputs and writes go through an atomic
// rename, so two concurrent generations of the same key are a benign race
// where the last writer wins.
type Cache struct {
	dir string
}

func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// cacheFilename derives the deterministic cache entry name for a source path
// and size class: {hash}_{size}.jpg in one flat directory.
func cacheFilename(absSource string, size Size) string {
	return fmt.Sprintf("%016x_%s.jpg", xxhash.Sum64String(absSource), size)
}

// Get returns the path to the cached thumbnail for the given source image,
// generating it on first access. A cache hit is returned as-is with no
// revalidation against the source. Decode failures come back as an
// UnsupportedImageFormat error (soft: "no thumbnail available"); a missing
// source is NotFound; anything else is a hard error.
func (c *Cache) Get(sourcePath string, size Size) (string, error) {
	if _, ok := sizeDimensions[size]; !ok {
		return "", errcodes.ValidationError(fmt.Sprintf("%q is not a valid thumbnail size", size))
	}

	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", errors.WithStack(err)
	}

	cachedPath := filepath.Join(c.dir, cacheFilename(abs, size))
	if _, err := os.Stat(cachedPath); err == nil {
		return cachedPath, nil
	}

	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", errcodes.NotFound("Source image")
		}
		return "", errors.WithStack(err)
	}

	return c.generate(abs, size, cachedPath)
}

func (c *Cache) generate(absSource string, size Size, cachedPath string) (string, error) {
	dims := sizeDimensions[size]

	f, err := os.Open(absSource)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		// Corrupt or unregistered format. Callers treat this as a soft failure.
		return "", errcodes.UnsupportedImageFormat()
	}

	// Cover fit: fill the exact target box, cropping overflow around the
	// center, never letterboxing.
	thumb := imaging.Fill(img, dims.Width, dims.Height, imaging.Center, imaging.Lanczos)

	// Write-temp-then-rename so concurrent readers never see a partial file.
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer os.Remove(tmp.Name())

	err = imaging.Encode(tmp, thumb, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", errors.WithStack(err)
	}

	if err := os.Rename(tmp.Name(), cachedPath); err != nil {
		return "", errors.WithStack(err)
	}

	return cachedPath, nil
}

// BatchResult records the outcome for one source path in a batch generation.
type BatchResult struct {
	Original  string  `json:"original"`
	Thumbnail *string `json:"thumbnail"`
	Status    string  `json:"status"`
	Error     string  `json:"error,omitempty"`
}

// Batch generates thumbnails for each path independently; one path's failure
// never blocks the others.
func (c *Cache) Batch(sourcePaths []string, size Size) []BatchResult {
	results := make([]BatchResult, 0, len(sourcePaths))
	for _, path := range sourcePaths {
		thumbPath, err := c.Get(path, size)
		if err != nil {
			results = append(results, BatchResult{
				Original: path,
				Status:   "failed",
				Error:    err.Error(),
			})
			continue
		}
		results = append(results, BatchResult{
			Original:  path,
			Thumbnail: &thumbPath,
			Status:    "success",
		})
	}
	return results
}

// Evict removes every cache entry whose modification time is older than
// maxAge and returns the number removed. Entries disappearing between listing
// and deletion are fine; a concurrent eviction already got them.
func (c *Cache) Evict(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		err = os.Remove(filepath.Join(c.dir, entry.Name()))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, errors.WithStack(err)
		}
		removed++
	}

	return removed, nil
}

// Stats holds the read-only summary of the cache directory.
type Stats struct {
	Count      int   `json:"count"`
	TotalBytes int64 `json:"total_size"`
}

func (c *Cache) Stats() (*Stats, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats := &Stats{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.Count++
		stats.TotalBytes += info.Size()
	}

	return stats, nil
}
