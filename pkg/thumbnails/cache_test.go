package thumbnails

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, path string, width, height int) {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	require.NoError(t, imaging.Save(img, path))
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return NewCache(t.TempDir())
}

func TestCacheGet(t *testing.T) {
	t.Run("generates a center-cropped thumbnail at the exact size", func(t *testing.T) {
		c := newTestCache(t)
		src := filepath.Join(t.TempDir(), "page.png")
		writeTestImage(t, src, 1000, 400)

		thumbPath, err := c.Get(src, SizeSmall)
		require.NoError(t, err)
		assert.Equal(t, c.Dir(), filepath.Dir(thumbPath))

		thumb, err := imaging.Open(thumbPath)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 150, 200), thumb.Bounds())
	})

	t.Run("round trip hits the cache without regenerating", func(t *testing.T) {
		c := newTestCache(t)
		src := filepath.Join(t.TempDir(), "page.jpg")
		writeTestImage(t, src, 300, 300)

		first, err := c.Get(src, SizeMedium)
		require.NoError(t, err)
		info1, err := os.Stat(first)
		require.NoError(t, err)

		// Backdate so a regeneration would be visible as a newer mtime.
		old := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(first, old, old))

		second, err := c.Get(src, SizeMedium)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		info2, err := os.Stat(second)
		require.NoError(t, err)
		assert.NotEqual(t, info1.ModTime(), info2.ModTime())
		assert.True(t, info2.ModTime().Equal(old))
	})

	t.Run("different sizes get different cache slots", func(t *testing.T) {
		c := newTestCache(t)
		src := filepath.Join(t.TempDir(), "page.png")
		writeTestImage(t, src, 300, 300)

		small, err := c.Get(src, SizeSmall)
		require.NoError(t, err)
		large, err := c.Get(src, SizeLarge)
		require.NoError(t, err)
		assert.NotEqual(t, small, large)
	})

	t.Run("unknown size class is a validation error", func(t *testing.T) {
		c := newTestCache(t)
		_, err := c.Get("/whatever.jpg", Size("huge"))
		var e *errcodes.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "validation_error", e.Code)
	})

	t.Run("missing source is not found", func(t *testing.T) {
		c := newTestCache(t)
		_, err := c.Get(filepath.Join(t.TempDir(), "gone.jpg"), SizeSmall)
		assert.ErrorIs(t, err, errcodes.NotFound("Source image"))
	})

	t.Run("undecodable source is a soft unsupported-format error", func(t *testing.T) {
		c := newTestCache(t)
		src := filepath.Join(t.TempDir(), "broken.jpg")
		require.NoError(t, os.WriteFile(src, []byte("not an image"), 0644))

		_, err := c.Get(src, SizeSmall)
		assert.ErrorIs(t, err, errcodes.UnsupportedImageFormat())

		// The failure must not leave partial files behind.
		stats, err := c.Stats()
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Count)
	})
}

func TestCacheBatch(t *testing.T) {
	c := newTestCache(t)
	srcDir := t.TempDir()
	good := filepath.Join(srcDir, "good.png")
	writeTestImage(t, good, 200, 200)
	broken := filepath.Join(srcDir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("nope"), 0644))
	missing := filepath.Join(srcDir, "missing.png")

	results := c.Batch([]string{good, broken, missing}, SizeMedium)
	require.Len(t, results, 3)

	assert.Equal(t, "success", results[0].Status)
	require.NotNil(t, results[0].Thumbnail)

	assert.Equal(t, "failed", results[1].Status)
	assert.Nil(t, results[1].Thumbnail)
	assert.NotEmpty(t, results[1].Error)

	assert.Equal(t, "failed", results[2].Status)
}

func TestCacheEvict(t *testing.T) {
	c := newTestCache(t)
	srcDir := t.TempDir()

	fresh := filepath.Join(srcDir, "fresh.png")
	writeTestImage(t, fresh, 100, 100)
	stale := filepath.Join(srcDir, "stale.png")
	writeTestImage(t, stale, 100, 100)

	freshThumb, err := c.Get(fresh, SizeSmall)
	require.NoError(t, err)
	staleThumb, err := c.Get(stale, SizeSmall)
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(staleThumb, old, old))

	removed, err := c.Evict(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(freshThumb)
	assert.NoError(t, err)
	_, err = os.Stat(staleThumb)
	assert.True(t, os.IsNotExist(err))

	// Idempotent: nothing new to remove the second time.
	removed, err = c.Evict(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestCacheStats(t *testing.T) {
	c := newTestCache(t)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, int64(0), stats.TotalBytes)

	srcDir := t.TempDir()
	for _, name := range []string{"a.png", "b.png"} {
		src := filepath.Join(srcDir, name)
		writeTestImage(t, src, 100, 100)
		_, err := c.Get(src, SizeSmall)
		require.NoError(t, err)
	}

	stats, err = c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.Greater(t, stats.TotalBytes, int64(0))
}
