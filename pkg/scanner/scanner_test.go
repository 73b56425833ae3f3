package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
}

func TestScanChapterPages(t *testing.T) {
	t.Run("orders pages lexicographically with 1-based numbers", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "b.jpg", "a.png", "c.webp", "notes.txt", "z.tiff")

		pages, err := ScanChapterPages(dir)
		require.NoError(t, err)
		require.Len(t, pages, 3)
		assert.Equal(t, "a.png", pages[0].Filename)
		assert.Equal(t, "b.jpg", pages[1].Filename)
		assert.Equal(t, "c.webp", pages[2].Filename)
		assert.Equal(t, 1, pages[0].PageNumber)
		assert.Equal(t, 3, pages[2].PageNumber)
		assert.Equal(t, filepath.Join(dir, "a.png"), pages[0].Filepath)
	})

	t.Run("skips nested directories", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "a.jpg")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.jpg"), 0755))

		pages, err := ScanChapterPages(dir)
		require.NoError(t, err)
		assert.Len(t, pages, 1)
	})

	t.Run("vanished directory is a not found error", func(t *testing.T) {
		_, err := ScanChapterPages(filepath.Join(t.TempDir(), "gone"))
		assert.ErrorIs(t, err, errcodes.NotFound("Chapter directory"))
	})
}

func TestScanManga(t *testing.T) {
	t.Run("chapters numbered by sorted position", func(t *testing.T) {
		dir := t.TempDir()
		// Embedded numbers decide order, not the persisted chapter number.
		writeFiles(t, filepath.Join(dir, "Chapter 10"), "p1.jpg")
		writeFiles(t, filepath.Join(dir, "Chapter 2"), "p1.jpg", "p2.jpg")
		writeFiles(t, filepath.Join(dir, "Chapter 2.5"), "p1.jpg")

		manga, err := ScanManga(dir)
		require.NoError(t, err)
		require.Len(t, manga.Chapters, 3)
		assert.Equal(t, "Chapter 2", manga.Chapters[0].Title)
		assert.Equal(t, "Chapter 2.5", manga.Chapters[1].Title)
		assert.Equal(t, "Chapter 10", manga.Chapters[2].Title)
		assert.Equal(t, float64(1), manga.Chapters[0].ChapterNumber)
		assert.Equal(t, float64(2), manga.Chapters[1].ChapterNumber)
		assert.Equal(t, float64(3), manga.Chapters[2].ChapterNumber)
		assert.Equal(t, 3, manga.TotalChapters)
		assert.Equal(t, 4, manga.TotalPages)
	})

	t.Run("ties on extracted number fall back to name order", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, filepath.Join(dir, "Extras B"), "p1.jpg")
		writeFiles(t, filepath.Join(dir, "Extras A"), "p1.jpg")

		manga, err := ScanManga(dir)
		require.NoError(t, err)
		require.Len(t, manga.Chapters, 2)
		assert.Equal(t, "Extras A", manga.Chapters[0].Title)
		assert.Equal(t, "Extras B", manga.Chapters[1].Title)
	})

	t.Run("explicit cover file wins", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "cover.png")
		writeFiles(t, filepath.Join(dir, "Ch.1"), "a.jpg")

		manga, err := ScanManga(dir)
		require.NoError(t, err)
		require.NotNil(t, manga.CoverPath)
		assert.Equal(t, filepath.Join(dir, "cover.png"), *manga.CoverPath)
	})

	t.Run("localized cover marker", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "封面.jpg")
		writeFiles(t, filepath.Join(dir, "Ch.1"), "a.jpg")

		manga, err := ScanManga(dir)
		require.NoError(t, err)
		require.NotNil(t, manga.CoverPath)
		assert.Equal(t, filepath.Join(dir, "封面.jpg"), *manga.CoverPath)
	})

	t.Run("cover falls back to first page of first non-empty chapter", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, filepath.Join(dir, "Ch.1"))
		writeFiles(t, filepath.Join(dir, "Ch.2"), "b.jpg", "a.jpg")

		manga, err := ScanManga(dir)
		require.NoError(t, err)
		require.NotNil(t, manga.CoverPath)
		assert.Equal(t, filepath.Join(dir, "Ch.2", "a.jpg"), *manga.CoverPath)
	})

	t.Run("single-volume fallback synthesizes one chapter", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "p2.jpg", "p1.jpg", "readme.txt")

		manga, err := ScanManga(dir)
		require.NoError(t, err)
		require.Len(t, manga.Chapters, 1)
		ch := manga.Chapters[0]
		assert.Equal(t, float64(1), ch.ChapterNumber)
		assert.Equal(t, singleVolumeTitle, ch.Title)
		assert.Equal(t, dir, ch.Filepath)
		assert.Equal(t, 2, ch.PageCount)
		assert.Equal(t, 1, manga.TotalChapters)
		assert.Equal(t, 2, manga.TotalPages)
		require.NotNil(t, manga.CoverPath)
		assert.Equal(t, filepath.Join(dir, "p1.jpg"), *manga.CoverPath)
	})

	t.Run("empty directory yields zero chapters and no cover", func(t *testing.T) {
		dir := t.TempDir()

		manga, err := ScanManga(dir)
		require.NoError(t, err)
		assert.Empty(t, manga.Chapters)
		assert.Nil(t, manga.CoverPath)
		assert.Equal(t, 0, manga.TotalPages)
	})

	t.Run("missing path is an invalid path error", func(t *testing.T) {
		_, err := ScanManga(filepath.Join(t.TempDir(), "nope"))
		var e *errcodes.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "invalid_path", e.Code)
	})

	t.Run("file path is an invalid path error", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "file.jpg")

		_, err := ScanManga(filepath.Join(dir, "file.jpg"))
		var e *errcodes.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "invalid_path", e.Code)
	})
}

func TestScanLibrary(t *testing.T) {
	t.Run("end to end", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, filepath.Join(root, "TitleA", "Ch1"), "a.jpg", "b.jpg")
		writeFiles(t, filepath.Join(root, "TitleA", "Ch2"), "a.jpg")
		writeFiles(t, filepath.Join(root, "TitleB"), "cover.png", "p1.jpg", "p2.jpg")
		// Loose files in the root are not titles.
		writeFiles(t, root, "stray.jpg")

		mangaList, failed, err := ScanLibrary(context.Background(), root)
		require.NoError(t, err)
		assert.Equal(t, 0, failed)
		require.Len(t, mangaList, 2)

		a := mangaList[0]
		assert.Equal(t, "TitleA", a.Title)
		assert.Equal(t, 2, a.TotalChapters)
		assert.Equal(t, 3, a.TotalPages)
		require.Len(t, a.Chapters, 2)
		assert.Equal(t, 2, a.Chapters[0].PageCount)
		assert.Equal(t, 1, a.Chapters[1].PageCount)
		require.NotNil(t, a.CoverPath)
		assert.Equal(t, filepath.Join(root, "TitleA", "Ch1", "a.jpg"), *a.CoverPath)

		b := mangaList[1]
		assert.Equal(t, "TitleB", b.Title)
		require.Len(t, b.Chapters, 1)
		assert.Equal(t, 2, b.Chapters[0].PageCount)
		require.NotNil(t, b.CoverPath)
		assert.Equal(t, filepath.Join(root, "TitleB", "cover.png"), *b.CoverPath)
	})

	t.Run("one unreadable title never aborts the rest", func(t *testing.T) {
		if os.Getuid() == 0 {
			t.Skip("permission bits don't apply to root")
		}
		root := t.TempDir()
		writeFiles(t, filepath.Join(root, "Good", "Ch1"), "a.jpg")
		bad := filepath.Join(root, "Bad")
		writeFiles(t, bad, "a.jpg")
		require.NoError(t, os.Chmod(bad, 0000))
		t.Cleanup(func() { _ = os.Chmod(bad, 0755) })

		mangaList, failed, err := ScanLibrary(context.Background(), root)
		require.NoError(t, err)
		assert.Equal(t, 1, failed)
		require.Len(t, mangaList, 1)
		assert.Equal(t, "Good", mangaList[0].Title)
	})

	t.Run("missing root is an invalid path error", func(t *testing.T) {
		_, _, err := ScanLibrary(context.Background(), filepath.Join(t.TempDir(), "gone"))
		var e *errcodes.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "invalid_path", e.Code)
	})
}
