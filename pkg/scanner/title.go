package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/pkg/errors"
)

// singleVolumeTitle is the chapter title synthesized for a title directory
// that holds its page images directly instead of chapter subdirectories.
const singleVolumeTitle = "单行本"

// coverMarkers mark a file in the title directory as the cover image.
var coverMarkers = []string{"cover", "封面"}

func hasCoverMarker(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range coverMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ScanManga scans one title directory into a manifest. Chapter numbering is
// the 1-based position after sorting subdirectories by their extracted
// chapter number (ties broken by name); the numbers embedded in directory
// names only decide that sort order. A title directory without chapter
// subdirectories but with images directly inside it becomes a single
// synthesized chapter.
func ScanManga(path string) (*Manga, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, errcodes.InvalidPath(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	manga := &Manga{
		Title:    filepath.Base(path),
		Filepath: path,
		Chapters: make([]*Chapter, 0),
	}

	// An explicitly marked cover file wins over any fallback.
	var coverPath string
	for _, entry := range entries {
		if !entry.IsDir() && hasCoverMarker(entry.Name()) && IsImageFile(entry.Name()) {
			coverPath = filepath.Join(path, entry.Name())
			break
		}
	}

	chapterDirs := make([]os.DirEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			chapterDirs = append(chapterDirs, entry)
		}
	}
	// entries are already name-sorted, so a stable sort keeps name order for
	// ties on the extracted number.
	sort.SliceStable(chapterDirs, func(i, j int) bool {
		return ExtractChapterNumber(chapterDirs[i].Name()) < ExtractChapterNumber(chapterDirs[j].Name())
	})

	for i, dir := range chapterDirs {
		chapterPath := filepath.Join(path, dir.Name())
		pages, err := ScanChapterPages(chapterPath)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		manga.Chapters = append(manga.Chapters, &Chapter{
			ChapterNumber: float64(i + 1),
			Title:         dir.Name(),
			Filepath:      chapterPath,
			PageCount:     len(pages),
		})

		if coverPath == "" && len(pages) > 0 {
			coverPath = pages[0].Filepath
		}
	}

	// Single-volume layout: no chapter subdirectories, images live directly
	// in the title directory.
	if len(manga.Chapters) == 0 {
		pages, err := ScanChapterPages(path)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if len(pages) > 0 {
			manga.Chapters = append(manga.Chapters, &Chapter{
				ChapterNumber: 1,
				Title:         singleVolumeTitle,
				Filepath:      path,
				PageCount:     len(pages),
			})
			if coverPath == "" {
				coverPath = pages[0].Filepath
			}
		}
	}

	if coverPath != "" {
		manga.CoverPath = &coverPath
	}
	manga.TotalChapters = len(manga.Chapters)
	for _, ch := range manga.Chapters {
		manga.TotalPages += ch.PageCount
	}

	return manga, nil
}
