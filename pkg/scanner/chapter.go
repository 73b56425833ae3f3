package scanner

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/pkg/errors"
)

// ScanChapterPages lists the page images of one chapter directory in reading
// order. Pages are ordered by filename (os.ReadDir returns entries sorted
// lexicographically); numeric extraction is reserved for chapter-level
// ordering, not pages. Returns a NotFound error if the directory vanished
// between discovery and scan — callers report that per title instead of
// aborting the run.
func ScanChapterPages(dir string) ([]*Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errcodes.NotFound("Chapter directory")
		}
		return nil, errors.WithStack(err)
	}

	pages := make([]*Page, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		pages = append(pages, &Page{
			PageNumber: len(pages) + 1,
			Filename:   entry.Name(),
			Filepath:   filepath.Join(dir, entry.Name()),
		})
	}

	return pages, nil
}
