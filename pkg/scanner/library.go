package scanner

import (
	"context"
	"os"
	"path/filepath"

	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/robinjoseph08/golib/logger"
)

// ScanLibrary scans every immediate subdirectory of root as a title. A title
// that fails to scan (vanished directory, permission error) is logged and
// skipped; it never aborts the rest of the enumeration. The second return
// value is the number of titles skipped that way.
func ScanLibrary(ctx context.Context, root string) ([]*Manga, int, error) {
	log := logger.FromContext(ctx)

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, 0, errcodes.InvalidPath(root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, 0, errcodes.InvalidPath(root)
	}

	mangaList := make([]*Manga, 0, len(entries))
	failed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manga, err := ScanManga(filepath.Join(root, entry.Name()))
		if err != nil {
			log.Err(err).Warn("title scan failed", logger.Data{"title": entry.Name(), "root": root})
			failed++
			continue
		}
		mangaList = append(mangaList, manga)
	}

	return mangaList, failed, nil
}
