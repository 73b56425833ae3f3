// Package scanner discovers manga titles on disk. A library root contains
// title directories; a title directory contains either chapter subdirectories
// full of page images, or page images directly (a single-volume layout). The
// scanner is read-only over the filesystem; persistence happens in pkg/manga.
package scanner

// Page is one image inside a chapter directory. Pages are never persisted;
// they're recomputed from a sorted directory listing on demand.
type Page struct {
	PageNumber int    `json:"page_number"`
	Filename   string `json:"filename"`
	Filepath   string `json:"path"`
}

// Chapter is one discovered chapter of a title. ChapterNumber is the 1-based
// position in the sorted chapter sequence, not the number embedded in the
// directory name (that one only decides sort order).
type Chapter struct {
	ChapterNumber float64 `json:"chapter_number"`
	Title         string  `json:"title"`
	Filepath      string  `json:"path"`
	PageCount     int     `json:"page_count"`
}

// Manga is the manifest produced by scanning one title directory.
type Manga struct {
	Title         string     `json:"title"`
	Filepath      string     `json:"path"`
	CoverPath     *string    `json:"cover_path"`
	TotalChapters int        `json:"total_chapters"`
	TotalPages    int        `json:"total_pages"`
	Chapters      []*Chapter `json:"chapters"`
}
