package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Chapter is one ordered subdivision of a manga. ChapterNumber is REAL in the
// schema so fractional numbering ("12.5" extras) can be represented, though
// the scanner assigns integral 1..N positions.
type Chapter struct {
	bun.BaseModel `bun:"table:chapters,alias:ch"`

	ID            int       `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	MangaID       int       `bun:",nullzero" json:"manga_id"`
	ChapterNumber float64   `bun:",notnull" json:"chapter_number"`
	Title         string    `bun:",nullzero" json:"title"`
	Filepath      string    `bun:"path,nullzero" json:"path"`
	PageCount     int       `json:"page_count"`

	Manga *Manga `bun:"rel:belongs-to,join:manga_id=id" json:"-"`
}
