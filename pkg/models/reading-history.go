package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ReadingHistory struct {
	bun.BaseModel `bun:"table:reading_history,alias:rh"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	MangaID    int       `bun:",nullzero" json:"manga_id"`
	ChapterID  *int      `json:"chapter_id,omitempty"`
	PageNumber int       `json:"page_number"`
	Progress   float64   `json:"progress"`
	ReadAt     time.Time `json:"read_at"`

	Manga   *Manga   `bun:"rel:belongs-to,join:manga_id=id" json:"manga,omitempty"`
	Chapter *Chapter `bun:"rel:belongs-to,join:chapter_id=id" json:"chapter,omitempty"`
}
