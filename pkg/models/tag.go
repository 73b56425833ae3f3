package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Name       string    `bun:",nullzero" json:"name"`
	Color      string    `bun:",nullzero" json:"color"`
	MangaCount int       `bun:",scanonly" json:"manga_count"`
}

type MangaTag struct {
	bun.BaseModel `bun:"table:manga_tags,alias:mt"`

	MangaID int    `bun:",pk" json:"manga_id"`
	TagID   int    `bun:",pk" json:"tag_id"`
	Manga   *Manga `bun:"rel:belongs-to,join:manga_id=id" json:"-"`
	Tag     *Tag   `bun:"rel:belongs-to,join:tag_id=id" json:"tag,omitempty"`
}
