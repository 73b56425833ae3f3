package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Rating is one 0-10 score left on a manga, with an optional comment. The
// aggregate average and count are denormalized onto the manga row and
// recomputed whenever a rating changes.
type Rating struct {
	bun.BaseModel `bun:"table:ratings,alias:r"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	MangaID   int       `bun:",nullzero" json:"manga_id"`
	Rating    float64   `json:"rating"`
	Comment   *string   `json:"comment"`

	Manga *Manga `bun:"rel:belongs-to,join:manga_id=id" json:"-"`
}
