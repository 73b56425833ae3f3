package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Manga struct {
	bun.BaseModel `bun:"table:manga,alias:m"`

	ID            int        `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LibraryID     *int       `json:"library_id,omitempty"`
	Library       *Library   `bun:"rel:belongs-to,join:library_id=id" json:"library,omitempty"`
	Title         string     `bun:",nullzero" json:"title"`
	Filepath      string     `bun:"path,nullzero" json:"path"`
	CoverPath     *string    `json:"cover_path"`
	TotalChapters int        `json:"total_chapters"`
	TotalPages    int        `json:"total_pages"`
	IsFavorite    bool       `json:"is_favorite"`
	Rating        float64    `json:"rating"`
	RatingCount   int        `json:"rating_count"`
	LastReadAt    *time.Time `json:"last_read_at,omitempty"`
	Chapters      []*Chapter `bun:"rel:has-many,join:id=manga_id" json:"chapters,omitempty"`
	Tags          []*Tag     `bun:"m2m:manga_tags,join:Manga=Tag" json:"tags,omitempty"`
}
