package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Library struct {
	bun.BaseModel `bun:"table:libraries,alias:l"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `bun:",nullzero" json:"name"`
	Filepath    string    `bun:"path,nullzero" json:"path"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	MangaCount  int       `bun:",scanonly" json:"manga_count"`
}
