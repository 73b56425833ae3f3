package tags

import (
	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/manga"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers tag routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := newHandler(db)

	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

// RegisterMangaRoutesWithGroup registers the tagging route on the manga group.
func RegisterMangaRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := newHandler(db)

	g.PUT("/:id/tags", h.setMangaTags)
}

func newHandler(db *bun.DB) *handler {
	return &handler{
		tagService:   NewService(db),
		mangaService: manga.NewService(db),
	}
}
