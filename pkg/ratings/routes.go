package ratings

import (
	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/manga"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers rating routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		ratingService: NewService(db),
		mangaService:  manga.NewService(db),
	}

	g.GET("/stats", h.stats)
	g.GET("/manga/:id", h.retrieveMangaRatings)
	g.POST("/manga/:id", h.add)
	g.POST("/:id", h.update)
	g.DELETE("/:id", h.delete)
}
