package history

import (
	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/manga"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers reading-history routes on a
// pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		historyService: NewService(db),
		mangaService:   manga.NewService(db),
	}

	g.GET("", h.list)
	g.POST("", h.record)
	g.GET("/continue-reading", h.continueReading)
	g.DELETE("/clear", h.clear)
	g.DELETE("/:id", h.delete)
}
