package libraries

import (
	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/jobs"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers library routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		libraryService: NewService(db),
		jobService:     jobs.NewService(db),
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.POST("/:id", h.update)
	g.DELETE("/:id", h.delete)
}
