package manga

import (
	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/config"
	"github.com/picamanga/pica/pkg/jobs"
	"github.com/picamanga/pica/pkg/libraries"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers manga routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		mangaService: NewService(db),
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.GET("/:id/chapters/:number/pages", h.pages)
}

// RegisterScannerRoutesWithGroup registers scan routes on a pre-configured
// group.
func RegisterScannerRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config) {
	h := &scanHandler{
		cfg:            cfg,
		mangaService:   NewService(db),
		libraryService: libraries.NewService(db),
		jobService:     jobs.NewService(db),
	}

	g.POST("/scan", h.scan)
	g.POST("/rescan", h.rescan)
	g.GET("/stats", h.stats)
}
