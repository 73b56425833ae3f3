package thumbnails

import (
	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/config"
	"github.com/picamanga/pica/pkg/libraries"
	"github.com/picamanga/pica/pkg/manga"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers thumbnail routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config) {
	h := &handler{
		cache:          NewCache(cfg.ThumbnailDir()),
		cfg:            cfg,
		libraryService: libraries.NewService(db),
		mangaService:   manga.NewService(db),
	}

	g.GET("/generate", h.generate)
	g.POST("/generate-all", h.generateAll)
	g.POST("/batch", h.batch)
	g.DELETE("/cache", h.cleanCache)
	g.GET("/stats", h.stats)
}
