package images

import (
	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/config"
	"github.com/picamanga/pica/pkg/libraries"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers image routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config) {
	h := &handler{
		cfg:            cfg,
		libraryService: libraries.NewService(db),
	}

	g.GET("", h.serve)
}
