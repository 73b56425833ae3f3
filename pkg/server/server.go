package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/picamanga/pica/pkg/binder"
	"github.com/picamanga/pica/pkg/config"
	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/history"
	"github.com/picamanga/pica/pkg/images"
	"github.com/picamanga/pica/pkg/jobs"
	"github.com/picamanga/pica/pkg/libraries"
	"github.com/picamanga/pica/pkg/manga"
	"github.com/picamanga/pica/pkg/ratings"
	"github.com/picamanga/pica/pkg/tags"
	"github.com/picamanga/pica/pkg/thumbnails"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	registerRoutes(e, db, cfg)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func registerRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config) {
	scannerGroup := e.Group("/scanner")
	manga.RegisterScannerRoutesWithGroup(scannerGroup, db, cfg)

	mangaGroup := e.Group("/manga")
	manga.RegisterRoutesWithGroup(mangaGroup, db)
	tags.RegisterMangaRoutesWithGroup(mangaGroup, db)

	thumbnailsGroup := e.Group("/thumbnails")
	thumbnails.RegisterRoutesWithGroup(thumbnailsGroup, db, cfg)

	imagesGroup := e.Group("/images")
	images.RegisterRoutesWithGroup(imagesGroup, db, cfg)

	librariesGroup := e.Group("/libraries")
	libraries.RegisterRoutesWithGroup(librariesGroup, db)

	tagsGroup := e.Group("/tags")
	tags.RegisterRoutesWithGroup(tagsGroup, db)

	historyGroup := e.Group("/history")
	history.RegisterRoutesWithGroup(historyGroup, db)

	ratingsGroup := e.Group("/ratings")
	ratings.RegisterRoutesWithGroup(ratingsGroup, db)

	jobsGroup := e.Group("/jobs")
	jobs.RegisterRoutesWithGroup(jobsGroup, db)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
