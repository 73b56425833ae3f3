package images

import (
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/config"
	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/libraries"
	"github.com/picamanga/pica/pkg/pathguard"
	"github.com/pkg/errors"
	echologger "github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	cfg            *config.Config
	libraryService *libraries.Service
}

// serve streams an image file to the client. The content type comes from
// sniffing the file, not from its extension.
func (h *handler) serve(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ServeImageQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	libs, err := h.libraryService.ListLibraries(ctx, libraries.ListLibrariesOptions{ActiveOnly: true})
	if err != nil {
		return errors.WithStack(err)
	}
	roots := make([]string, 0, len(libs)+len(h.cfg.LibraryRoots))
	for _, lib := range libs {
		roots = append(roots, lib.Filepath)
	}
	roots = append(roots, h.cfg.LibraryRoots...)

	if !pathguard.Allowed(params.Path, roots) {
		echologger.FromEchoContext(c).
			Data(logger.Data{"path": params.Path}).
			Warn("rejected image path outside library roots")
		return errcodes.PathTraversalRejected()
	}

	mime, err := mimetype.DetectFile(params.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return errcodes.NotFound("Image")
		}
		return errors.WithStack(err)
	}

	f, err := os.Open(params.Path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	return errors.WithStack(c.Stream(http.StatusOK, mime.String(), f))
}
