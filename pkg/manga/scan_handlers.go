package manga

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/config"
	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/jobs"
	"github.com/picamanga/pica/pkg/libraries"
	"github.com/picamanga/pica/pkg/models"
	"github.com/picamanga/pica/pkg/pathguard"
	"github.com/picamanga/pica/pkg/scanner"
	"github.com/pkg/errors"
	echologger "github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/logger"
)

type scanHandler struct {
	cfg            *config.Config
	mangaService   *Service
	libraryService *libraries.Service
	jobService     *jobs.Service
}

type scanResult struct {
	Title  string  `json:"title"`
	Path   string  `json:"path"`
	Status string  `json:"status"`
	Error  string  `json:"error,omitempty"`
}

type scanResponse struct {
	Scanned int           `json:"scanned"`
	Saved   int           `json:"saved"`
	Failed  int           `json:"failed"`
	Results []*scanResult `json:"results"`
}

// scan runs synchronously: the scanned tree is reconciled before the response
// goes out. One title failing to save never blocks the rest.
func (h *scanHandler) scan(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ScanPayload{}
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
			Warn("rejected scan path outside library roots")
		return errcodes.PathTraversalRejected()
	}

	libraryID := matchLibrary(params.Path, libs)

	var scanned []*scanner.Manga
	resp := &scanResponse{Results: []*scanResult{}}

	if params.Mode == "library" {
		var failed int
		scanned, failed, err = scanner.ScanLibrary(ctx, params.Path)
		if err != nil {
			return errors.WithStack(err)
		}
		resp.Failed = failed
	} else {
		single, err := scanner.ScanManga(params.Path)
		if err != nil {
			return errors.WithStack(err)
		}
		scanned = []*scanner.Manga{single}
	}
	resp.Scanned = len(scanned)

	seenPaths := make([]string, 0, len(scanned))
	for _, sm := range scanned {
		result := &scanResult{Title: sm.Title, Path: sm.Filepath, Status: "saved"}
		_, err := h.mangaService.ReconcileManga(ctx, libraryID, sm)
		if err != nil {
			echologger.FromEchoContext(c).
				Err(err).
				Warn("reconcile failed", logger.Data{"path": sm.Filepath})
			result.Status = "failed"
			result.Error = err.Error()
			resp.Failed++
		} else {
			seenPaths = append(seenPaths, sm.Filepath)
			resp.Saved++
		}
		resp.Results = append(resp.Results, result)
	}

	// A full library scan is the point where vanished titles get purged.
	if params.Mode == "library" && libraryID != nil && resp.Failed == 0 {
		_, err := h.mangaService.PurgeMissing(ctx, *libraryID, seenPaths)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

// rescan enqueues a worker job that re-walks every persisted manga directory.
func (h *scanHandler) rescan(c echo.Context) error {
	ctx := c.Request().Context()

	active, err := h.jobService.HasActiveJob(ctx, models.JobTypeRescan, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	if active {
		return errcodes.Conflict("A rescan job is already running or pending.")
	}

	job := &models.Job{
		Type:       models.JobTypeRescan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobRescanData{},
	}
	err = h.jobService.CreateJob(ctx, job)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusAccepted, job))
}

func (h *scanHandler) stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.mangaService.Stats(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, stats))
}

// matchLibrary finds the library whose root contains path, if any.
func matchLibrary(path string, libs []*models.Library) *int {
	for _, lib := range libs {
		if pathguard.Allowed(path, []string{lib.Filepath}) {
			id := lib.ID
			return &id
		}
	}
	return nil
}
