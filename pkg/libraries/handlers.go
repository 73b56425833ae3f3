package libraries

import (
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/jobs"
	"github.com/picamanga/pica/pkg/models"
	"github.com/pkg/errors"
)

type handler struct {
	libraryService *Service
	jobService     *jobs.Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	info, err := os.Stat(params.Path)
	if err != nil || !info.IsDir() {
		return errcodes.InvalidPath(params.Path)
	}

	library := &models.Library{
		Name:        params.Name,
		Filepath:    params.Path,
		Description: params.Description,
		IsActive:    true,
	}

	err = h.libraryService.CreateLibrary(ctx, library)
	if err != nil {
		return errors.WithStack(err)
	}

	// A new library is scanned right away by the worker.
	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{},
		LibraryID:  &library.ID,
	}
	err = h.jobService.CreateJob(ctx, job)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, library))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, library))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListLibrariesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	libraries, total, err := h.libraryService.ListLibrariesWithTotal(ctx, ListLibrariesOptions{
		Limit:      &params.Limit,
		Offset:     &params.Offset,
		ActiveOnly: params.Active,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Libraries []*models.Library `json:"libraries"`
		Total     int               `json:"total"`
	}{libraries, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	// Bind params.
	params := UpdateLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateLibraryOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != library.Name {
		library.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Description != nil {
		library.Description = params.Description
		opts.Columns = append(opts.Columns, "description")
	}
	if params.IsActive != nil && *params.IsActive != library.IsActive {
		library.IsActive = *params.IsActive
		opts.Columns = append(opts.Columns, "is_active")
	}

	err = h.libraryService.UpdateLibrary(ctx, library, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, library))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.libraryService.DeleteLibrary(ctx, library)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
