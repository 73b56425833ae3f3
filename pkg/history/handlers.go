package history

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/manga"
	"github.com/picamanga/pica/pkg/models"
	"github.com/pkg/errors"
)

type handler struct {
	historyService *Service
	mangaService   *manga.Service
}

func (h *handler) record(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := RecordHistoryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// 404 on a manga that doesn't exist rather than a FK failure.
	if _, err := h.mangaService.RetrieveManga(ctx, manga.RetrieveMangaOptions{ID: &params.MangaID}); err != nil {
		return errors.WithStack(err)
	}

	entry := &models.ReadingHistory{
		MangaID:    params.MangaID,
		ChapterID:  params.ChapterID,
		PageNumber: params.PageNumber,
		Progress:   params.Progress,
	}
	err := h.historyService.RecordHistory(ctx, entry)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, entry))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListHistoryQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListHistoryOptions{
		Limit:   &params.Limit,
		Offset:  &params.Offset,
		MangaID: params.MangaID,
	}
	if params.Since != "" {
		since, err := time.Parse("2006-01-02", params.Since)
		if err != nil {
			return errcodes.ValidationError(`"since" should be a date like 2020-01-01`)
		}
		opts.Since = &since
	}

	entries, total, err := h.historyService.ListHistory(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		History []*models.ReadingHistory `json:"history"`
		Total   int                      `json:"total"`
	}{entries, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) continueReading(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ContinueReadingQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	entries, err := h.historyService.ContinueReading(ctx, params.Limit)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		History []*models.ReadingHistory `json:"history"`
	}{entries}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("History entry")
	}

	err = h.historyService.DeleteHistory(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) clear(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ClearHistoryQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	var olderThan *time.Time
	if params.OlderThanDays != nil {
		cutoff := time.Now().AddDate(0, 0, -*params.OlderThanDays)
		olderThan = &cutoff
	}

	deleted, err := h.historyService.ClearHistory(ctx, olderThan)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Deleted int `json:"deleted"`
	}{deleted}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
