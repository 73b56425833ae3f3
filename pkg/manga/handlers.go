package manga

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/models"
	"github.com/picamanga/pica/pkg/scanner"
	"github.com/pkg/errors"
)

type handler struct {
	mangaService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Manga")
	}

	m, err := h.mangaService.RetrieveManga(ctx, RetrieveMangaOptions{
		ID:              &id,
		IncludeChapters: true,
		IncludeTags:     true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, m))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListMangaQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	mangaList, total, err := h.mangaService.ListMangaWithTotal(ctx, ListMangaOptions{
		Limit:     &params.Limit,
		Offset:    &params.Offset,
		LibraryID: params.LibraryID,
		Search:    params.Search,
		Favorites: params.Favorites,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Manga []*models.Manga `json:"manga"`
		Total int             `json:"total"`
	}{mangaList, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Manga")
	}

	// Bind params.
	params := UpdateMangaPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	m, err := h.mangaService.RetrieveManga(ctx, RetrieveMangaOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateMangaOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != m.Title {
		m.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.IsFavorite != nil && *params.IsFavorite != m.IsFavorite {
		m.IsFavorite = *params.IsFavorite
		opts.Columns = append(opts.Columns, "is_favorite")
	}

	err = h.mangaService.UpdateManga(ctx, m, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, m))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Manga")
	}

	m, err := h.mangaService.RetrieveManga(ctx, RetrieveMangaOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.mangaService.DeleteManga(ctx, m)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

// pages lists a chapter's page files, read from disk at request time so the
// response always reflects the current directory contents.
func (h *handler) pages(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Manga")
	}
	number, err := strconv.ParseFloat(c.Param("number"), 64)
	if err != nil {
		return errcodes.NotFound("Chapter")
	}

	ch, err := h.mangaService.RetrieveChapter(ctx, id, number)
	if err != nil {
		return errors.WithStack(err)
	}

	pages, err := scanner.ScanChapterPages(ch.Filepath)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Chapter *models.Chapter `json:"chapter"`
		Pages   []*scanner.Page `json:"pages"`
		Total   int             `json:"total"`
	}{ch, pages, len(pages)}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
