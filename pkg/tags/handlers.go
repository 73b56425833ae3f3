package tags

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/manga"
	"github.com/picamanga/pica/pkg/models"
	"github.com/pkg/errors"
)

type handler struct {
	tagService   *Service
	mangaService *manga.Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListTagsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	tags, total, err := h.tagService.ListTags(ctx, ListTagsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Tags  []*models.Tag `json:"tags"`
		Total int           `json:"total"`
	}{tags, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateTagPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if _, err := h.tagService.RetrieveTag(ctx, RetrieveTagOptions{Name: &params.Name}); err == nil {
		return errcodes.Conflict("A tag with this name already exists.")
	}

	tag := &models.Tag{
		Name:  params.Name,
		Color: params.Color,
	}
	err := h.tagService.CreateTag(ctx, tag)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, tag))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Tag")
	}

	// Bind params.
	params := UpdateTagPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	tag, err := h.tagService.RetrieveTag(ctx, RetrieveTagOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateTagOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != tag.Name {
		if _, err := h.tagService.RetrieveTag(ctx, RetrieveTagOptions{Name: params.Name}); err == nil {
			return errcodes.Conflict("A tag with this name already exists.")
		}
		tag.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Color != nil && *params.Color != tag.Color {
		tag.Color = *params.Color
		opts.Columns = append(opts.Columns, "color")
	}

	err = h.tagService.UpdateTag(ctx, tag, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, tag))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Tag")
	}

	tag, err := h.tagService.RetrieveTag(ctx, RetrieveTagOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.tagService.DeleteTag(ctx, tag)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) setMangaTags(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Manga")
	}

	// Bind params.
	params := SetMangaTagsPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	m, err := h.mangaService.RetrieveManga(ctx, manga.RetrieveMangaOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	tags, err := h.tagService.SetMangaTags(ctx, m.ID, params.Tags)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Tags []*models.Tag `json:"tags"`
	}{tags}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
