package ratings

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
	ratingService *Service
	mangaService  *manga.Service
}

func (h *handler) retrieveMangaRatings(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Manga")
	}

	ratings, err := h.ratingService.RetrieveMangaRatings(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, ratings))
}

func (h *handler) add(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Manga")
	}

	// Bind params.
	params := AddRatingPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// 404 on a manga that doesn't exist rather than a FK failure.
	if _, err := h.mangaService.RetrieveManga(ctx, manga.RetrieveMangaOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	rating := &models.Rating{
		MangaID: id,
		Rating:  *params.Rating,
		Comment: params.Comment,
	}
	err = h.ratingService.AddRating(ctx, rating)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, rating))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Rating")
	}

	// Bind params.
	params := UpdateRatingPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	rating, err := h.ratingService.RetrieveRating(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateRatingOptions{Columns: []string{}}

	if params.Rating != nil && *params.Rating != rating.Rating {
		rating.Rating = *params.Rating
		opts.Columns = append(opts.Columns, "rating")
	}
	if params.Comment != nil {
		rating.Comment = params.Comment
		opts.Columns = append(opts.Columns, "comment")
	}

	err = h.ratingService.UpdateRating(ctx, rating, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, rating))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Rating")
	}

	rating, err := h.ratingService.RetrieveRating(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.ratingService.DeleteRating(ctx, rating)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.ratingService.Stats(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, stats))
}
