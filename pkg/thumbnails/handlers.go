package thumbnails

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/config"
	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/libraries"
	"github.com/picamanga/pica/pkg/manga"
	"github.com/picamanga/pica/pkg/pathguard"
	"github.com/pkg/errors"
	echologger "github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	cache          *Cache
	cfg            *config.Config
	libraryService *libraries.Service
	mangaService   *manga.Service
}

// allowedRoots collects the directories a thumbnail request may read from:
// the paths of every active library plus any roots configured through the
// environment.
func (h *handler) allowedRoots(c echo.Context) ([]string, error) {
	ctx := c.Request().Context()

	libs, err := h.libraryService.ListLibraries(ctx, libraries.ListLibrariesOptions{ActiveOnly: true})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	roots := make([]string, 0, len(libs)+len(h.cfg.LibraryRoots))
	for _, lib := range libs {
		roots = append(roots, lib.Filepath)
	}
	roots = append(roots, h.cfg.LibraryRoots...)
	return roots, nil
}

func (h *handler) generate(c echo.Context) error {
	params := GenerateThumbnailQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	roots, err := h.allowedRoots(c)
	if err != nil {
		return errors.WithStack(err)
	}
	if !pathguard.Allowed(params.Path, roots) {
		echologger.FromEchoContext(c).
			Data(logger.Data{"path": params.Path}).
			Warn("rejected thumbnail path outside library roots")
		return errcodes.PathTraversalRejected()
	}

	thumbPath, err := h.cache.Get(params.Path, params.Size)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.File(thumbPath))
}

type batchResponseItem struct {
	MangaID int `json:"manga_id"`
	BatchResult
}

func (h *handler) batch(c echo.Context) error {
	ctx := c.Request().Context()

	params := BatchThumbnailsPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	mangaList, err := h.mangaService.ListManga(ctx, manga.ListMangaOptions{IDs: params.MangaIDs})
	if err != nil {
		return errors.WithStack(err)
	}

	byID := map[int]*batchResponseItem{}
	covers := []string{}
	coverOwners := []int{}
	for _, m := range mangaList {
		if m.CoverPath == nil || *m.CoverPath == "" {
			byID[m.ID] = &batchResponseItem{
				MangaID:     m.ID,
				BatchResult: BatchResult{Status: "failed", Error: "Manga has no cover image."},
			}
			continue
		}
		covers = append(covers, *m.CoverPath)
		coverOwners = append(coverOwners, m.ID)
	}

	// Cover paths were recorded by the scanner, so they don't go through the
	// path allow-list again.
	for i, result := range h.cache.Batch(covers, params.Size) {
		byID[coverOwners[i]] = &batchResponseItem{MangaID: coverOwners[i], BatchResult: result}
	}

	items := make([]*batchResponseItem, 0, len(params.MangaIDs))
	for _, id := range params.MangaIDs {
		item, ok := byID[id]
		if !ok {
			item = &batchResponseItem{
				MangaID:     id,
				BatchResult: BatchResult{Status: "failed", Error: "Manga not found."},
			}
		}
		items = append(items, item)
	}

	resp := struct {
		Results []*batchResponseItem `json:"results"`
		Total   int                  `json:"total"`
	}{items, len(items)}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

// generateAll warms the cache for the cover of every manga in the database.
// Manga without a cover are skipped rather than reported as failures.
func (h *handler) generateAll(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params. The body is optional; a bare POST warms at the default
	// size.
	c.Set("disallow_empty_body", false)
	params := GenerateAllPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	mangaList, err := h.mangaService.ListManga(ctx, manga.ListMangaOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	covers := []string{}
	coverOwners := []int{}
	for _, m := range mangaList {
		if m.CoverPath == nil || *m.CoverPath == "" {
			continue
		}
		covers = append(covers, *m.CoverPath)
		coverOwners = append(coverOwners, m.ID)
	}

	generated := 0
	failed := 0
	items := make([]*batchResponseItem, 0, len(covers))
	for i, result := range h.cache.Batch(covers, params.Size) {
		if result.Status == "failed" {
			failed++
		} else {
			generated++
		}
		items = append(items, &batchResponseItem{MangaID: coverOwners[i], BatchResult: result})
	}

	resp := struct {
		Total     int                  `json:"total"`
		Generated int                  `json:"generated"`
		Failed    int                  `json:"failed"`
		Results   []*batchResponseItem `json:"results"`
	}{len(covers), generated, failed, items}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) cleanCache(c echo.Context) error {
	params := CleanCacheQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	removed, err := h.cache.Evict(time.Duration(params.MaxAgeDays) * 24 * time.Hour)
	if err != nil {
		return errors.WithStack(err)
	}

	echologger.FromEchoContext(c).
		Data(logger.Data{"removed": removed, "max_age_days": params.MaxAgeDays}).
		Info("cleaned thumbnail cache")

	resp := struct {
		Removed int `json:"removed"`
	}{removed}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) stats(c echo.Context) error {
	stats, err := h.cache.Stats()
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, stats))
}
