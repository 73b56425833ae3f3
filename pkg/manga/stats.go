package manga

import (
	"context"

	"github.com/picamanga/pica/pkg/models"
	"github.com/pkg/errors"
)

type LibraryStats struct {
	TotalManga    int `json:"total_manga"`
	TotalChapters int `json:"total_chapters"`
	TotalPages    int `json:"total_pages"`
	TotalTags     int `json:"total_tags"`
	Favorites     int `json:"favorites"`

	RecentlyAdded []*models.Manga `json:"recently_added"`
	RecentlyRead  []*models.Manga `json:"recently_read"`
}

const recentLimit = 5

func (svc *Service) Stats(ctx context.Context) (*LibraryStats, error) {
	stats := &LibraryStats{
		RecentlyAdded: []*models.Manga{},
		RecentlyRead:  []*models.Manga{},
	}
	var err error

	stats.TotalManga, err = svc.db.NewSelect().Model((*models.Manga)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats.TotalChapters, err = svc.db.NewSelect().Model((*models.Chapter)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = svc.db.NewSelect().
		Model((*models.Manga)(nil)).
		ColumnExpr("coalesce(sum(total_pages), 0)").
		Scan(ctx, &stats.TotalPages)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats.TotalTags, err = svc.db.NewSelect().Model((*models.Tag)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats.Favorites, err = svc.db.NewSelect().
		Model((*models.Manga)(nil)).
		Where("is_favorite = ?", true).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = svc.db.NewSelect().
		Model(&stats.RecentlyAdded).
		Order("created_at DESC").
		Limit(recentLimit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = svc.db.NewSelect().
		Model(&stats.RecentlyRead).
		Where("last_read_at IS NOT NULL").
		Order("last_read_at DESC").
		Limit(recentLimit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return stats, nil
}
