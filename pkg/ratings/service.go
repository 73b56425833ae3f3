package ratings

import (
	"context"
	"database/sql"
	"time"

	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type UpdateRatingOptions struct {
	Columns []string
}

// MangaRatings is one manga's denormalized aggregate plus its individual
// rating entries.
type MangaRatings struct {
	MangaID       int              `json:"manga_id"`
	AverageRating float64          `json:"average_rating"`
	RatingCount   int              `json:"rating_count"`
	Ratings       []*models.Rating `json:"ratings"`
}

// RatingStats is the library-wide rating summary.
type RatingStats struct {
	RatedMangaCount int     `json:"rated_manga_count"`
	TotalRatings    int     `json:"total_ratings"`
	OverallAverage  float64 `json:"overall_average"`
	HighestRating   float64 `json:"highest_rating"`
	LowestRating    float64 `json:"lowest_rating"`

	TopRated []*models.Manga `json:"top_rated"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveMangaRatings(ctx context.Context, mangaID int) (*MangaRatings, error) {
	m := &models.Manga{}
	err := svc.db.
		NewSelect().
		Model(m).
		Column("m.rating", "m.rating_count").
		Where("m.id = ?", mangaID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Manga")
		}
		return nil, errors.WithStack(err)
	}

	entries := []*models.Rating{}
	err = svc.db.
		NewSelect().
		Model(&entries).
		Where("r.manga_id = ?", mangaID).
		Order("r.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &MangaRatings{
		MangaID:       mangaID,
		AverageRating: m.Rating,
		RatingCount:   m.RatingCount,
		Ratings:       entries,
	}, nil
}

func (svc *Service) RetrieveRating(ctx context.Context, id int) (*models.Rating, error) {
	rating := &models.Rating{}
	err := svc.db.
		NewSelect().
		Model(rating).
		Where("r.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Rating")
		}
		return nil, errors.WithStack(err)
	}
	return rating, nil
}

// AddRating inserts a new rating and recomputes the manga's aggregate in the
// same transaction.
func (svc *Service) AddRating(ctx context.Context, rating *models.Rating) error {
	now := time.Now()
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = now
	}
	rating.UpdatedAt = rating.CreatedAt

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(rating).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return svc.recomputeAggregate(ctx, tx, rating.MangaID)
	})
	return errors.WithStack(err)
}

func (svc *Service) UpdateRating(ctx context.Context, rating *models.Rating, opts UpdateRatingOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	rating.UpdatedAt = time.Now()
	opts.Columns = append(opts.Columns, "updated_at")

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewUpdate().
			Model(rating).
			Column(opts.Columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return svc.recomputeAggregate(ctx, tx, rating.MangaID)
	})
	return errors.WithStack(err)
}

func (svc *Service) DeleteRating(ctx context.Context, rating *models.Rating) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewDelete().
			Model(rating).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return svc.recomputeAggregate(ctx, tx, rating.MangaID)
	})
	return errors.WithStack(err)
}

// recomputeAggregate rewrites the denormalized rating/rating_count columns on
// the manga row from the surviving rating entries. With no entries left both
// columns go back to zero.
func (svc *Service) recomputeAggregate(ctx context.Context, tx bun.Tx, mangaID int) error {
	_, err := tx.
		NewUpdate().
		Model((*models.Manga)(nil)).
		Set("rating = (SELECT coalesce(avg(rating), 0) FROM ratings WHERE manga_id = ?)", mangaID).
		Set("rating_count = (SELECT count(*) FROM ratings WHERE manga_id = ?)", mangaID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", mangaID).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) Stats(ctx context.Context) (*RatingStats, error) {
	stats := &RatingStats{TopRated: []*models.Manga{}}

	err := svc.db.
		NewSelect().
		Model((*models.Rating)(nil)).
		ColumnExpr("count(DISTINCT manga_id)").
		ColumnExpr("count(*)").
		ColumnExpr("coalesce(avg(rating), 0)").
		ColumnExpr("coalesce(max(rating), 0)").
		ColumnExpr("coalesce(min(rating), 0)").
		Scan(ctx, &stats.RatedMangaCount, &stats.TotalRatings, &stats.OverallAverage, &stats.HighestRating, &stats.LowestRating)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = svc.db.
		NewSelect().
		Model(&stats.TopRated).
		Where("rating_count > 0").
		Order("rating DESC").
		Order("rating_count DESC").
		Limit(10).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return stats, nil
}
