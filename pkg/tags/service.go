package tags

import (
	"context"
	"database/sql"
	"time"

	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveTagOptions struct {
	ID   *int
	Name *string
}

type ListTagsOptions struct {
	Limit  *int
	Offset *int
	Search *string
}

type UpdateTagOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateTag(ctx context.Context, tag *models.Tag) error {
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now()
	}

	_, err := svc.db.
		NewInsert().
		Model(tag).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveTag(ctx context.Context, opts RetrieveTagOptions) (*models.Tag, error) {
	tag := &models.Tag{}

	q := svc.db.
		NewSelect().
		Model(tag).
		Column("t.*").
		ColumnExpr("(SELECT count(*) FROM manga_tags AS mt WHERE mt.tag_id = t.id) AS manga_count")

	if opts.ID != nil {
		q = q.Where("t.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("t.name = ?", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Tag")
		}
		return nil, errors.WithStack(err)
	}

	return tag, nil
}

func (svc *Service) ListTags(ctx context.Context, opts ListTagsOptions) ([]*models.Tag, int, error) {
	tags := []*models.Tag{}

	q := svc.db.
		NewSelect().
		Model(&tags).
		Column("t.*").
		ColumnExpr("(SELECT count(*) FROM manga_tags AS mt WHERE mt.tag_id = t.id) AS manga_count").
		Order("t.name ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("t.name LIKE ?", "%"+*opts.Search+"%")
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return tags, total, nil
}

func (svc *Service) UpdateTag(ctx context.Context, tag *models.Tag, opts UpdateTagOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	_, err := svc.db.
		NewUpdate().
		Model(tag).
		Column(opts.Columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) DeleteTag(ctx context.Context, tag *models.Tag) error {
	_, err := svc.db.
		NewDelete().
		Model(tag).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// SetMangaTags replaces a manga's tag set. Unknown names are created on the
// fly so tagging never needs a separate create round-trip.
func (svc *Service) SetMangaTags(ctx context.Context, mangaID int, names []string) ([]*models.Tag, error) {
	tags := make([]*models.Tag, 0, len(names))

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewDelete().
			Model((*models.MangaTag)(nil)).
			Where("manga_id = ?", mangaID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		for _, name := range names {
			tag := &models.Tag{CreatedAt: time.Now(), Name: name}
			_, err := tx.
				NewInsert().
				Model(tag).
				On("CONFLICT (name) DO UPDATE").
				Set("name = EXCLUDED.name").
				Returning("*").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			tags = append(tags, tag)

			link := &models.MangaTag{MangaID: mangaID, TagID: tag.ID}
			_, err = tx.
				NewInsert().
				Model(link).
				On("CONFLICT (manga_id, tag_id) DO NOTHING").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return tags, nil
}
