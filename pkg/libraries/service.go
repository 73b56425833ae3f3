package libraries

import (
	"context"
	"database/sql"
	"time"

	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveLibraryOptions struct {
	ID *int
}

type ListLibrariesOptions struct {
	Limit      *int
	Offset     *int
	ActiveOnly bool
}

type UpdateLibraryOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateLibrary(ctx context.Context, library *models.Library) error {
	now := time.Now()
	if library.CreatedAt.IsZero() {
		library.CreatedAt = now
	}
	library.UpdatedAt = library.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(library).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveLibrary(ctx context.Context, opts RetrieveLibraryOptions) (*models.Library, error) {
	library := &models.Library{}

	q := svc.db.
		NewSelect().
		Model(library).
		Column("l.*").
		ColumnExpr("(SELECT count(*) FROM manga AS m WHERE m.library_id = l.id) AS manga_count")

	if opts.ID != nil {
		q = q.Where("l.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Library")
		}
		return nil, errors.WithStack(err)
	}

	return library, nil
}

func (svc *Service) listLibrariesQuery(opts ListLibrariesOptions) (*[]*models.Library, *bun.SelectQuery) {
	libraries := &[]*models.Library{}

	q := svc.db.
		NewSelect().
		Model(libraries).
		Column("l.*").
		ColumnExpr("(SELECT count(*) FROM manga AS m WHERE m.library_id = l.id) AS manga_count").
		Order("l.name ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.ActiveOnly {
		q = q.Where("l.is_active = ?", true)
	}

	return libraries, q
}

func (svc *Service) ListLibraries(ctx context.Context, opts ListLibrariesOptions) ([]*models.Library, error) {
	libraries, q := svc.listLibrariesQuery(opts)

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return *libraries, nil
}

func (svc *Service) ListLibrariesWithTotal(ctx context.Context, opts ListLibrariesOptions) ([]*models.Library, int, error) {
	libraries, q := svc.listLibrariesQuery(opts)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return *libraries, total, nil
}

func (svc *Service) UpdateLibrary(ctx context.Context, library *models.Library, opts UpdateLibraryOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	library.UpdatedAt = time.Now()
	opts.Columns = append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(library).
		Column(opts.Columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// DeleteLibrary removes the library row. Manga rows keep existing with a null
// library_id; files on disk are untouched.
func (svc *Service) DeleteLibrary(ctx context.Context, library *models.Library) error {
	_, err := svc.db.
		NewDelete().
		Model(library).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
