package manga

import (
	"context"
	"database/sql"
	"time"

	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/models"
	"github.com/picamanga/pica/pkg/scanner"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveMangaOptions struct {
	ID       *int
	Filepath *string

	IncludeChapters bool
	IncludeTags     bool
}

type ListMangaOptions struct {
	Limit     *int
	Offset    *int
	IDs       []int
	LibraryID *int
	Search    *string
	Favorites *bool
}

type UpdateMangaOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveManga(ctx context.Context, opts RetrieveMangaOptions) (*models.Manga, error) {
	m := &models.Manga{}

	q := svc.db.
		NewSelect().
		Model(m).
		Column("m.*")

	if opts.IncludeChapters {
		q = q.Relation("Chapters", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("chapter_number ASC")
		})
	}
	if opts.IncludeTags {
		q = q.Relation("Tags", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("name ASC")
		})
	}

	if opts.ID != nil {
		q = q.Where("m.id = ?", *opts.ID)
	}
	if opts.Filepath != nil {
		q = q.Where("m.path = ?", *opts.Filepath)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Manga")
		}
		return nil, errors.WithStack(err)
	}

	return m, nil
}

func (svc *Service) RetrieveChapter(ctx context.Context, mangaID int, chapterNumber float64) (*models.Chapter, error) {
	ch := &models.Chapter{}

	err := svc.db.
		NewSelect().
		Model(ch).
		Where("ch.manga_id = ?", mangaID).
		Where("ch.chapter_number = ?", chapterNumber).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Chapter")
		}
		return nil, errors.WithStack(err)
	}

	return ch, nil
}

func (svc *Service) listMangaQuery(opts ListMangaOptions) (*[]*models.Manga, *bun.SelectQuery) {
	mangaList := &[]*models.Manga{}

	q := svc.db.
		NewSelect().
		Model(mangaList).
		Column("m.*").
		Order("m.title ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if len(opts.IDs) > 0 {
		q = q.Where("m.id IN (?)", bun.In(opts.IDs))
	}
	if opts.LibraryID != nil {
		q = q.Where("m.library_id = ?", *opts.LibraryID)
	}
	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("m.title LIKE ?", "%"+*opts.Search+"%")
	}
	if opts.Favorites != nil {
		q = q.Where("m.is_favorite = ?", *opts.Favorites)
	}

	return mangaList, q
}

func (svc *Service) ListManga(ctx context.Context, opts ListMangaOptions) ([]*models.Manga, error) {
	mangaList, q := svc.listMangaQuery(opts)

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return *mangaList, nil
}

func (svc *Service) ListMangaWithTotal(ctx context.Context, opts ListMangaOptions) ([]*models.Manga, int, error) {
	mangaList, q := svc.listMangaQuery(opts)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return *mangaList, total, nil
}

func (svc *Service) UpdateManga(ctx context.Context, m *models.Manga, opts UpdateMangaOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	m.UpdatedAt = time.Now()
	opts.Columns = append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(m).
		Column(opts.Columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// DeleteManga removes the manga row; chapters, tag links, and reading history
// go with it through the schema's cascades. Files on disk are untouched.
func (svc *Service) DeleteManga(ctx context.Context, m *models.Manga) error {
	_, err := svc.db.
		NewDelete().
		Model(m).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// ReconcileManga folds one scanned title into the database. The manga row is
// keyed by path, chapters by (manga_id, chapter_number); rows for chapters
// that no longer exist on disk are purged. Everything happens in one
// transaction so a half-reconciled title is never visible.
func (svc *Service) ReconcileManga(ctx context.Context, libraryID *int, scanned *scanner.Manga) (*models.Manga, error) {
	now := time.Now()

	m := &models.Manga{
		CreatedAt:     now,
		UpdatedAt:     now,
		LibraryID:     libraryID,
		Title:         scanned.Title,
		Filepath:      scanned.Filepath,
		CoverPath:     scanned.CoverPath,
		TotalChapters: scanned.TotalChapters,
		TotalPages:    scanned.TotalPages,
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(m).
			On("CONFLICT (path) DO UPDATE").
			Set("updated_at = EXCLUDED.updated_at").
			Set("library_id = EXCLUDED.library_id").
			Set("title = EXCLUDED.title").
			Set("cover_path = EXCLUDED.cover_path").
			Set("total_chapters = EXCLUDED.total_chapters").
			Set("total_pages = EXCLUDED.total_pages").
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		chapterNumbers := make([]float64, 0, len(scanned.Chapters))
		for _, scannedChapter := range scanned.Chapters {
			chapterNumbers = append(chapterNumbers, scannedChapter.ChapterNumber)

			ch := &models.Chapter{
				CreatedAt:     now,
				MangaID:       m.ID,
				ChapterNumber: scannedChapter.ChapterNumber,
				Title:         scannedChapter.Title,
				Filepath:      scannedChapter.Filepath,
				PageCount:     scannedChapter.PageCount,
			}
			_, err := tx.
				NewInsert().
				Model(ch).
				On("CONFLICT (manga_id, chapter_number) DO UPDATE").
				Set("title = EXCLUDED.title").
				Set("path = EXCLUDED.path").
				Set("page_count = EXCLUDED.page_count").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		// Purge chapter rows the scan no longer sees.
		purge := tx.
			NewDelete().
			Model((*models.Chapter)(nil)).
			Where("manga_id = ?", m.ID)
		if len(chapterNumbers) > 0 {
			purge = purge.Where("chapter_number NOT IN (?)", bun.In(chapterNumbers))
		}
		_, err = purge.Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return m, nil
}

// PurgeMissing deletes every manga row in a library whose path is not in
// seenPaths. It's the title-level counterpart of the chapter purge inside
// ReconcileManga and runs after a full library scan.
func (svc *Service) PurgeMissing(ctx context.Context, libraryID int, seenPaths []string) (int, error) {
	q := svc.db.
		NewDelete().
		Model((*models.Manga)(nil)).
		Where("library_id = ?", libraryID)
	if len(seenPaths) > 0 {
		q = q.Where("path NOT IN (?)", bun.In(seenPaths))
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return int(n), nil
}
