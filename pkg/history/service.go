package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type ListHistoryOptions struct {
	Limit   *int
	Offset  *int
	MangaID *int
	Since   *time.Time
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// RecordHistory saves one reading event and bumps the manga's last_read_at in
// the same transaction.
func (svc *Service) RecordHistory(ctx context.Context, entry *models.ReadingHistory) error {
	if entry.ReadAt.IsZero() {
		entry.ReadAt = time.Now()
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(entry).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewUpdate().
			Model((*models.Manga)(nil)).
			Set("last_read_at = ?", entry.ReadAt).
			Set("updated_at = ?", entry.ReadAt).
			Where("id = ?", entry.MangaID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	})
	return errors.WithStack(err)
}

func (svc *Service) ListHistory(ctx context.Context, opts ListHistoryOptions) ([]*models.ReadingHistory, int, error) {
	entries := []*models.ReadingHistory{}

	q := svc.db.
		NewSelect().
		Model(&entries).
		Column("rh.*").
		Relation("Manga").
		Relation("Chapter").
		Order("rh.read_at DESC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.MangaID != nil {
		q = q.Where("rh.manga_id = ?", *opts.MangaID)
	}
	if opts.Since != nil {
		q = q.Where("rh.read_at >= ?", *opts.Since)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return entries, total, nil
}

// ContinueReading returns the most recent history entry of each manga, newest
// first, so a client can resume where the reader left off.
func (svc *Service) ContinueReading(ctx context.Context, limit int) ([]*models.ReadingHistory, error) {
	entries := []*models.ReadingHistory{}

	err := svc.db.
		NewSelect().
		Model(&entries).
		Column("rh.*").
		Relation("Manga").
		Relation("Chapter").
		Where("rh.id = (SELECT rh2.id FROM reading_history AS rh2 WHERE rh2.manga_id = rh.manga_id ORDER BY rh2.read_at DESC, rh2.id DESC LIMIT 1)").
		Order("rh.read_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return entries, nil
}

func (svc *Service) DeleteHistory(ctx context.Context, id int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.ReadingHistory)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return errcodes.NotFound("History entry")
	}

	return nil
}

// ClearHistory deletes history entries, all of them or only those read before
// the cutoff when one is given.
func (svc *Service) ClearHistory(ctx context.Context, olderThan *time.Time) (int, error) {
	q := svc.db.
		NewDelete().
		Model((*models.ReadingHistory)(nil))
	if olderThan != nil {
		q = q.Where("read_at < ?", *olderThan)
	} else {
		q = q.Where("1 = 1")
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
