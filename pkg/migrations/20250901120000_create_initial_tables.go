package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE libraries (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				path TEXT NOT NULL UNIQUE,
				description TEXT,
				is_active BOOLEAN NOT NULL DEFAULT TRUE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE manga (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				library_id INTEGER REFERENCES libraries (id) ON DELETE SET NULL,
				title TEXT NOT NULL,
				path TEXT NOT NULL UNIQUE,
				cover_path TEXT,
				total_chapters INTEGER NOT NULL DEFAULT 0,
				total_pages INTEGER NOT NULL DEFAULT 0,
				is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
				rating REAL NOT NULL DEFAULT 0,
				rating_count INTEGER NOT NULL DEFAULT 0,
				last_read_at TIMESTAMPTZ
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_manga_library_id ON manga (library_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_manga_title ON manga (title)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE chapters (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				manga_id INTEGER NOT NULL REFERENCES manga (id) ON DELETE CASCADE,
				chapter_number REAL NOT NULL,
				title TEXT,
				path TEXT NOT NULL,
				page_count INTEGER NOT NULL DEFAULT 0,
				UNIQUE (manga_id, chapter_number)
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_chapters_manga_id ON chapters (manga_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE tags (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL UNIQUE,
				color TEXT NOT NULL DEFAULT '#6366f1'
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE manga_tags (
				manga_id INTEGER NOT NULL REFERENCES manga (id) ON DELETE CASCADE,
				tag_id INTEGER NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
				PRIMARY KEY (manga_id, tag_id)
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE reading_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				manga_id INTEGER NOT NULL REFERENCES manga (id) ON DELETE CASCADE,
				chapter_id INTEGER REFERENCES chapters (id) ON DELETE SET NULL,
				page_number INTEGER NOT NULL DEFAULT 1,
				progress REAL NOT NULL DEFAULT 0,
				read_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_reading_history_manga_id ON reading_history (manga_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE ratings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				manga_id INTEGER NOT NULL REFERENCES manga (id) ON DELETE CASCADE,
				rating REAL NOT NULL CHECK (rating >= 0 AND rating <= 10),
				comment TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_ratings_manga_id ON ratings (manga_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE jobs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				type TEXT NOT NULL,
				status TEXT NOT NULL,
				data TEXT NOT NULL,
				progress INTEGER NOT NULL DEFAULT 0,
				process_id TEXT,
				library_id INTEGER REFERENCES libraries (id) ON DELETE CASCADE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_jobs_status ON jobs (status)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		for _, table := range []string{"jobs", "ratings", "reading_history", "manga_tags", "tags", "chapters", "manga", "libraries"} {
			_, err := db.Exec("DROP TABLE IF EXISTS " + table)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
