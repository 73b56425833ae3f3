package libraries

import (
	"context"
	"database/sql"
	"testing"

	"github.com/picamanga/pica/pkg/errcodes"
	"github.com/picamanga/pica/pkg/migrations"
	"github.com/picamanga/pica/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestService(t *testing.T) (*Service, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.RegisterModel((*models.MangaTag)(nil))
	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	return NewService(db), db
}

func TestLibraryCRUD(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)

	library := &models.Library{Name: "Main", Filepath: "/library", IsActive: true}
	require.NoError(t, svc.CreateLibrary(ctx, library))
	require.NotZero(t, library.ID)

	t.Run("retrieve includes manga count", func(t *testing.T) {
		m := &models.Manga{LibraryID: &library.ID, Title: "One Piece", Filepath: "/library/One Piece"}
		_, err := db.NewInsert().Model(m).Exec(ctx)
		require.NoError(t, err)

		retrieved, err := svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &library.ID})
		require.NoError(t, err)
		assert.Equal(t, "Main", retrieved.Name)
		assert.Equal(t, 1, retrieved.MangaCount)
	})

	t.Run("list filters inactive libraries", func(t *testing.T) {
		inactive := &models.Library{Name: "Archive", Filepath: "/archive", IsActive: false}
		require.NoError(t, svc.CreateLibrary(ctx, inactive))

		all, total, err := svc.ListLibrariesWithTotal(ctx, ListLibrariesOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, all, 2)

		active, err := svc.ListLibraries(ctx, ListLibrariesOptions{ActiveOnly: true})
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, library.ID, active[0].ID)
	})

	t.Run("update changes only the given columns", func(t *testing.T) {
		library.Name = "Primary"
		library.IsActive = false
		require.NoError(t, svc.UpdateLibrary(ctx, library, UpdateLibraryOptions{Columns: []string{"name"}}))

		retrieved, err := svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &library.ID})
		require.NoError(t, err)
		assert.Equal(t, "Primary", retrieved.Name)
		assert.True(t, retrieved.IsActive)
	})

	t.Run("delete leaves manga rows behind", func(t *testing.T) {
		require.NoError(t, svc.DeleteLibrary(ctx, library))

		_, err := svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &library.ID})
		assert.ErrorIs(t, err, errcodes.NotFound("Library"))

		count, err := db.NewSelect().Model((*models.Manga)(nil)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
