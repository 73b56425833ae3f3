package thumbnails

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/picamanga/pica/pkg/binder"
	"github.com/picamanga/pica/pkg/config"
	"github.com/picamanga/pica/pkg/libraries"
	"github.com/picamanga/pica/pkg/manga"
	"github.com/picamanga/pica/pkg/migrations"
	"github.com/picamanga/pica/pkg/models"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestServer(t *testing.T) (*echo.Echo, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.RegisterModel((*models.MangaTag)(nil))
	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b

	h := &handler{
		cache:          newTestCache(t),
		cfg:            &config.Config{},
		libraryService: libraries.NewService(db),
		mangaService:   manga.NewService(db),
	}
	e.POST("/thumbnails/generate-all", h.generateAll)

	return e, db
}

func TestGenerateAll(t *testing.T) {
	ctx := context.Background()
	e, db := newTestServer(t)

	cover := filepath.Join(t.TempDir(), "cover.png")
	writeTestImage(t, cover, 600, 800)

	withCover := &models.Manga{Title: "Akira", Filepath: "/library/Akira", CoverPath: pointerutil.String(cover)}
	noCover := &models.Manga{Title: "Dororo", Filepath: "/library/Dororo"}
	badCover := &models.Manga{Title: "Blame", Filepath: "/library/Blame", CoverPath: pointerutil.String("/nope/missing.png")}
	for _, m := range []*models.Manga{withCover, noCover, badCover} {
		_, err := db.NewInsert().Model(m).Exec(ctx)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/thumbnails/generate-all", nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Total     int `json:"total"`
		Generated int `json:"generated"`
		Failed    int `json:"failed"`
		Results   []struct {
			MangaID int    `json:"manga_id"`
			Status  string `json:"status"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	// Coverless manga are skipped rather than counted as failures.
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Generated)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)

	statuses := map[int]string{}
	for _, r := range resp.Results {
		statuses[r.MangaID] = r.Status
	}
	assert.Equal(t, "success", statuses[withCover.ID])
	assert.Equal(t, "failed", statuses[badCover.ID])
}
