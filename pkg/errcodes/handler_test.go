package errcodes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorResponse struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		StatusCode int    `json:"status_code"`
	} `json:"error"`
}

func doRequest(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, errorResponse) {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = NewHandler().Handle
	e.GET("/", h)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return rr, resp
}

func TestHandleCustomError(t *testing.T) {
	t.Parallel()

	rr, resp := doRequest(t, func(_ echo.Context) error {
		return NotFound("Manga")
	})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", resp.Error.Code)
	assert.Equal(t, "Manga not found.", resp.Error.Message)
	assert.Equal(t, http.StatusNotFound, resp.Error.StatusCode)
}

func TestHandleWrappedCustomError(t *testing.T) {
	t.Parallel()

	rr, resp := doRequest(t, func(_ echo.Context) error {
		return errors.Wrap(PathTraversalRejected(), "resolving image path")
	})

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "path_traversal_rejected", resp.Error.Code)
}

func TestHandleEchoError(t *testing.T) {
	t.Parallel()

	rr, resp := doRequest(t, func(_ echo.Context) error {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "method_not_allowed", resp.Error.Code)
	assert.Equal(t, "Method Not Allowed", resp.Error.Message)
}

func TestHandleGenericError(t *testing.T) {
	t.Parallel()

	rr, resp := doRequest(t, func(_ echo.Context) error {
		return errors.New("database exploded")
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal_server_error", resp.Error.Code)
	assert.Equal(t, "Internal Server Error", resp.Error.Message)
}
