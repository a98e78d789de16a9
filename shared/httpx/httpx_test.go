package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/petstore/shared/apperr"
	"github.com/cuongbtq/petstore/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeChecker struct {
	err error
}

func (f fakeChecker) HealthCheck(context.Context) error { return f.err }

func doRequest(t *testing.T, r http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestNewEngine_RootAndHealth(t *testing.T) {
	r := NewEngine("Petshop Service", logger.NewNop().Logger, fakeChecker{})

	w, body := doRequest(t, r, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Petshop Service", body["service"])

	w, body = doRequest(t, r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestNewEngine_UnhealthyDependency(t *testing.T) {
	r := NewEngine("Auth Service", logger.NewNop().Logger, fakeChecker{err: errors.New("db down")})

	w, body := doRequest(t, r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := NewEngine("Auth Service", logger.NewNop().Logger, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"not found", apperr.NotFound("Mascota"), http.StatusNotFound, "Mascota not found"},
		{"duplicate", apperr.Duplicate("Email"), http.StatusBadRequest, "Email already registered"},
		{"bare sentinel", apperr.ErrNotFound, http.StatusNotFound, "not found"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "Failed to do it"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) {
				WriteError(c, logger.NewNop().Logger, tt.err, "Failed to do it")
			})

			w, body := doRequest(t, r, http.MethodGet, "/")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantDetail, body["detail"])
		})
	}
}

func TestBindPage(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		want      Page
		wantError bool
	}{
		{"defaults", "", Page{Skip: 0, Limit: DefaultLimit}, false},
		{"explicit", "?skip=5&limit=10", Page{Skip: 5, Limit: 10}, false},
		{"capped", "?limit=5000", Page{Skip: 0, Limit: MaxLimit}, false},
		{"negative skip", "?skip=-1", Page{}, true},
		{"not a number", "?limit=abc", Page{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Page
			var gotErr error

			r := gin.New()
			r.GET("/", func(c *gin.Context) {
				got, gotErr = BindPage(c)
				c.Status(http.StatusOK)
			})
			doRequest(t, r, http.MethodGet, "/"+tt.query)

			if tt.wantError {
				require.Error(t, gotErr)
				assert.ErrorIs(t, gotErr, apperr.ErrInvalidInput)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParamID(t *testing.T) {
	tests := []struct {
		path    string
		want    int64
		wantErr bool
	}{
		{"/items/42", 42, false},
		{"/items/0", 0, true},
		{"/items/abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var got int64
			var gotErr error

			r := gin.New()
			r.GET("/items/:id", func(c *gin.Context) {
				got, gotErr = ParamID(c, "id")
				c.Status(http.StatusOK)
			})
			doRequest(t, r, http.MethodGet, tt.path)

			if tt.wantErr {
				assert.ErrorIs(t, gotErr, apperr.ErrInvalidInput)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUploadRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stored.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	upload := &Upload{Filename: "stock.csv", Path: path}
	require.NoError(t, upload.Remove())
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// already gone, or never stored
	assert.NoError(t, upload.Remove())
	assert.NoError(t, (&Upload{}).Remove())
}
