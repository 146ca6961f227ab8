package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folio-works/portfolio-backend/internal/cache"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		checks     map[string]Check
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "no dependencies",
			wantStatus: "healthy",
			wantChecks: map[string]string{},
		},
		{
			name: "all up",
			checks: map[string]Check{
				"db":    func(context.Context) error { return nil },
				"redis": func(context.Context) error { return nil },
			},
			wantStatus: "healthy",
			wantChecks: map[string]string{"db": "up", "redis": "up"},
		},
		{
			name: "db down",
			checks: map[string]Check{
				"db":    func(context.Context) error { return errors.New("connection refused") },
				"redis": func(context.Context) error { return nil },
			},
			wantStatus: "degraded",
			wantChecks: map[string]string{"db": "down", "redis": "up"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler("portfolio-api", "1.2.3", tt.checks).RegisterRoutes(r)

			for _, path := range []string{"/health", "/healthz"} {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				require.Equal(t, http.StatusOK, w.Code)

				var resp HealthResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantStatus, resp.Status)
				assert.Equal(t, "portfolio-api", resp.Service)
				assert.Equal(t, "1.2.3", resp.Version)
				if len(tt.wantChecks) == 0 {
					assert.Empty(t, resp.Checks)
				} else {
					assert.Equal(t, tt.wantChecks, resp.Checks)
				}
			}
		})
	}
}

func TestCacheFlush(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := cache.NewMemoryStore(time.Minute)
	require.NoError(t, store.Set(ctx, cache.KeyProjects, []byte(`[]`)))

	r := gin.New()
	NewCacheHandler(cache.New(store, zap.NewNop())).RegisterRoutes(r.Group("/admin"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/cache", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assert.Equal(t, 0, store.Len())
}
