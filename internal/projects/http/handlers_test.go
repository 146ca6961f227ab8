package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folio-works/portfolio-backend/internal/cache"
	"github.com/folio-works/portfolio-backend/internal/events"
	"github.com/folio-works/portfolio-backend/internal/media/assethost"
	"github.com/folio-works/portfolio-backend/internal/media/ledger"
	"github.com/folio-works/portfolio-backend/internal/media/transform"
	"github.com/folio-works/portfolio-backend/internal/media/upload"
	"github.com/folio-works/portfolio-backend/internal/projects/repository"
	"github.com/folio-works/portfolio-backend/internal/projects/service"
)

type stubGateway struct {
	mu   sync.Mutex
	fail map[string]bool
}

func (g *stubGateway) Provider() string { return "stub" }

func (g *stubGateway) Upload(_ context.Context, u assethost.Upload) (string, error) {
	_, _ = io.Copy(io.Discard, u.Body)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail[u.Filename] {
		return "", &assethost.HostError{StatusCode: 400, Message: "Invalid image file"}
	}
	return "https://res.cloudinary.com/demo/image/upload/v1/portfolio/" + u.Filename, nil
}

type testEnv struct {
	router  *gin.Engine
	gateway *stubGateway
	repo    *repository.MemoryRepository
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepository()
	gw := &stubGateway{fail: map[string]bool{}}
	l := ledger.NewMemoryLedger()
	c := cache.New(cache.NewMemoryStore(time.Minute), zap.NewNop())
	bus := events.NewMemoryBus(zap.NewNop())

	projects := service.NewProjectService(repo, c, bus)
	gallery := service.NewGalleryService(repo, upload.NewOrchestrator(gw, l, time.Second, zap.NewNop()), l,
		service.NewLocalLocker(), c, bus, service.GalleryOptions{MaxAttempts: 3, Timeout: 5 * time.Second}, zap.NewNop())

	h := New(projects, gallery, transform.New(""))
	r := gin.New()
	h.RegisterPublic(r.Group("/api/v1"))
	h.RegisterAdmin(r.Group("/api/v1/admin"))

	return &testEnv{router: r, gateway: gw, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func (e *testEnv) doJSON(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	return e.do(t, method, path, strings.NewReader(body), "application/json")
}

func (e *testEnv) createProject(t *testing.T) string {
	t.Helper()
	w, out := e.doJSON(t, http.MethodPost, "/api/v1/admin/projects",
		`{"title":"Portfolio","description":"A personal portfolio site","tech_stack":["Go","React"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return out["project"].(map[string]any)["id"].(string)
}

type part struct {
	name, contentType string
	size              int
}

func multipartBody(t *testing.T, field string, parts []part) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, p.name))
		h.Set("Content-Type", p.contentType)
		pw, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(bytes.Repeat([]byte{0x89}, p.size))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func imagesOf(out map[string]any) []any {
	return out["gallery"].(map[string]any)["images"].([]any)
}

func TestProjectCRUD(t *testing.T) {
	env := setupRouter(t)
	id := env.createProject(t)

	t.Run("rejects short description", func(t *testing.T) {
		w, out := env.doJSON(t, http.MethodPost, "/api/v1/admin/projects", `{"title":"X","description":"short"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, out["ok"])
	})

	t.Run("list and get", func(t *testing.T) {
		w, out := env.doJSON(t, http.MethodGet, "/api/v1/projects", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, out["projects"], 1)

		w, out = env.doJSON(t, http.MethodGet, "/api/v1/projects/"+id, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Portfolio", out["project"].(map[string]any)["title"])
	})

	t.Run("update", func(t *testing.T) {
		w, out := env.doJSON(t, http.MethodPatch, "/api/v1/admin/projects/"+id,
			`{"title":"Portfolio v2","description":"A personal portfolio site"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Portfolio v2", out["project"].(map[string]any)["title"])
	})

	t.Run("delete", func(t *testing.T) {
		w, _ := env.doJSON(t, http.MethodDelete, "/api/v1/admin/projects/"+id, "")
		assert.Equal(t, http.StatusOK, w.Code)

		w, _ = env.doJSON(t, http.MethodGet, "/api/v1/projects/"+id, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAddImages(t *testing.T) {
	t.Run("two pngs keep submission order", func(t *testing.T) {
		env := setupRouter(t)
		id := env.createProject(t)

		body, ct := multipartBody(t, "files", []part{{"first.png", "image/png", 1 << 20}, {"second.png", "image/png", 1 << 20}})
		w, out := env.do(t, http.MethodPost, "/api/v1/admin/projects/"+id+"/images", body, ct)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		images := imagesOf(out)
		require.Len(t, images, 2)
		assert.Contains(t, images[0], "first.png")
		assert.Contains(t, images[1], "second.png")
	})

	t.Run("oversize file rejects batch", func(t *testing.T) {
		env := setupRouter(t)
		id := env.createProject(t)

		body, ct := multipartBody(t, "files", []part{{"a.png", "image/png", 10}, {"b.png", "image/png", 5<<20 + 1}})
		w, out := env.do(t, http.MethodPost, "/api/v1/admin/projects/"+id+"/images", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "size", out["constraint"])
		assert.Equal(t, float64(1), out["index"])

		p, err := env.repo.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Empty(t, p.Images)
	})

	t.Run("wrong type rejects batch", func(t *testing.T) {
		env := setupRouter(t)
		id := env.createProject(t)

		body, ct := multipartBody(t, "files", []part{{"a.gif", "image/gif", 10}})
		w, out := env.do(t, http.MethodPost, "/api/v1/admin/projects/"+id+"/images", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "type", out["constraint"])
	})

	t.Run("host failure reports orphans", func(t *testing.T) {
		env := setupRouter(t)
		env.gateway.fail["b.png"] = true
		id := env.createProject(t)

		body, ct := multipartBody(t, "files", []part{{"a.png", "image/png", 10}, {"b.png", "image/png", 10}})
		w, out := env.do(t, http.MethodPost, "/api/v1/admin/projects/"+id+"/images", body, ct)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, float64(1), out["index"])

		p, _ := env.repo.Get(context.Background(), id)
		assert.Empty(t, p.Images)
	})

	t.Run("no files", func(t *testing.T) {
		env := setupRouter(t)
		id := env.createProject(t)

		body, ct := multipartBody(t, "files", nil)
		w, out := env.do(t, http.MethodPost, "/api/v1/admin/projects/"+id+"/images", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "count", out["constraint"])
	})
}

func TestGalleryEditing(t *testing.T) {
	env := setupRouter(t)
	id := env.createProject(t)

	body, ct := multipartBody(t, "files", []part{{"1.png", "png", 10}, {"2.png", "png", 10}, {"3.png", "png", 10}})
	w, _ := env.do(t, http.MethodPost, "/api/v1/admin/projects/"+id+"/images", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, out := env.doJSON(t, http.MethodDelete, "/api/v1/admin/projects/"+id+"/images/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	images := imagesOf(out)
	require.Len(t, images, 2)
	assert.Contains(t, images[0], "1.png")
	assert.Contains(t, images[1], "3.png")

	w, out = env.doJSON(t, http.MethodDelete, "/api/v1/admin/projects/"+id+"/images/7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, imagesOf(out), 2)

	w, _ = env.doJSON(t, http.MethodDelete, "/api/v1/admin/projects/"+id+"/images/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	reordered := fmt.Sprintf(`{"images":[%q,%q]}`, images[1], images[0])
	w, out = env.doJSON(t, http.MethodPut, "/api/v1/admin/projects/"+id+"/images", reordered)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{images[1], images[0]}, imagesOf(out))

	w, out = env.doJSON(t, http.MethodPut, "/api/v1/admin/projects/"+id+"/primary", `{"image_url":"https://example.com/outside.png"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://example.com/outside.png", out["gallery"].(map[string]any)["image_url"])

	w, out = env.doJSON(t, http.MethodPut, "/api/v1/admin/projects/"+id+"/primary", `{"image_url":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, out["gallery"].(map[string]any)["image_url"])

	w, _ = env.doJSON(t, http.MethodDelete, "/api/v1/admin/projects/missing/images/0", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadPrimary(t *testing.T) {
	env := setupRouter(t)
	id := env.createProject(t)

	body, ct := multipartBody(t, "file", []part{{"hero.webp", "image/webp", 10}})
	w, out := env.do(t, http.MethodPost, "/api/v1/admin/projects/"+id+"/primary", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/portfolio/hero.webp", out["gallery"].(map[string]any)["image_url"])
	assert.Empty(t, imagesOf(out))

	w, _ = env.do(t, http.MethodPost, "/api/v1/admin/projects/"+id+"/primary", strings.NewReader(""), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMediaEndpoints(t *testing.T) {
	env := setupRouter(t)
	id := env.createProject(t)

	body, ct := multipartBody(t, "files", []part{{"shot.png", "image/png", 10}})
	w, _ := env.do(t, http.MethodPost, "/api/v1/admin/projects/"+id+"/images", body, ct)
	require.Equal(t, http.StatusOK, w.Code)

	w, out := env.doJSON(t, http.MethodGet, "/api/v1/projects/"+id+"/media?profile=mobile", "")
	require.Equal(t, http.StatusOK, w.Code)
	media := out["media"].(map[string]any)
	assert.Equal(t, "mobile", media["profile"])
	assert.Nil(t, media["primary"])
	gallery := media["gallery"].([]any)
	require.Len(t, gallery, 1)
	assert.Equal(t,
		"https://res.cloudinary.com/demo/image/upload/w_300,h_150,c_fill,q_auto:eco,f_auto,dpr_auto/v1/portfolio/shot.png",
		gallery[0].(map[string]any)["url"])

	w, out = env.doJSON(t, http.MethodGet, "/api/v1/projects/"+id+"/media?profile=poster", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "thumbnail", out["media"].(map[string]any)["profile"])

	w, out = env.doJSON(t, http.MethodGet, "/api/v1/media/url?ref=https://example.com/a.png&profile=preview", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://example.com/a.png", out["url"])

	w, _ = env.doJSON(t, http.MethodGet, "/api/v1/media/url", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
