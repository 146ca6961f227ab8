package http

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/folio-works/portfolio-backend/internal/media/upload"
	"github.com/folio-works/portfolio-backend/internal/projects/domain"
)

func (h *Handler) addImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "multipart form with files is required"})
		return
	}

	files, closeAll, err := openFiles(form.File["files"])
	defer closeAll()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "failed to read uploaded files"})
		return
	}

	g, err := h.gallery.AddImages(c.Request.Context(), c.Param("id"), files)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "gallery": galleryBody(g)})
}

func (h *Handler) replaceImages(c *gin.Context) {
	var req replaceImagesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	g, err := h.gallery.ReplaceAll(c.Request.Context(), c.Param("id"), req.Images)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "gallery": galleryBody(g)})
}

func (h *Handler) removeImage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "index must be an integer"})
		return
	}

	g, err := h.gallery.RemoveAt(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "gallery": galleryBody(g)})
}

// setPrimary sets image_url to any reference; null or absent clears it.
func (h *Handler) setPrimary(c *gin.Context) {
	var req setPrimaryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	g, err := h.gallery.SetPrimary(c.Request.Context(), c.Param("id"), req.ImageURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "gallery": galleryBody(g)})
}

func (h *Handler) uploadPrimary(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "file is required"})
		return
	}

	files, closeAll, err := openFiles([]*multipart.FileHeader{fh})
	defer closeAll()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "failed to read uploaded file"})
		return
	}

	g, err := h.gallery.UploadPrimary(c.Request.Context(), c.Param("id"), files[0])
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "gallery": galleryBody(g)})
}

func openFiles(headers []*multipart.FileHeader) ([]upload.File, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]upload.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		files = append(files, upload.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return files, closeAll, nil
}

func galleryBody(g *domain.Gallery) gin.H {
	return gin.H{
		"project_id": g.ProjectID,
		"image_url":  g.Primary,
		"images":     g.Images,
		"version":    g.Version,
	}
}
