package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImageStore saves and resolves product images.
type ImageStore interface {
	Save(upload, name string, r io.Reader) (string, error)
	Path(filename string) (string, error)
}

// Reporter builds production reports.
type Reporter interface {
	Rows(ctx context.Context, date string) ([][]interface{}, error)
	Summary(ctx context.Context, date string) (string, error)
	Export(ctx context.Context, dates []string) (int, error)
	Exported(ctx context.Context) ([][]interface{}, error)
}

// MediaHandler serves product images and production reports.
type MediaHandler struct {
	images   ImageStore
	reporter Reporter
	logger   *zap.Logger
}

// NewMediaHandler constructs the HTTP handler adapter.
func NewMediaHandler(images ImageStore, reporter Reporter, logger *zap.Logger) *MediaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaHandler{images: images, reporter: reporter, logger: logger}
}

type exportRequest struct {
	Dates []string `json:"dates"`
}

// UploadImage stores a JPEG sent as the "image" multipart field.
func (h *MediaHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "No image file provided")
		return
	}
	file, err := header.Open()
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	defer file.Close()

	path, err := h.images.Save(header.Filename, c.PostForm("fileName"), file)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"imagePath": path})
}

// Image serves a stored image.
func (h *MediaHandler) Image(c *gin.Context) {
	path, err := h.images.Path(c.Param("filename"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.File(path)
}

// Report returns a date's production rows and summary.
func (h *MediaHandler) Report(c *gin.Context) {
	date := c.Param("date")
	rows, err := h.reporter.Rows(c.Request.Context(), date)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	summary, err := h.reporter.Summary(c.Request.Context(), date)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	if rows == nil {
		rows = [][]interface{}{}
	}
	respond(c, http.StatusOK, gin.H{"date": date, "rows": rows, "summary": summary})
}

// Export writes the production sheet for the requested dates, or every visible date.
func (h *MediaHandler) Export(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	n, err := h.reporter.Export(c.Request.Context(), req.Dates)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"rows": n})
}

// Exported returns the current content of the production sheet.
func (h *MediaHandler) Exported(c *gin.Context) {
	rows, err := h.reporter.Exported(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"rows": rows})
}
