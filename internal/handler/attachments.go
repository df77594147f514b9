package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/apierror"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/service"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the file size for form fields and
// part headers.
const multipartOverhead = 1 << 20

type AttachmentsHandler struct {
	svc      service.AttachmentService
	maxBytes int64
}

func NewAttachmentsHandler(svc service.AttachmentService, maxBytes int64) *AttachmentsHandler {
	return &AttachmentsHandler{svc: svc, maxBytes: maxBytes}
}

// List GET /v1/contracts/:id/attachments
func (h *AttachmentsHandler) List(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Upload POST /v1/contracts/:id/attachments (multipart: file, description, is_public)
func (h *AttachmentsHandler) Upload(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	up, file, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	resp, err := h.svc.Upload(c.Request.Context(), id, actorID(c), up)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Download GET /v1/attachments/:id/download returns a short-lived URL.
func (h *AttachmentsHandler) Download(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Download(c.Request.Context(), id, actorID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete DELETE /v1/attachments/:id
func (h *AttachmentsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadDocument PUT /v1/contracts/:id/documents/:kind (multipart: file)
func (h *AttachmentsHandler) UploadDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	up, file, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	resp, err := h.svc.UploadDocument(c.Request.Context(), id, c.Param("kind"), actorID(c), up)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Document GET /v1/contracts/:id/documents/:kind
func (h *AttachmentsHandler) Document(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.DocumentURL(c.Request.Context(), id, c.Param("kind"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// readUpload opens the "file" part. The caller closes the returned file.
func (h *AttachmentsHandler) readUpload(c *gin.Context) (service.Upload, multipart.File, bool) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, apierror.New("File too large"))
			return service.Upload{}, nil, false
		}
		c.JSON(http.StatusBadRequest, apierror.New("file is required"))
		return service.Upload{}, nil, false
	}
	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Could not read file"))
		return service.Upload{}, nil, false
	}

	up := service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        file,
		IsPublic:    c.PostForm("is_public") == "true",
	}
	if d := strings.TrimSpace(c.PostForm("description")); d != "" {
		up.Description = &d
	}
	return up, file, true
}
