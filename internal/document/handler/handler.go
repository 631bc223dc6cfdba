package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assinei/assinei-backend/internal/document"
	"github.com/assinei/assinei-backend/internal/document/service"
	"github.com/assinei/assinei-backend/internal/models"
	"github.com/assinei/assinei-backend/pkg/logger"
	"github.com/assinei/assinei-backend/pkg/middleware"
)

// FileStore is the object storage surface the handler needs. A nil store
// disables file upload and download, which keeps JSON-only deployments and
// tests working.
type FileStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	DeleteFile(ctx context.Context, key string) error
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Handler exposes the signing workflow over HTTP.
type Handler struct {
	eng   *service.Engine
	files FileStore
}

func New(eng *service.Engine, files FileStore) *Handler {
	return &Handler{eng: eng, files: files}
}

func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		ID:    middleware.SubjectFromContext(c),
		Admin: middleware.RoleFromContext(c) == models.RoleAdmin,
	}
}

// writeError maps workflow errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, document.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
	case errors.Is(err, document.ErrNotReady):
		c.JSON(http.StatusForbidden, gin.H{"error": "operation not allowed for this user right now"})
	case errors.Is(err, document.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": "document state does not allow this operation"})
	case errors.Is(err, document.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting concurrent change"})
	default:
		logger.Errorf("document handler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type createRequest struct {
	Title       string                   `json:"title" binding:"required"`
	Description string                   `json:"description"`
	Signatories []service.SignatoryInput `json:"signatories"`
}

// RegisterDocumentRoutes mounts the document workflow endpoints on rg, which
// is expected to sit behind the auth middleware.
func (h *Handler) RegisterDocumentRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.create)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.PATCH("/documents/:id", h.update)
	rg.DELETE("/documents/:id", h.delete)
	rg.GET("/documents/:id/download", h.download)
	rg.POST("/documents/:id/sign", h.sign)
	rg.POST("/documents/:id/reject", h.reject)
	rg.POST("/documents/:id/cancel", h.cancel)
	rg.GET("/documents/:id/signatures", h.listSignatures)
}

// create accepts either a plain JSON body or a multipart form carrying the
// PDF under "file" plus the metadata fields.
func (h *Handler) create(c *gin.Context) {
	actor := actorFrom(c)

	var req createRequest
	var storagePath string

	if form, err := c.MultipartForm(); err == nil && form != nil {
		req.Title = c.PostForm("title")
		req.Description = c.PostForm("description")
		if raw := c.PostForm("signatories"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Signatories); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signatories payload"})
				return
			}
		}
		if req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		fh, err := c.FormFile("file")
		if err == nil {
			if h.files == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "file storage is not configured"})
				return
			}
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
				return
			}
			defer f.Close()
			storagePath = uuid.NewString() + filepath.Ext(fh.Filename)
			contentType := fh.Header.Get("Content-Type")
			if err := h.files.UploadFile(c.Request.Context(), storagePath, f, fh.Size, contentType); err != nil {
				logger.Errorf("document upload: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
				return
			}
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	doc, err := h.eng.Create(c.Request.Context(), actor.ID, service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		StoragePath: storagePath,
		Signatories: req.Signatories,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.eng.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.eng.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patch := service.UpdatePatch{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		st := document.DocumentStatus(*req.Status)
		patch.Status = &st
		patch.AdminOverride = c.Query("override") == "true"
	}
	doc, err := h.eng.Update(c.Request.Context(), actorFrom(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) delete(c *gin.Context) {
	doc, err := h.eng.Delete(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if h.files != nil && doc.StoragePath != "" {
		if err := h.files.DeleteFile(c.Request.Context(), doc.StoragePath); err != nil {
			logger.Warnf("document delete: failed to remove stored file %s: %v", doc.StoragePath, err)
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) download(c *gin.Context) {
	doc, err := h.eng.Download(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if h.files == nil || doc.StoragePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "document has no stored file"})
		return
	}
	url, err := h.files.GetPresignedURL(c.Request.Context(), doc.StoragePath, 15*time.Minute)
	if err != nil {
		logger.Errorf("document download: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate download link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

type signRequest struct {
	Data     string                      `json:"data"`
	Position *document.SignaturePosition `json:"position"`
}

func (h *Handler) sign(c *gin.Context) {
	var req signRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sig, err := h.eng.Sign(c.Request.Context(), c.Param("id"), actorFrom(c).ID, service.SignRequest{
		Data:     req.Data,
		Position: req.Position,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sig)
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}
	if err := h.eng.Reject(c.Request.Context(), c.Param("id"), actorFrom(c).ID, req.Reason); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) cancel(c *gin.Context) {
	if err := h.eng.Cancel(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listSignatures(c *gin.Context) {
	sigs, err := h.eng.ListSignatures(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sigs)
}
