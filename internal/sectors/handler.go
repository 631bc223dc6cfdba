package sectors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/assinei/assinei-backend/internal/document"
)

type createRequest struct {
	Name string `json:"name" binding:"required"`
}

// RegisterSectorRoutes mounts the sector CRUD endpoints. Creation and
// deletion are expected to sit behind an admin guard.
func RegisterSectorRoutes(rg *gin.RouterGroup, svc *Service, adminOnly gin.HandlerFunc) {
	rg.GET("/sectors", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sectors"})
			return
		}
		c.JSON(http.StatusOK, list)
	})

	rg.GET("/sectors/:id", func(c *gin.Context) {
		s, err := svc.Get(c.Request.Context(), c.Param("id"))
		if errors.Is(err, document.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sector not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sector"})
			return
		}
		c.JSON(http.StatusOK, s)
	})

	rg.POST("/sectors", adminOnly, func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		s, err := svc.Create(c.Request.Context(), req.Name)
		if errors.Is(err, document.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "sector already exists"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create sector"})
			return
		}
		c.JSON(http.StatusCreated, s)
	})

	rg.DELETE("/sectors/:id", adminOnly, func(c *gin.Context) {
		err := svc.Delete(c.Request.Context(), c.Param("id"))
		if errors.Is(err, document.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sector not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete sector"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}
