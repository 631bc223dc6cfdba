package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/assinei/assinei-backend/internal/users"
	"github.com/assinei/assinei-backend/pkg/middleware"
)

// RegisterUserRoutes exposes the user directory. Listing is restricted to
// administrators; /users/me returns the caller's own account.
func RegisterUserRoutes(rg *gin.RouterGroup, svc *users.Service, adminOnly gin.HandlerFunc) {
	rg.GET("/users", adminOnly, func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
			return
		}
		c.JSON(http.StatusOK, list)
	})

	rg.GET("/users/me", func(c *gin.Context) {
		u, err := svc.Get(c.Request.Context(), middleware.SubjectFromContext(c))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusOK, u)
	})
}
