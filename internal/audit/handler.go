package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RegisterAuditRoutes exposes the audit log to administrators.
func RegisterAuditRoutes(rg *gin.RouterGroup, svc *Service) {
	rg.GET("/audit-logs", func(c *gin.Context) {
		f := Filter{
			UserID:     c.Query("userId"),
			Action:     c.Query("action"),
			EntityType: c.Query("entityType"),
			EntityID:   c.Query("entityId"),
		}
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				f.Limit = n
			}
		}
		entries, err := svc.Find(c.Request.Context(), f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query audit log"})
			return
		}
		c.JSON(http.StatusOK, entries)
	})
}
