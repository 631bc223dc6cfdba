package notification

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StreamHandler exposes the hub as a server-sent-events stream for the
// authenticated user. The subscription lives for the duration of the request.
func StreamHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := ""
		if v, ok := c.Get("claims"); ok {
			if cm, ok2 := v.(map[string]interface{}); ok2 {
				userID, _ = cm["sub"].(string)
			}
		}
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}

		ch, cancel := hub.Subscribe(userID)
		defer cancel()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		c.Stream(func(w io.Writer) bool {
			select {
			case ev, ok := <-ch:
				if !ok {
					return false
				}
				c.SSEvent(ev.Type, ev.Data)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
