package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/assinei/assinei-backend/internal/config"
	"github.com/assinei/assinei-backend/internal/models"
	"github.com/assinei/assinei-backend/internal/sessions"
	"github.com/assinei/assinei-backend/internal/tokens"
)

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (map[string]interface{}, error)
}

// JWTVerifier verifies locally issued HS256 access tokens and consults the
// Redis blacklist for revoked ones.
type JWTVerifier struct {
	cfg *config.Config
}

func NewJWTVerifier(cfg *config.Config) *JWTVerifier {
	return &JWTVerifier{cfg: cfg}
}

func (v *JWTVerifier) Verify(ctx context.Context, raw string) (map[string]interface{}, error) {
	blacklisted, err := sessions.IsAccessTokenBlacklisted(ctx, raw)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, fmt.Errorf("token revoked")
	}
	claims, err := tokens.ParseAccessToken(v.cfg, raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using
// the provided verifier and stores the claims on the context.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		claims, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user carries the role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if RoleFromContext(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireRole for the admin role.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// SubjectFromContext returns the authenticated user id, or "".
func SubjectFromContext(c *gin.Context) string {
	return claimString(c, "sub")
}

// RoleFromContext returns the authenticated user's role, or "".
func RoleFromContext(c *gin.Context) string {
	return claimString(c, "role")
}

func claimString(c *gin.Context, key string) string {
	v, ok := c.Get("claims")
	if !ok {
		return ""
	}
	cm, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	s, _ := cm[key].(string)
	return s
}
