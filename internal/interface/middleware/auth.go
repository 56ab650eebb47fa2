package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/argentumhq/argentum/internal/application"
	"github.com/argentumhq/argentum/pkg/response"
)

const (
	// CtxUserIDKey is the Gin context key carrying the authenticated user id.
	CtxUserIDKey = "userID"
	// CtxUserEmailKey carries the email claim of the verified token.
	CtxUserEmailKey = "userEmail"
)

// BearerAuth reads the Authorization header, verifies the access token, and
// injects the subject user id into the context. Expired and malformed
// tokens fail identically; both require re-authentication.
func BearerAuth(tokens application.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		const prefix = "Bearer "
		if raw == "" || !strings.HasPrefix(raw, prefix) {
			response.AbortDetail(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		claims, err := tokens.Verify(strings.TrimSpace(raw[len(prefix):]))
		if err != nil {
			response.AbortDetail(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if claims.Subject == "" {
			response.AbortDetail(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(CtxUserIDKey, claims.Subject)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Next()
	}
}
