package middleware

import (
	"net/http"
	"strings"

	apperrors "coin-rewards-backend/internal/common/errors"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key the bearer middleware stores the
// authenticated subject id under.
const UserIDKey = "user_id"

// TokenVerifier validates a bearer token and returns its subject id.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// RequireAuth rejects any request without a valid bearer token. Every
// authenticated handler sits behind this; there is no other way in.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: bearer token required"})
			return
		}

		subject, err := verifier.VerifyToken(token)
		if err != nil {
			msg := "Unauthorized: invalid token"
			if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeAuthExpired {
				msg = "Unauthorized: token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(UserIDKey, subject)
		c.Next()
	}
}

// AuthenticatedUserID returns the subject id set by RequireAuth.
func AuthenticatedUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
