package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/equipskill/equipskill-dashboard/pkg/jwt"
	"github.com/equipskill/equipskill-dashboard/pkg/logger"
)

const (
	// UserIDKey holds the authenticated user id in the gin context.
	UserIDKey = "user_id"
	// ClaimsKey holds the *jwt.UserClaims of the request.
	ClaimsKey = "user_claims"
)

// BearerAuthMiddleware validates the Authorization: Bearer token and stores
// the caller's identity in the context.
func BearerAuthMiddleware(tokenManager *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Warn("Missing bearer token",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			abortUnauthorized(c, "Missing authentication token")
			return
		}

		claims, err := tokenManager.ValidateToken(token)
		if err != nil {
			logger.Warn("Invalid bearer token",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			if errors.Is(err, jwt.ErrExpiredToken) {
				abortUnauthorized(c, "Session expired")
			} else {
				abortUnauthorized(c, "Invalid authentication token")
			}
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside BearerAuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// Claims returns the request's token claims.
func Claims(c *gin.Context) (*jwt.UserClaims, bool) {
	val, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := val.(*jwt.UserClaims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
}
