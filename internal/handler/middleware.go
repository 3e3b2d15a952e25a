package handler

import (
	"net/http"

	"Chatline/internal/auth"
	"Chatline/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userIDKey = "userID"

// AuthMiddleware verifies the request credential and stores the user
// identity in the gin context. Source order mirrors the socket side:
// Authorization header (Bearer or legacy jwt= form), then the jwt
// cookie set at login.
func AuthMiddleware(verifier *auth.Verifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.TokenFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			if cookie, err := c.Cookie("jwt"); err == nil {
				token = cookie
			}
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			logger.Warn("request unauthorized",
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "invalid or expired token",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// currentUserID reads the identity AuthMiddleware stored.
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// abortWithServiceError maps a domain error onto the response, keeping
// the status code it carries when there is one.
func abortWithServiceError(c *gin.Context, err error) {
	if serr, ok := err.(*service.Error); ok {
		c.JSON(serr.Code, gin.H{"status": "error", "error": serr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "internal server error"})
}
