package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Abhishek5chawan/WhisperLink/internal/store"
	"github.com/Abhishek5chawan/WhisperLink/pkg/security"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const SessionCookie = "auth_token"

// NewJWTMiddleware resolves the caller's session from the auth_token cookie
// or a bearer token and sets userID and username on the context
func NewJWTMiddleware(sessions *security.Sessions, s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success":   false,
					"message":   "Not authenticated",
					"requestID": requestID,
				})
				return
			}

			tokenStr = cookie
		}

		claims, err := sessions.Parse(tokenStr)
		if err != nil {
			msg := "Session invalid. Please sign in again"
			if errors.Is(err, security.ErrSessionExpired) {
				msg = "Session expired. Please sign in again"
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"message":   msg,
				"requestID": requestID,
			})
			return
		}

		// The account may have been removed since the token was issued
		user, err := s.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"success":   false,
					"message":   "User not found",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"message":   "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
