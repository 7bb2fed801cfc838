// Package reply writes the {success, message} bodies every endpoint answers with
package reply

import (
	"errors"
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func OK(c *gin.Context, status int, message string, extra ...gin.H) {
	body := gin.H{
		"success": true,
		"message": message,
	}

	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}

	c.JSON(status, body)
}

func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":   false,
		"message":   message,
		"requestID": c.GetString("requestID"),
	})
}

// Error maps a service error onto a status code. Anything not part of the
// service taxonomy is logged and answered with a generic message.
func Error(c *gin.Context, err error, logMsg string) {
	requestID := c.GetString("requestID")

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		zap.L().Debug(logMsg, zap.Error(err), zap.String("field", verr.Field), zap.String("requestID", requestID))
		Fail(c, http.StatusBadRequest, capitalize(verr.Error()))
		return
	}

	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		Fail(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrMessageNotFound):
		Fail(c, http.StatusNotFound, "Message not found")
	case errors.Is(err, service.ErrUsernameTaken):
		Fail(c, http.StatusConflict, "Username is already taken")
	case errors.Is(err, service.ErrEmailTaken):
		Fail(c, http.StatusConflict, "User already exists with this email")
	case errors.Is(err, service.ErrInvalidCode):
		Fail(c, http.StatusBadRequest, "Invalid code")
	case errors.Is(err, service.ErrCodeExpired):
		Fail(c, http.StatusBadRequest, "Code expired, please request a new one")
	case errors.Is(err, service.ErrAlreadyVerified):
		Fail(c, http.StatusBadRequest, "Account is already verified")
	case errors.Is(err, service.ErrInvalidCredentials):
		Fail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrNotVerified):
		Fail(c, http.StatusForbidden, "Please verify your account before signing in")
	case errors.Is(err, service.ErrNotAccepting):
		Fail(c, http.StatusForbidden, "User is not accepting messages")
	case errors.Is(err, service.ErrResendCooldown):
		Fail(c, http.StatusTooManyRequests, "A code was sent recently, please wait before requesting another")
	case errors.Is(err, service.ErrMailDelivery):
		zap.L().Error(logMsg, zap.Error(err), zap.String("requestID", requestID))
		Fail(c, http.StatusBadGateway, "Failed to send verification email, please request a new code")
	case errors.Is(err, service.ErrUpstream):
		zap.L().Error(logMsg, zap.Error(err), zap.String("requestID", requestID))
		Fail(c, http.StatusBadGateway, "Upstream service unavailable")
	default:
		zap.L().Error(logMsg, zap.Error(err), zap.String("requestID", requestID))
		Fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}

	return string(s[0]-'a'+'A') + s[1:]
}
