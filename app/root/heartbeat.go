// Package root holds endpoints that don't belong to a resource
package root

import (
	"errors"
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/Abhishek5chawan/WhisperLink/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Heartbeat answers 200 while the store is reachable
func Heartbeat(c *gin.Context, d *internal.Deps) {
	if _, err := d.Store.FindByID(c.Request.Context(), "heartbeat"); err != nil && !errors.Is(err, store.ErrNotFound) {
		zap.L().Warn("Heartbeat store check failed", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
		c.Status(http.StatusServiceUnavailable)
		return
	}

	c.Status(http.StatusOK)
}
