package message

import (
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/app/reply"
	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type sendBody struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// MessageSend drops an anonymous message into someone's inbox. Nothing about
// the sender is stored.
func MessageSend(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data sendBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.Fail(c, http.StatusBadRequest, "Invalid request body")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if _, err := d.Inbox.Send(c.Request.Context(), data.Username, data.Content); err != nil {
		reply.Error(c, err, "Failed to send message")
		return
	}

	reply.OK(c, http.StatusCreated, "Message sent successfully")
}
