package message

import (
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/app/reply"
	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/gin-gonic/gin"
)

func MessageDelete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	if err := d.Inbox.Delete(c.Request.Context(), userID, c.Param("messageId")); err != nil {
		reply.Error(c, err, "Failed to delete message")
		return
	}

	reply.OK(c, http.StatusOK, "Message deleted")
}
