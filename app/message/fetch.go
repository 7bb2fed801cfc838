package message

import (
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/app/reply"
	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/gin-gonic/gin"
)

func MessageFetch(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	messages, err := d.Inbox.List(c.Request.Context(), userID)
	if err != nil {
		reply.Error(c, err, "Failed to fetch messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": messages,
	})
}
