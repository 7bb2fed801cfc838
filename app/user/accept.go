package user

import (
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/app/reply"
	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type acceptBody struct {
	AcceptMessages *bool `json:"acceptMessages"`
}

func UserAcceptStatus(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	accepting, err := d.Inbox.Accepting(c.Request.Context(), userID)
	if err != nil {
		reply.Error(c, err, "Failed to fetch accepting status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"isAcceptingMessages": accepting,
	})
}

func UserAcceptToggle(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data acceptBody
	if err := c.ShouldBindJSON(&data); err != nil || data.AcceptMessages == nil {
		reply.Fail(c, http.StatusBadRequest, "acceptMessages must be a boolean")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.Inbox.SetAccepting(c.Request.Context(), userID, *data.AcceptMessages); err != nil {
		reply.Error(c, err, "Failed to update accepting status")
		return
	}

	msg := "Messages are now turned off"
	if *data.AcceptMessages {
		msg = "Messages are now accepted"
	}

	reply.OK(c, http.StatusOK, msg, gin.H{
		"isAcceptingMessages": *data.AcceptMessages,
	})
}
