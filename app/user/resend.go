package user

import (
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/app/reply"
	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resendBody struct {
	Username string `json:"username"`
}

func UserResendCode(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data resendBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.Fail(c, http.StatusBadRequest, "Invalid request body")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.Accounts.ResendCode(c.Request.Context(), data.Username); err != nil {
		reply.Error(c, err, "Failed to resend verification code")
		return
	}

	reply.OK(c, http.StatusOK, "A new verification code has been sent")
}
