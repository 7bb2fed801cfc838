package user

import (
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/app/reply"
	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type verifyBody struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

func UserVerify(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data verifyBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.Fail(c, http.StatusBadRequest, "Invalid request body")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if _, err := d.Accounts.Verify(c.Request.Context(), data.Username, data.Code); err != nil {
		reply.Error(c, err, "Failed to verify user")
		return
	}

	reply.OK(c, http.StatusOK, "User verified successfully")
}
