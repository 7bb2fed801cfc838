package user

import (
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/app/reply"
	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/Abhishek5chawan/WhisperLink/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.Fail(c, http.StatusBadRequest, "Invalid request body")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user, err := d.Accounts.Authenticate(c.Request.Context(), data.Identifier, data.Password)
	if err != nil {
		reply.Error(c, err, "Failed to authenticate user")
		return
	}

	token, err := d.Sessions.Issue(user.ID, user.Username)
	if err != nil {
		reply.Fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to generate JWT auth token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(d.Sessions.TTL().Seconds()), "/", "", d.SecureCookies, true)

	reply.OK(c, http.StatusOK, "Signed in successfully", gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

func UserLogout(c *gin.Context, d *internal.Deps) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", d.SecureCookies, true)

	reply.OK(c, http.StatusOK, "Signed out")
}
