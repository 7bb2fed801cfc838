package user

import (
	"errors"
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/app/reply"
	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/Abhishek5chawan/WhisperLink/internal/service"
	"github.com/gin-gonic/gin"
)

// UserCheckUnique is used by the sign up form while the user types
func UserCheckUnique(c *gin.Context, d *internal.Deps) {
	err := d.Accounts.CheckUsername(c.Request.Context(), c.Query("username"))
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success":        false,
				"message":        "Invalid username",
				"usernameErrors": []string{verr.Error()},
			})
			return
		}

		reply.Error(c, err, "Failed to check if username is unique")
		return
	}

	reply.OK(c, http.StatusOK, "Username is available")
}
