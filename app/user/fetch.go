package user

import (
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/app/reply"
	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/gin-gonic/gin"
)

// UserFetch returns the signed in account. The dashboard builds the public
// profile link from it.
func UserFetch(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	user, err := d.Accounts.Fetch(c.Request.Context(), userID)
	if err != nil {
		reply.Error(c, err, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}
