package message

import (
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/app/reply"
	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/gin-gonic/gin"
)

// MessageSuggest answers with plain text, suggestions separated by "||"
func MessageSuggest(c *gin.Context, d *internal.Deps) {
	text, err := d.Suggester.Suggest(c.Request.Context())
	if err != nil {
		reply.Error(c, err, "Failed to generate suggestions")
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
