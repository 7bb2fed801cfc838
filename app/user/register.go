package user

import (
	"errors"
	"net/http"

	"github.com/Abhishek5chawan/WhisperLink/app/reply"
	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/Abhishek5chawan/WhisperLink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.Fail(c, http.StatusBadRequest, "Invalid request body")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user, err := d.Accounts.Register(c.Request.Context(), service.RegisterInput{
		Username: data.Username,
		Email:    data.Email,
		Password: data.Password,
	})
	if err != nil {
		// The account exists at this point, only the mail is missing
		if errors.Is(err, service.ErrMailDelivery) && user != nil {
			zap.L().Error("Failed to send verification email", zap.Error(err), zap.String("userID", user.ID), zap.String("requestID", requestID))

			reply.Fail(c, http.StatusBadGateway, "Account created but the verification email could not be sent. Please request a new code")
			return
		}

		reply.Error(c, err, "Failed to register user")
		return
	}

	reply.OK(c, http.StatusCreated, "User registered successfully. Please verify your email", gin.H{
		"username": user.Username,
	})
}
