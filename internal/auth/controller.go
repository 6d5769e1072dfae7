package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"instaclone/internal/shared/utils/response"
	"instaclone/internal/users"
)

// Token endpoints keep the bare OAuth2 wire shapes ({"access_token": ...},
// {"detail": ...}) instead of the standard response envelope, so stock
// OAuth2 clients can consume them unchanged.
type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

func (ctrl *Controller) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid login form"})
		return
	}

	if err := ctrl.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Username and password are required"})
		return
	}

	resp, err := ctrl.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusNotFound, gin.H{"detail": "Incorrect username or password"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to login"})
		}
		return
	}

	// Browser clients authenticate through this cookie; API clients use
	// the Authorization header.
	c.SetCookie("bearer", resp.AccessToken, 0, "/", "", false, true)
	c.JSON(http.StatusOK, resp)
}

func (ctrl *Controller) RefreshToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Could not validate credentials"})
		return
	}

	resp, err := ctrl.service.Refresh(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token expired"})
		default:
			c.JSON(http.StatusForbidden, gin.H{"detail": "Could not validate credentials"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (ctrl *Controller) RecoverPasswordByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email is required"})
		return
	}

	err := ctrl.service.RecoverPasswordByEmail(c.Request.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "The user with this email does not exist in the system."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to start password recovery"})
		}
		return
	}

	c.JSON(http.StatusOK, response.Msg{Msg: "Password recovery email sent"})
}

func (ctrl *Controller) RecoverPasswordByUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Username is required"})
		return
	}

	err := ctrl.service.RecoverPasswordByUsername(c.Request.Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "The user with this username does not exist in the system."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to start password recovery"})
		}
		return
	}

	c.JSON(http.StatusOK, response.Msg{Msg: "Password recovery email sent"})
}

func (ctrl *Controller) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	if err := ctrl.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Token and a password of 8 to 14 characters are required"})
		return
	}

	err := ctrl.service.ResetPassword(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidResetToken):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid token"})
		case errors.Is(err, users.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "The user with this email does not exist in the system."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to reset password"})
		}
		return
	}

	c.JSON(http.StatusOK, response.Msg{Msg: "Password updated successfully"})
}

func (ctrl *Controller) Logout(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	jti, _ := c.Get("token_jti")
	jtiStr, _ := jti.(string)

	_ = ctrl.service.Logout(c.Request.Context(), userID.(string), jtiStr)

	c.SetCookie("bearer", "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}
