package auth

import (
	"github.com/gin-gonic/gin"

	"instaclone/internal/shared/config"
	"instaclone/internal/shared/middleware"
)

func SetupAuthRoutes(router *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	authGroup := router.Group("/authentication")
	{
		authGroup.POST("/login", controller.Login)                                          // POST /api/v1/authentication/login
		authGroup.GET("/refresh_token", controller.RefreshToken)                            // GET /api/v1/authentication/refresh_token?token=
		authGroup.POST("/password-recovery-by-email", controller.RecoverPasswordByEmail)    // POST /api/v1/authentication/password-recovery-by-email?email=
		authGroup.POST("/password-recovery-by-username", controller.RecoverPasswordByUsername) // POST /api/v1/authentication/password-recovery-by-username?username=
		authGroup.POST("/reset-password", controller.ResetPassword)                         // POST /api/v1/authentication/reset-password

		protected := authGroup.Group("")
		protected.Use(middleware.JWTAuth(cfg))
		{
			protected.POST("/logout", controller.Logout) // POST /api/v1/authentication/logout
		}
	}
}
