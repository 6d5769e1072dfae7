package users

import (
	"github.com/gin-gonic/gin"

	"instaclone/internal/shared/config"
	"instaclone/internal/shared/middleware"
)

func SetupUserRoutes(router *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	users := router.Group("/user")
	{
		// Registration is the only public user route
		users.POST("/register-user", controller.Register)

		protected := users.Group("")
		protected.Use(middleware.JWTAuth(cfg))
		{
			protected.GET("/get-me", controller.GetMe)                     // GET /api/v1/user/get-me
			protected.GET("/get-user/:user_id", controller.GetUser)        // GET /api/v1/user/get-user/:user_id
			protected.GET("/get-all-users", controller.GetAllUsers)        // GET /api/v1/user/get-all-users
			protected.PUT("/update-user/:user_id", controller.UpdateUser)  // PUT /api/v1/user/update-user/:user_id
			protected.DELETE("/delete-user/:user_id", controller.DeleteUser)
		}
	}
}
