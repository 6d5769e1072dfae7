package posts

import (
	"github.com/gin-gonic/gin"

	"instaclone/internal/shared/config"
	"instaclone/internal/shared/middleware"
)

func SetupPostRoutes(router *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	postsGroup := router.Group("/post")
	postsGroup.Use(middleware.JWTAuth(cfg))
	{
		postsGroup.POST("/create-post", controller.CreatePost)              // POST /api/v1/post/create-post
		postsGroup.GET("/get-post/:post_id", controller.GetPost)            // GET /api/v1/post/get-post/:post_id
		postsGroup.GET("/get-all-posts", controller.GetAllPosts)            // GET /api/v1/post/get-all-posts
		postsGroup.GET("/get-user-posts/:user_id", controller.GetUserPosts) // GET /api/v1/post/get-user-posts/:user_id
		postsGroup.PUT("/update-post/:post_id", controller.UpdatePost)      // PUT /api/v1/post/update-post/:post_id
		postsGroup.DELETE("/delete-post/:post_id", controller.DeletePost)
	}
}
