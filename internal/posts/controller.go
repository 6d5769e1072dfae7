package posts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"instaclone/internal/shared/utils/response"
)

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

func (ctrl *Controller) CreatePost(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := ctrl.validator.Struct(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	post, err := ctrl.service.Create(c.Request.Context(), userID.(string), &req)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to create post", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Post created successfully", post, nil)
}

func (ctrl *Controller) GetPost(c *gin.Context) {
	postIDStr := c.Param("post_id")
	if _, err := uuid.Parse(postIDStr); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid post ID", nil, err.Error())
		return
	}

	post, err := ctrl.service.GetByID(c.Request.Context(), postIDStr)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "Post not found", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve post", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Post retrieved successfully", post, nil)
}

func (ctrl *Controller) GetAllPosts(c *gin.Context) {
	found, err := ctrl.service.ListFeed(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve posts", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Posts retrieved successfully", found, nil)
}

func (ctrl *Controller) GetUserPosts(c *gin.Context) {
	userIDStr := c.Param("user_id")
	if _, err := uuid.Parse(userIDStr); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid user ID", nil, err.Error())
		return
	}

	found, err := ctrl.service.ListByUser(c.Request.Context(), userIDStr)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve posts", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Posts retrieved successfully", found, nil)
}

func (ctrl *Controller) UpdatePost(c *gin.Context) {
	postIDStr := c.Param("post_id")
	if _, err := uuid.Parse(postIDStr); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid post ID", nil, err.Error())
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := ctrl.validator.Struct(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	post, err := ctrl.service.Update(c.Request.Context(), postIDStr, userID.(string), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPostNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, "Post not found", nil, nil)
		case errors.Is(err, ErrNotPostOwner):
			response.RespondJSON(c, "error", http.StatusForbidden, "Cannot update another user's post", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to update post", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Post updated successfully", post, nil)
}

func (ctrl *Controller) DeletePost(c *gin.Context) {
	postIDStr := c.Param("post_id")
	if _, err := uuid.Parse(postIDStr); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid post ID", nil, err.Error())
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	deletedAt, err := ctrl.service.Delete(c.Request.Context(), postIDStr, userID.(string))
	if err != nil {
		switch {
		case errors.Is(err, ErrPostNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, "Post not found", nil, nil)
		case errors.Is(err, ErrNotPostOwner):
			response.RespondJSON(c, "error", http.StatusForbidden, "Cannot delete another user's post", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to delete post", nil, nil)
		}
		return
	}

	c.Header("deleted", "true")
	c.Header("deleted_at", deletedAt.Format("2006-01-02 15:04:05"))
	c.Status(http.StatusNoContent)
}
