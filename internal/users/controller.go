package users

import (
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

func (ctrl *Controller) Register(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := ctrl.validator.Struct(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	resp, err := ctrl.service.Register(c.Request.Context(), &req)
	if err != nil {
		switch err {
		case ErrUsernameTaken:
			response.RespondJSON(c, "error", http.StatusConflict, "Username already exists", nil, nil)
		case ErrEmailTaken:
			response.RespondJSON(c, "error", http.StatusConflict, "User with this email already exists", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to register user", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "User registered successfully", resp, nil)
}

func (ctrl *Controller) GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	profile, err := ctrl.service.GetProfile(c.Request.Context(), userID.(string))
	if err != nil {
		switch err {
		case ErrUserNotFound:
			response.RespondJSON(c, "error", http.StatusNotFound, "User not found", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve profile", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Profile retrieved successfully", profile, nil)
}

func (ctrl *Controller) GetUser(c *gin.Context) {
	userIDStr := c.Param("user_id")
	if _, err := uuid.Parse(userIDStr); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid user ID", nil, err.Error())
		return
	}

	user, err := ctrl.service.GetByID(c.Request.Context(), userIDStr)
	if err != nil {
		switch err {
		case ErrUserNotFound:
			response.RespondJSON(c, "error", http.StatusNotFound, "User not found", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve user", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "User retrieved successfully", user, nil)
}

func (ctrl *Controller) GetAllUsers(c *gin.Context) {
	found, err := ctrl.service.List(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve users", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Users retrieved successfully", found, nil)
}

func (ctrl *Controller) UpdateUser(c *gin.Context) {
	userIDStr := c.Param("user_id")
	if _, err := uuid.Parse(userIDStr); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid user ID", nil, err.Error())
		return
	}

	// Callers can only update their own account.
	callerID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}
	if callerID.(string) != userIDStr {
		response.RespondJSON(c, "error", http.StatusForbidden, "Cannot update another user's account", nil, nil)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := ctrl.validator.Struct(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	user, err := ctrl.service.Update(c.Request.Context(), userIDStr, &req)
	if err != nil {
		switch err {
		case ErrUserNotFound:
			response.RespondJSON(c, "error", http.StatusNotFound, "User not found", nil, nil)
		case ErrUsernameTaken:
			response.RespondJSON(c, "error", http.StatusConflict, "Username already exists", nil, nil)
		case ErrEmailTaken:
			response.RespondJSON(c, "error", http.StatusConflict, "User with this email already exists", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to update user", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "User updated successfully", user, nil)
}

func (ctrl *Controller) DeleteUser(c *gin.Context) {
	userIDStr := c.Param("user_id")
	if _, err := uuid.Parse(userIDStr); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid user ID", nil, err.Error())
		return
	}

	callerID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}
	if callerID.(string) != userIDStr {
		response.RespondJSON(c, "error", http.StatusForbidden, "Cannot delete another user's account", nil, nil)
		return
	}

	deletedAt, err := ctrl.service.Delete(c.Request.Context(), userIDStr)
	if err != nil {
		switch err {
		case ErrUserNotFound:
			response.RespondJSON(c, "error", http.StatusNotFound, "User not found", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to delete user", nil, nil)
		}
		return
	}

	c.Header("deleted", "true")
	c.Header("deleted_at", deletedAt.Format("2006-01-02 15:04:05"))
	c.Status(http.StatusNoContent)
}
