package response

import "github.com/gin-gonic/gin"

// RespondJSON writes the standard envelope used by the user and post
// endpoints. The token endpoints bypass it and speak bare OAuth2 shapes.
func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}
