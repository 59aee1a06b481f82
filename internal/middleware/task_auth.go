package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todolist-api/internal/constants"
	apierrors "github.com/yukikurage/todolist-api/internal/errors"
)

// RequireTaskID parses the :id path parameter into the context.
// Whether the user may act on the task is decided by the task service.
func RequireTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || taskID == 0 {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTaskID, taskID)
		c.Next()
	}
}

// GetTaskID retrieves the task ID set by RequireTaskID
func GetTaskID(c *gin.Context) (uint64, bool) {
	taskID, exists := c.Get(constants.ContextKeyTaskID)
	if !exists {
		return 0, false
	}
	id, ok := taskID.(uint64)
	return id, ok
}
