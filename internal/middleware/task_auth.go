package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
)

// TaskFinder loads a task for authorization.
type TaskFinder interface {
	FindTask(ctx context.Context, taskID uint64) (*models.Task, error)
}

// RequireTaskAccess checks that the user has access to the task's project
func RequireTaskAccess(tasks TaskFinder, checker AccessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("taskId"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		task, err := tasks.FindTask(c.Request.Context(), taskID)
		if err != nil {
			respondAccessError(c, err)
			return
		}

		access, err := checker.Check(c.Request.Context(), userID, task.ProjectUUID)
		if err != nil {
			respondAccessError(c, err)
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Set(constants.ContextKeyAccess, access)
		c.Next()
	}
}

// GetTaskID retrieves the ID of the task loaded by RequireTaskAccess
func GetTaskID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return 0, false
	}
	task, ok := value.(*models.Task)
	if !ok || task == nil {
		return 0, false
	}
	return task.ID, true
}
