package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/services"
)

// AccessChecker resolves a user's access to a project.
type AccessChecker interface {
	Check(ctx context.Context, userID uint64, projectUUID string) (*services.ProjectAccess, error)
}

// RequireProjectAccess checks that the user owns or is a registered member of
// the project named by the :projectId parameter
func RequireProjectAccess(checker AccessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectUUID := strings.TrimSpace(c.Param("projectId"))
		if projectUUID == "" {
			apierrors.BadRequest(c, "Project ID is required")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		access, err := checker.Check(c.Request.Context(), userID, projectUUID)
		if err != nil {
			respondAccessError(c, err)
			return
		}

		// Store access in context for handlers and later middleware
		c.Set(constants.ContextKeyAccess, access)
		c.Next()
	}
}

// GetProjectAccess retrieves the access resolved by RequireProjectAccess or RequireTaskAccess
func GetProjectAccess(c *gin.Context) (*services.ProjectAccess, bool) {
	value, exists := c.Get(constants.ContextKeyAccess)
	if !exists {
		return nil, false
	}
	access, ok := value.(*services.ProjectAccess)
	return access, ok && access != nil
}

func respondAccessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrNotProjectMember):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	default:
		apierrors.StoreError(c, "Failed to check project access", err)
	}
}
