package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// respondData writes the success envelope
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondMessage writes the success envelope for operations without a payload
func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// respondServiceError maps service sentinels onto the API error taxonomy.
// Anything unrecognized is treated as a store failure.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrAssignmentNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrNotSelf),
		errors.Is(err, services.ErrNotProjectMember),
		errors.Is(err, services.ErrNotProjectOwner),
		errors.Is(err, services.ErrInsufficientRole),
		errors.Is(err, services.ErrTaskDeleteDenied):
		apierrors.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrDuplicateMember),
		errors.Is(err, services.ErrAllMembersExist),
		errors.Is(err, services.ErrAlreadyAssigned):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrProjectNameRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrNoProjectIDsProvided),
		errors.Is(err, services.ErrTooManyProjects),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrNoMembersProvided),
		errors.Is(err, services.ErrTooManyMembers),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidTaskAssignee),
		errors.Is(err, services.ErrNoUserIDsProvided):
		apierrors.BadRequest(c, err.Error())

	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())

	default:
		apierrors.StoreError(c, fallback, err)
	}
}

// optionalString reads a string field of a partial update body
func optionalString(raw map[string]any, key string) (*string, error) {
	value, ok := raw[key]
	if !ok || value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a string", key)
	}
	return &s, nil
}

// optionalDate reads a date field of a partial update body. present is true
// when the key was sent; a null value clears the field.
func optionalDate(raw map[string]any, key string) (value *time.Time, present bool, err error) {
	v, ok := raw[key]
	if !ok {
		return nil, false, nil
	}
	if v == nil {
		return nil, true, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, true, fmt.Errorf("%s must be a date string or null", key)
	}
	parsed, err := utils.ParseDate(s)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", key, err)
	}
	return &parsed, true, nil
}

// parseOptionalDate parses a date field of a create body
func parseOptionalDate(value *string, key string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := utils.ParseDate(*value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &parsed, nil
}
