package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns a page of users
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch users")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(users),
		"pagination": params.Response(total),
	})
}

// Me returns the authenticated user
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	respondData(c, http.StatusOK, dto.ToUserDTO(*user))
}

// SearchUsers matches the q parameter against names and emails
func (h *UserHandler) SearchUsers(c *gin.Context) {
	users, err := h.userService.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondServiceError(c, err, "Failed to search users")
		return
	}
	respondData(c, http.StatusOK, dto.ToUserDTOs(users))
}

// GetUserByClerkID looks a user up by identity provider subject
func (h *UserHandler) GetUserByClerkID(c *gin.Context) {
	user, err := h.userService.GetUserByClerkID(c.Request.Context(), c.Param("clerkId"))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch user")
		return
	}
	respondData(c, http.StatusOK, dto.ToUserDTO(*user))
}

// GetUser returns a user by ID
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch user")
		return
	}
	respondData(c, http.StatusOK, dto.ToUserDTO(*user))
}

// CreateUser registers the caller's own user record. The email is taken
// from the identity provider, never from the body.
func (h *UserHandler) CreateUser(c *gin.Context) {
	caller, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateUserRequest struct {
		ClerkID   string  `json:"clerk_id"`
		Name      string  `json:"name"`
		AvatarURL *string `json:"avatar_url"`
	}

	var req CreateUserRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
			return
		}
	}

	user, err := h.userService.CreateUser(c.Request.Context(), caller.ClerkID, services.CreateUserInput{
		ClerkID:   req.ClerkID,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to create user")
		return
	}
	respondData(c, http.StatusCreated, dto.ToUserDTO(*user))
}

// UpdateUser changes the caller's own profile
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Name      *string `json:"name"`
		Email     *string `json:"email"`
		AvatarURL *string `json:"avatar_url"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), actorID, targetID, services.UpdateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to update user")
		return
	}
	respondData(c, http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser removes the caller's own account
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), actorID, targetID); err != nil {
		respondServiceError(c, err, "Failed to delete user")
		return
	}
	respondMessage(c, "User deleted successfully")
}

func parseUserID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return 0, false
	}
	return id, true
}
