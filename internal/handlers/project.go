package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

type memberRequest struct {
	Email string            `json:"email" binding:"required"`
	Role  models.MemberRole `json:"role"`
}

func toMemberInputs(reqs []memberRequest) []services.MemberInput {
	inputs := make([]services.MemberInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = services.MemberInput{Email: r.Email, Role: r.Role}
	}
	return inputs
}

// ListProjects returns the projects the user owns or is a member of
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch projects")
		return
	}
	respondData(c, http.StatusOK, dto.ToProjectWithRoleDTOs(projects))
}

// CreateProject creates a project owned by the user
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateProjectRequest struct {
		Name        string               `json:"name" binding:"required"`
		Description string               `json:"description"`
		Status      models.ProjectStatus `json:"status"`
		Priority    models.Priority      `json:"priority"`
		StartDate   *string              `json:"start_date"`
		EndDate     *string              `json:"end_date"`
		Members     []memberRequest      `json:"members" binding:"omitempty,dive"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	startDate, err := parseOptionalDate(req.StartDate, "start_date")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	endDate, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), user, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   startDate,
		EndDate:     endDate,
		Members:     toMemberInputs(req.Members),
	})
	if err != nil {
		respondServiceError(c, err, "Failed to create project")
		return
	}
	respondData(c, http.StatusCreated, dto.ToProjectDetailDTO(*project))
}

// GetProject returns a project with its members and tasks
// Access is checked by RequireProjectAccess middleware
func (h *ProjectHandler) GetProject(c *gin.Context) {
	access, ok := middleware.GetProjectAccess(c)
	if !ok {
		apierrors.InternalError(c, "Project access not found in context")
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), access.ProjectUUID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch project")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"project": dto.ToProjectDetailDTO(*project),
		"role":    access.Role,
	})
}

// UpdateProject applies the fields present in the body
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	access, ok := middleware.GetProjectAccess(c)
	if !ok {
		apierrors.InternalError(c, "Project access not found in context")
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateProjectInput
	var err error
	if input.Name, err = optionalString(rawReq, "name"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Description, err = optionalString(rawReq, "description"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	status, err := optionalString(rawReq, "status")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if status != nil {
		s := models.ProjectStatus(*status)
		input.Status = &s
	}
	priority, err := optionalString(rawReq, "priority")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if priority != nil {
		p := models.Priority(*priority)
		input.Priority = &p
	}

	var present bool
	if input.StartDate, present, err = optionalDate(rawReq, "start_date"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	input.ClearStartDate = present && input.StartDate == nil
	if input.EndDate, present, err = optionalDate(rawReq, "end_date"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	input.ClearEndDate = present && input.EndDate == nil

	project, err := h.projectService.UpdateProject(c.Request.Context(), access, input)
	if err != nil {
		respondServiceError(c, err, "Failed to update project")
		return
	}
	respondData(c, http.StatusOK, dto.ToProjectDetailDTO(*project))
}

// DeleteProject deletes the project in the path, or on the collection route
// every project listed in a {projectIds: [...]} body. A request carrying both
// is rejected. Only the owner may delete.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type BulkDeleteRequest struct {
		ProjectIDs []string `json:"projectIds"`
	}

	var req BulkDeleteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	ids := req.ProjectIDs
	if id := strings.TrimSpace(c.Param("projectId")); id != "" {
		if len(ids) > 0 {
			apierrors.BadRequest(c, "projectIds is only accepted on DELETE /api/projects")
			return
		}
		ids = []string{id}
	}

	deleted, err := h.projectService.DeleteProjects(c.Request.Context(), userID, ids)
	if err != nil {
		respondServiceError(c, err, "Failed to delete project")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project deleted successfully",
		"deleted": deleted,
	})
}
