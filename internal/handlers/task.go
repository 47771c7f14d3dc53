package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	checker     middleware.AccessChecker
}

func NewTaskHandler(taskService *services.TaskService, checker middleware.AccessChecker) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		checker:     checker,
	}
}

// taskContext returns the task ID and project access set by RequireTaskAccess
func taskContext(c *gin.Context) (uint64, *services.ProjectAccess, bool) {
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return 0, nil, false
	}
	access, ok := middleware.GetProjectAccess(c)
	if !ok {
		apierrors.InternalError(c, "Project access not found in context")
		return 0, nil, false
	}
	return taskID, access, true
}

// ListTasks returns tasks of the user's projects
// Can filter by project_id, status and assigned_to_me
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListTasksInput{
		User:         user,
		ProjectUUID:  c.Query("project_id"),
		AssignedToMe: c.Query("assigned_to_me") == "true",
		Page:         params.Page,
		PageSize:     params.Limit,
	}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		input.Status = &s
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch tasks")
		return
	}
	respondData(c, http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a specific task by ID
// Access is checked by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, _, ok := taskContext(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), taskID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch task")
		return
	}
	respondData(c, http.StatusOK, dto.ToTaskWithProjectDTO(*task))
}

// CreateTask creates a task in a project the user can edit
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		ProjectID   string            `json:"project_id" binding:"required"`
		Title       string            `json:"title" binding:"required"`
		Description string            `json:"description"`
		Status      models.TaskStatus `json:"status"`
		Priority    models.Priority   `json:"priority"`
		DueDate     *string           `json:"due_date"`
		AssigneeIDs []uint64          `json:"assignee_ids"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	dueDate, err := parseOptionalDate(req.DueDate, "due_date")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	access, err := h.checker.Check(c.Request.Context(), userID, req.ProjectID)
	if err != nil {
		respondServiceError(c, err, "Failed to check project access")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), access, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     dueDate,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to create task")
		return
	}
	respondData(c, http.StatusCreated, dto.ToTaskWithProjectDTO(*task))
}

// UpdateTask updates the fields present in the body; a null due_date clears it
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, access, ok := taskContext(c)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput
	var err error
	if input.Title, err = optionalString(rawReq, "title"); err != nil {
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
		s := models.TaskStatus(*status)
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
	if input.DueDate, present, err = optionalDate(rawReq, "due_date"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	input.ClearDueDate = present && input.DueDate == nil

	task, err := h.taskService.UpdateTask(c.Request.Context(), access, taskID, input)
	if err != nil {
		respondServiceError(c, err, "Failed to update task")
		return
	}
	respondData(c, http.StatusOK, dto.ToTaskWithProjectDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, access, ok := taskContext(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), access, taskID); err != nil {
		respondServiceError(c, err, "Failed to delete task")
		return
	}
	respondMessage(c, "Task deleted successfully")
}

// ListAssignments lists the users assigned to a task
func (h *TaskHandler) ListAssignments(c *gin.Context) {
	taskID, _, ok := taskContext(c)
	if !ok {
		return
	}

	assignments, err := h.taskService.ListAssignments(c.Request.Context(), taskID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch assignments")
		return
	}
	respondData(c, http.StatusOK, dto.ToTaskAssignmentDTOs(assignments))
}

// AssignTask assigns users to a task
func (h *TaskHandler) AssignTask(c *gin.Context) {
	taskID, access, ok := taskContext(c)
	if !ok {
		return
	}

	type AssignUserRequest struct {
		UserIDs []uint64 `json:"user_ids"`
		UserID  *uint64  `json:"user_id"`
	}

	var req AssignUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	userIDs := req.UserIDs
	if req.UserID != nil {
		userIDs = append(userIDs, *req.UserID)
	}

	assignments, err := h.taskService.AssignUsers(c.Request.Context(), access, taskID, userIDs)
	if err != nil {
		respondServiceError(c, err, "Failed to assign users to task")
		return
	}
	respondData(c, http.StatusCreated, dto.ToTaskAssignmentDTOs(assignments))
}

// UnassignTask removes one user's assignment
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	taskID, access, ok := taskContext(c)
	if !ok {
		return
	}

	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.taskService.UnassignUser(c.Request.Context(), access, taskID, userID); err != nil {
		respondServiceError(c, err, "Failed to unassign user")
		return
	}
	respondMessage(c, "User unassigned successfully")
}
