package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// TaskAssignmentDTO represents a task assignment in API responses
type TaskAssignmentDTO struct {
	TaskID     uint64          `json:"task_id"`
	UserID     uint64          `json:"user_id"`
	AssignedAt time.Time       `json:"assigned_at"`
	User       *UserSummaryDTO `json:"user,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	ProjectUUID string              `json:"project_uuid"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.Priority     `json:"priority"`
	DueDate     *string             `json:"due_date"`
	CreatedBy   *uint64             `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Creator     *UserSummaryDTO     `json:"creator,omitempty"`
	Project     *ProjectSummaryDTO  `json:"project,omitempty"`
	AssignedAt  *time.Time          `json:"assigned_at,omitempty"`
	Assignments []TaskAssignmentDTO `json:"assignments,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskAssignmentDTO converts a TaskAssignment model
func ToTaskAssignmentDTO(assignment models.TaskAssignment) TaskAssignmentDTO {
	return TaskAssignmentDTO{
		TaskID:     assignment.TaskID,
		UserID:     assignment.UserID,
		AssignedAt: assignment.AssignedAt,
		User:       optionalUser(&assignment.User),
	}
}

// ToTaskAssignmentDTOs converts a slice of assignments
func ToTaskAssignmentDTOs(assignments []models.TaskAssignment) []TaskAssignmentDTO {
	result := make([]TaskAssignmentDTO, len(assignments))
	for i, a := range assignments {
		result[i] = ToTaskAssignmentDTO(a)
	}
	return result
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		ProjectUUID: task.ProjectUUID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     formatDate(task.DueDate),
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Creator:     optionalUser(task.Creator),
	}

	// Include assignments if preloaded
	if len(task.Assignments) > 0 {
		dto.Assignments = ToTaskAssignmentDTOs(task.Assignments)
	}

	return dto
}

// ToTaskWithProjectDTO converts a task enriched with its project summary
func ToTaskWithProjectDTO(task services.TaskWithProject) TaskDTO {
	dto := ToTaskDTO(task.Task)
	dto.Project = toProjectSummaryDTO(task.Project)
	dto.AssignedAt = task.AssignedAt
	return dto
}

// ToTaskWithProjectDTOs converts a slice of enriched tasks
func ToTaskWithProjectDTOs(tasks []services.TaskWithProject) []TaskDTO {
	result := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		result[i] = ToTaskWithProjectDTO(t)
	}
	return result
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []services.TaskWithProject, params utils.PaginationParams, total int64) TaskListResponse {
	return TaskListResponse{
		Tasks:      ToTaskWithProjectDTOs(tasks),
		Pagination: params.Response(total),
	}
}
