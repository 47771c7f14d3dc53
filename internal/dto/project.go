package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	UUID        string               `json:"uuid"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	Priority    models.Priority      `json:"priority"`
	StartDate   *string              `json:"start_date"`
	EndDate     *string              `json:"end_date"`
	OwnerID     uint64               `json:"owner_id"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Owner       *UserSummaryDTO      `json:"owner,omitempty"`
}

// ProjectWithRoleDTO represents a visible project with the caller's role
type ProjectWithRoleDTO struct {
	ProjectDTO
	Role    models.MemberRole `json:"role"`
	IsOwner bool              `json:"is_owner"`
}

// ProjectDetailDTO represents a project with members and tasks
type ProjectDetailDTO struct {
	ProjectDTO
	Members []MemberDTO `json:"members"`
	Tasks   []TaskDTO   `json:"tasks"`
}

// ProjectSummaryDTO is the denormalized project reference attached to tasks
type ProjectSummaryDTO struct {
	ID   uint64 `json:"id"`
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		UUID:        project.UUID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		Priority:    project.Priority,
		StartDate:   formatDate(project.StartDate),
		EndDate:     formatDate(project.EndDate),
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
		Owner:       optionalUser(&project.Owner),
	}
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	result := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		result[i] = ToProjectDTO(p)
	}
	return result
}

// ToProjectWithRoleDTOs converts the visible project list
func ToProjectWithRoleDTOs(projects []services.ProjectWithRole) []ProjectWithRoleDTO {
	result := make([]ProjectWithRoleDTO, len(projects))
	for i, p := range projects {
		result[i] = ProjectWithRoleDTO{
			ProjectDTO: ToProjectDTO(p.Project),
			Role:       p.Role,
			IsOwner:    p.IsOwner,
		}
	}
	return result
}

// ToProjectDetailDTO converts a project with preloaded members and tasks
func ToProjectDetailDTO(project models.Project) ProjectDetailDTO {
	tasks := make([]TaskDTO, len(project.Tasks))
	for i, t := range project.Tasks {
		tasks[i] = ToTaskDTO(t)
	}
	return ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(project),
		Members:    ToMemberDTOs(project.Members),
		Tasks:      tasks,
	}
}

func toProjectSummaryDTO(summary *services.ProjectSummary) *ProjectSummaryDTO {
	if summary == nil {
		return nil
	}
	return &ProjectSummaryDTO{
		ID:   summary.ID,
		UUID: summary.UUID,
		Name: summary.Name,
	}
}
