package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"gorm.io/gorm"
)

var taskDetailPreloads = []string{"Creator", "Assignments", "Assignments.User"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	authorizer  *Authorizer
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, authorizer *Authorizer) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		authorizer:  authorizer,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	User         *models.User
	ProjectUUID  string
	AssignedToMe bool
	Status       *models.TaskStatus
	Page         int
	PageSize     int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.Priority
	DueDate     *time.Time
	AssigneeIDs []uint64
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.Priority
	DueDate      *time.Time
	ClearDueDate bool
}

// ListTasks returns tasks of the user's visible projects, or of one project
// the user has access to.
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]TaskWithProject, int64, error) {
	var uuids []string
	if input.ProjectUUID != "" {
		if _, err := s.authorizer.Check(ctx, input.User.ID, input.ProjectUUID); err != nil {
			return nil, 0, err
		}
		uuids = []string{input.ProjectUUID}
	} else {
		visible, err := loadVisibleProjects(ctx, s.projectRepo, input.User)
		if err != nil {
			return nil, 0, err
		}
		uuids = ProjectUUIDs(MergeProjects(visible.Owned, visible.Member))
	}

	if len(uuids) == 0 {
		return []TaskWithProject{}, 0, nil
	}

	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidTaskStatus
	}

	filter := repository.TaskFilter{
		ProjectUUIDs: uuids,
		Status:       input.Status,
		Page:         input.Page,
		PageSize:     input.PageSize,
	}
	if input.AssignedToMe {
		filter.AssignedUserID = &input.User.ID
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	index, err := s.summaryIndex(ctx, tasks)
	if err != nil {
		return nil, 0, err
	}

	return withProjects(tasks, index), total, nil
}

// FindTask loads a task without relations, for authorization
func (s *TaskService) FindTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// GetTask returns a task with creator, assignments and project summary
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*TaskWithProject, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, taskDetailPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	index, err := s.summaryIndex(ctx, []models.Task{*task})
	if err != nil {
		return nil, err
	}
	return &withProjects([]models.Task{*task}, index)[0], nil
}

// CreateTask creates a task in the project and assigns the given users in one transaction
func (s *TaskService) CreateTask(ctx context.Context, access *ProjectAccess, input CreateTaskInput) (*TaskWithProject, error) {
	if !access.CanEdit() {
		return nil, ErrInsufficientRole
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	assignees := uniqueUint64(input.AssigneeIDs)
	if err := s.ensureAssignable(ctx, access.ProjectUUID, assignees); err != nil {
		return nil, err
	}

	creatorID := access.UserID
	task := &models.Task{
		ProjectUUID: access.ProjectUUID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatedBy:   &creatorID,
	}

	if err := s.taskRepo.CreateWithAssignments(ctx, task, assignees); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.GetTask(ctx, task.ID)
}

// UpdateTask applies a partial update; a cleared due date is stored as null
func (s *TaskService) UpdateTask(ctx context.Context, access *ProjectAccess, taskID uint64, input UpdateTaskInput) (*TaskWithProject, error) {
	if !access.CanEdit() {
		return nil, ErrInsufficientRole
	}

	task, err := s.FindTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(ctx, task.ID)
}

// DeleteTask deletes a task if the actor created it, owns the project or is an admin
func (s *TaskService) DeleteTask(ctx context.Context, access *ProjectAccess, taskID uint64) error {
	task, err := s.FindTask(ctx, taskID)
	if err != nil {
		return err
	}

	isCreator := task.CreatedBy != nil && *task.CreatedBy == access.UserID
	if !isCreator && !access.CanManageMembers() {
		return ErrTaskDeleteDenied
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ListAssignments lists the users assigned to a task
func (s *TaskService) ListAssignments(ctx context.Context, taskID uint64) ([]models.TaskAssignment, error) {
	assignments, err := s.taskRepo.ListAssignments(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}
	return assignments, nil
}

// AssignUsers assigns project participants to a task
func (s *TaskService) AssignUsers(ctx context.Context, access *ProjectAccess, taskID uint64, userIDs []uint64) ([]models.TaskAssignment, error) {
	if !access.CanEdit() {
		return nil, ErrInsufficientRole
	}
	if len(userIDs) == 0 {
		return nil, ErrNoUserIDsProvided
	}

	ids := uniqueUint64(userIDs)
	if err := s.ensureAssignable(ctx, access.ProjectUUID, ids); err != nil {
		return nil, err
	}

	existing, err := s.taskRepo.ListAssignments(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}
	for _, a := range existing {
		for _, id := range ids {
			if a.UserID == id {
				return nil, ErrAlreadyAssigned
			}
		}
	}

	if err := s.taskRepo.AssignUsers(ctx, taskID, ids); err != nil {
		return nil, fmt.Errorf("failed to assign users: %w", err)
	}

	return s.ListAssignments(ctx, taskID)
}

// UnassignUser removes one assignment. Editors may unassign anyone; any
// participant may unassign themselves.
func (s *TaskService) UnassignUser(ctx context.Context, access *ProjectAccess, taskID, userID uint64) error {
	if !access.CanEdit() && access.UserID != userID {
		return ErrInsufficientRole
	}

	removed, err := s.taskRepo.UnassignUser(ctx, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to unassign user: %w", err)
	}
	if !removed {
		return ErrAssignmentNotFound
	}
	return nil
}

// ensureAssignable verifies every user is the owner or a registered member of the project
func (s *TaskService) ensureAssignable(ctx context.Context, projectUUID string, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}

	rows, err := s.projectRepo.FindAccessRows(ctx, projectUUID)
	if err != nil {
		return fmt.Errorf("failed to verify assignees: %w", err)
	}
	if len(rows) == 0 {
		return ErrProjectNotFound
	}

	participants := map[uint64]struct{}{rows[0].OwnerID: {}}
	for _, row := range rows {
		if row.MemberUserID != nil {
			participants[*row.MemberUserID] = struct{}{}
		}
	}

	for _, id := range userIDs {
		if _, ok := participants[id]; !ok {
			return ErrInvalidTaskAssignee
		}
	}
	return nil
}

func (s *TaskService) summaryIndex(ctx context.Context, tasks []models.Task) (map[string]ProjectSummary, error) {
	uuids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		uuids = append(uuids, t.ProjectUUID)
	}
	projects, err := s.projectRepo.ListByUUIDs(ctx, uniqueStrings(uuids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task projects: %w", err)
	}
	return ProjectSummaryIndex(projects), nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
