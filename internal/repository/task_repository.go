package repository

import (
	"context"
	"time"

	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithAssignments creates a task and assigns users in a transaction
func (r *GormTaskRepository) CreateWithAssignments(ctx context.Context, task *models.Task, userIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		return assignUsersTx(tx, task.ID, userIDs)
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	if len(filter.ProjectUUIDs) == 0 {
		return []models.Task{}, 0, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Task{}).Scopes(database.InProjects("tasks.project_uuid", filter.ProjectUUIDs))

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssignedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssignedUserID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("tasks.created_at DESC, tasks.id DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize)).
		Preload("Creator").Preload("Assignments").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListByProjects returns every task of the given projects
func (r *GormTaskRepository) ListByProjects(ctx context.Context, projectUUIDs []string) ([]models.Task, error) {
	if len(projectUUIDs) == 0 {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.InProjects("project_uuid", projectUUIDs)).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByIDs returns the tasks with the given IDs
func (r *GormTaskRepository) ListByIDs(ctx context.Context, ids []uint64) ([]models.Task, error) {
	if len(ids) == 0 {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// Delete deletes a task and its assignments
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// ListAssignments lists a task's assignments with their users
func (r *GormTaskRepository) ListAssignments(ctx context.Context, taskID uint64) ([]models.TaskAssignment, error) {
	var assignments []models.TaskAssignment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Order("assigned_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListAssignmentsForUser lists every assignment held by a user
func (r *GormTaskRepository) ListAssignmentsForUser(ctx context.Context, userID uint64) ([]models.TaskAssignment, error) {
	var assignments []models.TaskAssignment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// AssignUsers assigns multiple users to a task, skipping existing pairs
func (r *GormTaskRepository) AssignUsers(ctx context.Context, taskID uint64, userIDs []uint64) error {
	return assignUsersTx(r.db.WithContext(ctx), taskID, userIDs)
}

func assignUsersTx(tx *gorm.DB, taskID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}

	now := time.Now()
	assignments := make([]models.TaskAssignment, len(userIDs))
	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{
			TaskID:     taskID,
			UserID:     userID,
			AssignedAt: now,
		}
	}

	return tx.
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&assignments).Error
}

// FindAssignment finds a specific task assignment
func (r *GormTaskRepository) FindAssignment(ctx context.Context, taskID, userID uint64) (*models.TaskAssignment, error) {
	var assignment models.TaskAssignment
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// UnassignUser removes one assignment and reports whether it existed
func (r *GormTaskRepository) UnassignUser(ctx context.Context, taskID, userID uint64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&models.TaskAssignment{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
