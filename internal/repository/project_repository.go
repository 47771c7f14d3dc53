package repository

import (
	"context"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithMembers creates a project and its initial member rows in a transaction
func (r *GormProjectRepository) CreateWithMembers(ctx context.Context, project *models.Project, members []models.ProjectMember) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return err
		}

		if len(members) == 0 {
			return nil
		}
		for i := range members {
			members[i].ProjectUUID = project.UUID
		}
		return tx.Omit(clause.Associations).Create(&members).Error
	}))
}

// FindByUUID finds a project by its external identifier with optional preloading
func (r *GormProjectRepository) FindByUUID(ctx context.Context, uuid string, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("uuid = ?", uuid).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindAccessRows fetches the owner id and registered member rows of a project in one query.
// Email-only member rows are excluded by the join condition.
func (r *GormProjectRepository) FindAccessRows(ctx context.Context, uuid string) ([]AccessRow, error) {
	var rows []AccessRow
	err := r.db.WithContext(ctx).
		Table("projects").
		Select("projects.owner_id AS owner_id, project_members.user_id AS member_user_id, project_members.role AS role").
		Joins("LEFT JOIN project_members ON project_members.project_uuid = projects.uuid AND project_members.user_id IS NOT NULL").
		Where("projects.uuid = ?", uuid).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListOwnedBy lists projects owned by the user
func (r *GormProjectRepository) ListOwnedBy(ctx context.Context, userID uint64) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListByMember lists projects where the user has a member row, by id or by invited email
func (r *GormProjectRepository) ListByMember(ctx context.Context, userID uint64, email string) ([]models.Project, error) {
	memberSubQuery := r.db.Model(&models.ProjectMember{}).
		Select("project_uuid").
		Where("user_id = ? OR LOWER(member_email) = ?", userID, utils.NormalizeEmail(email))

	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Where("uuid IN (?)", memberSubQuery).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListByUUIDs lists the given projects with optional preloading
func (r *GormProjectRepository) ListByUUIDs(ctx context.Context, uuids []string, preload ...string) ([]models.Project, error) {
	if len(uuids) == 0 {
		return []models.Project{}, nil
	}

	query := r.db.WithContext(ctx)
	for _, p := range preload {
		query = query.Preload(p)
	}

	var projects []models.Project
	if err := query.Where("uuid IN ?", uuids).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

// DeleteByUUIDs removes projects with their members, tasks and assignments in a transaction
func (r *GormProjectRepository) DeleteByUUIDs(ctx context.Context, uuids []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteProjectsTx(tx, uuids)
	})
}

// deleteProjectsTx removes the assignments, tasks and member rows of the
// projects, then the projects.
func deleteProjectsTx(tx *gorm.DB, uuids []string) error {
	if len(uuids) == 0 {
		return nil
	}

	taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_uuid IN ?", uuids)
	if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskAssignment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("project_uuid IN ?", uuids).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	if err := tx.Where("project_uuid IN ?", uuids).Delete(&models.ProjectMember{}).Error; err != nil {
		return err
	}
	return tx.Where("uuid IN ?", uuids).Delete(&models.Project{}).Error
}
