package repository

import (
	"context"

	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMemberRepository is a GORM implementation of MemberRepository
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &GormMemberRepository{db: db}
}

// ListByProject lists the member rows of a project with their users
func (r *GormMemberRepository) ListByProject(ctx context.Context, projectUUID string) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_uuid = ?", projectUUID).
		Order("added_at ASC, id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListByProjects lists the member rows of many projects
func (r *GormMemberRepository) ListByProjects(ctx context.Context, projectUUIDs []string) ([]models.ProjectMember, error) {
	if len(projectUUIDs) == 0 {
		return []models.ProjectMember{}, nil
	}

	var members []models.ProjectMember
	if err := r.db.WithContext(ctx).
		Where("project_uuid IN ?", projectUUIDs).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// FindByID finds a member row within a project
func (r *GormMemberRepository) FindByID(ctx context.Context, projectUUID string, memberID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_uuid = ? AND id = ?", projectUUID, memberID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ExistingEmails returns which of the emails already have a member row in the project
func (r *GormMemberRepository) ExistingEmails(ctx context.Context, projectUUID string, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return []string{}, nil
	}

	var existing []string
	if err := r.db.WithContext(ctx).
		Model(&models.ProjectMember{}).
		Where("project_uuid = ? AND LOWER(member_email) IN ?", projectUUID, emails).
		Pluck("LOWER(member_email)", &existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// CreateBatch inserts member rows in a single transaction
func (r *GormMemberRepository) CreateBatch(ctx context.Context, members []models.ProjectMember) error {
	if len(members) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&members).Error
	}))
}

// UpdateRole persists a member's role
func (r *GormMemberRepository) UpdateRole(ctx context.Context, member *models.ProjectMember) error {
	return r.db.WithContext(ctx).
		Model(&models.ProjectMember{}).
		Where("id = ?", member.ID).
		Update("role", member.Role).Error
}

// Delete removes a member row
func (r *GormMemberRepository) Delete(ctx context.Context, memberID uint64) error {
	return r.db.WithContext(ctx).Delete(&models.ProjectMember{}, memberID).Error
}
