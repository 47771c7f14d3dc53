package repository

import (
	"context"
	"strings"

	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a user and, in the same transaction, binds the email-only
// member rows waiting for the user's email to the new id
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Model(&models.ProjectMember{}).
			Where("user_id IS NULL AND LOWER(member_email) = ?", strings.ToLower(strings.TrimSpace(user.Email))).
			Update("user_id", user.ID).Error
	}))
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByClerkID finds a user by their identity provider subject
func (r *GormUserRepository) FindByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("clerk_id = ?", clerkID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email, case-insensitively
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", utils.NormalizeEmail(email)).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmails returns the registered users matching any of the emails
func (r *GormUserRepository) FindByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	if len(emails) == 0 {
		return []models.User{}, nil
	}

	normalized := utils.UniqueEmails(emails)
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) IN ?", normalized).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindByIDs returns the users with the given IDs
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uint64) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// List returns a page of users ordered by name
func (r *GormUserRepository) List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := r.db.WithContext(ctx).
		Order("name ASC, id ASC").
		Scopes(database.Paginate(params.Page, params.Limit)).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Search matches name or email against a case-insensitive fragment
func (r *GormUserRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"

	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update updates a user
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

// Delete removes a user together with their owned projects, memberships and assignments
func (r *GormUserRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned []string
		if err := tx.Model(&models.Project{}).Where("owner_id = ?", id).Pluck("uuid", &owned).Error; err != nil {
			return err
		}
		if err := deleteProjectsTx(tx, owned); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("created_by = ?", id).Update("created_by", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
