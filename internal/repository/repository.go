package repository

import (
	"context"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts a user and binds the email-only member rows for its email
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByClerkID finds a user by their identity provider subject
	FindByClerkID(ctx context.Context, clerkID string) (*models.User, error)

	// FindByEmail finds a user by email, case-insensitively
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByEmails returns the registered users matching any of the emails, case-insensitively
	FindByEmails(ctx context.Context, emails []string) ([]models.User, error)

	// FindByIDs returns the users with the given IDs
	FindByIDs(ctx context.Context, ids []uint64) ([]models.User, error)

	// List returns a page of users ordered by name
	List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error)

	// Search matches name or email against a case-insensitive fragment
	Search(ctx context.Context, query string, limit int) ([]models.User, error)

	// Update updates a user
	Update(ctx context.Context, user *models.User) error

	// Delete removes a user together with their owned projects, memberships and assignments
	Delete(ctx context.Context, id uint64) error
}

// AccessRow is one row of the owner/member authorization lookup.
// MemberUserID and Role are nil when the project has no registered members.
type AccessRow struct {
	OwnerID      uint64
	MemberUserID *uint64
	Role         *string
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// CreateWithMembers creates a project and its initial member rows atomically
	CreateWithMembers(ctx context.Context, project *models.Project, members []models.ProjectMember) error

	// FindByUUID finds a project by its external identifier with optional preloading
	FindByUUID(ctx context.Context, uuid string, preload ...string) (*models.Project, error)

	// FindAccessRows fetches the owner id and registered member rows of a project in one query
	FindAccessRows(ctx context.Context, uuid string) ([]AccessRow, error)

	// ListOwnedBy lists projects owned by the user
	ListOwnedBy(ctx context.Context, userID uint64) ([]models.Project, error)

	// ListByMember lists projects where the user has a member row, by id or by invited email
	ListByMember(ctx context.Context, userID uint64, email string) ([]models.Project, error)

	// ListByUUIDs lists the given projects with optional preloading
	ListByUUIDs(ctx context.Context, uuids []string, preload ...string) ([]models.Project, error)

	// Update updates a project
	Update(ctx context.Context, project *models.Project) error

	// DeleteByUUIDs removes projects with their members, tasks and assignments atomically
	DeleteByUUIDs(ctx context.Context, uuids []string) error
}

// MemberRepository defines the interface for project membership data access
type MemberRepository interface {
	// ListByProject lists the member rows of a project with their users
	ListByProject(ctx context.Context, projectUUID string) ([]models.ProjectMember, error)

	// ListByProjects lists the member rows of many projects
	ListByProjects(ctx context.Context, projectUUIDs []string) ([]models.ProjectMember, error)

	// FindByID finds a member row within a project
	FindByID(ctx context.Context, projectUUID string, memberID uint64) (*models.ProjectMember, error)

	// ExistingEmails returns which of the emails already have a member row in the project
	ExistingEmails(ctx context.Context, projectUUID string, emails []string) ([]string, error)

	// CreateBatch inserts member rows atomically
	CreateBatch(ctx context.Context, members []models.ProjectMember) error

	// UpdateRole persists a member's role
	UpdateRole(ctx context.Context, member *models.ProjectMember) error

	// Delete removes a member row
	Delete(ctx context.Context, memberID uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateWithAssignments creates a task and assigns users atomically
	CreateWithAssignments(ctx context.Context, task *models.Task, userIDs []uint64) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// ListByProjects returns every task of the given projects
	ListByProjects(ctx context.Context, projectUUIDs []string) ([]models.Task, error)

	// ListByIDs returns the tasks with the given IDs
	ListByIDs(ctx context.Context, ids []uint64) ([]models.Task, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// Delete deletes a task and its assignments
	Delete(ctx context.Context, id uint64) error

	// ListAssignments lists a task's assignments with their users
	ListAssignments(ctx context.Context, taskID uint64) ([]models.TaskAssignment, error)

	// ListAssignmentsForUser lists every assignment held by a user
	ListAssignmentsForUser(ctx context.Context, userID uint64) ([]models.TaskAssignment, error)

	// AssignUsers assigns multiple users to a task, skipping existing pairs
	AssignUsers(ctx context.Context, taskID uint64, userIDs []uint64) error

	// FindAssignment finds a specific task assignment
	FindAssignment(ctx context.Context, taskID, userID uint64) (*models.TaskAssignment, error)

	// UnassignUser removes one assignment and reports whether it existed
	UnassignUser(ctx context.Context, taskID, userID uint64) (bool, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectUUIDs   []string
	Status         *models.TaskStatus
	AssignedUserID *uint64
	Page           int
	PageSize       int
}
