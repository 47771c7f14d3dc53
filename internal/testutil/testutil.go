// Package testutil provides sqlite-backed fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/notify"
	"github.com/yukikurage/project-management-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory database. A single connection keeps every
// query, concurrent ones included, on the same in-memory store.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	return db
}

// CreateUser inserts a registered user
func CreateUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{
		ClerkID: "user_" + email,
		Name:    name,
		Email:   email,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// ProjectOption customizes a fixture project
type ProjectOption func(*models.Project)

// WithDates sets the project span
func WithDates(start, end *time.Time) ProjectOption {
	return func(p *models.Project) {
		p.StartDate = start
		p.EndDate = end
	}
}

// WithStatus sets the project status and priority
func WithStatus(status models.ProjectStatus, priority models.Priority) ProjectOption {
	return func(p *models.Project) {
		p.Status = status
		p.Priority = priority
	}
}

// CreateProject inserts a project owned by owner
func CreateProject(t *testing.T, db *gorm.DB, owner *models.User, name string, opts ...ProjectOption) *models.Project {
	t.Helper()
	project := &models.Project{
		Name:     name,
		Status:   models.ProjectStatusOnTrack,
		Priority: models.PriorityMedium,
		OwnerID:  owner.ID,
	}
	for _, opt := range opts {
		opt(project)
	}
	require.NoError(t, db.Omit(clause.Associations).Create(project).Error)
	return project
}

// AddMember inserts a member row; user may be nil for an email-only invitation
func AddMember(t *testing.T, db *gorm.DB, project *models.Project, email string, user *models.User, role models.MemberRole) *models.ProjectMember {
	t.Helper()
	member := &models.ProjectMember{
		ProjectUUID: project.UUID,
		MemberEmail: email,
		Role:        role,
		AddedAt:     time.Now(),
	}
	if user != nil {
		member.UserID = &user.ID
	}
	require.NoError(t, db.Omit(clause.Associations).Create(member).Error)
	return member
}

// TaskOption customizes a fixture task
type TaskOption func(*models.Task)

// DueOn sets the task due date
func DueOn(due time.Time) TaskOption {
	return func(task *models.Task) { task.DueDate = &due }
}

// CreatedAt backdates the task
func CreatedAt(at time.Time) TaskOption {
	return func(task *models.Task) { task.CreatedAt = at }
}

// WithTaskStatus sets the task status
func WithTaskStatus(status models.TaskStatus) TaskOption {
	return func(task *models.Task) { task.Status = status }
}

// CreateTask inserts a task in project created by creator
func CreateTask(t *testing.T, db *gorm.DB, project *models.Project, creator *models.User, title string, opts ...TaskOption) *models.Task {
	t.Helper()
	task := &models.Task{
		ProjectUUID: project.UUID,
		Title:       title,
		Status:      models.TaskStatusTodo,
		Priority:    models.PriorityMedium,
	}
	if creator != nil {
		task.CreatedBy = &creator.ID
	}
	for _, opt := range opts {
		opt(task)
	}
	require.NoError(t, db.Omit(clause.Associations).Create(task).Error)
	return task
}

// Assign inserts a task assignment
func Assign(t *testing.T, db *gorm.DB, task *models.Task, user *models.User) {
	t.Helper()
	require.NoError(t, db.Omit(clause.Associations).Create(&models.TaskAssignment{
		TaskID:     task.ID,
		UserID:     user.ID,
		AssignedAt: time.Now(),
	}).Error)
}

// Day returns midnight UTC of now shifted by the given number of days
func Day(now time.Time, offset int) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

// FakeVerifier accepts tokens of the form "token-<subject>"
type FakeVerifier struct {
	Profiles map[string]services.Identity
}

func (v *FakeVerifier) Verify(ctx context.Context, token string) (string, error) {
	var subject string
	if _, err := fmt.Sscanf(token, "token-%s", &subject); err != nil || subject == "" {
		return "", services.ErrInvalidCredential
	}
	return subject, nil
}

func (v *FakeVerifier) Profile(ctx context.Context, subject string) (*services.Identity, error) {
	identity, ok := v.Profiles[subject]
	if !ok {
		return &services.Identity{Subject: subject, Name: subject, Email: subject + "@example.com"}, nil
	}
	identity.Subject = subject
	return &identity, nil
}

// RecordingDispatcher collects invitations instead of sending them
type RecordingDispatcher struct {
	mu          sync.Mutex
	invitations []notify.Invitation
}

func (d *RecordingDispatcher) DispatchInvitations(invitations []notify.Invitation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invitations = append(d.invitations, invitations...)
}

// Invitations returns a copy of what was dispatched so far
func (d *RecordingDispatcher) Invitations() []notify.Invitation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notify.Invitation(nil), d.invitations...)
}
