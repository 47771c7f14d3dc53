package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/testutil"
	"gorm.io/gorm"
)

type env struct {
	db         *gorm.DB
	dispatcher *testutil.RecordingDispatcher
	authorizer *services.Authorizer
	users      *services.UserService
	projects   *services.ProjectService
	members    *services.MemberService
	tasks      *services.TaskService
	dashboard  *services.DashboardService
	calendar   *services.CalendarService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	dispatcher := &testutil.RecordingDispatcher{}
	authorizer := services.NewAuthorizer(projectRepo)

	return &env{
		db:         db,
		dispatcher: dispatcher,
		authorizer: authorizer,
		users:      services.NewUserService(userRepo, &testutil.FakeVerifier{}),
		projects:   services.NewProjectService(projectRepo, memberRepo, userRepo, dispatcher),
		members:    services.NewMemberService(projectRepo, memberRepo, userRepo, dispatcher),
		tasks:      services.NewTaskService(taskRepo, projectRepo, authorizer),
		dashboard:  services.NewDashboardService(projectRepo, memberRepo, taskRepo, userRepo),
		calendar:   services.NewCalendarService(projectRepo, taskRepo),
	}
}

func (e *env) access(t *testing.T, user *models.User, project *models.Project) *services.ProjectAccess {
	t.Helper()
	access, err := e.authorizer.Check(context.Background(), user.ID, project.UUID)
	require.NoError(t, err)
	return access
}
