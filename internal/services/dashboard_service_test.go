package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/testutil"
)

func TestGetDashboard_NoProjects(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.db, "Solo", "solo@x.com")

	dashboard, err := e.dashboard.GetDashboard(context.Background(), user)

	require.NoError(t, err)
	assert.Zero(t, dashboard.TotalProjects)
	assert.Zero(t, dashboard.TeamSize)
	assert.NotNil(t, dashboard.ProjectsByStatus)
	assert.NotNil(t, dashboard.RecentTasks)
	assert.Empty(t, dashboard.UpcomingDeadlines)
}

func TestGetDashboard_OwnedAndEmailOnlyMembership(t *testing.T) {
	e := newEnv(t)
	now := time.Now()

	user := testutil.CreateUser(t, e.db, "U", "u@x.com")
	other := testutil.CreateUser(t, e.db, "O", "o@x.com")

	yesterday := testutil.Day(now, -1)
	lastMonth := testutil.Day(now, -30)
	p1 := testutil.CreateProject(t, e.db, user, "Owned",
		testutil.WithDates(&lastMonth, &yesterday),
		testutil.WithStatus(models.ProjectStatusCompleted, models.PriorityHigh))
	p2 := testutil.CreateProject(t, e.db, other, "Invited")
	testutil.AddMember(t, e.db, p2, "U@x.com", nil, models.RoleViewer)

	testutil.CreateTask(t, e.db, p1, user, "undated")
	testutil.CreateTask(t, e.db, p2, other, "soon", testutil.DueOn(testutil.Day(now, 3)))
	testutil.CreateTask(t, e.db, p2, other, "later", testutil.DueOn(testutil.Day(now, 30)))
	testutil.CreateTask(t, e.db, p2, other, "old",
		testutil.CreatedAt(now.Add(-10*24*time.Hour)),
		testutil.WithTaskStatus(models.TaskStatusDone))

	dashboard, err := e.dashboard.GetDashboard(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, 2, dashboard.TotalProjects)
	assert.Equal(t, 1, dashboard.CompletedProjects)
	assert.Equal(t, 1, dashboard.ActiveProjects)
	assert.Equal(t, 4, dashboard.TotalTasks)
	// U is counted once: as owner of p1 and through the invited email on p2.
	assert.Equal(t, 2, dashboard.TeamSize)

	assert.Equal(t, map[string]int{"Completed": 1, "On track": 1}, dashboard.ProjectsByStatus)
	assert.Equal(t, map[string]int{"High": 1, "Medium": 1}, dashboard.ProjectsByPriority)
	assert.Equal(t, map[string]int{"To Do": 3, "Done": 1}, dashboard.TasksByStatus)

	require.Len(t, dashboard.UpcomingDeadlines, 1)
	assert.Equal(t, "soon", dashboard.UpcomingDeadlines[0].Title)
	require.NotNil(t, dashboard.UpcomingDeadlines[0].Project)
	assert.Equal(t, p2.UUID, dashboard.UpcomingDeadlines[0].Project.UUID)

	assert.Len(t, dashboard.RecentTasks, 3)
	for _, task := range dashboard.RecentTasks {
		assert.NotEqual(t, "old", task.Title)
	}
}

func TestGetDashboard_ProjectInBothSourcesCountedOnce(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.db, "U", "u@x.com")
	project := testutil.CreateProject(t, e.db, user, "Mine")
	// A stray member row for the owner must not duplicate the project.
	testutil.AddMember(t, e.db, project, "u@x.com", user, models.RoleAdmin)

	dashboard, err := e.dashboard.GetDashboard(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.TotalProjects)
	assert.Equal(t, 1, dashboard.TeamSize)
}
