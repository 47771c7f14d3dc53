package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/testutil"
)

func ptrTime(t time.Time) *time.Time { return &t }

func ptrID(id uint64) *uint64 { return &id }

func TestMergeProjects_OwnedRecordWinsAndNoDuplicates(t *testing.T) {
	owned := []models.Project{{UUID: "p1", Name: "owned copy"}, {UUID: "p2", Name: "two"}}
	member := []models.Project{{UUID: "p1", Name: "member copy"}, {UUID: "p3", Name: "three"}}

	merged := services.MergeProjects(owned, member)

	require.Len(t, merged, 3)
	assert.Equal(t, "owned copy", merged[0].Name)
	assert.Equal(t, []string{"p1", "p2", "p3"}, services.ProjectUUIDs(merged))
}

func TestEstimateTeamSize(t *testing.T) {
	projects := []models.Project{{UUID: "p1", OwnerID: 1}, {UUID: "p2", OwnerID: 2}}

	t.Run("owners only", func(t *testing.T) {
		assert.Equal(t, 2, services.EstimateTeamSize(projects, nil, nil))
	})

	t.Run("email resolving to counted user is not double counted", func(t *testing.T) {
		members := []models.ProjectMember{
			{ProjectUUID: "p2", MemberEmail: "U@x.com"},
		}
		resolved := []models.User{{ID: 1, Email: "u@x.com"}}
		assert.Equal(t, 2, services.EstimateTeamSize(projects, members, resolved))
	})

	t.Run("registered member and unregistered emails", func(t *testing.T) {
		members := []models.ProjectMember{
			{ProjectUUID: "p1", MemberEmail: "reg@x.com", UserID: ptrID(3)},
			{ProjectUUID: "p2", MemberEmail: "reg@x.com", UserID: ptrID(3)},
			{ProjectUUID: "p1", MemberEmail: "new@x.com"},
			{ProjectUUID: "p2", MemberEmail: "NEW@x.com"},
		}
		resolved := []models.User{{ID: 3, Email: "reg@x.com"}}
		assert.Equal(t, 4, services.EstimateTeamSize(projects, members, resolved))
	})

	t.Run("monotonic as members are added", func(t *testing.T) {
		var members []models.ProjectMember
		last := services.EstimateTeamSize(projects, members, nil)
		for i := 0; i < 5; i++ {
			members = append(members, models.ProjectMember{ProjectUUID: "p1", MemberEmail: fmt.Sprintf("m%d@x.com", i%3)})
			size := services.EstimateTeamSize(projects, members, nil)
			assert.GreaterOrEqual(t, size, last)
			last = size
		}
		assert.Equal(t, 5, last)
	})
}

func TestCompletedProjects_DateOnlyComparison(t *testing.T) {
	now := time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)
	projects := []models.Project{
		{UUID: "yesterday", EndDate: ptrTime(time.Date(2025, 6, 14, 23, 59, 0, 0, time.UTC))},
		{UUID: "today-early", EndDate: ptrTime(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))},
		{UUID: "future", EndDate: ptrTime(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))},
		{UUID: "open"},
	}

	completed := services.CompletedProjects(projects, now)

	assert.Equal(t, []string{"yesterday"}, services.ProjectUUIDs(completed))
}

func TestUpcomingDeadlines(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	day := func(offset int) *time.Time { return ptrTime(testutil.Day(now, offset)) }

	tasks := []models.Task{
		{ID: 1, Title: "no due date"},
		{ID: 2, DueDate: day(-1)},
		{ID: 3, DueDate: day(14)},
		{ID: 4, DueDate: day(0)},
		{ID: 5, DueDate: day(15)},
		{ID: 6, DueDate: day(3)},
	}

	upcoming := services.UpcomingDeadlines(tasks, now)

	ids := make([]uint64, len(upcoming))
	for i, task := range upcoming {
		require.NotNil(t, task.DueDate)
		ids[i] = task.ID
	}
	assert.Equal(t, []uint64{4, 6, 3}, ids)
}

func TestUpcomingDeadlines_Capped(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	var tasks []models.Task
	for i := 0; i < 12; i++ {
		tasks = append(tasks, models.Task{ID: uint64(i + 1), DueDate: ptrTime(testutil.Day(now, i))})
	}

	assert.Len(t, services.UpcomingDeadlines(tasks, now), 10)
}

func TestRecentTasks_NewestFirstWithinWeek(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		{ID: 1, CreatedAt: now.Add(-8 * 24 * time.Hour)},
		{ID: 2, CreatedAt: now.Add(-2 * 24 * time.Hour)},
		{ID: 3, CreatedAt: now.Add(-1 * time.Hour)},
	}

	recent := services.RecentTasks(tasks, now)

	require.Len(t, recent, 2)
	assert.Equal(t, uint64(3), recent[0].ID)
	assert.Equal(t, uint64(2), recent[1].ID)
}

func TestHistogramsKeepRawValues(t *testing.T) {
	projects := []models.Project{
		{Status: models.ProjectStatusOnTrack, Priority: models.PriorityHigh},
		{Status: models.ProjectStatusOnTrack, Priority: "Urgent"},
		{Status: "", Priority: models.PriorityHigh},
	}
	tasks := []models.Task{{Status: models.TaskStatusDone}, {Status: "Blocked"}}

	assert.Equal(t, map[string]int{"On track": 2, "": 1}, services.CountProjectsByStatus(projects))
	assert.Equal(t, map[string]int{"High": 2, "Urgent": 1}, services.CountProjectsByPriority(projects))
	assert.Equal(t, map[string]int{"Done": 1, "Blocked": 1}, services.CountTasksByStatus(tasks))
}

func TestDateWindow(t *testing.T) {
	window := services.DateWindow{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	date := func(m time.Month, d int) *time.Time { return ptrTime(time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)) }

	assert.True(t, window.OverlapsProject(models.Project{StartDate: date(5, 1), EndDate: date(6, 1)}))
	assert.True(t, window.OverlapsProject(models.Project{StartDate: date(6, 30), EndDate: date(8, 1)}))
	assert.True(t, window.OverlapsProject(models.Project{StartDate: date(5, 1), EndDate: date(8, 1)}))
	assert.False(t, window.OverlapsProject(models.Project{StartDate: date(7, 1), EndDate: date(8, 1)}))
	assert.False(t, window.OverlapsProject(models.Project{StartDate: date(6, 5)}))

	assert.True(t, window.ContainsDue(models.Task{DueDate: date(6, 30)}))
	assert.False(t, window.ContainsDue(models.Task{DueDate: date(7, 1)}))
	assert.False(t, window.ContainsDue(models.Task{}))

	assert.Len(t, services.FilterTasksByDue([]models.Task{{}, {DueDate: date(6, 2)}}, nil), 2)
	assert.Len(t, services.FilterTasksByDue([]models.Task{{}, {DueDate: date(6, 2)}}, &window), 1)
}

func TestMergeCalendarTasks_AssignedVariantWins(t *testing.T) {
	assignedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	assigned := []models.Task{{ID: 1, ProjectUUID: "p1", Title: "mine"}}
	others := []models.Task{
		{ID: 1, ProjectUUID: "p1", Title: "mine"},
		{ID: 2, ProjectUUID: "p1", Title: "theirs", DueDate: ptrTime(assignedAt)},
	}
	index := map[string]services.ProjectSummary{"p1": {ID: 7, UUID: "p1", Name: "Launch"}}

	merged := services.MergeCalendarTasks(assigned, map[uint64]time.Time{1: assignedAt}, others, index)

	require.Len(t, merged, 2)
	// Dated tasks sort before undated ones.
	assert.Equal(t, uint64(2), merged[0].ID)
	assert.Nil(t, merged[0].AssignedAt)
	assert.Equal(t, uint64(1), merged[1].ID)
	require.NotNil(t, merged[1].AssignedAt)
	assert.True(t, assignedAt.Equal(*merged[1].AssignedAt))
	require.NotNil(t, merged[1].Project)
	assert.Equal(t, "Launch", merged[1].Project.Name)
}
