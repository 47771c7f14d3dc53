package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/testutil"
)

func TestCreateProject_MembersAndInvitations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "Owner", "owner@x.com")
	registered := testutil.CreateUser(t, e.db, "Reg", "reg@x.com")

	project, err := e.projects.CreateProject(ctx, owner, services.CreateProjectInput{
		Name: "  Launch  ",
		Members: []services.MemberInput{
			{Email: "Owner@x.com", Role: models.RoleAdmin},
			{Email: "reg@x.com", Role: models.RoleEditor},
			{Email: "new@x.com"},
			{Email: "NEW@x.com", Role: models.RoleAdmin},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Launch", project.Name)
	assert.Equal(t, models.ProjectStatusOnTrack, project.Status)
	assert.Equal(t, models.PriorityMedium, project.Priority)
	assert.NotEmpty(t, project.UUID)
	assert.Equal(t, owner.ID, project.Owner.ID)

	require.Len(t, project.Members, 2)
	byEmail := map[string]models.ProjectMember{}
	for _, m := range project.Members {
		byEmail[m.MemberEmail] = m
	}
	require.Contains(t, byEmail, "reg@x.com")
	require.NotNil(t, byEmail["reg@x.com"].UserID)
	assert.Equal(t, registered.ID, *byEmail["reg@x.com"].UserID)
	assert.Equal(t, models.RoleEditor, byEmail["reg@x.com"].Role)
	require.Contains(t, byEmail, "new@x.com")
	assert.Nil(t, byEmail["new@x.com"].UserID)
	assert.Equal(t, models.RoleViewer, byEmail["new@x.com"].Role)

	invitations := e.dispatcher.Invitations()
	require.Len(t, invitations, 1)
	assert.Equal(t, "new@x.com", invitations[0].Email)
	assert.Equal(t, "Launch", invitations[0].ProjectName)
	assert.Equal(t, project.UUID, invitations[0].ProjectUUID)
	assert.Equal(t, "Owner", invitations[0].InviterName)
}

func TestCreateProject_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "Owner", "owner@x.com")
	start := date(2025, 6, 10)
	end := date(2025, 6, 1)

	tests := []struct {
		name  string
		input services.CreateProjectInput
		want  error
	}{
		{"blank name", services.CreateProjectInput{Name: "  "}, services.ErrProjectNameRequired},
		{"bad status", services.CreateProjectInput{Name: "p", Status: "Paused"}, services.ErrInvalidStatus},
		{"bad priority", services.CreateProjectInput{Name: "p", Priority: "Urgent"}, services.ErrInvalidPriority},
		{"end before start", services.CreateProjectInput{Name: "p", StartDate: &start, EndDate: &end}, services.ErrInvalidDateRange},
		{"bad email", services.CreateProjectInput{Name: "p", Members: []services.MemberInput{{Email: "nope"}}}, services.ErrInvalidEmail},
		{"owner role", services.CreateProjectInput{Name: "p", Members: []services.MemberInput{{Email: "a@x.com", Role: models.RoleOwner}}}, services.ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.projects.CreateProject(ctx, owner, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var count int64
	require.NoError(t, e.db.Model(&models.Project{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListProjects_Roles(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, e.db, "U", "u@x.com")
	other := testutil.CreateUser(t, e.db, "O", "o@x.com")

	owned := testutil.CreateProject(t, e.db, user, "Owned")
	editing := testutil.CreateProject(t, e.db, other, "Editing")
	invited := testutil.CreateProject(t, e.db, other, "Invited")
	testutil.CreateProject(t, e.db, other, "Unrelated")
	testutil.AddMember(t, e.db, editing, "u@x.com", user, models.RoleEditor)
	testutil.AddMember(t, e.db, invited, "U@X.com", nil, models.RoleViewer)

	projects, err := e.projects.ListProjects(ctx, user)
	require.NoError(t, err)
	require.Len(t, projects, 3)

	roles := map[string]services.ProjectWithRole{}
	for _, p := range projects {
		roles[p.UUID] = p
	}
	assert.True(t, roles[owned.UUID].IsOwner)
	assert.Equal(t, models.RoleOwner, roles[owned.UUID].Role)
	assert.Equal(t, models.RoleEditor, roles[editing.UUID].Role)
	assert.False(t, roles[editing.UUID].IsOwner)
	assert.Equal(t, models.RoleViewer, roles[invited.UUID].Role)
	assert.Equal(t, "O", roles[invited.UUID].Owner.Name)
}

func TestUpdateProject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "Owner", "owner@x.com")
	viewer := testutil.CreateUser(t, e.db, "Viewer", "viewer@x.com")
	start, end := date(2025, 1, 1), date(2025, 3, 1)
	project := testutil.CreateProject(t, e.db, owner, "Plan", testutil.WithDates(&start, &end))
	testutil.AddMember(t, e.db, project, viewer.Email, viewer, models.RoleViewer)

	t.Run("viewer cannot edit", func(t *testing.T) {
		name := "Renamed"
		_, err := e.projects.UpdateProject(ctx, e.access(t, viewer, project), services.UpdateProjectInput{Name: &name})
		assert.ErrorIs(t, err, services.ErrInsufficientRole)
	})

	t.Run("owner edits and clears a date", func(t *testing.T) {
		name := "Renamed"
		status := models.ProjectStatusAtRisk
		updated, err := e.projects.UpdateProject(ctx, e.access(t, owner, project), services.UpdateProjectInput{
			Name:         &name,
			Status:       &status,
			ClearEndDate: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, models.ProjectStatusAtRisk, updated.Status)
		assert.Nil(t, updated.EndDate)
		require.NotNil(t, updated.StartDate)
	})

	t.Run("range checked against stored dates", func(t *testing.T) {
		before := date(2024, 12, 1)
		newStart := date(2025, 2, 1)
		_, err := e.projects.UpdateProject(ctx, e.access(t, owner, project), services.UpdateProjectInput{
			StartDate: &newStart,
			EndDate:   &before,
		})
		assert.ErrorIs(t, err, services.ErrInvalidDateRange)
	})
}

func TestDeleteProjects(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades members, tasks and assignments", func(t *testing.T) {
		e := newEnv(t)
		owner := testutil.CreateUser(t, e.db, "Owner", "owner@x.com")
		member := testutil.CreateUser(t, e.db, "Member", "member@x.com")
		project := testutil.CreateProject(t, e.db, owner, "Doomed")
		testutil.AddMember(t, e.db, project, member.Email, member, models.RoleEditor)
		task := testutil.CreateTask(t, e.db, project, owner, "task")
		testutil.Assign(t, e.db, task, member)

		deleted, err := e.projects.DeleteProjects(ctx, owner.ID, []string{project.UUID, project.UUID})
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		for _, model := range []interface{}{&models.Project{}, &models.ProjectMember{}, &models.Task{}, &models.TaskAssignment{}} {
			var count int64
			require.NoError(t, e.db.Model(model).Count(&count).Error)
			assert.Zero(t, count, "%T rows left", model)
		}
	})

	t.Run("all or nothing when one project is not owned", func(t *testing.T) {
		e := newEnv(t)
		owner := testutil.CreateUser(t, e.db, "Owner", "owner@x.com")
		other := testutil.CreateUser(t, e.db, "Other", "other@x.com")
		mine := testutil.CreateProject(t, e.db, owner, "Mine")
		theirs := testutil.CreateProject(t, e.db, other, "Theirs")

		_, err := e.projects.DeleteProjects(ctx, owner.ID, []string{mine.UUID, theirs.UUID})
		assert.ErrorIs(t, err, services.ErrNotProjectOwner)

		var count int64
		require.NoError(t, e.db.Model(&models.Project{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("unknown project", func(t *testing.T) {
		e := newEnv(t)
		owner := testutil.CreateUser(t, e.db, "Owner", "owner@x.com")
		mine := testutil.CreateProject(t, e.db, owner, "Mine")

		_, err := e.projects.DeleteProjects(ctx, owner.ID, []string{mine.UUID, "missing"})
		assert.ErrorIs(t, err, services.ErrProjectNotFound)
	})

	t.Run("limits", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.projects.DeleteProjects(ctx, 1, []string{" ", ""})
		assert.ErrorIs(t, err, services.ErrNoProjectIDsProvided)

		var many []string
		for i := 0; i < 101; i++ {
			many = append(many, fmt.Sprintf("p-%d", i))
		}
		_, err = e.projects.DeleteProjects(ctx, 1, many)
		assert.ErrorIs(t, err, services.ErrTooManyProjects)
	})
}

func TestGetProject_NotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.projects.GetProject(context.Background(), "missing")
	assert.ErrorIs(t, err, services.ErrProjectNotFound)
}
