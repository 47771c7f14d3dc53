package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"golang.org/x/sync/errgroup"
)

// TaskWithProject is a task enriched with its denormalized project summary.
type TaskWithProject struct {
	models.Task
	Project    *ProjectSummary
	AssignedAt *time.Time
}

// Dashboard summarizes everything visible to one user.
type Dashboard struct {
	TotalProjects      int
	CompletedProjects  int
	ActiveProjects     int
	TotalTasks         int
	TeamSize           int
	ProjectsByStatus   map[string]int
	ProjectsByPriority map[string]int
	TasksByStatus      map[string]int
	RecentTasks        []TaskWithProject
	UpcomingDeadlines  []TaskWithProject
}

func emptyDashboard() *Dashboard {
	return &Dashboard{
		ProjectsByStatus:   map[string]int{},
		ProjectsByPriority: map[string]int{},
		TasksByStatus:      map[string]int{},
		RecentTasks:        []TaskWithProject{},
		UpcomingDeadlines:  []TaskWithProject{},
	}
}

// DashboardService aggregates the dashboard view.
type DashboardService struct {
	projectRepo repository.ProjectRepository
	memberRepo  repository.MemberRepository
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	projectRepo repository.ProjectRepository,
	memberRepo repository.MemberRepository,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
) *DashboardService {
	return &DashboardService{
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// GetDashboard computes the user's visibility set and derives the summary from it.
func (s *DashboardService) GetDashboard(ctx context.Context, user *models.User) (*Dashboard, error) {
	visible, err := loadVisibleProjects(ctx, s.projectRepo, user)
	if err != nil {
		return nil, err
	}

	uuids := ProjectUUIDs(MergeProjects(visible.Owned, visible.Member))
	if len(uuids) == 0 {
		return emptyDashboard(), nil
	}

	projects, err := s.projectRepo.ListByUUIDs(ctx, uuids, "Members")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	var members []models.ProjectMember
	for _, p := range projects {
		members = append(members, p.Members...)
	}

	var (
		tasks    []models.Task
		resolved []models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if tasks, err = s.taskRepo.ListByProjects(gctx, uuids); err != nil {
			return fmt.Errorf("failed to fetch tasks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if resolved, err = s.userRepo.FindByEmails(gctx, MemberEmails(members)); err != nil {
			return fmt.Errorf("failed to resolve member emails: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	index := ProjectSummaryIndex(projects)
	completed := len(CompletedProjects(projects, now))

	return &Dashboard{
		TotalProjects:      len(projects),
		CompletedProjects:  completed,
		ActiveProjects:     len(projects) - completed,
		TotalTasks:         len(tasks),
		TeamSize:           EstimateTeamSize(projects, members, resolved),
		ProjectsByStatus:   CountProjectsByStatus(projects),
		ProjectsByPriority: CountProjectsByPriority(projects),
		TasksByStatus:      CountTasksByStatus(tasks),
		RecentTasks:        withProjects(RecentTasks(tasks, now), index),
		UpcomingDeadlines:  withProjects(UpcomingDeadlines(tasks, now), index),
	}, nil
}

func withProjects(tasks []models.Task, index map[string]ProjectSummary) []TaskWithProject {
	out := make([]TaskWithProject, len(tasks))
	for i, t := range tasks {
		out[i] = TaskWithProject{Task: t}
		if summary, ok := index[t.ProjectUUID]; ok {
			summary := summary
			out[i].Project = &summary
		}
	}
	return out
}
