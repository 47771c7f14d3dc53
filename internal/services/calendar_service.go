package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"golang.org/x/sync/errgroup"
)

// CalendarSummary counts the calendar contents.
type CalendarSummary struct {
	TotalProjects  int
	OwnedProjects  int
	MemberProjects int
	TotalTasks     int
	AssignedTasks  int
}

// Calendar is the merged project and task view for a user.
type Calendar struct {
	Projects []models.Project
	Tasks    []TaskWithProject
	Summary  CalendarSummary
}

// CalendarService aggregates the calendar view.
type CalendarService struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository) *CalendarService {
	return &CalendarService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
	}
}

// GetCalendar merges owned and member projects (owned record wins) and the
// user's assigned tasks with all tasks of visible projects (assigned record
// wins). The optional window restricts projects and visible-project tasks;
// assigned tasks are always included regardless of due date.
func (s *CalendarService) GetCalendar(ctx context.Context, user *models.User, window *DateWindow) (*Calendar, error) {
	var (
		visible     *visibleProjects
		assignments []models.TaskAssignment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		visible, err = loadVisibleProjects(gctx, s.projectRepo, user)
		return err
	})
	g.Go(func() error {
		var err error
		if assignments, err = s.taskRepo.ListAssignmentsForUser(gctx, user.ID); err != nil {
			return fmt.Errorf("failed to fetch assignments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	visibleUUIDs := ProjectUUIDs(MergeProjects(visible.Owned, visible.Member))

	owned := FilterProjects(visible.Owned, window)
	member := FilterProjects(visible.Member, window)
	projects := MergeProjects(owned, member)

	assignedIDs := make([]uint64, len(assignments))
	assignedAt := make(map[uint64]time.Time, len(assignments))
	for i, a := range assignments {
		assignedIDs[i] = a.TaskID
		assignedAt[a.TaskID] = a.AssignedAt
	}

	var projectTasks, assignedTasks []models.Task
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if projectTasks, err = s.taskRepo.ListByProjects(gctx, visibleUUIDs); err != nil {
			return fmt.Errorf("failed to fetch project tasks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if assignedTasks, err = s.taskRepo.ListByIDs(gctx, assignedIDs); err != nil {
			return fmt.Errorf("failed to fetch assigned tasks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	projectTasks = FilterTasksByDue(projectTasks, window)

	// Assigned tasks may live in projects the user no longer sees; their
	// summaries come from a lookup of those projects.
	index := ProjectSummaryIndex(MergeProjects(visible.Owned, visible.Member))
	if missing := missingProjectUUIDs(assignedTasks, index); len(missing) > 0 {
		extra, err := s.projectRepo.ListByUUIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch task projects: %w", err)
		}
		for uuid, summary := range ProjectSummaryIndex(extra) {
			index[uuid] = summary
		}
	}

	tasks := MergeCalendarTasks(assignedTasks, assignedAt, projectTasks, index)

	return &Calendar{
		Projects: projects,
		Tasks:    tasks,
		Summary: CalendarSummary{
			TotalProjects:  len(projects),
			OwnedProjects:  len(owned),
			MemberProjects: len(member),
			TotalTasks:     len(tasks),
			AssignedTasks:  len(assignedTasks),
		},
	}, nil
}

// MergeCalendarTasks deduplicates tasks by id. A task present in both lists
// keeps its assigned variant, which carries the assignment timestamp.
func MergeCalendarTasks(assigned []models.Task, assignedAt map[uint64]time.Time, others []models.Task, index map[string]ProjectSummary) []TaskWithProject {
	seen := make(map[uint64]struct{}, len(assigned)+len(others))
	merged := make([]TaskWithProject, 0, len(assigned)+len(others))

	add := func(t models.Task, at *time.Time) {
		if _, exists := seen[t.ID]; exists {
			return
		}
		seen[t.ID] = struct{}{}
		entry := TaskWithProject{Task: t, AssignedAt: at}
		if summary, ok := index[t.ProjectUUID]; ok {
			summary := summary
			entry.Project = &summary
		}
		merged = append(merged, entry)
	}

	for _, t := range assigned {
		at, ok := assignedAt[t.ID]
		if !ok {
			add(t, nil)
			continue
		}
		at = at.UTC()
		add(t, &at)
	}
	for _, t := range others {
		add(t, nil)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i].DueDate, merged[j].DueDate
		switch {
		case a == nil && b == nil:
			return merged[i].ID < merged[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return merged
}

func missingProjectUUIDs(tasks []models.Task, index map[string]ProjectSummary) []string {
	var missing []string
	seen := make(map[string]struct{})
	for _, t := range tasks {
		if _, ok := index[t.ProjectUUID]; ok {
			continue
		}
		if _, ok := seen[t.ProjectUUID]; ok {
			continue
		}
		seen[t.ProjectUUID] = struct{}{}
		missing = append(missing, t.ProjectUUID)
	}
	return missing
}
