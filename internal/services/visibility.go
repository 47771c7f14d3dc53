package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
	"golang.org/x/sync/errgroup"
)

// visibleProjects holds both visibility sources as fetched, before merging.
type visibleProjects struct {
	Owned  []models.Project
	Member []models.Project
}

// loadVisibleProjects fetches owned and member projects concurrently.
func loadVisibleProjects(ctx context.Context, projectRepo repository.ProjectRepository, user *models.User) (*visibleProjects, error) {
	var result visibleProjects

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		owned, err := projectRepo.ListOwnedBy(gctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch owned projects: %w", err)
		}
		result.Owned = owned
		return nil
	})
	g.Go(func() error {
		member, err := projectRepo.ListByMember(gctx, user.ID, user.Email)
		if err != nil {
			return fmt.Errorf("failed to fetch member projects: %w", err)
		}
		result.Member = member
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &result, nil
}

// MergeProjects unions owned and member projects by UUID. When a project is
// in both lists the owned record is kept. Owned projects come first.
func MergeProjects(owned, member []models.Project) []models.Project {
	seen := make(map[string]struct{}, len(owned)+len(member))
	merged := make([]models.Project, 0, len(owned)+len(member))

	for _, list := range [][]models.Project{owned, member} {
		for _, p := range list {
			if _, exists := seen[p.UUID]; exists {
				continue
			}
			seen[p.UUID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged
}

// ProjectUUIDs returns the distinct UUIDs of the projects in order.
func ProjectUUIDs(projects []models.Project) []string {
	seen := make(map[string]struct{}, len(projects))
	uuids := make([]string, 0, len(projects))
	for _, p := range projects {
		if _, exists := seen[p.UUID]; exists {
			continue
		}
		seen[p.UUID] = struct{}{}
		uuids = append(uuids, p.UUID)
	}
	return uuids
}

// ProjectSummary is the denormalized project reference attached to tasks.
type ProjectSummary struct {
	ID   uint64 `json:"id"`
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// ProjectSummaryIndex maps project UUID to its summary for one request.
func ProjectSummaryIndex(projects []models.Project) map[string]ProjectSummary {
	index := make(map[string]ProjectSummary, len(projects))
	for _, p := range projects {
		index[p.UUID] = ProjectSummary{ID: p.ID, UUID: p.UUID, Name: p.Name}
	}
	return index
}

// EstimateTeamSize counts distinct people touching the projects: registered
// owners and members by id, plus invited emails that do not resolve to an
// already counted user. resolved holds the registered users matching any
// member email.
func EstimateTeamSize(projects []models.Project, members []models.ProjectMember, resolved []models.User) int {
	known := make(map[uint64]struct{})
	for _, p := range projects {
		known[p.OwnerID] = struct{}{}
	}

	emails := make(map[string]struct{})
	for _, m := range members {
		if m.UserID != nil {
			known[*m.UserID] = struct{}{}
		}
		if email := utils.NormalizeEmail(m.MemberEmail); email != "" {
			emails[email] = struct{}{}
		}
	}

	byEmail := make(map[string]uint64, len(resolved))
	for _, u := range resolved {
		byEmail[utils.NormalizeEmail(u.Email)] = u.ID
	}

	unregistered := 0
	for email := range emails {
		if id, ok := byEmail[email]; ok {
			known[id] = struct{}{}
			continue
		}
		unregistered++
	}

	return len(known) + unregistered
}

// MemberEmails returns the distinct normalized member emails.
func MemberEmails(members []models.ProjectMember) []string {
	emails := make([]string, 0, len(members))
	for _, m := range members {
		emails = append(emails, m.MemberEmail)
	}
	return utils.UniqueEmails(emails)
}

// CompletedProjects returns projects whose end date is before today (date only).
func CompletedProjects(projects []models.Project, now time.Time) []models.Project {
	today := utils.StartOfDay(now.UTC())
	completed := make([]models.Project, 0)
	for _, p := range projects {
		if p.EndDate == nil {
			continue
		}
		if utils.StartOfDay(p.EndDate.UTC()).Before(today) {
			completed = append(completed, p)
		}
	}
	return completed
}

// RecentTasks returns tasks created within the trailing window, newest first, capped.
func RecentTasks(tasks []models.Task, now time.Time) []models.Task {
	cutoff := now.Add(-constants.RecentTaskWindow)
	recent := make([]models.Task, 0)
	for _, t := range tasks {
		if !t.CreatedAt.Before(cutoff) {
			recent = append(recent, t)
		}
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	return capTasks(recent, constants.DashboardListLimit)
}

// UpcomingDeadlines returns tasks due between today and today+14 days
// inclusive, soonest first, capped. Tasks without a due date never qualify.
func UpcomingDeadlines(tasks []models.Task, now time.Time) []models.Task {
	today := utils.StartOfDay(now.UTC())
	last := today.AddDate(0, 0, constants.UpcomingDeadlineDays)

	upcoming := make([]models.Task, 0)
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		due := utils.StartOfDay(t.DueDate.UTC())
		if due.Before(today) || due.After(last) {
			continue
		}
		upcoming = append(upcoming, t)
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(*upcoming[j].DueDate)
	})
	return capTasks(upcoming, constants.DashboardListLimit)
}

func capTasks(tasks []models.Task, limit int) []models.Task {
	if len(tasks) > limit {
		return tasks[:limit]
	}
	return tasks
}

// CountProjectsByStatus builds a status histogram keyed by the raw value.
func CountProjectsByStatus(projects []models.Project) map[string]int {
	counts := make(map[string]int)
	for _, p := range projects {
		counts[string(p.Status)]++
	}
	return counts
}

// CountProjectsByPriority builds a priority histogram keyed by the raw value.
func CountProjectsByPriority(projects []models.Project) map[string]int {
	counts := make(map[string]int)
	for _, p := range projects {
		counts[string(p.Priority)]++
	}
	return counts
}

// CountTasksByStatus builds a task status histogram keyed by the raw value.
func CountTasksByStatus(tasks []models.Task) map[string]int {
	counts := make(map[string]int)
	for _, t := range tasks {
		counts[string(t.Status)]++
	}
	return counts
}

// DateWindow is an inclusive calendar-day range.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// OverlapsProject reports whether the project's span intersects the window.
// Projects missing either date never overlap.
func (w DateWindow) OverlapsProject(p models.Project) bool {
	if p.StartDate == nil || p.EndDate == nil {
		return false
	}
	start := utils.StartOfDay(p.StartDate.UTC())
	end := utils.StartOfDay(p.EndDate.UTC())
	return !end.Before(w.Start) && !start.After(w.End)
}

// ContainsDue reports whether the task's due date falls inside the window.
func (w DateWindow) ContainsDue(t models.Task) bool {
	if t.DueDate == nil {
		return false
	}
	due := utils.StartOfDay(t.DueDate.UTC())
	return !due.Before(w.Start) && !due.After(w.End)
}

// FilterProjects keeps the projects overlapping the window; a nil window keeps all.
func FilterProjects(projects []models.Project, window *DateWindow) []models.Project {
	if window == nil {
		return projects
	}
	filtered := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if window.OverlapsProject(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// FilterTasksByDue keeps the tasks due inside the window; a nil window keeps all.
func FilterTasksByDue(tasks []models.Task, window *DateWindow) []models.Task {
	if window == nil {
		return tasks
	}
	filtered := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if window.ContainsDue(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
