package dto

import "github.com/yukikurage/project-management-api/internal/services"

// DashboardDTO is the dashboard summary
type DashboardDTO struct {
	TotalProjects      int            `json:"totalProjects"`
	CompletedProjects  int            `json:"completedProjects"`
	ActiveProjects     int            `json:"activeProjects"`
	TotalTasks         int            `json:"totalTasks"`
	TeamSize           int            `json:"teamSize"`
	ProjectsByStatus   map[string]int `json:"projectsByStatus"`
	ProjectsByPriority map[string]int `json:"projectsByPriority"`
	TasksByStatus      map[string]int `json:"tasksByStatus"`
	RecentTasks        []TaskDTO      `json:"recentTasks"`
	UpcomingDeadlines  []TaskDTO      `json:"upcomingDeadlines"`
}

// CalendarSummaryDTO counts the calendar contents
type CalendarSummaryDTO struct {
	TotalProjects  int `json:"totalProjects"`
	OwnedProjects  int `json:"ownedProjects"`
	MemberProjects int `json:"memberProjects"`
	TotalTasks     int `json:"totalTasks"`
	AssignedTasks  int `json:"assignedTasks"`
}

// CalendarDTO is the calendar view
type CalendarDTO struct {
	Projects []ProjectDTO       `json:"projects"`
	Tasks    []TaskDTO          `json:"tasks"`
	Summary  CalendarSummaryDTO `json:"summary"`
}

// ToDashboardDTO converts the dashboard aggregate
func ToDashboardDTO(d *services.Dashboard) DashboardDTO {
	return DashboardDTO{
		TotalProjects:      d.TotalProjects,
		CompletedProjects:  d.CompletedProjects,
		ActiveProjects:     d.ActiveProjects,
		TotalTasks:         d.TotalTasks,
		TeamSize:           d.TeamSize,
		ProjectsByStatus:   d.ProjectsByStatus,
		ProjectsByPriority: d.ProjectsByPriority,
		TasksByStatus:      d.TasksByStatus,
		RecentTasks:        ToTaskWithProjectDTOs(d.RecentTasks),
		UpcomingDeadlines:  ToTaskWithProjectDTOs(d.UpcomingDeadlines),
	}
}

// ToCalendarDTO converts the calendar aggregate
func ToCalendarDTO(cal *services.Calendar) CalendarDTO {
	return CalendarDTO{
		Projects: ToProjectDTOs(cal.Projects),
		Tasks:    ToTaskWithProjectDTOs(cal.Tasks),
		Summary: CalendarSummaryDTO{
			TotalProjects:  cal.Summary.TotalProjects,
			OwnedProjects:  cal.Summary.OwnedProjects,
			MemberProjects: cal.Summary.MemberProjects,
			TotalTasks:     cal.Summary.TotalTasks,
			AssignedTasks:  cal.Summary.AssignedTasks,
		},
	}
}
