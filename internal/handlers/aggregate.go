package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard summarizes every project the user can see
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch dashboard data")
		return
	}
	respondData(c, http.StatusOK, dto.ToDashboardDTO(dashboard))
}

type CalendarHandler struct {
	calendarService *services.CalendarService
}

func NewCalendarHandler(calendarService *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// GetCalendar returns projects and tasks, optionally limited to
// start_date..end_date. Both bounds must be given together.
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	window, err := parseWindow(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	calendar, err := h.calendarService.GetCalendar(c.Request.Context(), user, window)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch calendar data")
		return
	}
	respondData(c, http.StatusOK, dto.ToCalendarDTO(calendar))
}

var errStartEndTogether = errors.New("start_date and end_date must be provided together")

func parseWindow(start, end string) (*services.DateWindow, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, errStartEndTogether
	}

	startDate, err := utils.ParseDate(start)
	if err != nil {
		return nil, err
	}
	endDate, err := utils.ParseDate(end)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, services.ErrInvalidDateRange
	}
	return &services.DateWindow{Start: startDate, End: endDate}, nil
}
