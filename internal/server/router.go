package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/handlers"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/notify"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
	"gorm.io/gorm"
)

// Services bundles everything the routes depend on
type Services struct {
	Users      *services.UserService
	Authorizer *services.Authorizer
	Projects   *services.ProjectService
	Members    *services.MemberService
	Tasks      *services.TaskService
	Dashboard  *services.DashboardService
	Calendar   *services.CalendarService
	AI         *services.AIService
}

// NewServices wires repositories over db into services
func NewServices(db *gorm.DB, verifier services.IdentityVerifier, dispatcher services.InvitationDispatcher, aiService *services.AIService) *Services {
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authorizer := services.NewAuthorizer(projectRepo)

	return &Services{
		Users:      services.NewUserService(userRepo, verifier),
		Authorizer: authorizer,
		Projects:   services.NewProjectService(projectRepo, memberRepo, userRepo, dispatcher),
		Members:    services.NewMemberService(projectRepo, memberRepo, userRepo, dispatcher),
		Tasks:      services.NewTaskService(taskRepo, projectRepo, authorizer),
		Dashboard:  services.NewDashboardService(projectRepo, memberRepo, taskRepo, userRepo),
		Calendar:   services.NewCalendarService(projectRepo, taskRepo),
		AI:         aiService,
	}
}

// NewRouter builds the gin engine with every route
func NewRouter(cfg *config.Config, svc *Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	healthHandler := handlers.NewHealthHandler()
	userHandler := handlers.NewUserHandler(svc.Users)
	projectHandler := handlers.NewProjectHandler(svc.Projects)
	memberHandler := handlers.NewMemberHandler(svc.Members)
	taskHandler := handlers.NewTaskHandler(svc.Tasks, svc.Authorizer)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	calendarHandler := handlers.NewCalendarHandler(svc.Calendar)
	aiHandler := handlers.NewAIHandler(svc.AI)

	// Health check endpoints
	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.GET("/health", healthHandler.Health)

	requireAuth := middleware.RequireAuth(svc.Users)
	projectAccess := middleware.RequireProjectAccess(svc.Authorizer)
	taskAccess := middleware.RequireTaskAccess(svc.Tasks, svc.Authorizer)

	users := api.Group("/users")
	users.Use(requireAuth)
	{
		users.GET("", userHandler.ListUsers)
		users.GET("/me", userHandler.Me)
		users.GET("/search", userHandler.SearchUsers)
		users.GET("/clerk/:clerkId", userHandler.GetUserByClerkID)
		users.GET("/:userId", userHandler.GetUser)
		users.POST("", userHandler.CreateUser)
		users.PUT("/:userId", userHandler.UpdateUser)
		users.DELETE("/:userId", userHandler.DeleteUser)
	}

	projects := api.Group("/projects")
	projects.Use(requireAuth)
	{
		projects.GET("", projectHandler.ListProjects)
		projects.POST("", projectHandler.CreateProject)
		projects.DELETE("", projectHandler.DeleteProject)
		projects.GET("/:projectId", projectAccess, projectHandler.GetProject)
		projects.PUT("/:projectId", projectAccess, projectHandler.UpdateProject)
		projects.DELETE("/:projectId", projectHandler.DeleteProject)

		projects.GET("/:projectId/members", projectAccess, memberHandler.ListMembers)
		projects.POST("/:projectId/members", projectAccess, memberHandler.AddMember)
		projects.POST("/:projectId/members/bulk", projectAccess, memberHandler.BulkAddMembers)
		projects.PUT("/:projectId/members/:memberId", projectAccess, memberHandler.UpdateMemberRole)
		projects.DELETE("/:projectId/members/:memberId", projectAccess, memberHandler.RemoveMember)
		projects.POST("/:projectId/invites", projectAccess, memberHandler.InviteMembers)
	}

	tasks := api.Group("/tasks")
	tasks.Use(requireAuth)
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/:taskId", taskAccess, taskHandler.GetTask)
		tasks.PUT("/:taskId", taskAccess, taskHandler.UpdateTask)
		tasks.DELETE("/:taskId", taskAccess, taskHandler.DeleteTask)
		tasks.GET("/:taskId/assignments", taskAccess, taskHandler.ListAssignments)
		tasks.POST("/:taskId/assignments", taskAccess, taskHandler.AssignTask)
		tasks.DELETE("/:taskId/assignments/:userId", taskAccess, taskHandler.UnassignTask)
	}

	api.GET("/dashboard", requireAuth, dashboardHandler.GetDashboard)
	api.GET("/calendar", requireAuth, calendarHandler.GetCalendar)
	api.POST("/ai/project-description", requireAuth, aiHandler.GenerateProjectDescription)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", constants.HeaderRequestID)
	cfg.ExposeHeaders = []string{constants.HeaderRequestID}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// Dispatcher builds the invitation dispatcher for the configured mail transport
func Dispatcher(cfg *config.Config) *notify.Dispatcher {
	return notify.NewDispatcher(notify.NewTransport(cfg.Email), cfg.AppURL, constants.MailSendTimeout)
}
