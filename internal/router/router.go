package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-automation-api/internal/client"
	"task-automation-api/internal/database"
	"task-automation-api/internal/handler"
	"task-automation-api/internal/metrics"
	"task-automation-api/internal/middleware"
	"task-automation-api/internal/repository"
	"task-automation-api/internal/service"
)

// Config holds the dependencies needed to build the router
type Config struct {
	DB             *gorm.DB
	Logger         *zap.Logger
	JWTSecret      string
	UserClient     client.UserClient
	BasePath       string
	Metrics        *metrics.Metrics
	AllowedOrigins []string
}

// tokenValidatorAdapter narrows the user client to what the auth
// middleware needs.
type tokenValidatorAdapter struct {
	users client.UserClient
}

func (a tokenValidatorAdapter) ValidateToken(ctx context.Context, token string) (uuid.UUID, error) {
	auth, err := a.users.ValidateToken(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	return auth.UserID, nil
}

// Setup builds the gin engine with all middlewares, routes, and the full
// service dependency chain.
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Repositories
	taskRepo := repository.NewTaskRepository(cfg.DB)
	projectRepo := repository.NewProjectRepository(cfg.DB)
	taskLabelRepo := repository.NewTaskLabelRepository(cfg.DB)
	taskRuleRepo := repository.NewTaskAutomationRepository(cfg.DB)
	taskButtonRepo := repository.NewTaskButtonRepository(cfg.DB)
	boardRepo := repository.NewBoardRepository(cfg.DB)
	cardRepo := repository.NewCardRepository(cfg.DB)
	cardLabelRepo := repository.NewCardLabelRepository(cfg.DB)
	cardRuleRepo := repository.NewCardAutomationRepository(cfg.DB)
	recurringRepo := repository.NewRecurringTaskRepository(cfg.DB)

	// Automation engine
	taskExecutor := service.NewTaskActionExecutor(cfg.UserClient, cfg.Logger)
	cardExecutor := service.NewCardActionExecutor(cfg.UserClient, cfg.Logger)

	var automationMetrics service.AutomationMetrics
	if cfg.Metrics != nil {
		automationMetrics = cfg.Metrics
	}

	taskAutomation := service.NewTaskAutomationService(cfg.DB, taskRepo, taskRuleRepo, taskExecutor, automationMetrics, cfg.Logger)
	cardAutomation := service.NewCardAutomationService(cfg.DB, cardRepo, cardRuleRepo, cardExecutor, automationMetrics, cfg.Logger)
	recurrence := service.NewRecurrenceService(cfg.DB, taskRepo, recurringRepo, automationMetrics, cfg.Logger)
	taskButtons := service.NewTaskButtonService(cfg.DB, taskRepo, taskButtonRepo, taskLabelRepo, taskExecutor, automationMetrics, cfg.Logger)
	cardButtons := service.NewCardButtonService(cfg.DB, cardRepo, cardRuleRepo, cardExecutor, automationMetrics, cfg.Logger)

	// Domain services
	taskService := service.NewTaskService(taskRepo, projectRepo, taskLabelRepo, recurringRepo, taskAutomation, recurrence, cfg.Logger)
	cardService := service.NewCardService(cardRepo, boardRepo, cardLabelRepo, cardAutomation, cfg.Logger)
	taskRules := service.NewTaskRuleService(taskRuleRepo, taskButtonRepo)
	cardRules := service.NewCardRuleService(cardRuleRepo)
	workspace := service.NewWorkspaceService(projectRepo, boardRepo, taskLabelRepo, cardLabelRepo)

	// Handlers
	taskHandler := handler.NewTaskHandler(taskService, taskButtons, taskRules)
	cardHandler := handler.NewCardHandler(cardService, cardRules)
	automationHandler := handler.NewAutomationHandler(taskRules, taskButtons)
	cardAutomationHandler := handler.NewCardAutomationHandler(cardRules, cardButtons)
	workspaceHandler := handler.NewWorkspaceHandler(workspace)

	registerOps(r, "")
	if cfg.BasePath != "" {
		registerOps(r, cfg.BasePath)
	}

	var auth gin.HandlerFunc
	if cfg.UserClient != nil {
		auth = middleware.AuthWithValidator(tokenValidatorAdapter{users: cfg.UserClient})
	} else {
		auth = middleware.Auth(cfg.JWTSecret)
	}

	api := r.Group(cfg.BasePath)
	api.Use(auth)
	{
		tasks := api.Group("/tasks")
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:taskId", taskHandler.GetTask)
			tasks.PATCH("/:taskId", taskHandler.UpdateTask)
			tasks.DELETE("/:taskId", taskHandler.DeleteTask)
			tasks.POST("/:taskId/labels", taskHandler.AddLabel)
			tasks.DELETE("/:taskId/labels/:labelId", taskHandler.RemoveLabel)
			tasks.PUT("/:taskId/recurrence", taskHandler.SetRecurrence)
			tasks.GET("/:taskId/buttons", taskHandler.ListVisibleButtons)
			tasks.GET("/:taskId/automation-logs", taskHandler.GetTaskLogs)
		}

		projects := api.Group("/projects")
		{
			projects.POST("", workspaceHandler.CreateProject)
			projects.GET("/:projectId/tasks", taskHandler.ListTasks)
		}

		organizations := api.Group("/organizations")
		{
			organizations.GET("/:orgId/projects", workspaceHandler.ListProjects)
			organizations.GET("/:orgId/labels", workspaceHandler.ListTaskLabels)
			organizations.POST("/:orgId/labels", workspaceHandler.CreateTaskLabel)
			organizations.GET("/:orgId/automation/rules", automationHandler.ListRules)
			organizations.GET("/:orgId/automation/buttons", automationHandler.ListButtons)
		}

		automation := api.Group("/automation")
		{
			automation.POST("/rules", automationHandler.CreateRule)
			automation.GET("/rules/:ruleId", automationHandler.GetRule)
			automation.PATCH("/rules/:ruleId", automationHandler.UpdateRule)
			automation.DELETE("/rules/:ruleId", automationHandler.DeleteRule)
			automation.GET("/rules/:ruleId/logs", automationHandler.GetRuleLogs)
			automation.POST("/buttons", automationHandler.CreateButton)
			automation.DELETE("/buttons/:buttonId", automationHandler.DeleteButton)
			automation.POST("/buttons/:buttonId/execute", automationHandler.ExecuteButton)
		}

		boards := api.Group("/boards")
		{
			boards.POST("", workspaceHandler.CreateBoard)
			boards.GET("/:boardId", workspaceHandler.GetBoard)
			boards.POST("/:boardId/columns", workspaceHandler.CreateColumn)
			boards.GET("/:boardId/labels", workspaceHandler.ListCardLabels)
			boards.POST("/:boardId/labels", workspaceHandler.CreateCardLabel)
			boards.GET("/:boardId/card-automation/rules", cardAutomationHandler.ListRules)
			boards.GET("/:boardId/card-automation/buttons", cardAutomationHandler.ListButtons)
		}

		columns := api.Group("/columns")
		{
			columns.GET("/:columnId/cards", cardHandler.ListCards)
		}

		cards := api.Group("/cards")
		{
			cards.POST("", cardHandler.CreateCard)
			cards.GET("/:cardId", cardHandler.GetCard)
			cards.PATCH("/:cardId", cardHandler.UpdateCard)
			cards.POST("/:cardId/move", cardHandler.MoveCard)
			cards.DELETE("/:cardId", cardHandler.DeleteCard)
			cards.POST("/:cardId/labels", cardHandler.AddLabel)
			cards.DELETE("/:cardId/labels/:labelId", cardHandler.RemoveLabel)
			cards.GET("/:cardId/automation-logs", cardHandler.GetCardLogs)
		}

		cardAutomation := api.Group("/card-automation")
		{
			cardAutomation.POST("/rules", cardAutomationHandler.CreateRule)
			cardAutomation.GET("/rules/:ruleId", cardAutomationHandler.GetRule)
			cardAutomation.DELETE("/rules/:ruleId", cardAutomationHandler.DeleteRule)
			cardAutomation.POST("/buttons", cardAutomationHandler.CreateButton)
			cardAutomation.DELETE("/buttons/:buttonId", cardAutomationHandler.DeleteButton)
			cardAutomation.POST("/buttons/:buttonId/execute", cardAutomationHandler.ExecuteButton)
		}
	}

	return r
}

// registerOps registers the unauthenticated operational endpoints at the
// given prefix. They are exposed both at root and under the base path so
// probes work with or without ingress rewriting.
func registerOps(r *gin.Engine, prefix string) {
	r.GET(prefix+"/health", healthCheck)
	r.GET(prefix+"/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck reports liveness and database connectivity
func healthCheck(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if !database.IsConnected() {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "database": database.IsConnected()})
}
