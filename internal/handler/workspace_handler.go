package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"task-automation-api/internal/dto"
	"task-automation-api/internal/response"
	"task-automation-api/internal/service"
)

// WorkspaceHandler handles project, board, column, and label HTTP requests
type WorkspaceHandler struct {
	workspace service.WorkspaceService
}

// NewWorkspaceHandler creates a new instance of WorkspaceHandler
func NewWorkspaceHandler(workspace service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspace: workspace}
}

// CreateProject handles POST /projects
func (h *WorkspaceHandler) CreateProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}
	orgID, _ := uuid.Parse(req.OrganizationID)

	project, err := h.workspace.CreateProject(c.Request.Context(), orgID, req.Title, req.Description, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, dto.ToProjectResponse(project))
}

// ListProjects handles GET /organizations/:orgId/projects
func (h *WorkspaceHandler) ListProjects(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "orgId")
	if !ok {
		return
	}

	projects, err := h.workspace.ListProjects(c.Request.Context(), orgID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	responses := make([]*dto.ProjectResponse, len(projects))
	for i, project := range projects {
		responses[i] = dto.ToProjectResponse(project)
	}
	response.SendSuccess(c, http.StatusOK, responses)
}

// CreateBoard handles POST /boards
func (h *WorkspaceHandler) CreateBoard(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}
	orgID, _ := uuid.Parse(req.OrganizationID)

	board, err := h.workspace.CreateBoard(c.Request.Context(), orgID, req.Title, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, dto.ToBoardResponse(board))
}

// GetBoard handles GET /boards/:boardId
func (h *WorkspaceHandler) GetBoard(c *gin.Context) {
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return
	}

	board, err := h.workspace.GetBoard(c.Request.Context(), boardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.ToBoardResponse(board))
}

// CreateColumn handles POST /boards/:boardId/columns
func (h *WorkspaceHandler) CreateColumn(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return
	}

	var req dto.CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	column, err := h.workspace.CreateColumn(c.Request.Context(), boardID, req.Title, req.SortOrder)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, dto.BoardColumnResponse{
		ColumnID:  column.ID,
		BoardID:   column.BoardID,
		Title:     column.Title,
		SortOrder: column.SortOrder,
	})
}

// CreateTaskLabel handles POST /organizations/:orgId/labels
func (h *WorkspaceHandler) CreateTaskLabel(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}
	orgID, ok := parseUUIDParam(c, "orgId")
	if !ok {
		return
	}

	var req dto.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	label, err := h.workspace.CreateTaskLabel(c.Request.Context(), orgID, req.Name, req.Color)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, label)
}

// ListTaskLabels handles GET /organizations/:orgId/labels
func (h *WorkspaceHandler) ListTaskLabels(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "orgId")
	if !ok {
		return
	}

	labels, err := h.workspace.ListTaskLabels(c.Request.Context(), orgID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, labels)
}

// CreateCardLabel handles POST /boards/:boardId/labels
func (h *WorkspaceHandler) CreateCardLabel(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return
	}

	var req dto.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	label, err := h.workspace.CreateCardLabel(c.Request.Context(), boardID, req.Name, req.Color)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, label)
}

// ListCardLabels handles GET /boards/:boardId/labels
func (h *WorkspaceHandler) ListCardLabels(c *gin.Context) {
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return
	}

	labels, err := h.workspace.ListCardLabels(c.Request.Context(), boardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, labels)
}
