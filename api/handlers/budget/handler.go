package budget

import (
	"errors"

	"backend/internal/auth"
	"backend/internal/budget"
	"backend/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler manages projects and their budget lines. Budget amounts are
// advisory context for approvers; they never block a chain.
type Handler struct {
	service *budget.Service
}

func NewHandler(service *budget.Service) *Handler {
	return &Handler{service: service}
}

// CreateProjectRequest registers a project.
type CreateProjectRequest struct {
	Name           string `json:"name" binding:"required"`
	WorkDivisionID string `json:"workDivisionId" binding:"required"`
	Description    string `json:"description"`
}

// CreateBudgetRequest registers a budget line under a project.
type CreateBudgetRequest struct {
	ProjectID      string `json:"projectId" binding:"required"`
	WorkDivisionID string `json:"workDivisionId"`
	Description    string `json:"description"`
	Amount         int64  `json:"amount" binding:"required,min=0"`
}

// CreateProject registers a project.
// @Summary Create project
// @Tags Budget
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateProjectRequest true "project"
// @Success 201 {object} common.APIResponse
// @Router /api/v1/projects [post]
func (h *Handler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	project := &budget.Project{
		Name:           req.Name,
		WorkDivisionID: req.WorkDivisionID,
		Description:    req.Description,
		CreatedBy:      auth.CurrentUserID(c),
	}
	if err := h.service.CreateProject(c.Request.Context(), project); err != nil {
		respondBudgetError(c, err)
		return
	}
	common.ResponseCreated(c, project)
}

// ListProjects lists projects.
// @Summary List projects
// @Tags Budget
// @Security BearerAuth
// @Produce json
// @Param division_id query string false "division filter"
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/projects [get]
func (h *Handler) ListProjects(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, "invalid pagination: "+err.Error())
		return
	}

	projects, total, err := h.service.ListProjects(c.Request.Context(), c.Query("division_id"), page)
	if err != nil {
		common.ResponseInternalError(c, "failed to list projects")
		return
	}
	common.ResponseList(c, projects, total, &page)
}

// GetProject fetches one project.
// @Summary Get project
// @Tags Budget
// @Security BearerAuth
// @Produce json
// @Param id path string true "project id"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/projects/{id} [get]
func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.service.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBudgetError(c, err)
		return
	}
	common.ResponseSuccess(c, project)
}

// CreateBudget registers a budget line.
// @Summary Create budget
// @Tags Budget
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateBudgetRequest true "budget"
// @Success 201 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/budgets [post]
func (h *Handler) CreateBudget(c *gin.Context) {
	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	b := &budget.Budget{
		ProjectID:      req.ProjectID,
		WorkDivisionID: req.WorkDivisionID,
		Description:    req.Description,
		Amount:         req.Amount,
		CreatedBy:      auth.CurrentUserID(c),
	}
	if err := h.service.CreateBudget(c.Request.Context(), b); err != nil {
		respondBudgetError(c, err)
		return
	}
	common.ResponseCreated(c, b)
}

// ListBudgets lists budget lines.
// @Summary List budgets
// @Tags Budget
// @Security BearerAuth
// @Produce json
// @Param project_id query string false "project filter"
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/budgets [get]
func (h *Handler) ListBudgets(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, "invalid pagination: "+err.Error())
		return
	}

	budgets, total, err := h.service.ListBudgets(c.Request.Context(), c.Query("project_id"), page)
	if err != nil {
		common.ResponseInternalError(c, "failed to list budgets")
		return
	}
	common.ResponseList(c, budgets, total, &page)
}

// GetBudget fetches one budget line.
// @Summary Get budget
// @Tags Budget
// @Security BearerAuth
// @Produce json
// @Param id path string true "budget id"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/budgets/{id} [get]
func (h *Handler) GetBudget(c *gin.Context) {
	b, err := h.service.GetBudget(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBudgetError(c, err)
		return
	}
	common.ResponseSuccess(c, b)
}

func respondBudgetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, budget.ErrProjectNotFound):
		common.ResponseError(c, common.CodeProjectNotFound, "")
	case errors.Is(err, budget.ErrBudgetNotFound):
		common.ResponseError(c, common.CodeBudgetNotFound, "")
	default:
		common.ResponseInternalError(c, "budget operation failed")
	}
}
