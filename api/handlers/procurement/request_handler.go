package procurement

import (
	"errors"

	"backend/internal/approval"
	"backend/internal/auth"
	"backend/internal/common"
	"backend/internal/procurement"

	"github.com/gin-gonic/gin"
)

// RequestHandler exposes the purchase request lifecycle: draft, submit,
// revise, resubmit.
type RequestHandler struct {
	service *procurement.Service
}

func NewRequestHandler(service *procurement.Service) *RequestHandler {
	return &RequestHandler{service: service}
}

// CreateRequest creates a draft purchase request.
// @Summary Create purchase request
// @Tags Procurement
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateRequestRequest true "draft content"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/v1/purchase-requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	pr := &procurement.PurchaseRequest{
		Title:          req.Title,
		CreatedBy:      auth.CurrentUserID(c),
		WorkDivisionID: req.WorkDivisionID,
		BudgetID:       req.BudgetID,
		Notes:          req.Notes,
		Items:          toItems(req.Items),
	}
	if err := h.service.CreateRequest(c.Request.Context(), pr); err != nil {
		respondProcurementError(c, err)
		return
	}
	common.ResponseCreated(c, pr)
}

// ListRequests lists purchase requests.
// @Summary List purchase requests
// @Tags Procurement
// @Security BearerAuth
// @Produce json
// @Param status query string false "document status filter"
// @Param created_by query string false "creator filter"
// @Param mine query bool false "only the caller's requests"
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/purchase-requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	var query ListRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.ResponseBadRequest(c, "invalid query: "+err.Error())
		return
	}
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, "invalid pagination: "+err.Error())
		return
	}

	createdBy := query.CreatedBy
	if query.Mine {
		createdBy = auth.CurrentUserID(c)
	}

	requests, total, err := h.service.ListRequests(c.Request.Context(), query.Status, createdBy, page)
	if err != nil {
		common.ResponseInternalError(c, "failed to list purchase requests")
		return
	}
	common.ResponseList(c, requests, total, &page)
}

// GetRequest fetches one purchase request with its items.
// @Summary Get purchase request
// @Tags Procurement
// @Security BearerAuth
// @Produce json
// @Param id path string true "request id"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/purchase-requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	pr, err := h.service.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProcurementError(c, err)
		return
	}
	common.ResponseSuccess(c, pr)
}

// UpdateRequest replaces the content of a draft or revision request.
// @Summary Update purchase request
// @Description Only the creator may edit, and only while the request is in draft or revision.
// @Tags Procurement
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "request id"
// @Param request body UpdateRequestRequest true "new content"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/purchase-requests/{id} [put]
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
	var req UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	update := &procurement.PurchaseRequest{
		Title:    req.Title,
		BudgetID: req.BudgetID,
		Notes:    req.Notes,
		Items:    toItems(req.Items),
	}
	pr, err := h.service.UpdateRequest(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c), update)
	if err != nil {
		respondProcurementError(c, err)
		return
	}
	common.ResponseSuccess(c, pr)
}

// Submit starts the approval chain on a draft request.
// @Summary Submit purchase request
// @Description Instantiates the approval chain from a saved schema or an explicit step list and moves the request to pending.
// @Tags Procurement
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "request id"
// @Param request body SubmitRequest true "schema id or step list"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/purchase-requests/{id}/submit [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.SchemaID == "" && len(req.Steps) == 0 {
		common.ResponseBadRequest(c, "either schemaId or steps is required")
		return
	}

	pr, err := h.service.Submit(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c), req.SchemaID, req.Steps)
	if err != nil {
		respondProcurementError(c, err)
		return
	}
	common.ResponseSuccess(c, pr)
}

// Resubmit restarts the chain after a revision request.
// @Summary Resubmit purchase request
// @Description Resets every step of the existing chain and makes step one current again. Only valid while the request awaits revision.
// @Tags Procurement
// @Security BearerAuth
// @Produce json
// @Param id path string true "request id"
// @Success 200 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/purchase-requests/{id}/resubmit [post]
func (h *RequestHandler) Resubmit(c *gin.Context) {
	result, err := h.service.Resubmit(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c))
	if err != nil {
		respondProcurementError(c, err)
		return
	}
	common.ResponseSuccess(c, result)
}

func toItems(inputs []ItemInput) []procurement.PurchaseRequestItem {
	items := make([]procurement.PurchaseRequestItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, procurement.PurchaseRequestItem{
			Description: in.Description,
			Quantity:    in.Quantity,
			Unit:        in.Unit,
			UnitPrice:   in.UnitPrice,
		})
	}
	return items
}

func respondProcurementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, procurement.ErrRequestNotFound):
		common.ResponseError(c, common.CodeRequestNotFound, "")
	case errors.Is(err, procurement.ErrOrderNotFound):
		common.ResponseError(c, common.CodeOrderNotFound, "")
	case errors.Is(err, procurement.ErrRequestNotEditable):
		common.ResponseError(c, common.CodeRequestNotDraft, "")
	case errors.Is(err, procurement.ErrRequestNotApproved):
		common.ResponseError(c, common.CodeRequestNotApproved, "")
	case errors.Is(err, procurement.ErrNotCreator):
		common.ResponseForbidden(c, "only the creator may perform this action")
	case errors.Is(err, approval.ErrSchemaNotFound):
		common.ResponseError(c, common.CodeSchemaNotFound, "")
	case errors.Is(err, approval.ErrInvalidStepList):
		common.ResponseError(c, common.CodeInvalidStepList, err.Error())
	case errors.Is(err, approval.ErrInvalidTransition):
		common.ResponseError(c, common.CodeInvalidTransition, "")
	case errors.Is(err, approval.ErrConcurrencyConflict):
		common.ResponseError(c, common.CodeConcurrencyConflict, "")
	default:
		common.ResponseInternalError(c, "procurement operation failed")
	}
}
