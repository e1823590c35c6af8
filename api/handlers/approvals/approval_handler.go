package approvals

import (
	"errors"
	"io"

	"backend/internal/approval"
	"backend/internal/auth"
	"backend/internal/common"

	"github.com/gin-gonic/gin"
)

// ApprovalHandler exposes the approval chain of a document: reading
// steps and history, and deciding the current step.
type ApprovalHandler struct {
	engine  *approval.Engine
	checker auth.PermissionChecker
}

func NewApprovalHandler(engine *approval.Engine, checker auth.PermissionChecker) *ApprovalHandler {
	return &ApprovalHandler{engine: engine, checker: checker}
}

// GetSteps returns the full chain of a document.
// @Summary Get approval steps
// @Tags Approvals
// @Security BearerAuth
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/documents/{id}/approval/steps [get]
func (h *ApprovalHandler) GetSteps(c *gin.Context) {
	steps, err := h.engine.Steps(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondApprovalError(c, err)
		return
	}
	common.ResponseSuccess(c, gin.H{
		"steps":  steps,
		"status": approval.ProjectStatus(steps),
	})
}

// GetCurrentStep returns the step awaiting a decision, if any.
// @Summary Get current approval step
// @Description Returns the lowest-order actionable step, or null when the chain is finished or frozen.
// @Tags Approvals
// @Security BearerAuth
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/documents/{id}/approval/current-step [get]
func (h *ApprovalHandler) GetCurrentStep(c *gin.Context) {
	step, err := h.engine.GetCurrentStep(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondApprovalError(c, err)
		return
	}

	actor := currentActor(c)
	canAct := step != nil && h.engine.CanAct(step, actor)
	common.ResponseSuccess(c, gin.H{
		"step":   step,
		"canAct": canAct,
	})
}

// GetHistory returns the append-only audit trail of a document.
// @Summary Get approval history
// @Tags Approvals
// @Security BearerAuth
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/documents/{id}/approval/history [get]
func (h *ApprovalHandler) GetHistory(c *gin.Context) {
	entries, err := h.engine.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondApprovalError(c, err)
		return
	}
	common.ResponseSuccess(c, gin.H{"history": entries, "total": len(entries)})
}

// Approve approves the current step.
// @Summary Approve a step
// @Description Marks the step approved. Only the current step can be decided, and only by an eligible reviewer.
// @Tags Approvals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "document id"
// @Param order path int true "step order"
// @Param request body DecideRequest false "optional comment"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/documents/{id}/approval/steps/{order}/approve [post]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	actor, stepOrder, ok := h.bindDecision(c)
	if !ok {
		return
	}

	result, err := h.engine.Approve(c.Request.Context(), c.Param("id"), stepOrder, actor)
	if err != nil {
		respondApprovalError(c, err)
		return
	}
	common.ResponseSuccess(c, result)
}

// Decline declines the current step, closing the chain.
// @Summary Decline a step
// @Description Mode "decline" rejects the document permanently; mode "revision" hands it back to the creator for editing and resubmission.
// @Tags Approvals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "document id"
// @Param order path int true "step order"
// @Param request body DecideRequest false "decision, defaults to mode decline"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/documents/{id}/approval/steps/{order}/decline [post]
func (h *ApprovalHandler) Decline(c *gin.Context) {
	actor, stepOrder, ok := h.bindDecision(c)
	if !ok {
		return
	}

	// The body is optional; an absent one means a plain decline.
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = approval.DeclineModeDecline
	}

	result, err := h.engine.Decline(c.Request.Context(), c.Param("id"), stepOrder, actor, req.Comment, mode)
	if err != nil {
		respondApprovalError(c, err)
		return
	}
	common.ResponseSuccess(c, result)
}

// bindDecision resolves the acting user, checks the general review
// capability, and parses the step order from the path.
func (h *ApprovalHandler) bindDecision(c *gin.Context) (approval.Actor, int, bool) {
	actor := currentActor(c)

	allowed, err := h.checker.HasReviewPermission(c.Request.Context(), actor.ID)
	if err != nil {
		common.ResponseInternalError(c, "permission check failed")
		return actor, 0, false
	}
	if !allowed {
		common.ResponseForbidden(c, "your role cannot review approvals")
		return actor, 0, false
	}

	var uri struct {
		Order int `uri:"order" binding:"required,min=1"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		common.ResponseBadRequest(c, "invalid step order")
		return actor, 0, false
	}
	return actor, uri.Order, true
}

func currentActor(c *gin.Context) approval.Actor {
	return approval.Actor{
		ID:     auth.CurrentUserID(c),
		RoleID: auth.CurrentRoleID(c),
	}
}

func respondApprovalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, approval.ErrDocumentNotFound):
		common.ResponseError(c, common.CodeRequestNotFound, "")
	case errors.Is(err, approval.ErrStepNotFound):
		common.ResponseError(c, common.CodeStepNotFound, "")
	case errors.Is(err, approval.ErrForbidden):
		common.ResponseError(c, common.CodeNotYourTurn, "")
	case errors.Is(err, approval.ErrInvalidTransition):
		common.ResponseError(c, common.CodeInvalidTransition, "")
	case errors.Is(err, approval.ErrConcurrencyConflict):
		common.ResponseError(c, common.CodeConcurrencyConflict, "")
	case errors.Is(err, approval.ErrInvalidStepList):
		common.ResponseError(c, common.CodeInvalidStepList, err.Error())
	default:
		common.ResponseInternalError(c, "approval operation failed")
	}
}
