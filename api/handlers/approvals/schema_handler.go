package approvals

import (
	"errors"

	"backend/internal/approval"
	"backend/internal/auth"
	"backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SchemaHandler manages reusable approval schemas.
type SchemaHandler struct {
	store *approval.SchemaStore
}

func NewSchemaHandler(store *approval.SchemaStore) *SchemaHandler {
	return &SchemaHandler{store: store}
}

// ListSchemas lists approval schemas.
// @Summary List approval schemas
// @Description Lists schemas for a document type. When division_id or role_id is given, only schemas applicable to that requester are returned.
// @Tags Approvals
// @Security BearerAuth
// @Produce json
// @Param document_type query string false "document type filter" Enums(purchase_request, memo)
// @Param division_id query string false "requester's work division"
// @Param role_id query string false "requester's role"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/approval-schemas [get]
func (h *SchemaHandler) ListSchemas(c *gin.Context) {
	documentType := approval.DocumentType(c.Query("document_type"))
	divisionID := c.Query("division_id")
	roleID := c.Query("role_id")

	var (
		schemas []*approval.ApprovalSchema
		err     error
	)
	if divisionID != "" || roleID != "" {
		schemas, err = h.store.ListApplicableSchemas(c.Request.Context(), documentType, divisionID, roleID)
	} else {
		schemas, err = h.store.ListSchemas(c.Request.Context(), documentType)
	}
	if err != nil {
		common.ResponseInternalError(c, "failed to list approval schemas")
		return
	}

	common.ResponseSuccess(c, gin.H{"schemas": schemas, "total": len(schemas)})
}

// GetSchema fetches one schema by id.
// @Summary Get approval schema
// @Tags Approvals
// @Security BearerAuth
// @Produce json
// @Param id path string true "schema id"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/approval-schemas/{id} [get]
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	schema, err := h.store.GetSchema(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondSchemaError(c, err)
		return
	}
	common.ResponseSuccess(c, schema)
}

// CreateSchema creates a schema.
// @Summary Create approval schema
// @Description Creates a named step template. Step order is derived from array position; the array order IS the approval order.
// @Tags Approvals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateSchemaRequest true "schema definition"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/v1/approval-schemas [post]
func (h *SchemaHandler) CreateSchema(c *gin.Context) {
	var req CreateSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	schema := &approval.ApprovalSchema{
		ID:           uuid.New().String(),
		Name:         req.Name,
		DocumentType: req.DocumentType,
		Description:  req.Description,
		DivisionIDs:  req.DivisionIDs,
		RoleIDs:      req.RoleIDs,
		Steps:        normalizeStepOrders(req.Steps),
		CreatedBy:    auth.CurrentUserID(c),
	}

	if err := h.store.CreateSchema(c.Request.Context(), schema); err != nil {
		respondSchemaError(c, err)
		return
	}
	common.ResponseCreated(c, schema)
}

// UpdateSchema replaces a schema definition.
// @Summary Update approval schema
// @Description Replaces the schema. Chains already instantiated keep the steps they were created with.
// @Tags Approvals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "schema id"
// @Param request body UpdateSchemaRequest true "schema definition"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/approval-schemas/{id} [put]
func (h *SchemaHandler) UpdateSchema(c *gin.Context) {
	var req UpdateSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	schema, err := h.store.GetSchema(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondSchemaError(c, err)
		return
	}

	schema.Name = req.Name
	schema.Description = req.Description
	schema.DivisionIDs = req.DivisionIDs
	schema.RoleIDs = req.RoleIDs
	schema.Steps = normalizeStepOrders(req.Steps)

	if err := h.store.UpdateSchema(c.Request.Context(), schema); err != nil {
		respondSchemaError(c, err)
		return
	}
	common.ResponseSuccess(c, schema)
}

// DeleteSchema removes a schema.
// @Summary Delete approval schema
// @Tags Approvals
// @Security BearerAuth
// @Produce json
// @Param id path string true "schema id"
// @Success 204 "deleted"
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/approval-schemas/{id} [delete]
func (h *SchemaHandler) DeleteSchema(c *gin.Context) {
	if err := h.store.DeleteSchema(c.Request.Context(), c.Param("id")); err != nil {
		respondSchemaError(c, err)
		return
	}
	common.ResponseNoContent(c)
}

// normalizeStepOrders stamps array position onto each template so the
// stored schema always carries consistent orders regardless of client
// input.
func normalizeStepOrders(steps []approval.ApprovalStepTemplate) []approval.ApprovalStepTemplate {
	out := make([]approval.ApprovalStepTemplate, len(steps))
	copy(out, steps)
	for i := range out {
		out[i].StepOrder = i + 1
	}
	return out
}

func respondSchemaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, approval.ErrSchemaNotFound):
		common.ResponseError(c, common.CodeSchemaNotFound, "")
	case errors.Is(err, approval.ErrInvalidStepList):
		common.ResponseError(c, common.CodeInvalidStepList, err.Error())
	default:
		common.ResponseInternalError(c, "approval schema operation failed")
	}
}
