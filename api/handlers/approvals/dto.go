package approvals

import "backend/internal/approval"

// CreateSchemaRequest creates a reusable approval schema. Step order is
// derived from array position.
type CreateSchemaRequest struct {
	Name         string                          `json:"name" binding:"required"`
	DocumentType approval.DocumentType           `json:"documentType" binding:"required"`
	Description  string                          `json:"description"`
	DivisionIDs  []string                        `json:"divisionIds"`
	RoleIDs      []string                        `json:"roleIds"`
	Steps        []approval.ApprovalStepTemplate `json:"steps" binding:"required"`
}

// UpdateSchemaRequest replaces a schema's definition. In-flight chains
// keep the steps they were instantiated with.
type UpdateSchemaRequest struct {
	Name        string                          `json:"name" binding:"required"`
	Description string                          `json:"description"`
	DivisionIDs []string                        `json:"divisionIds"`
	RoleIDs     []string                        `json:"roleIds"`
	Steps       []approval.ApprovalStepTemplate `json:"steps" binding:"required"`
}

// DecideRequest carries an approver's decision on the current step.
type DecideRequest struct {
	Comment string               `json:"comment"`
	Mode    approval.DeclineMode `json:"mode"` // decline only: "decline" (default) or "revision"
}
