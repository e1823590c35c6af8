package procurement

import "backend/internal/approval"

// ItemInput is one purchase request line.
type ItemInput struct {
	Description string `json:"description" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	Unit        string `json:"unit"`
	UnitPrice   int64  `json:"unitPrice" binding:"required,min=0"`
}

// CreateRequestRequest creates a draft purchase request.
type CreateRequestRequest struct {
	Title          string      `json:"title" binding:"required"`
	WorkDivisionID string      `json:"workDivisionId" binding:"required"`
	BudgetID       string      `json:"budgetId"`
	Notes          string      `json:"notes"`
	Items          []ItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateRequestRequest replaces an editable request's content.
type UpdateRequestRequest struct {
	Title    string      `json:"title" binding:"required"`
	BudgetID string      `json:"budgetId"`
	Notes    string      `json:"notes"`
	Items    []ItemInput `json:"items" binding:"required,min=1,dive"`
}

// SubmitRequest starts the approval chain. Either a saved schema id or
// an explicit step list must be given; the schema wins when both are.
type SubmitRequest struct {
	SchemaID string               `json:"schemaId"`
	Steps    []approval.StepInput `json:"steps"`
}

// ConvertToOrderRequest turns an approved request into a purchase order.
type ConvertToOrderRequest struct {
	VendorID string `json:"vendorId" binding:"required"`
}

// ListRequestsQuery filters the request list.
type ListRequestsQuery struct {
	Status    string `form:"status"`
	CreatedBy string `form:"created_by"`
	Mine      bool   `form:"mine"`
}
