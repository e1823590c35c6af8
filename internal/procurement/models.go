package procurement

import (
	"backend/internal/approval"
	"backend/internal/common"
)

// PurchaseRequest is a document flowing through the approval chain. Its
// status is always the projector's output, never set directly by handler
// code.
type PurchaseRequest struct {
	ID             string                  `json:"id" gorm:"primaryKey;type:uuid"`
	Code           string                  `json:"code" gorm:"size:50;uniqueIndex"`
	Title          string                  `json:"title" gorm:"size:255;not null"`
	Status         approval.DocumentStatus `json:"status" gorm:"size:50;not null;default:draft;index"`
	CreatedBy      string                  `json:"createdBy" gorm:"size:100;not null;index"`
	WorkDivisionID string                  `json:"workDivisionId" gorm:"type:uuid;index"`
	BudgetID       string                  `json:"budgetId" gorm:"type:uuid;index"`
	Notes          string                  `json:"notes" gorm:"type:text"`
	Items          []PurchaseRequestItem   `json:"items,omitempty" gorm:"foreignKey:PurchaseRequestID"`
	common.TimestampModel
}

func (PurchaseRequest) TableName() string {
	return "purchase_requests"
}

// TotalAmount sums the request's line items.
func (r *PurchaseRequest) TotalAmount() int64 {
	var total int64
	for _, item := range r.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// PurchaseRequestItem is one line of a purchase request.
type PurchaseRequestItem struct {
	ID                string `json:"id" gorm:"primaryKey;type:uuid"`
	PurchaseRequestID string `json:"purchaseRequestId" gorm:"type:uuid;not null;index"`
	Description       string `json:"description" gorm:"size:500;not null"`
	Quantity          int    `json:"quantity" gorm:"not null"`
	Unit              string `json:"unit" gorm:"size:50"`
	UnitPrice         int64  `json:"unitPrice" gorm:"not null"`
	common.TimestampModel
}

func (PurchaseRequestItem) TableName() string {
	return "purchase_request_items"
}

// PurchaseOrder is generated from a fully approved purchase request.
// Creating one marks the request completed.
type PurchaseOrder struct {
	ID                string `json:"id" gorm:"primaryKey;type:uuid"`
	Code              string `json:"code" gorm:"size:50;uniqueIndex"`
	PurchaseRequestID string `json:"purchaseRequestId" gorm:"type:uuid;not null;uniqueIndex"`
	VendorID          string `json:"vendorId" gorm:"type:uuid;index"`
	CreatedBy         string `json:"createdBy" gorm:"size:100;not null"`
	Notes             string `json:"notes" gorm:"type:text"`
	common.TimestampModel
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}
