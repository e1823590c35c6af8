package common

import "time"

// ============================================================================
// Common request types
// ============================================================================

// PaginationRequest carries page/page_size query parameters.
type PaginationRequest struct {
	Page     int `json:"page" form:"page" binding:"omitempty,min=1"`
	PageSize int `json:"page_size" form:"page_size" binding:"omitempty,min=1"`
}

// DefaultPagination returns the default paging window.
func DefaultPagination() PaginationRequest {
	return PaginationRequest{
		Page:     1,
		PageSize: 20,
	}
}

// GetOffset computes the query offset.
func (p PaginationRequest) GetOffset() int {
	if p.Page < 1 {
		p.Page = 1
	}
	return (p.Page - 1) * p.GetPageSize()
}

// GetPageSize returns the page size clamped to [1, 100].
func (p PaginationRequest) GetPageSize() int {
	if p.PageSize < 1 {
		return 20
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// FilterRequest is the generic list filter.
type FilterRequest struct {
	Keyword   string     `json:"keyword" form:"keyword"`
	Status    string     `json:"status" form:"status"`
	DateRange *DateRange `json:"date_range"`
	SortBy    string     `json:"sort_by" form:"sort_by"`
	SortOrder string     `json:"sort_order" form:"sort_order"` // asc, desc
}

// DateRange bounds a time interval filter.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ListRequest combines pagination and filtering.
type ListRequest struct {
	PaginationRequest
	FilterRequest
}

// IDRequest binds a path id.
type IDRequest struct {
	ID string `json:"id" uri:"id" binding:"required"`
}

// ============================================================================
// Common response types
// ============================================================================

// APIResponse is the unified API envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// SuccessResponse wraps data in a success envelope.
func SuccessResponse(data any) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
		Code:    0,
	}
}

// SuccessMessageResponse wraps data and a message in a success envelope.
func SuccessMessageResponse(message string, data any) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
		Message: message,
		Code:    0,
	}
}

// ErrorResponse builds an error envelope.
func ErrorResponse(code int, message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Code:    code,
	}
}

// PaginationMeta describes the paging window of a list response.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// CalculateTotalPages derives TotalPages from Total and PageSize.
func (m *PaginationMeta) CalculateTotalPages() {
	if m.PageSize > 0 {
		m.TotalPages = int((m.Total + int64(m.PageSize) - 1) / int64(m.PageSize))
	}
}

// NewPaginationMeta builds pagination metadata.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	meta := PaginationMeta{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
	meta.CalculateTotalPages()
	return meta
}

// ListResponse is the unified list payload.
type ListResponse struct {
	Items      any            `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// NewListResponse builds a list payload with pagination metadata.
func NewListResponse(items any, page, pageSize int, total int64) ListResponse {
	return ListResponse{
		Items:      items,
		Pagination: NewPaginationMeta(page, pageSize, total),
	}
}

// ============================================================================
// Business status codes
// ============================================================================

const (
	CodeSuccess = 0

	// Generic (1000-1999)
	CodeInvalidRequest     = 1000
	CodeUnauthorized       = 1001
	CodeForbidden          = 1002
	CodeNotFound           = 1003
	CodeConflict           = 1004
	CodeInternalError      = 1005
	CodeServiceUnavailable = 1006

	// Organization (2000-2099)
	CodeUserNotFound       = 2000
	CodeUserDisabled       = 2001
	CodeInvalidCredentials = 2002
	CodeRoleNotFound       = 2010
	CodeDivisionNotFound   = 2020
	CodeVendorNotFound     = 2030

	// Project / budget (3000-3099)
	CodeProjectNotFound = 3000
	CodeBudgetNotFound  = 3001
	CodeBudgetExhausted = 3002

	// Procurement documents (4000-4099)
	CodeRequestNotFound   = 4000
	CodeRequestNotDraft   = 4001
	CodeRequestNotApproved = 4002
	CodeOrderNotFound     = 4010

	// Approval engine (7000-7099)
	CodeSchemaNotFound      = 7000
	CodeStepNotFound        = 7001
	CodeInvalidStepList     = 7002
	CodeInvalidTransition   = 7003
	CodeNotYourTurn         = 7004
	CodeConcurrencyConflict = 7005
)

// ErrorMessages maps codes to their default user-facing message.
var ErrorMessages = map[int]string{
	CodeSuccess:            "ok",
	CodeInvalidRequest:     "missing required fields in request",
	CodeUnauthorized:       "unauthorized, please sign in",
	CodeForbidden:          "access denied",
	CodeNotFound:           "resource not found",
	CodeConflict:           "resource conflict",
	CodeInternalError:      "internal server error",
	CodeServiceUnavailable: "service unavailable",

	CodeUserNotFound:       "user not found",
	CodeUserDisabled:       "user is disabled",
	CodeInvalidCredentials: "invalid email or password",
	CodeRoleNotFound:       "role not found",
	CodeDivisionNotFound:   "work division not found",
	CodeVendorNotFound:     "vendor not found",

	CodeProjectNotFound: "project not found",
	CodeBudgetNotFound:  "budget not found",
	CodeBudgetExhausted: "budget amount exhausted",

	CodeRequestNotFound:    "purchase request not found",
	CodeRequestNotDraft:    "purchase request is not editable",
	CodeRequestNotApproved: "purchase request is not fully approved",
	CodeOrderNotFound:      "purchase order not found",

	CodeSchemaNotFound:      "approval schema not found",
	CodeStepNotFound:        "approval step not found",
	CodeInvalidStepList:     "approval step list is invalid",
	CodeInvalidTransition:   "request already finalized",
	CodeNotYourTurn:         "not your turn to approve",
	CodeConcurrencyConflict: "the step was decided by someone else, refresh and retry",
}

// GetErrorMessage returns the default message for a code.
func GetErrorMessage(code int) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "unknown error"
}

// ============================================================================
// Business error type
// ============================================================================

// BusinessError is a recoverable, user-displayable error.
type BusinessError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *BusinessError) Error() string {
	return e.Message
}

// NewBusinessError builds a BusinessError, falling back to the default
// message for the code when message is empty.
func NewBusinessError(code int, message string) *BusinessError {
	if message == "" {
		message = GetErrorMessage(code)
	}
	return &BusinessError{
		Code:    code,
		Message: message,
	}
}

// NewBusinessErrorWithCode builds a BusinessError with the default message.
func NewBusinessErrorWithCode(code int) *BusinessError {
	return NewBusinessError(code, GetErrorMessage(code))
}
