package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResponseSuccess writes a success envelope.
func ResponseSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse(data))
}

// ResponseSuccessMessage writes a success envelope with a message.
func ResponseSuccessMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessMessageResponse(message, data))
}

// ResponseList writes a paginated list envelope.
func ResponseList(c *gin.Context, items any, total int64, req *PaginationRequest) {
	if req == nil {
		defaultReq := DefaultPagination()
		req = &defaultReq
	}
	c.JSON(http.StatusOK, SuccessResponse(NewListResponse(items, req.Page, req.GetPageSize(), total)))
}

// ResponseError maps a business code to an HTTP status and writes the
// error envelope.
func ResponseError(c *gin.Context, code int, message string) {
	httpStatus := http.StatusOK

	switch code {
	case CodeUnauthorized, CodeInvalidCredentials, CodeUserDisabled:
		httpStatus = http.StatusUnauthorized
	case CodeForbidden, CodeNotYourTurn:
		httpStatus = http.StatusForbidden
	case CodeNotFound, CodeUserNotFound, CodeRoleNotFound, CodeDivisionNotFound,
		CodeVendorNotFound, CodeProjectNotFound, CodeBudgetNotFound,
		CodeRequestNotFound, CodeOrderNotFound, CodeSchemaNotFound, CodeStepNotFound:
		httpStatus = http.StatusNotFound
	case CodeInvalidRequest, CodeInvalidStepList:
		httpStatus = http.StatusBadRequest
	case CodeConflict, CodeInvalidTransition, CodeConcurrencyConflict,
		CodeRequestNotDraft, CodeRequestNotApproved, CodeBudgetExhausted:
		httpStatus = http.StatusConflict
	case CodeInternalError:
		httpStatus = http.StatusInternalServerError
	case CodeServiceUnavailable:
		httpStatus = http.StatusServiceUnavailable
	}

	if message == "" {
		message = GetErrorMessage(code)
	}
	c.JSON(httpStatus, ErrorResponse(code, message))
}

// ResponseBusinessError writes a BusinessError.
func ResponseBusinessError(c *gin.Context, err *BusinessError) {
	ResponseError(c, err.Code, err.Message)
}

// AbortWithError writes the error envelope and aborts the chain.
func AbortWithError(c *gin.Context, code int, message string) {
	ResponseError(c, code, message)
	c.Abort()
}

// ResponseCreated writes a 201 with a success envelope.
func ResponseCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, SuccessResponse(data))
}

// ResponseNoContent writes a 204.
func ResponseNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ResponseBadRequest writes a parameter error.
func ResponseBadRequest(c *gin.Context, message string) {
	ResponseError(c, CodeInvalidRequest, message)
}

// ResponseUnauthorized writes an authentication error.
func ResponseUnauthorized(c *gin.Context, message string) {
	ResponseError(c, CodeUnauthorized, message)
}

// ResponseForbidden writes a permission error.
func ResponseForbidden(c *gin.Context, message string) {
	ResponseError(c, CodeForbidden, message)
}

// ResponseNotFound writes a missing-resource error.
func ResponseNotFound(c *gin.Context, message string) {
	ResponseError(c, CodeNotFound, message)
}

// ResponseInternalError writes a 500 error.
func ResponseInternalError(c *gin.Context, message string) {
	ResponseError(c, CodeInternalError, message)
}
