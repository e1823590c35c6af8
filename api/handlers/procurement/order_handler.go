package procurement

import (
	"backend/internal/auth"
	"backend/internal/common"
	"backend/internal/procurement"

	"github.com/gin-gonic/gin"
)

// OrderHandler exposes purchase orders generated from approved requests.
type OrderHandler struct {
	service *procurement.Service
}

func NewOrderHandler(service *procurement.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

// ConvertToOrder creates a purchase order from an approved request.
// @Summary Convert request to purchase order
// @Description Requires the request to be fully approved; the conversion marks it completed.
// @Tags Procurement
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "request id"
// @Param request body ConvertToOrderRequest true "vendor"
// @Success 201 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/purchase-requests/{id}/convert [post]
func (h *OrderHandler) ConvertToOrder(c *gin.Context) {
	var req ConvertToOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	order, err := h.service.ConvertToOrder(c.Request.Context(), c.Param("id"), req.VendorID, auth.CurrentUserID(c))
	if err != nil {
		respondProcurementError(c, err)
		return
	}
	common.ResponseCreated(c, order)
}

// ListOrders lists purchase orders.
// @Summary List purchase orders
// @Tags Procurement
// @Security BearerAuth
// @Produce json
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/purchase-orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, "invalid pagination: "+err.Error())
		return
	}

	orders, total, err := h.service.ListOrders(c.Request.Context(), page)
	if err != nil {
		common.ResponseInternalError(c, "failed to list purchase orders")
		return
	}
	common.ResponseList(c, orders, total, &page)
}

// GetOrder fetches one purchase order.
// @Summary Get purchase order
// @Tags Procurement
// @Security BearerAuth
// @Produce json
// @Param id path string true "order id"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/purchase-orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProcurementError(c, err)
		return
	}
	common.ResponseSuccess(c, order)
}
