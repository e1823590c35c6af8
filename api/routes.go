package api

import (
	"backend/internal/auth"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all API routes.
func RegisterRoutes(router *gin.Engine, container *AppContainer, handlers *Handlers) {
	// Public auth endpoints.
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/login", handlers.Auth.Login)
		authGroup.POST("/refresh", handlers.Auth.Refresh)
		authGroup.POST("/logout", handlers.Auth.Logout)
	}

	apiV1 := router.Group("/api/v1")
	apiV1.Use(auth.AuthMiddleware(container.JWTService))
	registerAPIRoutes(apiV1, handlers)
}

func registerAPIRoutes(api *gin.RouterGroup, h *Handlers) {
	api.GET("/me", h.Auth.Me)

	// Directory.
	api.POST("/users", h.Org.CreateUser)
	api.GET("/users", h.Org.ListUsers)
	api.GET("/users/:id", h.Org.GetUser)
	api.POST("/divisions", h.Org.CreateDivision)
	api.GET("/divisions", h.Org.ListDivisions)
	api.POST("/roles", h.Org.CreateRole)
	api.GET("/roles", h.Org.ListRoles)
	api.POST("/vendors", h.Org.CreateVendor)
	api.GET("/vendors", h.Org.ListVendors)

	// Budgeting.
	api.POST("/projects", h.Budget.CreateProject)
	api.GET("/projects", h.Budget.ListProjects)
	api.GET("/projects/:id", h.Budget.GetProject)
	api.POST("/budgets", h.Budget.CreateBudget)
	api.GET("/budgets", h.Budget.ListBudgets)
	api.GET("/budgets/:id", h.Budget.GetBudget)

	// Approval schemas.
	api.GET("/approval-schemas", h.Schema.ListSchemas)
	api.POST("/approval-schemas", h.Schema.CreateSchema)
	api.GET("/approval-schemas/:id", h.Schema.GetSchema)
	api.PUT("/approval-schemas/:id", h.Schema.UpdateSchema)
	api.DELETE("/approval-schemas/:id", h.Schema.DeleteSchema)

	// Approval chains. Documents are addressed by id regardless of type.
	api.GET("/documents/:id/approval/steps", h.Approval.GetSteps)
	api.GET("/documents/:id/approval/current-step", h.Approval.GetCurrentStep)
	api.GET("/documents/:id/approval/history", h.Approval.GetHistory)
	api.POST("/documents/:id/approval/steps/:order/approve", h.Approval.Approve)
	api.POST("/documents/:id/approval/steps/:order/decline", h.Approval.Decline)

	// Purchase requests.
	api.POST("/purchase-requests", h.Request.CreateRequest)
	api.GET("/purchase-requests", h.Request.ListRequests)
	api.GET("/purchase-requests/:id", h.Request.GetRequest)
	api.PUT("/purchase-requests/:id", h.Request.UpdateRequest)
	api.POST("/purchase-requests/:id/submit", h.Request.Submit)
	api.POST("/purchase-requests/:id/resubmit", h.Request.Resubmit)
	api.POST("/purchase-requests/:id/convert", h.Order.ConvertToOrder)

	// Purchase orders.
	api.GET("/purchase-orders", h.Order.ListOrders)
	api.GET("/purchase-orders/:id", h.Order.GetOrder)
}
