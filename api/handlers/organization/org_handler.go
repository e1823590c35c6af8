package organization

import (
	"errors"
	"strings"

	"backend/internal/common"
	"backend/internal/organization"

	"github.com/gin-gonic/gin"
)

// OrgHandler manages the directory: users, roles, divisions, vendors.
type OrgHandler struct {
	service *organization.Service
}

func NewOrgHandler(service *organization.Service) *OrgHandler {
	return &OrgHandler{service: service}
}

// CreateUser registers a user account.
// @Summary Create user
// @Tags Organization
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "user"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/v1/users [post]
func (h *OrgHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	user := &organization.User{
		Name:           req.Name,
		Email:          strings.ToLower(req.Email),
		RoleID:         req.RoleID,
		WorkDivisionID: req.WorkDivisionID,
		IsActive:       true,
	}
	if err := h.service.CreateUser(c.Request.Context(), user, req.Password); err != nil {
		respondOrganizationError(c, err)
		return
	}
	common.ResponseCreated(c, user)
}

// ListUsers lists user accounts.
// @Summary List users
// @Tags Organization
// @Security BearerAuth
// @Produce json
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/users [get]
func (h *OrgHandler) ListUsers(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, "invalid pagination: "+err.Error())
		return
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), page)
	if err != nil {
		common.ResponseInternalError(c, "failed to list users")
		return
	}
	common.ResponseList(c, users, total, &page)
}

// GetUser fetches one user.
// @Summary Get user
// @Tags Organization
// @Security BearerAuth
// @Produce json
// @Param id path string true "user id"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/users/{id} [get]
func (h *OrgHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondOrganizationError(c, err)
		return
	}
	common.ResponseSuccess(c, user)
}

// CreateDivision registers a work division.
// @Summary Create work division
// @Tags Organization
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateDivisionRequest true "division"
// @Success 201 {object} common.APIResponse
// @Router /api/v1/divisions [post]
func (h *OrgHandler) CreateDivision(c *gin.Context) {
	var req CreateDivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	division := &organization.WorkDivision{Name: req.Name, Code: req.Code}
	if err := h.service.CreateDivision(c.Request.Context(), division); err != nil {
		respondOrganizationError(c, err)
		return
	}
	common.ResponseCreated(c, division)
}

// ListDivisions lists work divisions.
// @Summary List work divisions
// @Tags Organization
// @Security BearerAuth
// @Produce json
// @Success 200 {object} common.APIResponse
// @Router /api/v1/divisions [get]
func (h *OrgHandler) ListDivisions(c *gin.Context) {
	divisions, err := h.service.ListDivisions(c.Request.Context())
	if err != nil {
		common.ResponseInternalError(c, "failed to list divisions")
		return
	}
	common.ResponseSuccess(c, gin.H{"divisions": divisions, "total": len(divisions)})
}

// CreateRole registers a role.
// @Summary Create role
// @Tags Organization
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateRoleRequest true "role"
// @Success 201 {object} common.APIResponse
// @Router /api/v1/roles [post]
func (h *OrgHandler) CreateRole(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	role := &organization.Role{Name: req.Name, CanReview: req.CanReview}
	if err := h.service.CreateRole(c.Request.Context(), role); err != nil {
		respondOrganizationError(c, err)
		return
	}
	common.ResponseCreated(c, role)
}

// ListRoles lists roles.
// @Summary List roles
// @Tags Organization
// @Security BearerAuth
// @Produce json
// @Success 200 {object} common.APIResponse
// @Router /api/v1/roles [get]
func (h *OrgHandler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		common.ResponseInternalError(c, "failed to list roles")
		return
	}
	common.ResponseSuccess(c, gin.H{"roles": roles, "total": len(roles)})
}

// CreateVendor registers a vendor.
// @Summary Create vendor
// @Tags Organization
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateVendorRequest true "vendor"
// @Success 201 {object} common.APIResponse
// @Router /api/v1/vendors [post]
func (h *OrgHandler) CreateVendor(c *gin.Context) {
	var req CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	vendor := &organization.Vendor{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	}
	if err := h.service.CreateVendor(c.Request.Context(), vendor); err != nil {
		respondOrganizationError(c, err)
		return
	}
	common.ResponseCreated(c, vendor)
}

// ListVendors lists vendors.
// @Summary List vendors
// @Tags Organization
// @Security BearerAuth
// @Produce json
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/vendors [get]
func (h *OrgHandler) ListVendors(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, "invalid pagination: "+err.Error())
		return
	}

	vendors, total, err := h.service.ListVendors(c.Request.Context(), page)
	if err != nil {
		common.ResponseInternalError(c, "failed to list vendors")
		return
	}
	common.ResponseList(c, vendors, total, &page)
}

func respondOrganizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, organization.ErrUserNotFound):
		common.ResponseError(c, common.CodeUserNotFound, "")
	case errors.Is(err, organization.ErrRoleNotFound):
		common.ResponseError(c, common.CodeRoleNotFound, "")
	case errors.Is(err, organization.ErrDivisionNotFound):
		common.ResponseError(c, common.CodeDivisionNotFound, "")
	case errors.Is(err, organization.ErrVendorNotFound):
		common.ResponseError(c, common.CodeVendorNotFound, "")
	default:
		common.ResponseInternalError(c, "organization operation failed")
	}
}
