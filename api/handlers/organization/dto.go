package organization

// LoginRequest authenticates a user by email and password.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// CreateUserRequest registers a user account.
type CreateUserRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	RoleID         string `json:"roleId" binding:"required"`
	WorkDivisionID string `json:"workDivisionId" binding:"required"`
}

// CreateDivisionRequest registers a work division.
type CreateDivisionRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code"`
}

// CreateRoleRequest registers a role.
type CreateRoleRequest struct {
	Name      string `json:"name" binding:"required"`
	CanReview bool   `json:"canReview"`
}

// CreateVendorRequest registers a vendor.
type CreateVendorRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}
