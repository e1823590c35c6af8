package organization

import "backend/internal/common"

// WorkDivision is an organizational unit that owns budgets and requests.
type WorkDivision struct {
	ID   string `json:"id" gorm:"primaryKey;type:uuid"`
	Name string `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Code string `json:"code" gorm:"size:50"`
	common.TimestampModel
}

func (WorkDivision) TableName() string {
	return "work_divisions"
}

// Role names a position users hold. CanReview is the general capability
// gate for acting on approval steps, checked before per-step eligibility.
type Role struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string `json:"name" gorm:"size:255;not null;uniqueIndex"`
	CanReview bool   `json:"canReview" gorm:"default:false"`
	common.TimestampModel
}

func (Role) TableName() string {
	return "roles"
}

// User is an account in the workspace.
type User struct {
	ID             string `json:"id" gorm:"primaryKey;type:uuid"`
	Name           string `json:"name" gorm:"size:255;not null"`
	Email          string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash   string `json:"-" gorm:"size:255;not null"`
	RoleID         string `json:"roleId" gorm:"type:uuid;index"`
	WorkDivisionID string `json:"workDivisionId" gorm:"type:uuid;index"`
	IsActive       bool   `json:"isActive" gorm:"default:true"`
	common.TimestampModel
}

func (User) TableName() string {
	return "users"
}

// Vendor is a supplier referenced by purchase orders.
type Vendor struct {
	ID      string `json:"id" gorm:"primaryKey;type:uuid"`
	Name    string `json:"name" gorm:"size:255;not null"`
	Address string `json:"address" gorm:"type:text"`
	Phone   string `json:"phone" gorm:"size:50"`
	Email   string `json:"email" gorm:"size:255"`
	common.TimestampModel
}

func (Vendor) TableName() string {
	return "vendors"
}
