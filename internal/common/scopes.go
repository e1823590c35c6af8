package common

import "gorm.io/gorm"

// ByDivision filters by work division.
// Usage: db.Scopes(common.ByDivision(divisionID)).Find(&budgets)
func ByDivision(divisionID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("work_division_id = ?", divisionID)
	}
}

// ByStatus filters by a status column value.
func ByStatus(status string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", status)
	}
}

// ByCreator filters by the creating user.
func ByCreator(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_by = ?", userID)
	}
}

// Paginate applies the offset/limit of a pagination request.
func Paginate(req PaginationRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.GetOffset()).Limit(req.GetPageSize())
	}
}
