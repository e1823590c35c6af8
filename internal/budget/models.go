package budget

import (
	"time"

	"backend/internal/common"
)

// Project groups budgets under one initiative for planning.
type Project struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid"`
	Code           string     `json:"code" gorm:"size:50;uniqueIndex"`
	Name           string     `json:"name" gorm:"size:255;not null"`
	Description    string     `json:"description" gorm:"type:text"`
	WorkDivisionID string     `json:"workDivisionId" gorm:"type:uuid;index"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	FinishDate     *time.Time `json:"finishDate,omitempty"`
	CreatedBy      string     `json:"createdBy" gorm:"size:100"`
	common.TimestampModel
}

func (Project) TableName() string {
	return "projects"
}

// Budget is a planned spending allocation purchase requests draw against.
// The engine only reads the linkage; amounts are advisory to the approval
// flow.
type Budget struct {
	ID             string `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID      string `json:"projectId" gorm:"type:uuid;not null;index"`
	WorkDivisionID string `json:"workDivisionId" gorm:"type:uuid;index"`
	Description    string `json:"description" gorm:"type:text"`
	Amount         int64  `json:"amount" gorm:"not null"`
	CreatedBy      string `json:"createdBy" gorm:"size:100"`
	common.TimestampModel
}

func (Budget) TableName() string {
	return "budgets"
}
