package approval

import (
	"time"
)

// DocumentType identifies which kind of document a schema applies to.
type DocumentType string

const (
	DocumentTypePurchaseRequest DocumentType = "purchase_request"
	DocumentTypeMemo            DocumentType = "memo"
)

// IsValid reports whether the document type is known.
func (t DocumentType) IsValid() bool {
	return t == DocumentTypePurchaseRequest || t == DocumentTypeMemo
}

// StepStatus is the fine-grained state of one approval step.
type StepStatus string

const (
	StepStatusPending  StepStatus = "pending"
	StepStatusUpdated  StepStatus = "updated" // re-entrant pending after a revision cycle
	StepStatusApproved StepStatus = "approved"
	StepStatusDeclined StepStatus = "declined"
	StepStatusRevision StepStatus = "revision"
)

// IsActionable reports whether the step still awaits a decision.
func (s StepStatus) IsActionable() bool {
	return s == StepStatusPending || s == StepStatusUpdated
}

// IsTerminal reports whether the step has been decided.
func (s StepStatus) IsTerminal() bool {
	return s == StepStatusApproved || s == StepStatusDeclined || s == StepStatusRevision
}

// ClosesChain reports whether this step status terminates the whole chain.
func (s StepStatus) ClosesChain() bool {
	return s == StepStatusDeclined || s == StepStatusRevision
}

// OvertimeAction is the policy applied when a step's duration elapses.
type OvertimeAction string

const (
	OvertimeNotify      OvertimeAction = "notify"
	OvertimeAutoDecline OvertimeAction = "auto_decline"
)

// IsValid reports whether the overtime action is known.
func (a OvertimeAction) IsValid() bool {
	return a == OvertimeNotify || a == OvertimeAutoDecline
}

// DocumentStatus is the coarse status projected from step states.
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusApproved  DocumentStatus = "approved"
	DocumentStatusRevision  DocumentStatus = "revision"
	DocumentStatusRejected  DocumentStatus = "rejected"
	DocumentStatusCompleted DocumentStatus = "completed"
)

// HistoryAction labels an entry in the append-only approval log.
type HistoryAction string

const (
	HistorySubmitted         HistoryAction = "submitted"
	HistoryApproved          HistoryAction = "approved"
	HistoryDeclined          HistoryAction = "declined"
	HistoryRevisionRequested HistoryAction = "revision_requested"
	HistoryResubmitted       HistoryAction = "resubmitted"
	HistoryCompleted         HistoryAction = "completed"
)

// SystemActorID marks resolver-driven decisions in the audit trail.
const SystemActorID = "system"

// Actor is the identity acting on a step, always passed explicitly.
type Actor struct {
	ID     string
	RoleID string
}

// SystemActor returns the actor used for automatic decisions.
func SystemActor() Actor {
	return Actor{ID: SystemActorID}
}

// IsSystem reports whether the actor is the overtime resolver.
func (a Actor) IsSystem() bool {
	return a.ID == SystemActorID
}

// ApprovalStepTemplate is one ordered entry of a schema. Templates are
// copied by value into ApprovalStep rows at instantiation time, so later
// schema edits never touch in-flight approvals.
type ApprovalStepTemplate struct {
	StepOrder       int            `json:"stepOrder"`
	RoleID          string         `json:"roleId"`
	SpecificUserID  *string        `json:"specificUserId,omitempty"` // narrows the role to one person
	BudgetLimit     *int64         `json:"budgetLimit,omitempty"`    // nil = unlimited; advisory metadata
	DurationSeconds int64          `json:"durationSeconds"`
	OvertimeAction  OvertimeAction `json:"overtimeAction"`
}

// ApprovalSchema is a reusable, named template of ordered approval steps.
type ApprovalSchema struct {
	ID           string                 `json:"id" gorm:"primaryKey;type:uuid"`
	Name         string                 `json:"name" gorm:"size:255;not null"`
	DocumentType DocumentType           `json:"documentType" gorm:"size:50;not null;index"`
	Description  string                 `json:"description" gorm:"type:text"`
	DivisionIDs  []string               `json:"divisionIds" gorm:"type:jsonb;serializer:json"` // empty = all divisions
	RoleIDs      []string               `json:"roleIds" gorm:"type:jsonb;serializer:json"`     // empty = all roles
	Steps        []ApprovalStepTemplate `json:"steps" gorm:"type:jsonb;serializer:json"`
	CreatedBy    string                 `json:"createdBy" gorm:"size:100"`
	CreatedAt    time.Time              `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time              `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

func (ApprovalSchema) TableName() string {
	return "approval_schemas"
}

// ApprovalStep is one instantiated checkpoint of a document's chain.
// Role, limit, duration and order are immutable once created; only the
// decision fields change, and only through the engine.
type ApprovalStep struct {
	ID              string         `json:"id" gorm:"primaryKey;type:uuid"`
	DocumentID      string         `json:"documentId" gorm:"type:uuid;not null;uniqueIndex:idx_document_step,priority:1"`
	StepOrder       int            `json:"stepOrder" gorm:"not null;uniqueIndex:idx_document_step,priority:2"`
	RoleID          string         `json:"roleId" gorm:"size:100;not null"`
	SpecificUserID  *string        `json:"specificUserId,omitempty" gorm:"size:100"`
	BudgetLimit     *int64         `json:"budgetLimit,omitempty"`
	DurationSeconds int64          `json:"durationSeconds" gorm:"not null"`
	OvertimeAction  OvertimeAction `json:"overtimeAction" gorm:"size:50;not null"`
	Status          StepStatus     `json:"status" gorm:"size:50;not null;default:pending;index"`
	ActorID         *string        `json:"actorId,omitempty" gorm:"size:100"`
	ActedAt         *time.Time     `json:"actedAt,omitempty"`
	Comment         *string        `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt       time.Time      `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt       time.Time      `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

func (ApprovalStep) TableName() string {
	return "approval_steps"
}

// Duration returns the step's SLA window.
func (s *ApprovalStep) Duration() time.Duration {
	return time.Duration(s.DurationSeconds) * time.Second
}

// ApprovalHistory is the append-only audit record of chain actions.
// Rows are never mutated or deleted.
type ApprovalHistory struct {
	ID         string        `json:"id" gorm:"primaryKey;type:uuid"`
	DocumentID string        `json:"documentId" gorm:"type:uuid;not null;index"`
	Action     HistoryAction `json:"action" gorm:"size:50;not null"`
	ActorID    string        `json:"actorId" gorm:"size:100;not null"` // "system" for resolver writes
	Comment    *string       `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt  time.Time     `json:"createdAt" gorm:"not null;autoCreateTime;index"`
}

func (ApprovalHistory) TableName() string {
	return "approval_histories"
}
