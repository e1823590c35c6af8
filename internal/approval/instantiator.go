package approval

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StepInput is the canonical step shape accepted at instantiation, whether
// it came from a saved schema or was hand-assembled by a requester. All
// call sites normalize into it at the boundary.
type StepInput struct {
	RoleID          string         `json:"roleId" binding:"required"`
	SpecificUserID  *string        `json:"specificUserId,omitempty"`
	BudgetLimit     *int64         `json:"budgetLimit,omitempty"`
	DurationSeconds int64          `json:"durationSeconds"`
	OvertimeAction  OvertimeAction `json:"overtimeAction"`
}

// StepsFromSchema converts a schema's templates into instantiation input,
// copying every field by value.
func StepsFromSchema(schema *ApprovalSchema) []StepInput {
	inputs := make([]StepInput, 0, len(schema.Steps))
	for _, tpl := range schema.Steps {
		inputs = append(inputs, StepInput{
			RoleID:          tpl.RoleID,
			SpecificUserID:  tpl.SpecificUserID,
			BudgetLimit:     tpl.BudgetLimit,
			DurationSeconds: tpl.DurationSeconds,
			OvertimeAction:  tpl.OvertimeAction,
		})
	}
	return inputs
}

// defaultDurationSeconds is applied when a step omits its SLA window.
const defaultDurationSeconds = 7 * 24 * 3600

// Instantiator materializes concrete ApprovalStep rows for a document.
type Instantiator struct {
	db *gorm.DB
}

// NewInstantiator creates a step instantiator.
func NewInstantiator(db *gorm.DB) *Instantiator {
	return &Instantiator{db: db}
}

// WithTx returns an instantiator bound to an open transaction, so callers
// can make instantiation and their own writes atomic.
func (i *Instantiator) WithTx(tx *gorm.DB) *Instantiator {
	return &Instantiator{db: tx}
}

// Instantiate persists one ApprovalStep per input, all pending, and
// appends the "submitted" history entry, atomically.
//
// The server derives StepOrder from array position (index+1): array order
// IS the approval order. Callers assembling steps by hand are expected to
// pre-sort ascending by budget limit with unlimited steps last, but the
// ordering authority is this function, not the client.
func (i *Instantiator) Instantiate(ctx context.Context, documentID, requesterID string, inputs []StepInput) ([]ApprovalStep, error) {
	if err := ValidateStepInputs(inputs); err != nil {
		return nil, err
	}
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", ErrInvalidStepList)
	}

	steps := make([]ApprovalStep, 0, len(inputs))
	for idx, in := range inputs {
		duration := in.DurationSeconds
		if duration <= 0 {
			duration = defaultDurationSeconds
		}
		action := in.OvertimeAction
		if action == "" {
			action = OvertimeNotify
		}
		steps = append(steps, ApprovalStep{
			ID:              uuid.New().String(),
			DocumentID:      documentID,
			StepOrder:       idx + 1,
			RoleID:          in.RoleID,
			SpecificUserID:  in.SpecificUserID,
			BudgetLimit:     in.BudgetLimit,
			DurationSeconds: duration,
			OvertimeAction:  action,
			Status:          StepStatusPending,
		})
	}

	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&ApprovalStep{}).Where("document_id = ?", documentID).Count(&existing).Error; err != nil {
			return fmt.Errorf("check existing steps: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("%w: document already has an approval chain", ErrInvalidStepList)
		}

		if err := tx.Create(&steps).Error; err != nil {
			return fmt.Errorf("create steps: %w", err)
		}
		return appendHistory(tx, documentID, HistorySubmitted, requesterID, nil)
	})
	if err != nil {
		return nil, err
	}
	return steps, nil
}

// ValidateStepInputs rejects empty lists and steps without a role.
func ValidateStepInputs(inputs []StepInput) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: step list is empty", ErrInvalidStepList)
	}
	for idx, in := range inputs {
		if in.RoleID == "" {
			return fmt.Errorf("%w: step %d has no role", ErrInvalidStepList, idx+1)
		}
		if in.OvertimeAction != "" && !in.OvertimeAction.IsValid() {
			return fmt.Errorf("%w: step %d has unknown overtime action %q", ErrInvalidStepList, idx+1, in.OvertimeAction)
		}
	}
	return nil
}
